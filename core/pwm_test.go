package core

import (
	"errors"
	"testing"
)

func newTestActuators(t *testing.T) (*Actuators, *mockPWM) {
	t.Helper()
	pwm := newMockPWM()
	a := NewActuators(pwm, [NumActuators]PWMPin{32, 33})
	if err := a.Init(DefaultPWMFrequency); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return a, pwm
}

func TestActuatorsInit(t *testing.T) {
	a, pwm := newTestActuators(t)
	if a.PeriodUS() != 8000 {
		t.Errorf("125 Hz: expected 8000us period, got %d", a.PeriodUS())
	}
	for _, pin := range []PWMPin{32, 33} {
		if pwm.periods[pin] != 8000 {
			t.Errorf("Pin %d: expected period 8000, got %d", pin, pwm.periods[pin])
		}
	}
}

func TestActuatorsSet(t *testing.T) {
	a, pwm := newTestActuators(t)

	tests := []struct {
		name    string
		act     Actuator
		us      int
		wantErr error
	}{
		{"throttle forward", ActuatorThrottle, 1600, nil},
		{"steering left", ActuatorSteering, 1400, nil},
		{"beyond servo range passes through", ActuatorThrottle, 2500, nil},
		{"negative", ActuatorSteering, -5, ErrPulseWidth},
		{"longer than period", ActuatorThrottle, 9000, ErrPulseWidth},
		{"unknown actuator", NumActuators, 1500, ErrUnknownActuator},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := a.Last(tt.act)
			err := a.Set(tt.act, tt.us)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr != nil {
				if a.Last(tt.act) != before {
					t.Errorf("Rejected width changed the output")
				}
				return
			}
			pin := PWMPin(32 + tt.act)
			if pwm.widths[pin] != uint32(tt.us) || a.Last(tt.act) != uint32(tt.us) {
				t.Errorf("Expected %dus on pin %d, got %d", tt.us, pin, pwm.widths[pin])
			}
		})
	}
}

func TestActuatorsNeutral(t *testing.T) {
	a, pwm := newTestActuators(t)
	a.Set(ActuatorThrottle, 1900)

	if err := a.Neutral(); err != nil {
		t.Fatalf("Neutral failed: %v", err)
	}
	if pwm.widths[32] != PulseNeutralUS || pwm.widths[33] != PulseNeutralUS {
		t.Errorf("Expected both outputs at %d, got %d/%d", PulseNeutralUS, pwm.widths[32], pwm.widths[33])
	}

	pwm.fail = true
	if err := a.Neutral(); !errors.Is(err, errMock) {
		t.Errorf("Expected driver error from Neutral, got %v", err)
	}
}

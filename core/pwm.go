// PWM regeneration for the vehicle actuators
package core

import (
	"errors"
	"fmt"
)

// Actuator identifies one regenerated PWM output
type Actuator uint8

const (
	ActuatorThrottle Actuator = iota
	ActuatorSteering

	NumActuators = 2
)

// Pulse widths in microseconds, same units as the receiver inputs
const (
	PulseMinUS     = 1000
	PulseNeutralUS = 1500
	PulseMaxUS     = 2000

	// DefaultPWMFrequency is the carrier frequency of the outputs (Hz)
	DefaultPWMFrequency = 125
)

var (
	ErrUnknownActuator = errors.New("unknown actuator")
	ErrPulseWidth      = errors.New("pulse width out of range")
)

func (a Actuator) String() string {
	switch a {
	case ActuatorThrottle:
		return "throttle"
	case ActuatorSteering:
		return "steering"
	default:
		return "unknown"
	}
}

// Actuators drives the throttle and steering outputs. Widths pass straight
// through to the driver: no queuing, no interpolation, no rate limiting.
type Actuators struct {
	pins     [NumActuators]PWMPin
	driver   PWMDriver
	periodUS uint32
	last     [NumActuators]uint32
}

// NewActuators creates the output pair on pins (indexed by Actuator)
func NewActuators(d PWMDriver, pins [NumActuators]PWMPin) *Actuators {
	return &Actuators{pins: pins, driver: d}
}

// Init configures both outputs for a carrier of freqHz
func (a *Actuators) Init(freqHz uint32) error {
	if freqHz == 0 {
		freqHz = DefaultPWMFrequency
	}
	a.periodUS = TimerFreq / freqHz
	for i, pin := range a.pins {
		if err := a.driver.ConfigureServo(pin, a.periodUS); err != nil {
			return fmt.Errorf("configure %s output on pin %d: %w", Actuator(i), pin, err)
		}
	}
	return nil
}

// Set programs a pulse width of us microseconds on act.
// Widths that cannot be represented in one carrier period are rejected and
// leave the output unchanged.
func (a *Actuators) Set(act Actuator, us int) error {
	if act >= NumActuators {
		return ErrUnknownActuator
	}
	if us < 0 || (a.periodUS != 0 && uint32(us) > a.periodUS) {
		return fmt.Errorf("%s %dus: %w", act, us, ErrPulseWidth)
	}
	if err := a.driver.SetPulseWidth(a.pins[act], uint32(us)); err != nil {
		return fmt.Errorf("set %s: %w", act, err)
	}
	a.last[act] = uint32(us)
	return nil
}

// Neutral centers both outputs
func (a *Actuators) Neutral() error {
	return errors.Join(
		a.Set(ActuatorThrottle, PulseNeutralUS),
		a.Set(ActuatorSteering, PulseNeutralUS),
	)
}

// Last returns the last width successfully programmed on act
func (a *Actuators) Last(act Actuator) uint32 {
	if act >= NumActuators {
		return 0
	}
	return a.last[act]
}

// PeriodUS returns the configured carrier period
func (a *Actuators) PeriodUS() uint32 {
	return a.periodUS
}

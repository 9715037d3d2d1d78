//go:build linux && !tinygo

package main

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/stianeikeland/go-rpio/v4"

	"rcbridge/core"
)

// pwmClockHz runs the PWM counter at one tick per microsecond, so duty
// cycles are written directly in microseconds.
// Freq should be in range 4688Hz - 19.2MHz.
const pwmClockHz = 1000000

// RpioPWMDriver drives the Raspberry Pi hardware PWM through /dev/gpiomem.
// Outputs must be on PWM capable BCM pins (12, 13, 18, 19).
type RpioPWMDriver struct {
	mu      sync.Mutex
	periods map[core.PWMPin]uint32
}

// NewRpioPWMDriver maps the GPIO registers
func NewRpioPWMDriver() (*RpioPWMDriver, error) {
	if err := rpio.Open(); err != nil {
		return nil, errors.Wrap(err, "open gpiomem")
	}
	return &RpioPWMDriver{periods: make(map[core.PWMPin]uint32)}, nil
}

// ConfigureServo switches pin to its PWM alternate function
func (d *RpioPWMDriver) ConfigureServo(pin core.PWMPin, periodUS uint32) error {
	switch pin {
	case 12, 13, 18, 19:
	default:
		return errors.Errorf("BCM pin %d has no hardware PWM", pin)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	p := rpio.Pin(pin)
	p.Mode(rpio.Pwm)
	p.Freq(pwmClockHz)
	d.periods[pin] = periodUS
	return nil
}

// SetPulseWidth sets the high time of each period in microseconds
func (d *RpioPWMDriver) SetPulseWidth(pin core.PWMPin, us uint32) error {
	d.mu.Lock()
	period, ok := d.periods[pin]
	d.mu.Unlock()
	if !ok {
		return errors.Errorf("PWM pin %d not configured", pin)
	}

	rpio.Pin(pin).DutyCycle(us, period)
	return nil
}

// Close unmaps the GPIO registers. The PWM block keeps its last setting.
func (d *RpioPWMDriver) Close() error {
	return rpio.Close()
}

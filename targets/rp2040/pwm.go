//go:build rp2040

package main

import (
	"errors"
	"machine"

	"rcbridge/core"
)

var errPWMNotConfigured = errors.New("PWM pin not configured")

// pwmPeripheral is an interface for PWM hardware peripherals
// This abstracts over TinyGo's unexported *pwmGroup type
type pwmPeripheral interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Top() uint32
	Set(channel uint8, value uint32)
}

// RP2040PWMDriver implements the PWMDriver interface for RP2040
// Leverages RP2040's 8 hardware PWM slices with 2 channels each
type RP2040PWMDriver struct {
	// Key: slice number (0-7), Value: configured period in microseconds
	slices map[uint8]uint32

	// Key: pin number, Value: PWM channel
	channels map[uint32]uint8

	// Key: slice number (0-7), Value: PWM peripheral
	peripherals map[uint8]pwmPeripheral
}

// NewRP2040PWMDriver creates a new RP2040 PWM driver
func NewRP2040PWMDriver() *RP2040PWMDriver {
	return &RP2040PWMDriver{
		slices:      make(map[uint8]uint32),
		channels:    make(map[uint32]uint8),
		peripherals: make(map[uint8]pwmPeripheral),
	}
}

// ConfigureServo configures a pin for hardware PWM with a carrier period of
// periodUS. Both channels of a slice share the period.
func (d *RP2040PWMDriver) ConfigureServo(pin core.PWMPin, periodUS uint32) error {
	pinNum := uint32(pin)

	// RP2040: GPIO pin N maps to:
	//   Slice: (N >> 1) & 0x7  (divide by 2, mod 8)
	//   Channel: N & 1          (even=A, odd=B)
	sliceNum := uint8((pinNum >> 1) & 0x7)

	pwm, exists := d.peripherals[sliceNum]
	if !exists {
		pwm = d.getPWMPeripheral(sliceNum)
		d.peripherals[sliceNum] = pwm
	}

	if existing, ok := d.slices[sliceNum]; ok && existing != periodUS {
		return errors.New("PWM slice already runs at a different period")
	}

	err := pwm.Configure(machine.PWMConfig{
		Period: uint64(periodUS) * 1000,
	})
	if err != nil {
		return err
	}

	channel, err := pwm.Channel(machine.Pin(pinNum))
	if err != nil {
		return err
	}

	d.slices[sliceNum] = periodUS
	d.channels[pinNum] = channel
	return nil
}

// SetPulseWidth sets the high time of every period in microseconds.
// The new compare value is latched at the next period boundary.
func (d *RP2040PWMDriver) SetPulseWidth(pin core.PWMPin, us uint32) error {
	pinNum := uint32(pin)

	channel, exists := d.channels[pinNum]
	if !exists {
		return errPWMNotConfigured
	}

	sliceNum := uint8((pinNum >> 1) & 0x7)
	pwm := d.peripherals[sliceNum]
	period := d.slices[sliceNum]

	// Scale to the counter: value = us * (top+1) / period, in 64 bits
	top := uint64(pwm.Top())
	value := uint64(us) * (top + 1) / uint64(period)
	if value > top+1 {
		value = top + 1
	}
	pwm.Set(channel, uint32(value))
	return nil
}

// getPWMPeripheral returns the PWM peripheral for a given slice number
func (d *RP2040PWMDriver) getPWMPeripheral(sliceNum uint8) pwmPeripheral {
	// TinyGo defines PWM0-PWM7 as global variables of type *pwmGroup
	switch sliceNum {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	case 7:
		return machine.PWM7
	default:
		// Should never happen with proper masking
		return machine.PWM0
	}
}

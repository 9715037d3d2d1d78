//go:build rp2040

package main

import (
	"errors"
	"machine"

	"rcbridge/core"
)

var errPinInUse = errors.New("pin already configured")

// RPGPIODriver implements the GPIODriver interface for RP2040
type RPGPIODriver struct {
	// Track configured pins to prevent conflicts
	configuredPins map[core.GPIOPin]machine.Pin
}

// NewRPGPIODriver creates a new RP2040 GPIO driver
func NewRPGPIODriver() *RPGPIODriver {
	return &RPGPIODriver{
		configuredPins: make(map[core.GPIOPin]machine.Pin),
	}
}

// ConfigureEdgeInput configures pin as a pulled-up input and calls h on
// every transition, from the GPIO interrupt.
func (d *RPGPIODriver) ConfigureEdgeInput(pin core.GPIOPin, h core.EdgeHandler) error {
	if _, exists := d.configuredPins[pin]; exists {
		return errPinInUse
	}

	machinePin := machine.Pin(pin)
	machinePin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})

	// Level is sampled in the handler; a pulse shorter than the interrupt
	// latency reads back as the wrong edge and is caught by the wrap guard.
	err := machinePin.SetInterrupt(machine.PinToggle, func(p machine.Pin) {
		h(core.GPIOPin(p), p.Get(), core.GetTime())
	})
	if err != nil {
		return err
	}

	d.configuredPins[pin] = machinePin
	return nil
}

// ConfigureOutput configures a pin as a digital output
func (d *RPGPIODriver) ConfigureOutput(pin core.GPIOPin) error {
	if _, exists := d.configuredPins[pin]; exists {
		// Already configured, this is OK
		return nil
	}

	machinePin := machine.Pin(pin)
	machinePin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	d.configuredPins[pin] = machinePin
	return nil
}

// SetPin sets the pin to high (true) or low (false)
func (d *RPGPIODriver) SetPin(pin core.GPIOPin, value bool) error {
	machinePin, exists := d.configuredPins[pin]
	if !exists {
		// Pin isn't configured - configure it first
		if err := d.ConfigureOutput(pin); err != nil {
			return err
		}
		machinePin = d.configuredPins[pin]
	}

	machinePin.Set(value)
	return nil
}

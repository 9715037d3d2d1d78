package core

import "image/color"

// LEDDriver is the abstract status LED interface that core code uses.
type LEDDriver interface {
	// WriteColor shows c on the LED; black switches it off
	WriteColor(c color.RGBA) error
}

// Global singleton used by core code.
var ledDriver LEDDriver

// SetLEDDriver is called by target-specific code to register its driver.
func SetLEDDriver(d LEDDriver) {
	ledDriver = d
}

// MustLED returns the configured driver or panics if missing.
func MustLED() LEDDriver {
	if ledDriver == nil {
		panic("LED driver not configured")
	}
	return ledDriver
}

// GPIOLED drives a single-color LED on a GPIO line: any color other than
// black lights it.
type GPIOLED struct {
	gpio      GPIODriver
	pin       GPIOPin
	activeLow bool
}

// NewGPIOLED configures pin as an output and returns an LED on it
func NewGPIOLED(d GPIODriver, pin GPIOPin, activeLow bool) (*GPIOLED, error) {
	if err := d.ConfigureOutput(pin); err != nil {
		return nil, err
	}
	return &GPIOLED{gpio: d, pin: pin, activeLow: activeLow}, nil
}

func (l *GPIOLED) WriteColor(c color.RGBA) error {
	on := c.R != 0 || c.G != 0 || c.B != 0
	return l.gpio.SetPin(l.pin, on != l.activeLow)
}

package core

// GPIOPin identifies a hardware GPIO line (pin number or gpiochip offset)
type GPIOPin uint32

// EdgeHandler is called by the platform on every transition of a monitored
// line. level is the line state after the transition, t the edge timestamp
// in microseconds. Handlers run in interrupt context on microcontrollers and
// must not block, allocate or perform I/O.
type EdgeHandler func(pin GPIOPin, level bool, t uint32)

// GPIODriver is the abstract GPIO interface that core code uses.
// Platform-specific implementations handle actual hardware control.
type GPIODriver interface {
	// ConfigureEdgeInput configures a pin as an input with pull-up and
	// subscribes h to both edges
	ConfigureEdgeInput(pin GPIOPin, h EdgeHandler) error

	// ConfigureOutput configures a pin as a digital output
	ConfigureOutput(pin GPIOPin) error

	// SetPin sets the pin to high (true) or low (false)
	SetPin(pin GPIOPin, value bool) error
}

// Global singleton used by core code.
var gpioDriver GPIODriver

// SetGPIODriver is called by target-specific code to register its driver.
func SetGPIODriver(d GPIODriver) {
	gpioDriver = d
}

// MustGPIO returns the configured driver or panics if missing.
func MustGPIO() GPIODriver {
	if gpioDriver == nil {
		panic("GPIO driver not configured")
	}
	return gpioDriver
}

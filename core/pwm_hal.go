package core

// PWMPin identifies a hardware pin capable of PWM output
type PWMPin uint32

// PWMDriver is the abstract PWM interface that core code uses.
// Platform-specific implementations handle actual hardware control.
type PWMDriver interface {
	// ConfigureServo configures a pin for hardware PWM output with the given
	// carrier period in microseconds
	ConfigureServo(pin PWMPin, periodUS uint32) error

	// SetPulseWidth reprograms the high time of every period, in
	// microseconds. The change takes effect immediately.
	SetPulseWidth(pin PWMPin, us uint32) error
}

// Global singleton used by core code.
var pwmDriver PWMDriver

// SetPWMDriver is called by target-specific code to register its driver.
func SetPWMDriver(d PWMDriver) {
	pwmDriver = d
}

// MustPWM returns the configured driver or panics if missing.
func MustPWM() PWMDriver {
	if pwmDriver == nil {
		panic("PWM driver not configured")
	}
	return pwmDriver
}

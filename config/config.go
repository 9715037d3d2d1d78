// Package config holds the board wiring and loop cadences.
package config

import (
	"errors"
	"fmt"
	"time"

	"rcbridge/core"
)

// ErrInvalidConfig wraps every validation failure
var ErrInvalidConfig = errors.New("invalid config")

// InputPins are the receiver lines, one per channel
type InputPins struct {
	Throttle    uint32 `yaml:"throttle"`
	Steering    uint32 `yaml:"steering"`
	Ch5         uint32 `yaml:"ch5"`
	Ch6         uint32 `yaml:"ch6"`
	Speedometer uint32 `yaml:"speedometer"`
}

// Pins maps every peripheral to its hardware line or channel
type Pins struct {
	Inputs      InputPins `yaml:"inputs"`
	ThrottleOut uint32    `yaml:"throttle_out"`
	SteeringOut uint32    `yaml:"steering_out"`
	LED         uint32    `yaml:"led"`
	SensorLeft  uint32    `yaml:"sensor_left"`  // ADC channel
	SensorRight uint32    `yaml:"sensor_right"` // ADC channel
}

// Timing holds the loop cadences
type Timing struct {
	CommandPeriod   time.Duration `yaml:"command_period"`   // Command intake cadence
	TelemetryPeriod time.Duration `yaml:"telemetry_period"` // Telemetry window
	PatternDuration time.Duration `yaml:"pattern_duration"` // One full LED pattern
	PWMFrequency    uint32        `yaml:"pwm_frequency"`    // Output carrier (Hz)
}

// Serial is the host link
type Serial struct {
	Device      string        `yaml:"device"`
	Baud        int           `yaml:"baud"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

// Linux holds settings only the Linux target reads
type Linux struct {
	Chip         string `yaml:"chip"`          // gpiochip for receiver lines and the LED
	I2CBus       string `yaml:"i2c_bus"`       // Bus of the ADS1115, "" for the first one
	ADCAddress   uint16 `yaml:"adc_address"`   // ADS1115 I2C address
	LEDActiveLow bool   `yaml:"led_active_low"`
}

// Config is the complete controller configuration
type Config struct {
	Pins   Pins   `yaml:"pins"`
	Timing Timing `yaml:"timing"`
	Serial Serial `yaml:"serial"`
	Linux  Linux  `yaml:"linux"`
}

// Default returns the wiring of the reference companion board
func Default() *Config {
	return &Config{
		Pins: Pins{
			Inputs: InputPins{
				Throttle:    25,
				Steering:    26,
				Ch5:         27,
				Ch6:         14,
				Speedometer: 17,
			},
			ThrottleOut: 32,
			SteeringOut: 33,
			LED:         16,
			SensorLeft:  6,
			SensorRight: 7,
		},
		Timing: Timing{
			CommandPeriod:   10 * time.Millisecond,
			TelemetryPeriod: 30 * time.Millisecond,
			PatternDuration: core.DefaultPatternDuration,
			PWMFrequency:    core.DefaultPWMFrequency,
		},
		Serial: Serial{
			Device:      "/dev/ttyAMA0",
			Baud:        2000000,
			ReadTimeout: 10 * time.Millisecond,
		},
		Linux: Linux{
			Chip:       "gpiochip0",
			ADCAddress: 0x48,
		},
	}
}

// InputArray returns the receiver lines indexed by core.Channel
func (p Pins) InputArray() [core.NumChannels]core.GPIOPin {
	return [core.NumChannels]core.GPIOPin{
		core.ChannelThrottle:    core.GPIOPin(p.Inputs.Throttle),
		core.ChannelSteering:    core.GPIOPin(p.Inputs.Steering),
		core.ChannelCh5:         core.GPIOPin(p.Inputs.Ch5),
		core.ChannelCh6:         core.GPIOPin(p.Inputs.Ch6),
		core.ChannelSpeedometer: core.GPIOPin(p.Inputs.Speedometer),
	}
}

// OutputArray returns the PWM outputs indexed by core.Actuator
func (p Pins) OutputArray() [core.NumActuators]core.PWMPin {
	return [core.NumActuators]core.PWMPin{
		core.ActuatorThrottle: core.PWMPin(p.ThrottleOut),
		core.ActuatorSteering: core.PWMPin(p.SteeringOut),
	}
}

// Validate checks cadences and that no line is used twice
func (c *Config) Validate() error {
	if c.Timing.CommandPeriod <= 0 {
		return fmt.Errorf("%w: command_period must be positive", ErrInvalidConfig)
	}
	if c.Timing.TelemetryPeriod <= 0 {
		return fmt.Errorf("%w: telemetry_period must be positive", ErrInvalidConfig)
	}
	if c.Timing.PatternDuration < core.PatternSlots*time.Millisecond {
		return fmt.Errorf("%w: pattern_duration %v too short", ErrInvalidConfig, c.Timing.PatternDuration)
	}
	if c.Timing.PWMFrequency == 0 || c.Timing.PWMFrequency > core.TimerFreq/core.PulseMaxUS {
		return fmt.Errorf("%w: pwm_frequency %d Hz cannot carry a %dus pulse", ErrInvalidConfig, c.Timing.PWMFrequency, core.PulseMaxUS)
	}
	if c.Serial.Baud <= 0 {
		return fmt.Errorf("%w: baud must be positive", ErrInvalidConfig)
	}

	used := make(map[uint32]string)
	lines := []struct {
		name string
		pin  uint32
	}{
		{"inputs.throttle", c.Pins.Inputs.Throttle},
		{"inputs.steering", c.Pins.Inputs.Steering},
		{"inputs.ch5", c.Pins.Inputs.Ch5},
		{"inputs.ch6", c.Pins.Inputs.Ch6},
		{"inputs.speedometer", c.Pins.Inputs.Speedometer},
		{"throttle_out", c.Pins.ThrottleOut},
		{"steering_out", c.Pins.SteeringOut},
		{"led", c.Pins.LED},
	}
	for _, l := range lines {
		if other, ok := used[l.pin]; ok {
			return fmt.Errorf("%w: pin %d used by both %s and %s", ErrInvalidConfig, l.pin, other, l.name)
		}
		used[l.pin] = l.name
	}
	if c.Pins.SensorLeft == c.Pins.SensorRight {
		return fmt.Errorf("%w: both sensors on ADC channel %d", ErrInvalidConfig, c.Pins.SensorLeft)
	}
	return nil
}

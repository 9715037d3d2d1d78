// Distance sensor sampling
package core

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// SensorReading holds the raw magnitudes of the two distance sensors.
// No filtering or calibration is applied.
type SensorReading struct {
	Left  uint32
	Right uint32
}

// DistanceSensors samples the left and right distance sensors. Refresh runs
// on the command intake worker while Reading is called from telemetry, so the
// values are kept in atomics.
type DistanceSensors struct {
	driver ADCDriver
	left   ADCChannelID
	right  ADCChannelID

	leftValue  atomic.Uint32
	rightValue atomic.Uint32
	errCount   atomic.Uint32
}

// NewDistanceSensors creates the sensor pair on the given ADC channels
func NewDistanceSensors(d ADCDriver, left, right ADCChannelID) *DistanceSensors {
	return &DistanceSensors{driver: d, left: left, right: right}
}

// Init configures both ADC channels
func (s *DistanceSensors) Init() error {
	if err := s.driver.ConfigureChannel(s.left); err != nil {
		return fmt.Errorf("configure left sensor channel %d: %w", s.left, err)
	}
	if err := s.driver.ConfigureChannel(s.right); err != nil {
		return fmt.Errorf("configure right sensor channel %d: %w", s.right, err)
	}
	return nil
}

// Refresh samples both sensors. A failed read keeps the previous value of
// that sensor and is reported in the returned error.
func (s *DistanceSensors) Refresh() error {
	return errors.Join(
		s.sample(s.left, &s.leftValue),
		s.sample(s.right, &s.rightValue),
	)
}

func (s *DistanceSensors) sample(ch ADCChannelID, dst *atomic.Uint32) error {
	v, err := s.driver.ReadRaw(ch)
	if err != nil {
		s.errCount.Add(1)
		return fmt.Errorf("read ADC channel %d: %w", ch, err)
	}
	dst.Store(uint32(v))
	return nil
}

// Reading returns the last sampled values
func (s *DistanceSensors) Reading() SensorReading {
	return SensorReading{
		Left:  s.leftValue.Load(),
		Right: s.rightValue.Load(),
	}
}

// Errors returns the number of failed samples since startup
func (s *DistanceSensors) Errors() uint32 {
	return s.errCount.Load()
}

// Status LED time-division scheduler
package core

import (
	"context"
	"image/color"
	"time"
)

// PatternSlots is the number of time slots in one blink pattern
const PatternSlots = 8

// DefaultPatternDuration is the time one full pattern takes
const DefaultPatternDuration = time.Second

var black = color.RGBA{A: 0xff}

// LEDScheduler steps through the indicator pattern, one slot per tick.
// It runs independently of status changes: a new descriptor shows up on the
// next tick.
type LEDScheduler struct {
	indicator *Indicator
	led       LEDDriver
	phase     uint8
}

// NewLEDScheduler creates a scheduler showing indicator on led
func NewLEDScheduler(indicator *Indicator, led LEDDriver) *LEDScheduler {
	return &LEDScheduler{indicator: indicator, led: led}
}

// Phase returns the slot the next Step will render
func (s *LEDScheduler) Phase() uint8 {
	return s.phase
}

// Step renders the current slot and advances to the next one
func (s *LEDScheduler) Step() error {
	desc := s.indicator.Descriptor()
	c := black
	if desc.On(s.phase) {
		c = desc.Color()
	}
	s.phase = (s.phase + 1) % PatternSlots
	return s.led.WriteColor(c)
}

// Off switches the LED off without touching the phase
func (s *LEDScheduler) Off() error {
	return s.led.WriteColor(black)
}

// SlotPeriod returns the tick period for a pattern lasting patternDuration
func SlotPeriod(patternDuration time.Duration) time.Duration {
	if patternDuration <= 0 {
		patternDuration = DefaultPatternDuration
	}
	return patternDuration / PatternSlots
}

// Run calls Step every slot until ctx is done
func (s *LEDScheduler) Run(ctx context.Context, slot time.Duration) {
	ticker := time.NewTicker(slot)
	defer ticker.Stop()

	for {
		if err := s.Step(); err != nil {
			RecordTiming(EvtDriverError, 0, GetTime(), 0, 0)
			DebugAsync("led: " + err.Error())
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

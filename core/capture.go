package core

import (
	"fmt"
	"sync/atomic"
)

// EdgeEvent is one transition on a monitored receiver line
type EdgeEvent struct {
	Channel Channel
	Rising  bool
	Time    uint32 // Edge timestamp (us)
}

// EdgeCapture turns line transitions into pulse widths in an EdgeTimingStore.
type EdgeCapture struct {
	store *EdgeTimingStore

	// pins[ch] is the hardware line feeding channel ch
	pins [NumChannels]GPIOPin

	// active gates the line shim; cleared when Install fails part way
	active atomic.Bool
}

// NewEdgeCapture creates a capture handler writing into store
func NewEdgeCapture(store *EdgeTimingStore) *EdgeCapture {
	return &EdgeCapture{store: store}
}

// OnTransition records one edge on ch. A rising edge stores t, a falling edge
// completes the pulse.
func (c *EdgeCapture) OnTransition(ch Channel, level bool, t uint32) {
	if level {
		c.store.RecordRising(ch, t)
		return
	}
	if !c.store.RecordFalling(ch, t) {
		RecordTiming(EvtWrapDrop, uint8(ch), t, 0, 0)
	}
}

// HandleEvent is OnTransition for a typed event
func (c *EdgeCapture) HandleEvent(evt EdgeEvent) {
	c.OnTransition(evt.Channel, evt.Rising, evt.Time)
}

// Install subscribes the capture handler to the line of every channel.
// pins is indexed by Channel. If a line fails, the lines already subscribed
// stay configured in the driver (GPIODriver has no unsubscribe) but their
// edges are ignored from then on; the platform releases them on close.
func (c *EdgeCapture) Install(d GPIODriver, pins [NumChannels]GPIOPin) error {
	c.active.Store(false)
	c.pins = pins
	c.active.Store(true)
	for ch, pin := range pins {
		if err := d.ConfigureEdgeInput(pin, c.onLine); err != nil {
			c.active.Store(false)
			return fmt.Errorf("capture %s on pin %d: %w", Channel(ch), pin, err)
		}
	}
	return nil
}

// onLine is the shim the platform calls; it resolves the line to its channel
// with a linear scan over the fixed pin table.
func (c *EdgeCapture) onLine(pin GPIOPin, level bool, t uint32) {
	if !c.active.Load() {
		return
	}
	for ch := range c.pins {
		if c.pins[ch] == pin {
			c.OnTransition(Channel(ch), level, t)
			return
		}
	}
}

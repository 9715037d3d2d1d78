// Device status and its LED encoding
package core

import (
	"image/color"
	"sync"
	"sync/atomic"
)

// Status is the operating mode shown on the indicator LED
type Status uint8

const (
	StatusDisconnected Status = iota
	StatusRxError
	StatusCalibrating
	StatusHostInit
	StatusHostUser
	StatusHostLocal
	StatusHostDisarmed

	numStatuses
)

// Blink patterns, bit i lights time slot i
const (
	PatternFastBlink  = 0x55
	PatternSlowBlink  = 0x33
	PatternShortFlash = 0x18
)

func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusRxError:
		return "rx-error"
	case StatusCalibrating:
		return "calibrating"
	case StatusHostInit:
		return "host-init"
	case StatusHostUser:
		return "host-user"
	case StatusHostLocal:
		return "host-local"
	case StatusHostDisarmed:
		return "host-disarmed"
	default:
		return "unknown"
	}
}

// Descriptor is a color plus an 8-slot cyclic on/off pattern
type Descriptor struct {
	R, G, B uint8
	Pattern uint8
}

// Color returns the descriptor color
func (d Descriptor) Color() color.RGBA {
	return color.RGBA{R: d.R, G: d.G, B: d.B, A: 0xff}
}

// On reports whether the color is shown during slot (0..7, wrapping).
// Slot 0 is the least significant bit.
func (d Descriptor) On(slot uint8) bool {
	return d.Pattern>>(slot%PatternSlots)&0x01 != 0
}

func (d Descriptor) pack() uint32 {
	return uint32(d.R)<<24 | uint32(d.G)<<16 | uint32(d.B)<<8 | uint32(d.Pattern)
}

func unpackDescriptor(v uint32) Descriptor {
	return Descriptor{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), Pattern: uint8(v)}
}

var statusTable = [numStatuses]Descriptor{
	StatusDisconnected: {R: 0xff, Pattern: PatternFastBlink},
	StatusRxError:      {R: 0xff, Pattern: PatternSlowBlink},
	StatusCalibrating:  {R: 0xff, G: 0xff, B: 0xff, Pattern: PatternFastBlink},
	StatusHostInit:     {R: 0xff, Pattern: PatternShortFlash},
	StatusHostUser:     {G: 0xff, Pattern: PatternShortFlash},
	StatusHostLocal:    {B: 0xff, Pattern: PatternShortFlash},
	StatusHostDisarmed: {G: 0xff, Pattern: PatternFastBlink},
}

// DescriptorFor returns the LED encoding of s; unknown codes are dark
func DescriptorFor(s Status) Descriptor {
	if s >= numStatuses {
		return Descriptor{}
	}
	return statusTable[s]
}

// StatusFromHost maps a host status word to a status code.
// Matching is exact and case-sensitive.
func StatusFromHost(word string) (Status, bool) {
	switch word {
	case "init":
		return StatusHostInit, true
	case "disarmed":
		return StatusHostDisarmed, true
	case "user":
		return StatusHostUser, true
	case "local":
		return StatusHostLocal, true
	}
	return 0, false
}

// Indicator holds the current status and the LED descriptor derived from it.
// SetStatus is called from both periodic workers; the LED scheduler only
// loads the packed descriptor.
type Indicator struct {
	mu     sync.Mutex
	status Status
	desc   atomic.Uint32
}

// NewIndicator starts in StatusDisconnected
func NewIndicator() *Indicator {
	ind := &Indicator{status: StatusDisconnected}
	ind.desc.Store(DescriptorFor(StatusDisconnected).pack())
	return ind
}

// SetStatus switches to s and rewrites the descriptor. Setting the current
// status again changes nothing. Returns whether a transition happened.
func (ind *Indicator) SetStatus(s Status) bool {
	ind.mu.Lock()
	prev := ind.status
	if s == prev {
		ind.mu.Unlock()
		return false
	}
	ind.status = s
	ind.desc.Store(DescriptorFor(s).pack())
	ind.mu.Unlock()

	RecordTiming(EvtStatusChange, uint8(s), GetTime(), uint32(prev), uint32(s))
	DebugAsync("status: " + prev.String() + " -> " + s.String())
	return true
}

// Status returns the current status code
func (ind *Indicator) Status() Status {
	ind.mu.Lock()
	defer ind.mu.Unlock()
	return ind.status
}

// Descriptor returns the current LED descriptor
func (ind *Indicator) Descriptor() Descriptor {
	return unpackDescriptor(ind.desc.Load())
}

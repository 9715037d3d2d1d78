// Pulse timing capture for the radio receiver inputs
package core

// Channel identifies one receiver input
type Channel uint8

const (
	ChannelThrottle Channel = iota
	ChannelSteering
	ChannelCh5
	ChannelCh6
	ChannelSpeedometer

	NumChannels = 5
)

// LivenessChannel is the input whose pulses stand in for the whole radio
// link when deciding whether the receiver is still talking to us.
const LivenessChannel = ChannelThrottle

var channelNames = [NumChannels]string{"throttle", "steering", "ch5", "ch6", "speedometer"}

func (c Channel) String() string {
	if c < NumChannels {
		return channelNames[c]
	}
	return "unknown"
}

// EdgeTiming is the capture record of one channel
type EdgeTiming struct {
	Rising uint32 // Timestamp of the last rising edge (us)
	Width  uint32 // Last completed pulse width (us), 0 if none since the last clear
}

// EdgeTimingStore holds the capture records of every channel.
// All channels share one critical section with the edge handlers; each
// method holds it for a single read-modify-write only.
type EdgeTimingStore struct {
	timings [NumChannels]EdgeTiming
	drops   uint32 // Falling edges discarded by the wrap guard
}

// NewEdgeTimingStore returns a store with every record zeroed
func NewEdgeTimingStore() *EdgeTimingStore {
	return &EdgeTimingStore{}
}

// RecordRising stores the rising edge timestamp for ch
func (s *EdgeTimingStore) RecordRising(ch Channel, t uint32) {
	if ch >= NumChannels {
		return
	}
	state := disableInterrupts()
	s.timings[ch].Rising = t
	restoreInterrupts(state)
}

// RecordFalling completes the pulse on ch. A falling edge older than the
// stored rising edge means the timer wrapped in between; the sample is
// dropped, the previous width is kept and false is returned.
func (s *EdgeTimingStore) RecordFalling(ch Channel, t uint32) bool {
	if ch >= NumChannels {
		return false
	}
	state := disableInterrupts()
	rec := &s.timings[ch]
	ok := t >= rec.Rising
	if ok {
		rec.Width = t - rec.Rising
	} else {
		s.drops++
	}
	restoreInterrupts(state)
	return ok
}

// ReadAndClear returns the last completed width on ch and resets it to zero.
// The rising timestamp is kept so a pulse in flight still completes.
func (s *EdgeTimingStore) ReadAndClear(ch Channel) uint32 {
	if ch >= NumChannels {
		return 0
	}
	state := disableInterrupts()
	width := s.timings[ch].Width
	s.timings[ch].Width = 0
	restoreInterrupts(state)
	return width
}

// DrainAll reads and clears the width of every channel in one critical
// section, so no edge can land between two channels of the same report.
func (s *EdgeTimingStore) DrainAll(widths *[NumChannels]uint32) {
	state := disableInterrupts()
	for i := range s.timings {
		widths[i] = s.timings[i].Width
		s.timings[i].Width = 0
	}
	restoreInterrupts(state)
}

// ClearAll zeroes every record, rising timestamps included
func (s *EdgeTimingStore) ClearAll() {
	state := disableInterrupts()
	s.timings = [NumChannels]EdgeTiming{}
	restoreInterrupts(state)
}

// Snapshot returns a consistent copy of the record for ch
func (s *EdgeTimingStore) Snapshot(ch Channel) EdgeTiming {
	if ch >= NumChannels {
		return EdgeTiming{}
	}
	state := disableInterrupts()
	rec := s.timings[ch]
	restoreInterrupts(state)
	return rec
}

// Drops returns how many falling edges the wrap guard has discarded
func (s *EdgeTimingStore) Drops() uint32 {
	state := disableInterrupts()
	n := s.drops
	restoreInterrupts(state)
	return n
}

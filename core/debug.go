package core

import (
	"strconv"
	"sync/atomic"
)

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// TimingEvent captures a noteworthy event for post-mortem analysis
type TimingEvent struct {
	EventType uint8  // Event type code
	Channel   uint8  // Channel, actuator or status involved
	Clock     uint32 // System clock at event
	Value1    uint32 // Context-dependent value
	Value2    uint32 // Context-dependent value
}

// Event type codes
const (
	EvtWrapDrop     = 1 // Falling edge discarded by the wrap guard
	EvtSignalLoss   = 2 // Liveness channel silent for a telemetry window
	EvtStatusChange = 3 // Status code transition (Value1=from, Value2=to)
	EvtDriverError  = 4 // Peripheral driver returned an error
	EvtBadCommand   = 5 // Host line failed to parse
)

const (
	TimingRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the platform debug sink, a no-op until SetDebugWriter
	debugPrintln atomic.Pointer[DebugWriter]

	// debugEnabled gates every debug output path
	debugEnabled atomic.Bool

	// Event ring buffer (non-blocking, for post-mortem)
	timingRing     [TimingRingSize]TimingEvent
	timingRingHead uint8        // Next write position
	timingEnabled  bool  = true // Always capture events

	// Async debug output channel
	debugChan chan string

	// Pending ring dump for the async worker
	dumpRequest chan struct{}
)

// SetDebugWriter sets the platform-specific debug output function.
// On boards where the only serial port carries telemetry, leave it unset.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln.Store(&writer)
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled.Store(enabled)
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled.Load()
}

func writeDebug(msg string) {
	if w := debugPrintln.Load(); w != nil && *w != nil {
		(*w)(msg)
	}
}

// InitAsyncDebug starts the async debug output goroutine
// Call this from main() after SetDebugWriter
func InitAsyncDebug() {
	debugChan = make(chan string, 16) // Buffer 16 messages
	dumpRequest = make(chan struct{}, 1)
	go debugOutputWorker(debugChan, dumpRequest)
}

// debugOutputWorker runs in background, drains debug channel and serves
// ring dump requests
func debugOutputWorker(msgs <-chan string, dumps <-chan struct{}) {
	for {
		select {
		case msg := <-msgs:
			DebugPrintln(msg)
		case <-dumps:
			DumpTimingRing()
		}
	}
}

// DebugPrintln writes a debug message using the platform-specific writer
// Blocks if debug is enabled (use DebugAsync for non-blocking)
func DebugPrintln(msg string) {
	if IsDebugEnabled() {
		writeDebug(msg)
	}
}

// DebugAsync queues a debug message for async output (non-blocking)
// Returns immediately even if channel is full (drops message)
func DebugAsync(msg string) {
	if !IsDebugEnabled() || debugChan == nil {
		return
	}
	select {
	case debugChan <- msg:
	default:
		// Channel full, drop message (non-blocking)
	}
}

// RequestTimingDump asks the async worker to dump the event ring. It never
// blocks; a dump already pending absorbs the request.
func RequestTimingDump() {
	if !IsDebugEnabled() || dumpRequest == nil {
		return
	}
	select {
	case dumpRequest <- struct{}{}:
	default:
	}
}

// RecordTiming captures an event in the ring buffer.
// Safe from edge handlers: no allocation, one short critical section.
func RecordTiming(eventType, channel uint8, clock, value1, value2 uint32) {
	if !timingEnabled {
		return
	}
	state := disableInterrupts()
	idx := timingRingHead
	timingRing[idx] = TimingEvent{
		EventType: eventType,
		Channel:   channel,
		Clock:     clock,
		Value1:    value1,
		Value2:    value2,
	}
	timingRingHead = (idx + 1) % TimingRingSize
	restoreInterrupts(state)
}

// TimingEvents returns the recorded events, oldest first
func TimingEvents() []TimingEvent {
	state := disableInterrupts()
	ring := timingRing
	start := timingRingHead
	restoreInterrupts(state)

	events := make([]TimingEvent, 0, TimingRingSize)
	for i := uint8(0); i < TimingRingSize; i++ {
		evt := ring[(start+i)%TimingRingSize]
		if evt.EventType == 0 {
			continue // Empty slot
		}
		events = append(events, evt)
	}
	return events
}

func eventName(evtType uint8) string {
	switch evtType {
	case EvtWrapDrop:
		return "WRAP_DROP"
	case EvtSignalLoss:
		return "SIGNAL_LOSS!"
	case EvtStatusChange:
		return "STATUS"
	case EvtDriverError:
		return "DRIVER_ERR"
	case EvtBadCommand:
		return "BAD_CMD"
	default:
		return "UNKNOWN"
	}
}

// DumpTimingRing writes the event ring through the debug writer on the
// calling goroutine. Loop code uses RequestTimingDump instead.
func DumpTimingRing() {
	if !IsDebugEnabled() {
		return
	}

	writeDebug("[TIMING] === Event Ring Dump ===")
	for _, evt := range TimingEvents() {
		writeDebug("[TIMING] " + eventName(evt.EventType) +
			" ch=" + strconv.Itoa(int(evt.Channel)) +
			" clock=" + strconv.FormatUint(uint64(evt.Clock), 10) +
			" v1=" + strconv.FormatUint(uint64(evt.Value1), 10) +
			" v2=" + strconv.FormatUint(uint64(evt.Value2), 10))
	}
	writeDebug("[TIMING] === End Dump ===")
}

// ClearTimingRing clears the event buffer
func ClearTimingRing() {
	state := disableInterrupts()
	for i := range timingRing {
		timingRing[i] = TimingEvent{}
	}
	timingRingHead = 0
	restoreInterrupts(state)
}

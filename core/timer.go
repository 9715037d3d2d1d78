package core

import (
	"sync/atomic"
	"time"
)

// TimerFreq is the tick rate of GetTime: one tick per microsecond.
const TimerFreq = 1000000

var (
	bootTime = time.Now()

	// timeSource returns microseconds since boot. Tests swap it out with
	// SetTimeSource.
	timeSource atomic.Pointer[func() uint64]
)

func init() {
	src := monotonicMicros
	timeSource.Store(&src)
}

func monotonicMicros() uint64 {
	return uint64(time.Since(bootTime) / time.Microsecond)
}

// GetUptime returns 64-bit uptime in microseconds
func GetUptime() uint64 {
	return (*timeSource.Load())()
}

// GetTime returns the current time in microseconds, truncated to 32 bits.
// It wraps roughly every 71 minutes; pulse capture relies on that wrap being
// detectable as a falling edge that is older than its rising edge.
func GetTime() uint32 {
	return uint32(GetUptime())
}

// UptimeMillis returns milliseconds since boot
func UptimeMillis() uint64 {
	return GetUptime() / 1000
}

// SetTimeSource replaces the clock used by GetTime and GetUptime and returns
// a function restoring the previous one.
func SetTimeSource(src func() uint64) (restore func()) {
	prev := timeSource.Swap(&src)
	return func() {
		timeSource.Store(prev)
	}
}

// Package protocol implements the line-oriented host link: one command line
// from the host, one telemetry line from the device per window.
package protocol

// Version represents the rcbridge firmware version
const Version = "0.1.0"

// Protocol constants
const (
	LineBufferSize = 100 // Command line buffer, terminator included
	TelemetryMax   = 96  // Longest telemetry line: 8 fields of 10 digits, separators, newline

	// ChannelFields is the number of receiver widths in a telemetry line
	ChannelFields = 5
	// NoSignal marks every field of a telemetry line sent while the radio link is down
	NoSignal = -1

	// TimestampWindowMS bounds the telemetry timestamp
	TimestampWindowMS = 50000

	NeutralPulseUS = 1500
)

// WindowTimestamp folds a millisecond uptime into the telemetry window
func WindowTimestamp(uptimeMS uint64) uint32 {
	return uint32(uptimeMS % TimestampWindowMS)
}

package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

// ErrMalformedTelemetry is returned for a device line that does not decode
var ErrMalformedTelemetry = errors.New("malformed telemetry")

const telemetryFields = 1 + ChannelFields + 2

// Telemetry is one device report
type Telemetry struct {
	Timestamp uint32                // Milliseconds, folded into TimestampWindowMS
	Widths    [ChannelFields]uint32 // throttle, steering, ch5, ch6, speedometer (us)
	Left      uint32                // Left distance sensor, raw
	Right     uint32                // Right distance sensor, raw

	// NoSignal is set when the liveness channel saw no pulse in the window;
	// every other field is then reported as NoSignal on the wire.
	NoSignal bool
}

// AppendTelemetry appends the wire form of t, newline included
func AppendTelemetry(dst []byte, t Telemetry) []byte {
	dst = strconv.AppendUint(dst, uint64(t.Timestamp), 10)
	if t.NoSignal {
		for i := 1; i < telemetryFields; i++ {
			dst = append(dst, ',')
			dst = strconv.AppendInt(dst, NoSignal, 10)
		}
		return append(dst, '\n')
	}
	for _, w := range t.Widths {
		dst = append(dst, ',')
		dst = strconv.AppendUint(dst, uint64(w), 10)
	}
	dst = append(dst, ',')
	dst = strconv.AppendUint(dst, uint64(t.Left), 10)
	dst = append(dst, ',')
	dst = strconv.AppendUint(dst, uint64(t.Right), 10)
	return append(dst, '\n')
}

// ParseTelemetry decodes one telemetry line, with or without its newline
func ParseTelemetry(line []byte) (Telemetry, error) {
	var t Telemetry
	line = bytes.TrimRight(line, "\r\n")
	fields := bytes.Split(line, []byte{','})
	if len(fields) != telemetryFields {
		return t, fmt.Errorf("%w: %d fields in %q", ErrMalformedTelemetry, len(fields), line)
	}

	ts, err := strconv.ParseUint(string(fields[0]), 10, 32)
	if err != nil {
		return t, fmt.Errorf("%w: timestamp: %v", ErrMalformedTelemetry, err)
	}
	t.Timestamp = uint32(ts)

	if isNoSignal(fields[1:]) {
		t.NoSignal = true
		return t, nil
	}

	values := make([]uint32, 0, telemetryFields-1)
	for i, f := range fields[1:] {
		v, err := strconv.ParseUint(string(f), 10, 32)
		if err != nil {
			return t, fmt.Errorf("%w: field %d: %v", ErrMalformedTelemetry, i+1, err)
		}
		values = append(values, uint32(v))
	}
	copy(t.Widths[:], values[:ChannelFields])
	t.Left = values[ChannelFields]
	t.Right = values[ChannelFields+1]
	return t, nil
}

func isNoSignal(fields [][]byte) bool {
	marker := strconv.Itoa(NoSignal)
	for _, f := range fields {
		if string(f) != marker {
			return false
		}
	}
	return true
}

package controller

import (
	"context"
	"io"
	"time"

	"rcbridge/core"
	"rcbridge/protocol"
)

// Telemetry reports the captured pulse widths and sensor values once per
// window and flags radio signal loss.
type Telemetry struct {
	store     *core.EdgeTimingStore
	sensors   *core.DistanceSensors
	indicator *core.Indicator
	out       io.Writer

	buf    []byte
	widths [core.NumChannels]uint32
	last   protocol.Telemetry
	lost   bool
}

// NewTelemetry creates the telemetry worker writing lines to out
func NewTelemetry(store *core.EdgeTimingStore, sensors *core.DistanceSensors, indicator *core.Indicator, out io.Writer) *Telemetry {
	return &Telemetry{
		store:     store,
		sensors:   sensors,
		indicator: indicator,
		out:       out,
		buf:       make([]byte, 0, protocol.TelemetryMax),
	}
}

// Emit closes the current window and writes one line. The timestamp is taken
// before the widths are drained. No pulse on the liveness channel during the
// window means the radio link is down: the sentinel line is sent and the
// indicator switches to rx-error. Entering loss queues a ring dump for the
// debug worker; Emit itself never writes debug output.
func (t *Telemetry) Emit() error {
	rep := protocol.Telemetry{Timestamp: protocol.WindowTimestamp(core.UptimeMillis())}
	t.store.DrainAll(&t.widths)

	if t.widths[core.LivenessChannel] == 0 {
		rep.NoSignal = true
		t.indicator.SetStatus(core.StatusRxError)
		if !t.lost {
			t.lost = true
			core.RecordTiming(core.EvtSignalLoss, uint8(core.LivenessChannel), core.GetTime(), rep.Timestamp, 0)
			core.RequestTimingDump()
		}
	} else {
		t.lost = false
		rep.Widths = t.widths
		reading := t.sensors.Reading()
		rep.Left = reading.Left
		rep.Right = reading.Right
	}

	t.last = rep
	t.buf = protocol.AppendTelemetry(t.buf[:0], rep)
	_, err := t.out.Write(t.buf)
	return err
}

// Last returns the most recent report. Only valid on the goroutine calling
// Emit.
func (t *Telemetry) Last() protocol.Telemetry {
	return t.last
}

// SignalLost reports whether the last window had no liveness pulse
func (t *Telemetry) SignalLost() bool {
	return t.lost
}

// Run emits every period until ctx is done
func (t *Telemetry) Run(ctx context.Context, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if err := t.Emit(); err != nil {
			core.RecordTiming(core.EvtDriverError, 0, core.GetTime(), 0, 0)
			core.DebugAsync("telemetry: " + err.Error())
		}
	}
}

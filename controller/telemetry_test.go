package controller

import (
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"rcbridge/core"
)

func TestTelemetryEmit(t *testing.T) {
	restore := core.SetTimeSource(func() uint64 { return 123456789 })
	defer restore()

	b := newBoard()
	out := &syncWriter{}
	c := newTestController(b, out, &syncSource{})
	if err := c.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	b.adc[6] = 311
	b.adc[7] = 402
	c.Sensors.Refresh()

	b.pulse(25, 1000, 2500) // throttle
	b.pulse(26, 3000, 4480) // steering
	b.pulse(27, 5000, 6000) // ch5
	b.pulse(17, 7000, 7040) // speedometer

	if err := c.Telemetry.Emit(); err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	want := "23456,1500,1480,1000,0,40,311,402\n"
	if got := out.String(); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	// The window was drained: nothing new on throttle means signal loss
	if err := c.Telemetry.Emit(); err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if lines[1] != "23456,-1,-1,-1,-1,-1,-1,-1" {
		t.Errorf("Expected sentinel line, got %q", lines[1])
	}
}

func TestTelemetrySignalLoss(t *testing.T) {
	core.ClearTimingRing()
	defer core.ClearTimingRing()

	b := newBoard()
	out := &syncWriter{}
	c := newTestController(b, out, &syncSource{})
	c.Start()
	c.Indicator.SetStatus(core.StatusHostUser)

	// Steering alone does not keep the link alive
	b.pulse(26, 0, 1500)
	c.Telemetry.Emit()
	c.Telemetry.Emit()

	if !c.Telemetry.SignalLost() || !c.Telemetry.Last().NoSignal {
		t.Fatal("Expected signal loss")
	}
	if c.Indicator.Status() != core.StatusRxError {
		t.Errorf("Expected rx-error, got %s", c.Indicator.Status())
	}

	losses := 0
	for _, evt := range core.TimingEvents() {
		if evt.EventType == core.EvtSignalLoss {
			losses++
		}
	}
	if losses != 1 {
		t.Errorf("Expected one signal loss event for the outage, got %d", losses)
	}

	// Throttle pulses again: values are reported, status waits for the host
	b.pulse(25, 10000, 11500)
	c.Telemetry.Emit()
	if c.Telemetry.SignalLost() || c.Telemetry.Last().Widths[core.ChannelThrottle] != 1500 {
		t.Errorf("Expected recovered report, got %+v", c.Telemetry.Last())
	}
	if c.Indicator.Status() != core.StatusRxError {
		t.Errorf("Status must stay rx-error until the host sends a word, got %s", c.Indicator.Status())
	}
}

func TestTelemetryLossDumpIsDeferred(t *testing.T) {
	core.ClearTimingRing()
	defer core.ClearTimingRing()
	for i := uint32(0); i < core.TimingRingSize; i++ {
		core.RecordTiming(core.EvtWrapDrop, uint8(core.ChannelSpeedometer), i, 0, 0)
	}

	// A writer that cannot make progress until released, like a UART
	// with a full FIFO
	release := make(chan struct{})
	var mu sync.Mutex
	var lines []string
	core.SetDebugWriter(func(s string) {
		<-release
		mu.Lock()
		lines = append(lines, s)
		mu.Unlock()
	})
	core.SetDebugEnabled(true)
	defer func() {
		core.SetDebugEnabled(false)
		core.SetDebugWriter(func(string) {})
	}()
	core.InitAsyncDebug()

	b := newBoard()
	out := &syncWriter{}
	c := newTestController(b, out, &syncSource{})
	if err := c.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	done := make(chan error, 1)
	start := time.Now()
	go func() { done <- c.Telemetry.Emit() }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Emit failed: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on the debug writer")
	}
	t.Logf("Emit on loss transition took %v", time.Since(start))

	if !strings.HasSuffix(out.String(), ",-1,-1,-1,-1,-1,-1,-1\n") {
		t.Errorf("Expected sentinel line, got %q", out.String())
	}

	close(release)
	deadline := time.Now().Add(time.Second)
	for {
		mu.Lock()
		dumped := len(lines) > 0 && strings.Contains(strings.Join(lines, "\n"), "SIGNAL_LOSS")
		mu.Unlock()
		if dumped {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Ring dump never reached the debug writer")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestTelemetryLossSilentWhenDebugDisabled(t *testing.T) {
	core.ClearTimingRing()
	defer core.ClearTimingRing()

	var writes atomic.Int32
	core.SetDebugWriter(func(string) { writes.Add(1) })
	core.SetDebugEnabled(false)
	defer core.SetDebugWriter(func(string) {})
	core.InitAsyncDebug()

	b := newBoard()
	c := newTestController(b, &syncWriter{}, &syncSource{})
	if err := c.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := c.Telemetry.Emit(); err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	if !c.Telemetry.SignalLost() {
		t.Fatal("Expected signal loss")
	}

	found := false
	for _, evt := range core.TimingEvents() {
		if evt.EventType == core.EvtSignalLoss {
			found = true
		}
	}
	if !found {
		t.Error("Signal loss must still be recorded in the ring")
	}
	if n := writes.Load(); n != 0 {
		t.Errorf("Expected no debug output while disabled, got %d writes", n)
	}
}

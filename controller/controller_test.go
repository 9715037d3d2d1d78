package controller

import (
	"context"
	"image/color"
	"strings"
	"testing"
	"time"

	"rcbridge/config"
	"rcbridge/core"
)

func TestControllerStartOrder(t *testing.T) {
	b := newBoard()
	c := newTestController(b, &syncWriter{}, &syncSource{})
	if err := c.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	want := []string{
		"servo", "servo",
		"edge", "edge", "edge", "edge", "edge",
		"led",
		"adc", "adc",
		"pulse", "pulse",
	}
	if strings.Join(b.ops, " ") != strings.Join(want, " ") {
		t.Errorf("Startup order:\n got  %v\n want %v", b.ops, want)
	}
	if b.colors[0] != (color.RGBA{A: 0xff}) {
		t.Errorf("LED must start dark, got %+v", b.colors[0])
	}
	if b.width(32) != core.PulseNeutralUS || b.width(33) != core.PulseNeutralUS {
		t.Error("Outputs must start at neutral")
	}
	if c.Indicator.Status() != core.StatusDisconnected {
		t.Errorf("Expected disconnected, got %s", c.Indicator.Status())
	}
}

func TestControllerRun(t *testing.T) {
	b := newBoard()
	out := &syncWriter{}
	in := &syncSource{}

	cfg := config.Default()
	cfg.Timing.CommandPeriod = time.Millisecond
	cfg.Timing.TelemetryPeriod = 3 * time.Millisecond
	cfg.Timing.PatternDuration = 8 * time.Millisecond
	c := New(cfg, Hardware{GPIO: b, PWM: b, ADC: b, LED: b, Out: out, In: in})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	in.push("1620,1380,user\n")
	if err := c.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) < 2 {
		t.Fatalf("Expected several telemetry lines, got %q", out.String())
	}
	if !strings.HasSuffix(lines[0], ",-1,-1,-1,-1,-1,-1,-1") {
		t.Errorf("No receiver pulses: expected sentinel line, got %q", lines[0])
	}
	if cmd := c.Intake.Command(); cmd.Throttle != 1620 {
		t.Errorf("Command was not applied: %+v", cmd)
	}

	// Shutdown returns the outputs to neutral and the LED to dark
	if b.width(32) != core.PulseNeutralUS || b.width(33) != core.PulseNeutralUS {
		t.Errorf("Expected neutral outputs after Run, got %d/%d", b.width(32), b.width(33))
	}
	if last := b.colors[len(b.colors)-1]; last != (color.RGBA{A: 0xff}) {
		t.Errorf("Expected LED dark after Run, got %+v", last)
	}
}

func TestRegisteredHardware(t *testing.T) {
	b := newBoard()
	core.SetGPIODriver(b)
	core.SetPWMDriver(b)
	core.SetADCDriver(b)
	core.SetLEDDriver(b)

	hw := RegisteredHardware(&syncWriter{}, &syncSource{})
	if hw.GPIO == nil || hw.PWM == nil || hw.ADC == nil || hw.LED == nil {
		t.Errorf("Missing driver in %+v", hw)
	}
}

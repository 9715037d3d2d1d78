// Package controller wires the capture, output, sensor, status and protocol
// pieces into the running control loop.
package controller

import (
	"context"
	"fmt"
	"io"
	"sync"

	"rcbridge/config"
	"rcbridge/core"
	"rcbridge/protocol"
)

// Hardware is the set of peripherals the controller runs on
type Hardware struct {
	GPIO core.GPIODriver
	PWM  core.PWMDriver
	ADC  core.ADCDriver
	LED  core.LEDDriver

	Out io.Writer           // Telemetry sink
	In  protocol.ByteSource // Host command stream
}

// RegisteredHardware collects the drivers the target registered with core
func RegisteredHardware(out io.Writer, in protocol.ByteSource) Hardware {
	return Hardware{
		GPIO: core.MustGPIO(),
		PWM:  core.MustPWM(),
		ADC:  core.MustADC(),
		LED:  core.MustLED(),
		Out:  out,
		In:   in,
	}
}

// Controller owns every component of the control loop
type Controller struct {
	cfg *config.Config
	hw  Hardware

	Store     *core.EdgeTimingStore
	Capture   *core.EdgeCapture
	Actuators *core.Actuators
	Sensors   *core.DistanceSensors
	Indicator *core.Indicator
	LED       *core.LEDScheduler
	Intake    *Intake
	Telemetry *Telemetry
}

// New builds the components without touching the hardware
func New(cfg *config.Config, hw Hardware) *Controller {
	store := core.NewEdgeTimingStore()
	actuators := core.NewActuators(hw.PWM, cfg.Pins.OutputArray())
	sensors := core.NewDistanceSensors(hw.ADC,
		core.ADCChannelID(cfg.Pins.SensorLeft), core.ADCChannelID(cfg.Pins.SensorRight))
	indicator := core.NewIndicator()

	return &Controller{
		cfg:       cfg,
		hw:        hw,
		Store:     store,
		Capture:   core.NewEdgeCapture(store),
		Actuators: actuators,
		Sensors:   sensors,
		Indicator: indicator,
		LED:       core.NewLEDScheduler(indicator, hw.LED),
		Intake:    NewIntake(hw.In, actuators, sensors, indicator),
		Telemetry: NewTelemetry(store, sensors, indicator, hw.Out),
	}
}

// Start brings the hardware up in order: outputs, input capture, LED,
// sensors, then neutral outputs with the LED dark and status disconnected.
// Output and capture failures are fatal. LED and sensor failures are
// reported and the loop runs without them.
func (c *Controller) Start() error {
	if err := c.Actuators.Init(c.cfg.Timing.PWMFrequency); err != nil {
		return fmt.Errorf("actuators: %w", err)
	}
	if err := c.Capture.Install(c.hw.GPIO, c.cfg.Pins.InputArray()); err != nil {
		return fmt.Errorf("capture: %w", err)
	}
	if err := c.LED.Off(); err != nil {
		c.report("led", err)
	}
	if err := c.Sensors.Init(); err != nil {
		c.report("sensors", err)
	}
	if err := c.Actuators.Neutral(); err != nil {
		return fmt.Errorf("neutral: %w", err)
	}
	c.Indicator.SetStatus(core.StatusDisconnected)
	core.DebugAsync("rcbridge " + protocol.Version + " started")
	return nil
}

// Run starts the hardware, launches the LED and command workers and runs
// telemetry on the calling goroutine until ctx is done. On the way out the
// outputs return to neutral and the LED goes dark.
func (c *Controller) Run(ctx context.Context) error {
	if err := c.Start(); err != nil {
		return err
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		c.LED.Run(ctx, core.SlotPeriod(c.cfg.Timing.PatternDuration))
	}()
	go func() {
		defer wg.Done()
		c.Intake.Run(ctx, c.cfg.Timing.CommandPeriod)
	}()

	c.Telemetry.Run(ctx, c.cfg.Timing.TelemetryPeriod)
	wg.Wait()

	if err := c.Actuators.Neutral(); err != nil {
		c.report("neutral", err)
	}
	if err := c.LED.Off(); err != nil {
		c.report("led", err)
	}
	return nil
}

func (c *Controller) report(what string, err error) {
	core.RecordTiming(core.EvtDriverError, 0, core.GetTime(), 0, 0)
	core.DebugAsync(what + ": " + err.Error())
}

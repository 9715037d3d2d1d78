package controller

import (
	"context"
	"errors"
	"sync"
	"time"

	"rcbridge/core"
	"rcbridge/protocol"
)

// Intake applies host command lines to the outputs and the indicator
type Intake struct {
	reader    *protocol.LineReader
	actuators *core.Actuators
	sensors   *core.DistanceSensors
	indicator *core.Indicator

	mu       sync.Mutex
	cmd      protocol.Command
	rejected uint32
}

// NewIntake creates the command worker reading lines from src
func NewIntake(src protocol.ByteSource, actuators *core.Actuators, sensors *core.DistanceSensors, indicator *core.Indicator) *Intake {
	return &Intake{
		reader:    protocol.NewLineReader(src),
		actuators: actuators,
		sensors:   sensors,
		indicator: indicator,
		cmd:       protocol.NeutralCommand(),
	}
}

// Poll runs one intake cycle: sample the distance sensors, then take at most
// one complete line from the host. A line that does not parse leaves the
// command state and the outputs untouched. An unknown status word still
// forwards the pulse widths.
func (in *Intake) Poll() error {
	var errs []error
	if err := in.sensors.Refresh(); err != nil {
		core.RecordTiming(core.EvtDriverError, 0, core.GetTime(), in.sensors.Errors(), 0)
		errs = append(errs, err)
	}

	line, ok := in.reader.ReadLine()
	if !ok {
		return errors.Join(errs...)
	}

	cmd, err := protocol.ParseCommand(line)
	if err != nil {
		in.mu.Lock()
		in.rejected++
		n := in.rejected
		in.mu.Unlock()
		core.RecordTiming(core.EvtBadCommand, 0, core.GetTime(), n, uint32(len(line)))
		return errors.Join(append(errs, err)...)
	}

	in.mu.Lock()
	in.cmd = cmd
	in.mu.Unlock()

	if status, known := core.StatusFromHost(cmd.Status); known {
		in.indicator.SetStatus(status)
	}

	errs = append(errs,
		in.actuators.Set(core.ActuatorThrottle, cmd.Throttle),
		in.actuators.Set(core.ActuatorSteering, cmd.Steering),
	)
	return errors.Join(errs...)
}

// Command returns the last accepted host command
func (in *Intake) Command() protocol.Command {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.cmd
}

// Rejected returns how many host lines failed to parse
func (in *Intake) Rejected() uint32 {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.rejected
}

// Run polls every period until ctx is done. Errors are reported and the
// loop keeps going.
func (in *Intake) Run(ctx context.Context, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		if err := in.Poll(); err != nil {
			core.DebugAsync("intake: " + err.Error())
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

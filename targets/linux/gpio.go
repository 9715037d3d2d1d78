//go:build linux && !tinygo

package main

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/warthog618/go-gpiocdev"
	"go.uber.org/multierr"

	"rcbridge/core"
)

// CdevGPIODriver implements core.GPIODriver on the GPIO character device.
// Edge timestamps come from the kernel, so scheduling jitter in the event
// goroutine does not affect measured pulse widths.
type CdevGPIODriver struct {
	chip string

	mu    sync.Mutex
	lines map[core.GPIOPin]*gpiocdev.Line
}

// NewCdevGPIODriver creates a driver for lines on chip (e.g. "gpiochip0")
func NewCdevGPIODriver(chip string) *CdevGPIODriver {
	return &CdevGPIODriver{
		chip:  chip,
		lines: make(map[core.GPIOPin]*gpiocdev.Line),
	}
}

// ConfigureEdgeInput requests pin as a pulled-up input reporting both edges
func (d *CdevGPIODriver) ConfigureEdgeInput(pin core.GPIOPin, h core.EdgeHandler) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.lines[pin]; ok {
		return errors.Errorf("line %d already requested", pin)
	}

	l, err := gpiocdev.RequestLine(d.chip, int(pin),
		gpiocdev.WithConsumer("rcbridge"),
		gpiocdev.WithPullUp,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(func(evt gpiocdev.LineEvent) {
			// Kernel timestamp, CLOCK_MONOTONIC, truncated to 32-bit us
			t := uint32(evt.Timestamp / time.Microsecond)
			h(core.GPIOPin(evt.Offset), evt.Type == gpiocdev.LineEventRisingEdge, t)
		}))
	if err != nil {
		return errors.Wrapf(err, "request input line %s:%d", d.chip, pin)
	}
	d.lines[pin] = l
	return nil
}

// ConfigureOutput requests pin as an output driven low
func (d *CdevGPIODriver) ConfigureOutput(pin core.GPIOPin) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.lines[pin]; ok {
		return nil
	}

	l, err := gpiocdev.RequestLine(d.chip, int(pin),
		gpiocdev.WithConsumer("rcbridge"),
		gpiocdev.AsOutput(0))
	if err != nil {
		return errors.Wrapf(err, "request output line %s:%d", d.chip, pin)
	}
	d.lines[pin] = l
	return nil
}

// SetPin drives an output line
func (d *CdevGPIODriver) SetPin(pin core.GPIOPin, value bool) error {
	d.mu.Lock()
	l, ok := d.lines[pin]
	d.mu.Unlock()
	if !ok {
		return errors.Errorf("line %d not requested", pin)
	}

	v := 0
	if value {
		v = 1
	}
	return l.SetValue(v)
}

// Close releases every requested line
func (d *CdevGPIODriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var err error
	for pin, l := range d.lines {
		err = multierr.Append(err, l.Close())
		delete(d.lines, pin)
	}
	return err
}

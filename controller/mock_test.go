package controller

import (
	"errors"
	"image/color"
	"sync"

	"rcbridge/config"
	"rcbridge/core"
)

var errMock = errors.New("mock failure")

// board records every driver call in order, across all peripherals
type board struct {
	mu       sync.Mutex
	ops      []string
	handlers map[core.GPIOPin]core.EdgeHandler
	widths   map[core.PWMPin]uint32
	adc      map[core.ADCChannelID]core.ADCValue
	adcFail  bool
	colors   []color.RGBA
}

func newBoard() *board {
	return &board{
		handlers: make(map[core.GPIOPin]core.EdgeHandler),
		widths:   make(map[core.PWMPin]uint32),
		adc:      make(map[core.ADCChannelID]core.ADCValue),
	}
}

func (b *board) op(s string) {
	b.mu.Lock()
	b.ops = append(b.ops, s)
	b.mu.Unlock()
}

func (b *board) ConfigureEdgeInput(pin core.GPIOPin, h core.EdgeHandler) error {
	b.op("edge")
	b.mu.Lock()
	b.handlers[pin] = h
	b.mu.Unlock()
	return nil
}

func (b *board) ConfigureOutput(pin core.GPIOPin) error { return nil }

func (b *board) SetPin(pin core.GPIOPin, value bool) error { return nil }

func (b *board) ConfigureServo(pin core.PWMPin, periodUS uint32) error {
	b.op("servo")
	return nil
}

func (b *board) SetPulseWidth(pin core.PWMPin, us uint32) error {
	b.op("pulse")
	b.mu.Lock()
	b.widths[pin] = us
	b.mu.Unlock()
	return nil
}

func (b *board) ConfigureChannel(ch core.ADCChannelID) error {
	b.op("adc")
	return nil
}

func (b *board) ReadRaw(ch core.ADCChannelID) (core.ADCValue, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.adcFail {
		return 0, errMock
	}
	return b.adc[ch], nil
}

func (b *board) WriteColor(c color.RGBA) error {
	b.op("led")
	b.mu.Lock()
	b.colors = append(b.colors, c)
	b.mu.Unlock()
	return nil
}

func (b *board) width(pin uint32) uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.widths[core.PWMPin(pin)]
}

func (b *board) pulse(pin uint32, rise, fall uint32) {
	b.mu.Lock()
	h := b.handlers[core.GPIOPin(pin)]
	b.mu.Unlock()
	h(core.GPIOPin(pin), true, rise)
	h(core.GPIOPin(pin), false, fall)
}

// syncSource is a goroutine-safe ByteSource for tests running the workers
type syncSource struct {
	mu   sync.Mutex
	data []byte
}

func (s *syncSource) push(line string) {
	s.mu.Lock()
	s.data = append(s.data, line...)
	s.mu.Unlock()
}

func (s *syncSource) Buffered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

func (s *syncSource) ReadByte() (byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.data) == 0 {
		return 0, errMock
	}
	c := s.data[0]
	s.data = s.data[1:]
	return c, nil
}

// syncWriter collects telemetry written from the controller goroutine
type syncWriter struct {
	mu  sync.Mutex
	buf []byte
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	w.buf = append(w.buf, p...)
	w.mu.Unlock()
	return len(p), nil
}

func (w *syncWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return string(w.buf)
}

func newTestController(b *board, out *syncWriter, in *syncSource) *Controller {
	return New(config.Default(), Hardware{GPIO: b, PWM: b, ADC: b, LED: b, Out: out, In: in})
}

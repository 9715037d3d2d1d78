package core

import (
	"errors"
	"image/color"
	"sync"
)

var errMock = errors.New("mock failure")

// mockGPIO records configured lines and lets tests fire edges
type mockGPIO struct {
	mu       sync.Mutex
	handlers map[GPIOPin]EdgeHandler
	outputs  map[GPIOPin]bool
	failPin  GPIOPin
	failOn   bool
}

func newMockGPIO() *mockGPIO {
	return &mockGPIO{
		handlers: make(map[GPIOPin]EdgeHandler),
		outputs:  make(map[GPIOPin]bool),
	}
}

func (m *mockGPIO) ConfigureEdgeInput(pin GPIOPin, h EdgeHandler) error {
	if m.failOn && pin == m.failPin {
		return errMock
	}
	m.mu.Lock()
	m.handlers[pin] = h
	m.mu.Unlock()
	return nil
}

func (m *mockGPIO) ConfigureOutput(pin GPIOPin) error {
	m.mu.Lock()
	m.outputs[pin] = false
	m.mu.Unlock()
	return nil
}

func (m *mockGPIO) SetPin(pin GPIOPin, value bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.outputs[pin]; !ok {
		return errMock
	}
	m.outputs[pin] = value
	return nil
}

func (m *mockGPIO) fire(pin GPIOPin, level bool, t uint32) {
	m.mu.Lock()
	h := m.handlers[pin]
	m.mu.Unlock()
	if h != nil {
		h(pin, level, t)
	}
}

// mockPWM keeps the last width per pin
type mockPWM struct {
	periods map[PWMPin]uint32
	widths  map[PWMPin]uint32
	fail    bool
}

func newMockPWM() *mockPWM {
	return &mockPWM{
		periods: make(map[PWMPin]uint32),
		widths:  make(map[PWMPin]uint32),
	}
}

func (m *mockPWM) ConfigureServo(pin PWMPin, periodUS uint32) error {
	m.periods[pin] = periodUS
	return nil
}

func (m *mockPWM) SetPulseWidth(pin PWMPin, us uint32) error {
	if m.fail {
		return errMock
	}
	if _, ok := m.periods[pin]; !ok {
		return errors.New("pin not configured")
	}
	m.widths[pin] = us
	return nil
}

// mockADC returns a settable value per channel
type mockADC struct {
	values     map[ADCChannelID]ADCValue
	failing    map[ADCChannelID]bool
	configured map[ADCChannelID]bool
}

func newMockADC() *mockADC {
	return &mockADC{
		values:     make(map[ADCChannelID]ADCValue),
		failing:    make(map[ADCChannelID]bool),
		configured: make(map[ADCChannelID]bool),
	}
}

func (m *mockADC) ConfigureChannel(ch ADCChannelID) error {
	m.configured[ch] = true
	return nil
}

func (m *mockADC) ReadRaw(ch ADCChannelID) (ADCValue, error) {
	if m.failing[ch] {
		return 0, errMock
	}
	return m.values[ch], nil
}

// mockLED records every color written
type mockLED struct {
	writes []color.RGBA
}

func (m *mockLED) WriteColor(c color.RGBA) error {
	m.writes = append(m.writes, c)
	return nil
}

func (m *mockLED) lit(i int) bool {
	c := m.writes[i]
	return c.R != 0 || c.G != 0 || c.B != 0
}

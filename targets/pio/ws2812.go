//go:build rp2040 || rp2350

package pio

// PIO WS2812 backend for the status LED.
// The state machine shifts 24 bits of GRB per color word; timing is
// generated in hardware so an LED update costs one FIFO write.

import (
	"errors"
	"image/color"
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"
)

// ErrNoStateMachine is returned when every state machine of both PIO
// blocks is already claimed
var ErrNoStateMachine = errors.New("no free PIO state machine")

// buildWS2812Program creates the WS2812 bit program using AssemblerV0.
// One bit takes 10 cycles: 2 high, then 5 high (one) or low (zero), then 3 low.
func buildWS2812Program() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 1}
	return []uint16{
		// .wrap_target
		// bitloop:
		asm.Out(rp2pio.OutDestX, 1).Side(0).Delay(2).Encode(), // 0: out x, 1 side 0 [2]
		asm.Jmp(3, rp2pio.JmpXZero).Side(1).Delay(1).Encode(), // 1: jmp !x do_zero side 1 [1]
		// do_one:
		asm.Jmp(0, rp2pio.JmpAlways).Side(1).Delay(4).Encode(), // 2: jmp bitloop side 1 [4]
		// do_zero:
		asm.Nop().Side(0).Delay(4).Encode(), // 3: nop side 0 [4]
		// .wrap
	}
}

const (
	ws2812PIOOrigin = -1      // Any free offset, jumps are patched by AddProgram
	ws2812BitFreq   = 8000000 // 800 kHz bit rate x 10 cycles per bit
)

// LED drives a single WS2812 pixel from a PIO state machine.
// It implements core.LEDDriver.
type LED struct {
	pio    *rp2pio.PIO
	sm     rp2pio.StateMachine
	pin    machine.Pin
	offset uint8
}

// NewLED claims the first free state machine on PIO0 or PIO1
func NewLED(pin machine.Pin) (*LED, error) {
	for _, block := range []*rp2pio.PIO{rp2pio.PIO0, rp2pio.PIO1} {
		sm, err := block.ClaimStateMachine()
		if err != nil {
			continue
		}
		led := &LED{pio: block, sm: sm, pin: pin}
		if err := led.init(); err != nil {
			sm.Unclaim()
			return nil, err
		}
		return led, nil
	}
	return nil, ErrNoStateMachine
}

func (l *LED) init() error {
	program := buildWS2812Program()
	offset, err := l.pio.AddProgram(program, ws2812PIOOrigin)
	if err != nil {
		return err
	}
	l.offset = offset

	whole, frac, err := rp2pio.ClkDivFromFrequency(ws2812BitFreq, machine.CPUFrequency())
	if err != nil {
		return err
	}

	l.pin.Configure(machine.PinConfig{Mode: l.pio.PinMode()})

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetSidesetParams(1, false, false)
	cfg.SetSidesetPins(l.pin)

	// Shift left, autopull at 24 bits: one color word per pull
	cfg.SetOutShift(false, true, 24)
	cfg.SetFIFOJoin(rp2pio.FifoJoinTx)
	cfg.SetWrap(offset+uint8(len(program))-1, offset)
	cfg.SetClkDivIntFrac(whole, frac)

	// Initialize state machine FIRST, pin direction after
	l.sm.Init(offset, cfg)
	l.sm.SetPindirsConsecutive(l.pin, 1, true)
	l.sm.SetPinsConsecutive(l.pin, 1, false)
	l.sm.SetEnabled(true)
	return nil
}

// WriteColor queues c for the pixel. Colors are sent GRB, MSB first.
func (l *LED) WriteColor(c color.RGBA) error {
	word := uint32(c.G)<<24 | uint32(c.R)<<16 | uint32(c.B)<<8
	for l.sm.IsTxFIFOFull() {
		// Busy wait - one word drains in 30us
	}
	l.sm.TxPut(word)
	return nil
}

// Close stops the state machine and releases it
func (l *LED) Close() {
	l.sm.SetEnabled(false)
	l.sm.ClearFIFOs()
	l.sm.Unclaim()
}

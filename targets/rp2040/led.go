//go:build rp2040

package main

import (
	"image/color"
	"machine"

	"tinygo.org/x/drivers/ws2812"

	"rcbridge/core"
	"rcbridge/targets/pio"
)

// bitbangLED drives the pixel with the CPU-timed ws2812 driver
type bitbangLED struct {
	dev ws2812.Device
	buf [1]color.RGBA
}

func (l *bitbangLED) WriteColor(c color.RGBA) error {
	l.buf[0] = c
	return l.dev.WriteColors(l.buf[:])
}

// NewStatusLED returns a PIO-timed driver for the pixel on pin, or the
// bit-banged driver when no state machine is free.
func NewStatusLED(pin machine.Pin) core.LEDDriver {
	if led, err := pio.NewLED(pin); err == nil {
		return led
	}

	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return &bitbangLED{dev: ws2812.NewWS2812(pin)}
}

//go:build linux && !tinygo

package main

import (
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/experimental/devices/ads1x15"
	"periph.io/x/periph/host"

	"rcbridge/core"
)

// ADS1115Driver implements core.ADCDriver on an ADS1115 over I2C. Channel
// IDs 0-3 select the single-ended inputs AIN0-AIN3.
type ADS1115Driver struct {
	bus i2c.BusCloser
	dev *ads1x15.Dev

	mu   sync.Mutex
	pins map[core.ADCChannelID]ads1x15.PinADC
}

// NewADS1115Driver opens busName ("" for the first bus) and the converter at addr
func NewADS1115Driver(busName string, addr uint16) (*ADS1115Driver, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "periph host init")
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, errors.Wrapf(err, "open I2C bus %q", busName)
	}

	opts := ads1x15.DefaultOpts
	opts.I2cAddress = addr
	dev, err := ads1x15.NewADS1115(bus, &opts)
	if err != nil {
		bus.Close()
		return nil, errors.Wrapf(err, "ADS1115 at 0x%02x", addr)
	}

	return &ADS1115Driver{
		bus:  bus,
		dev:  dev,
		pins: make(map[core.ADCChannelID]ads1x15.PinADC),
	}, nil
}

var adsChannels = [...]ads1x15.Channel{
	ads1x15.Channel0,
	ads1x15.Channel1,
	ads1x15.Channel2,
	ads1x15.Channel3,
}

// ConfigureChannel binds a single-ended input at the 4.096V range
func (d *ADS1115Driver) ConfigureChannel(ch core.ADCChannelID) error {
	if int(ch) >= len(adsChannels) {
		return errors.Errorf("ADS1115 has no channel %d", ch)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.pins[ch]; ok {
		return nil
	}

	p, err := d.dev.PinForChannel(adsChannels[ch], 4096*physic.MilliVolt, 128*physic.Hertz, ads1x15.BestQuality)
	if err != nil {
		return errors.Wrapf(err, "configure AIN%d", ch)
	}
	d.pins[ch] = p
	return nil
}

// ReadRaw returns one conversion. Single-ended inputs never go meaningfully
// negative; noise below ground reads as zero.
func (d *ADS1115Driver) ReadRaw(ch core.ADCChannelID) (core.ADCValue, error) {
	d.mu.Lock()
	p, ok := d.pins[ch]
	d.mu.Unlock()
	if !ok {
		return 0, errors.Errorf("AIN%d not configured", ch)
	}

	s, err := p.Read()
	if err != nil {
		return 0, errors.Wrapf(err, "read AIN%d", ch)
	}
	if s.Raw < 0 {
		return 0, nil
	}
	return core.ADCValue(s.Raw), nil
}

// Close halts every channel and releases the bus
func (d *ADS1115Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var err error
	for ch, p := range d.pins {
		err = multierr.Append(err, p.Halt())
		delete(d.pins, ch)
	}
	return multierr.Append(err, d.bus.Close())
}

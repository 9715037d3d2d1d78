//go:build linux && !tinygo

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"rcbridge/config"
	"rcbridge/controller"
	"rcbridge/core"
	"rcbridge/host/serial"
)

var (
	configPath = flag.String("config", "", "YAML config file (default: Raspberry Pi wiring)")
	debug      = flag.Bool("debug", false, "Log status changes, driver errors and event ring dumps")
)

// piConfig is the wiring of a Raspberry Pi companion board: BCM line
// numbers, hardware PWM on 12/13 and an ADS1115 on the first I2C bus.
func piConfig() *config.Config {
	cfg := config.Default()
	cfg.Pins = config.Pins{
		Inputs: config.InputPins{
			Throttle:    5,
			Steering:    6,
			Ch5:         16,
			Ch6:         20,
			Speedometer: 21,
		},
		ThrottleOut: 12,
		SteeringOut: 13,
		LED:         26,
		SensorLeft:  0,
		SensorRight: 1,
	}
	return cfg
}

func loadConfig() (*config.Config, error) {
	if *configPath == "" {
		cfg := piConfig()
		return cfg, cfg.Validate()
	}
	return config.Load(*configPath)
}

func main() {
	flag.Parse()

	if err := run(); err != nil {
		log.Fatalf("rcbridge: %v", err)
	}
}

func run() (err error) {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	core.SetDebugWriter(func(s string) { log.Print(s) })
	core.SetDebugEnabled(*debug)
	core.InitAsyncDebug()

	gpio := NewCdevGPIODriver(cfg.Linux.Chip)
	defer func() { err = multierr.Append(err, gpio.Close()) }()

	pwm, err := NewRpioPWMDriver()
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, pwm.Close()) }()

	adc, err := NewADS1115Driver(cfg.Linux.I2CBus, cfg.Linux.ADCAddress)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, adc.Close()) }()

	led, err := core.NewGPIOLED(gpio, core.GPIOPin(cfg.Pins.LED), cfg.Linux.LEDActiveLow)
	if err != nil {
		return errors.Wrap(err, "status LED")
	}

	port, err := serial.Open(&serial.Config{
		Device:      cfg.Serial.Device,
		Baud:        cfg.Serial.Baud,
		ReadTimeout: cfg.Serial.ReadTimeout,
	})
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, port.Close()) }()

	core.SetGPIODriver(gpio)
	core.SetPWMDriver(pwm)
	core.SetADCDriver(adc)
	core.SetLEDDriver(led)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("rcbridge: link on %s at %d baud", cfg.Serial.Device, cfg.Serial.Baud)
	ctrl := controller.New(cfg, controller.RegisteredHardware(port, serial.NewPump(port, serial.DefaultPumpSize)))
	if err := ctrl.Run(ctx); err != nil {
		return errors.Wrap(err, "controller")
	}
	log.Print("rcbridge: stopped")
	return nil
}

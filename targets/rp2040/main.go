//go:build rp2040

package main

import (
	"context"
	"machine"
	"time"

	"rcbridge/config"
	"rcbridge/controller"
	"rcbridge/core"
)

// boardConfig maps the controller onto an RP2040 board with a WS2812 pixel
// on GPIO16
func boardConfig() *config.Config {
	cfg := config.Default()
	cfg.Pins = config.Pins{
		Inputs: config.InputPins{
			Throttle:    2,
			Steering:    3,
			Ch5:         4,
			Ch6:         5,
			Speedometer: 6,
		},
		ThrottleOut: 8, // PWM slice 4 A
		SteeringOut: 9, // PWM slice 4 B
		LED:         16,
		SensorLeft:  0, // ADC0, GPIO26
		SensorRight: 1, // ADC1, GPIO27
	}
	return cfg
}

func main() {
	// CRITICAL: Disable watchdog on boot to clear any previous state
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	// machine.Serial is USB CDC on RP2040; the baud rate is ignored
	cfg := boardConfig()
	machine.Serial.Configure(machine.UARTConfig{BaudRate: uint32(cfg.Serial.Baud)})

	InitClock()
	InitDebugUART()

	core.SetGPIODriver(NewRPGPIODriver())
	core.SetPWMDriver(NewRP2040PWMDriver())
	core.SetADCDriver(NewRPAdcDriver())
	core.SetLEDDriver(NewStatusLED(machine.Pin(cfg.Pins.LED)))

	ctrl := controller.New(cfg, controller.RegisteredHardware(machine.Serial, machine.Serial))

	// Run only returns on a startup failure. Outputs stay wherever the
	// failed step left them; the debug UART says which step it was.
	if err := ctrl.Run(context.Background()); err != nil {
		core.DebugPrintln("startup: " + err.Error())
	}
	for {
		time.Sleep(time.Hour)
	}
}

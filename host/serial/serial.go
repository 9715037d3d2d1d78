package serial

import (
	"io"
	"time"
)

// Port represents a serial port interface
// This abstraction allows for different implementations:
// - Native serial (using github.com/tarm/serial)
// - Mock serial (for testing)
type Port interface {
	io.ReadWriteCloser

	// Flush flushes any buffered data
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "/dev/ttyAMA0", "COM3")
	Device string

	// Baud rate (USB CDC ignores this)
	Baud int

	// Read timeout (0 = blocking). A read that times out returns io.EOF.
	ReadTimeout time.Duration
}

// DefaultConfig returns the configuration of the controller link
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        2000000,
		ReadTimeout: 10 * time.Millisecond,
	}
}

// Package link is the host side of the controller serial link: it sends
// command lines and decodes the telemetry stream.
package link

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"rcbridge/host/serial"
	"rcbridge/protocol"
)

// ErrClosed is returned when sending on a closed link
var ErrClosed = errors.New("link closed")

// Link represents a connection to the vehicle controller
type Link struct {
	port serial.Port
	pump *serial.Pump

	wmu  sync.Mutex
	wbuf []byte

	reports   chan protocol.Telemetry
	closing   chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	received  atomic.Uint32
	malformed atomic.Uint32
	lost      atomic.Bool
}

// Connect opens device with the default link settings
func Connect(device string) (*Link, error) {
	return ConnectWithConfig(serial.DefaultConfig(device))
}

// ConnectWithConfig opens the serial port described by cfg
func ConnectWithConfig(cfg *serial.Config) (*Link, error) {
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port: %w", err)
	}
	return ConnectPort(port), nil
}

// ConnectPort runs the link over an already open port
func ConnectPort(port serial.Port) *Link {
	l := &Link{
		port:    port,
		pump:    serial.NewPump(port, serial.DefaultPumpSize),
		wbuf:    make([]byte, 0, protocol.LineBufferSize),
		reports: make(chan protocol.Telemetry, 64),
		closing: make(chan struct{}),
	}
	l.wg.Add(1)
	go l.readLoop()
	return l
}

func (l *Link) readLoop() {
	defer l.wg.Done()
	defer close(l.reports)

	lines := protocol.NewLineReader(l.pump)
	for {
		select {
		case <-l.closing:
			return
		case <-l.pump.Done():
			return
		case <-l.pump.Ready():
		}

		for line := range lines.Lines() {
			t, err := protocol.ParseTelemetry(line)
			if err != nil {
				l.malformed.Add(1)
				continue
			}
			l.received.Add(1)
			l.lost.Store(t.NoSignal)

			select {
			case l.reports <- t:
			default:
				// Consumer is behind, drop the oldest report
				select {
				case <-l.reports:
				default:
				}
				l.reports <- t
			}
		}
	}
}

// SendCommand writes one command line to the controller
func (l *Link) SendCommand(cmd protocol.Command) error {
	select {
	case <-l.closing:
		return ErrClosed
	default:
	}

	l.wmu.Lock()
	defer l.wmu.Unlock()
	l.wbuf = protocol.AppendCommand(l.wbuf[:0], cmd)
	if len(l.wbuf) > protocol.LineBufferSize-1 {
		return fmt.Errorf("command line of %d bytes exceeds the controller buffer", len(l.wbuf))
	}
	if _, err := l.port.Write(l.wbuf); err != nil {
		return fmt.Errorf("failed to send command: %w", err)
	}
	return nil
}

// Telemetry returns the stream of decoded reports. It is closed when the
// link shuts down.
func (l *Link) Telemetry() <-chan protocol.Telemetry {
	return l.reports
}

// SignalLost reports whether the latest report was the no-signal sentinel
func (l *Link) SignalLost() bool {
	return l.lost.Load()
}

// Stats returns the number of decoded and undecodable lines
func (l *Link) Stats() (received, malformed uint32) {
	return l.received.Load(), l.malformed.Load()
}

// Close stops the reader and closes the port
func (l *Link) Close() error {
	var err error
	l.closeOnce.Do(func() {
		close(l.closing)
		err = l.port.Close()
		l.wg.Wait()
	})
	return err
}

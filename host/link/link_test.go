package link

import (
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"rcbridge/protocol"
)

// loopPort is an in-memory serial port: the test feeds device output with
// emit and reads what the host wrote from written.
type loopPort struct {
	in     chan []byte
	closed chan struct{}
	once   sync.Once

	mu      sync.Mutex
	written []byte
}

func newLoopPort() *loopPort {
	return &loopPort{in: make(chan []byte, 16), closed: make(chan struct{})}
}

func (p *loopPort) emit(s string) { p.in <- []byte(s) }

func (p *loopPort) Read(b []byte) (int, error) {
	select {
	case c := <-p.in:
		return copy(b, c), nil
	case <-p.closed:
		return 0, errors.New("closed")
	case <-time.After(time.Millisecond):
		return 0, io.EOF
	}
}

func (p *loopPort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.written = append(p.written, b...)
	return len(b), nil
}

func (p *loopPort) Close() error {
	p.once.Do(func() { close(p.closed) })
	return nil
}

func (p *loopPort) Flush() error { return nil }

func nextReport(t *testing.T, l *Link) protocol.Telemetry {
	t.Helper()
	select {
	case r := <-l.Telemetry():
		return r
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for telemetry")
	}
	return protocol.Telemetry{}
}

func TestLinkTelemetry(t *testing.T) {
	port := newLoopPort()
	l := ConnectPort(port)
	defer l.Close()

	port.emit("100,1500,1480,10")
	port.emit("00,2000,0,311,402\n garbage\n")
	port.emit("130,-1,-1,-1,-1,-1,-1,-1\n")

	r := nextReport(t, l)
	if r.Timestamp != 100 || r.Widths[1] != 1480 || r.Left != 311 {
		t.Errorf("Unexpected first report %+v", r)
	}
	r = nextReport(t, l)
	if !r.NoSignal || r.Timestamp != 130 {
		t.Errorf("Expected no-signal report at 130, got %+v", r)
	}
	if !l.SignalLost() {
		t.Error("SignalLost must follow the latest report")
	}

	received, malformed := l.Stats()
	if received != 2 || malformed != 1 {
		t.Errorf("Expected 2 received and 1 malformed, got %d and %d", received, malformed)
	}
}

func TestLinkSendCommand(t *testing.T) {
	port := newLoopPort()
	l := ConnectPort(port)

	if err := l.SendCommand(protocol.Command{Throttle: 1600, Steering: 1400, Status: "user"}); err != nil {
		t.Fatalf("SendCommand failed: %v", err)
	}
	port.mu.Lock()
	got := string(port.written)
	port.mu.Unlock()
	if got != "1600,1400,user\n" {
		t.Errorf("Unexpected wire line %q", got)
	}

	long := protocol.Command{Status: strings.Repeat("x", protocol.LineBufferSize)}
	if err := l.SendCommand(long); err == nil {
		t.Error("Expected an error for a line longer than the controller buffer")
	}

	if err := l.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := l.SendCommand(protocol.NeutralCommand()); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
	if _, ok := <-l.Telemetry(); ok {
		t.Error("Telemetry channel must be closed after Close")
	}
}

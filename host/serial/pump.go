package serial

import (
	"errors"
	"io"
	"sync"

	"rcbridge/protocol"
)

// DefaultPumpSize is the receive FIFO size of a Pump
const DefaultPumpSize = 1024

// Pump moves bytes from a blocking reader into a FIFO so consumers can poll
// it without blocking, the way a UART driver fills its receive buffer.
// A Pump is a protocol.ByteSource.
type Pump struct {
	r io.Reader

	mu       sync.Mutex
	fifo     *protocol.FifoBuffer
	overflow uint32
	err      error

	ready chan struct{}
	done  chan struct{}
}

// NewPump starts reading r in the background. Read timeouts (io.EOF) are
// treated as an idle line; any other error stops the pump.
func NewPump(r io.Reader, size int) *Pump {
	if size <= 1 {
		size = DefaultPumpSize
	}
	p := &Pump{
		r:     r,
		fifo:  protocol.NewFifoBuffer(size),
		ready: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *Pump) run() {
	defer close(p.done)

	buf := make([]byte, 256)
	for {
		n, err := p.r.Read(buf)
		if n > 0 {
			p.mu.Lock()
			if w := p.fifo.Write(buf[:n]); w < n {
				p.overflow += uint32(n - w)
			}
			p.mu.Unlock()

			select {
			case p.ready <- struct{}{}:
			default:
			}
		}
		if err != nil && !errors.Is(err, io.EOF) {
			p.mu.Lock()
			p.err = err
			p.mu.Unlock()
			return
		}
	}
}

// Buffered returns the number of bytes waiting in the FIFO
func (p *Pump) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fifo.Buffered()
}

// ReadByte pops one byte, returning protocol.ErrNoData when none is waiting
func (p *Pump) ReadByte() (byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fifo.ReadByte()
}

// Ready is signalled after new bytes arrive
func (p *Pump) Ready() <-chan struct{} {
	return p.ready
}

// Done is closed once the reader failed or was closed
func (p *Pump) Done() <-chan struct{} {
	return p.done
}

// Err returns the error that stopped the pump
func (p *Pump) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Overflow returns how many bytes were dropped because the FIFO was full
func (p *Pump) Overflow() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.overflow
}

package protocol

import (
	"errors"
	"iter"
)

// ErrNoData is returned by a ByteSource with nothing buffered
var ErrNoData = errors.New("no data buffered")

// ByteSource is a byte stream that can report how much it holds without
// blocking. machine.Serial on TinyGo targets satisfies it as is.
type ByteSource interface {
	Buffered() int
	ReadByte() (byte, error)
}

// LineReader assembles newline-terminated lines from a ByteSource without
// ever blocking. A partial line is kept across calls. A line that fills the
// buffer is handed out truncated and the rest of it becomes the next line.
type LineReader struct {
	src       ByteSource
	buf       [LineBufferSize]byte
	n         int
	done      bool // buf holds a line already returned
	truncated uint32
}

// NewLineReader creates a reader over src
func NewLineReader(src ByteSource) *LineReader {
	return &LineReader{src: src}
}

// ReadLine returns the next complete line without its line terminator, or
// false when no complete line is buffered yet. The returned slice is only
// valid until the next call.
func (r *LineReader) ReadLine() ([]byte, bool) {
	if r.done {
		r.n = 0
		r.done = false
	}
	for r.src.Buffered() > 0 {
		c, err := r.src.ReadByte()
		if err != nil {
			return nil, false
		}
		if c == '\n' {
			r.done = true
			line := r.buf[:r.n]
			if len(line) > 0 && line[len(line)-1] == '\r' {
				line = line[:len(line)-1]
			}
			return line, true
		}
		r.buf[r.n] = c
		r.n++
		if r.n >= LineBufferSize-1 {
			r.done = true
			r.truncated++
			return r.buf[:r.n], true
		}
	}
	return nil, false
}

// Lines yields every complete line currently buffered, then stops. Calling
// it again later resumes where the previous sequence left off.
func (r *LineReader) Lines() iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		for {
			line, ok := r.ReadLine()
			if !ok || !yield(line) {
				return
			}
		}
	}
}

// Truncated returns how many lines were cut at the buffer size
func (r *LineReader) Truncated() uint32 {
	return r.truncated
}

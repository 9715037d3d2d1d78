package protocol

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrMalformedCommand is returned for a host line that is not "<int>,<int>,<word>"
var ErrMalformedCommand = errors.New("malformed command")

// Command is one parsed host line
type Command struct {
	Throttle int    // Throttle pulse width (us)
	Steering int    // Steering pulse width (us)
	Status   string // Host status word, matched later against the known vocabulary
}

// NeutralCommand is the command state before the host sends anything
func NeutralCommand() Command {
	return Command{Throttle: NeutralPulseUS, Steering: NeutralPulseUS}
}

// ParseCommand parses "<throttle>,<steering>,<word>". Whitespace is allowed
// before each number and before the word; the word ends at the first
// whitespace and anything after it is ignored. All three fields are required.
func ParseCommand(line []byte) (Command, error) {
	var cmd Command
	p := cmdScanner{s: line}

	throttle, ok := p.int()
	if !ok || !p.expect(',') {
		return cmd, fmt.Errorf("%w: throttle field in %q", ErrMalformedCommand, line)
	}
	steering, ok := p.int()
	if !ok || !p.expect(',') {
		return cmd, fmt.Errorf("%w: steering field in %q", ErrMalformedCommand, line)
	}
	word, ok := p.word()
	if !ok {
		return cmd, fmt.Errorf("%w: status field in %q", ErrMalformedCommand, line)
	}

	cmd.Throttle = throttle
	cmd.Steering = steering
	cmd.Status = word
	return cmd, nil
}

// AppendCommand appends the wire form of cmd, newline included
func AppendCommand(dst []byte, cmd Command) []byte {
	dst = strconv.AppendInt(dst, int64(cmd.Throttle), 10)
	dst = append(dst, ',')
	dst = strconv.AppendInt(dst, int64(cmd.Steering), 10)
	dst = append(dst, ',')
	dst = append(dst, cmd.Status...)
	return append(dst, '\n')
}

type cmdScanner struct {
	s   []byte
	pos int
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

func (p *cmdScanner) skipSpace() {
	for p.pos < len(p.s) && isSpace(p.s[p.pos]) {
		p.pos++
	}
}

func (p *cmdScanner) int() (int, bool) {
	p.skipSpace()
	start := p.pos
	if p.pos < len(p.s) && (p.s[p.pos] == '-' || p.s[p.pos] == '+') {
		p.pos++
	}
	digits := p.pos
	for p.pos < len(p.s) && p.s[p.pos] >= '0' && p.s[p.pos] <= '9' {
		p.pos++
	}
	if p.pos == digits {
		return 0, false
	}
	v, err := strconv.Atoi(string(p.s[start:p.pos]))
	if err != nil {
		return 0, false
	}
	return v, true
}

func (p *cmdScanner) expect(c byte) bool {
	if p.pos < len(p.s) && p.s[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *cmdScanner) word() (string, bool) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.s) && !isSpace(p.s[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return "", false
	}
	return string(p.s[start:p.pos]), true
}

package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"rcbridge/host/link"
	"rcbridge/host/serial"
	"rcbridge/protocol"
)

var (
	device  = flag.String("device", "/dev/ttyUSB0", "Serial device path")
	baud    = flag.Int("baud", 2000000, "Baud rate (ignored for USB CDC)")
	period  = flag.Duration("period", 50*time.Millisecond, "Command send period")
	verbose = flag.Bool("verbose", false, "Print every telemetry line")
)

// state is the command the sender repeats every period
type state struct {
	mu  sync.Mutex
	cmd protocol.Command
}

func (s *state) get() protocol.Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cmd
}

func (s *state) update(fn func(*protocol.Command)) {
	s.mu.Lock()
	fn(&s.cmd)
	s.mu.Unlock()
}

func main() {
	flag.Parse()

	fmt.Println("rcbridge host " + protocol.Version)
	fmt.Println("===================")
	fmt.Println()

	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud

	fmt.Printf("Connecting to controller on %s...\n", *device)
	conn, err := link.ConnectWithConfig(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	fmt.Println("Connected successfully!")

	current := &state{cmd: protocol.NeutralCommand()}
	current.update(func(c *protocol.Command) { c.Status = "init" })

	var (
		lastMu sync.Mutex
		last   protocol.Telemetry
	)
	go func() {
		wasLost := false
		for t := range conn.Telemetry() {
			lastMu.Lock()
			last = t
			lastMu.Unlock()

			if t.NoSignal != wasLost {
				if t.NoSignal {
					fmt.Printf("\n[%05d] radio signal lost\n> ", t.Timestamp)
				} else {
					fmt.Printf("\n[%05d] radio signal back\n> ", t.Timestamp)
				}
				wasLost = t.NoSignal
			}
			if *verbose {
				fmt.Printf("\n%s> ", formatReport(t))
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(*period)
		defer ticker.Stop()
		for range ticker.C {
			if err := conn.SendCommand(current.get()); err != nil {
				if errors.Is(err, link.ErrClosed) {
					return
				}
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		}
	}()

	fmt.Println("Enter commands (type 'help' for available commands, 'quit' to exit):")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]

		switch cmd {
		case "quit", "exit", "q":
			current.update(func(c *protocol.Command) {
				*c = protocol.NeutralCommand()
				c.Status = "disarmed"
			})
			conn.SendCommand(current.get())
			fmt.Println("Goodbye!")
			return

		case "help", "?":
			printHelp()

		case "throttle", "t":
			if us, ok := parseWidth(parts); ok {
				current.update(func(c *protocol.Command) { c.Throttle = us })
			}

		case "steering", "s":
			if us, ok := parseWidth(parts); ok {
				current.update(func(c *protocol.Command) { c.Steering = us })
			}

		case "status":
			if len(parts) != 2 {
				fmt.Println("Usage: status <init|disarmed|user|local>")
				continue
			}
			current.update(func(c *protocol.Command) { c.Status = parts[1] })

		case "neutral", "n":
			current.update(func(c *protocol.Command) {
				c.Throttle = protocol.NeutralPulseUS
				c.Steering = protocol.NeutralPulseUS
			})

		case "show":
			lastMu.Lock()
			t := last
			lastMu.Unlock()
			fmt.Print(formatReport(t))
			received, malformed := conn.Stats()
			fmt.Printf("Sending: %q  (received %d, malformed %d)\n",
				strings.TrimSpace(string(protocol.AppendCommand(nil, current.get()))), received, malformed)

		default:
			fmt.Printf("Unknown command: %s (type 'help' for available commands)\n", cmd)
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}
}

func parseWidth(parts []string) (int, bool) {
	if len(parts) != 2 {
		fmt.Println("Usage: " + parts[0] + " <microseconds>")
		return 0, false
	}
	us, err := strconv.Atoi(parts[1])
	if err != nil {
		fmt.Printf("Invalid pulse width %q\n", parts[1])
		return 0, false
	}
	return us, true
}

func formatReport(t protocol.Telemetry) string {
	if t.NoSignal {
		return fmt.Sprintf("[%05d] no signal\n", t.Timestamp)
	}
	return fmt.Sprintf("[%05d] thr=%d str=%d ch5=%d ch6=%d spd=%d left=%d right=%d\n",
		t.Timestamp, t.Widths[0], t.Widths[1], t.Widths[2], t.Widths[3], t.Widths[4], t.Left, t.Right)
}

func printHelp() {
	fmt.Println("\nAvailable commands:")
	fmt.Println("  help                - Show this help message")
	fmt.Println("  throttle|t <us>     - Set the throttle pulse width")
	fmt.Println("  steering|s <us>     - Set the steering pulse width")
	fmt.Println("  status <word>       - Send init, disarmed, user or local")
	fmt.Println("  neutral|n           - Center both outputs")
	fmt.Println("  show                - Print the latest telemetry")
	fmt.Println("  quit/exit/q         - Disarm and exit")
	fmt.Println()
}

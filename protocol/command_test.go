package protocol

import (
	"errors"
	"testing"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    Command
		wantErr bool
	}{
		{"basic", "1600,1400,user", Command{1600, 1400, "user"}, false},
		{"leading spaces", "  1500, 1500, local", Command{1500, 1500, "local"}, false},
		{"signed", "-20,+1700,init", Command{-20, 1700, "init"}, false},
		{"unknown word", "1500,1500,armed", Command{1500, 1500, "armed"}, false},
		{"trailing text", "1500,1500,disarmed now", Command{1500, 1500, "disarmed"}, false},
		{"not a number", "abc", Command{}, true},
		{"missing word", "1500,1500", Command{}, true},
		{"empty word", "1500,1500,", Command{}, true},
		{"space before comma", "1500 ,1500,user", Command{}, true},
		{"empty", "", Command{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCommand([]byte(tt.line))
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedCommand) {
					t.Errorf("Expected ErrMalformedCommand, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestAppendCommand(t *testing.T) {
	line := AppendCommand(nil, Command{Throttle: 1620, Steering: 1380, Status: "user"})
	if string(line) != "1620,1380,user\n" {
		t.Errorf("Unexpected line %q", line)
	}

	cmd, err := ParseCommand(line)
	if err != nil || cmd.Throttle != 1620 || cmd.Steering != 1380 || cmd.Status != "user" {
		t.Errorf("Line does not parse back: %+v (%v)", cmd, err)
	}
}

func TestNeutralCommand(t *testing.T) {
	if c := NeutralCommand(); c.Throttle != 1500 || c.Steering != 1500 || c.Status != "" {
		t.Errorf("Unexpected neutral command %+v", c)
	}
}

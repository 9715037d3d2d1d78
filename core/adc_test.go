package core

import (
	"errors"
	"testing"
)

func TestDistanceSensorsRefresh(t *testing.T) {
	adc := newMockADC()
	s := NewDistanceSensors(adc, 6, 7)

	if err := s.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if !adc.configured[6] || !adc.configured[7] {
		t.Fatal("Both channels must be configured")
	}

	adc.values[6] = 311
	adc.values[7] = 402
	if err := s.Refresh(); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if r := s.Reading(); r.Left != 311 || r.Right != 402 {
		t.Errorf("Expected 311/402, got %d/%d", r.Left, r.Right)
	}
}

func TestDistanceSensorsReadErrorKeepsValue(t *testing.T) {
	adc := newMockADC()
	s := NewDistanceSensors(adc, 6, 7)
	s.Init()

	adc.values[6] = 100
	adc.values[7] = 200
	s.Refresh()

	adc.failing[7] = true
	adc.values[6] = 150
	adc.values[7] = 999

	err := s.Refresh()
	if !errors.Is(err, errMock) {
		t.Fatalf("Expected read error, got %v", err)
	}
	if r := s.Reading(); r.Left != 150 || r.Right != 200 {
		t.Errorf("Expected left updated and right kept (150/200), got %d/%d", r.Left, r.Right)
	}
	if s.Errors() != 1 {
		t.Errorf("Expected 1 error, got %d", s.Errors())
	}
}

package dsp

import "testing"

func TestEnvelopeReachesSustainThenReleasesToZero(t *testing.T) {
	e := NewEnvelope(1000)
	e.SetADSR(0.01, 0.01, 0.5, 0.01)
	e.Gate(true)

	var last float64
	for i := 0; i < 100; i++ {
		last = e.Next()
	}
	if last != 0.5 {
		t.Fatalf("expected envelope to settle at sustain 0.5, got %v", last)
	}

	e.Gate(false)
	for i := 0; i < 100; i++ {
		last = e.Next()
	}
	if last != 0 {
		t.Fatalf("expected envelope to release to 0, got %v", last)
	}
	if e.Active() {
		t.Fatalf("envelope should be idle after full release")
	}
}

func TestEnvelopeZeroAttackIsImmediate(t *testing.T) {
	e := NewEnvelope(48000)
	e.SetADSR(0, 0.1, 1, 0.1)
	e.Gate(true)
	if got := e.Next(); got != 1 {
		t.Fatalf("zero-attack envelope should jump to 1 on first sample, got %v", got)
	}
}

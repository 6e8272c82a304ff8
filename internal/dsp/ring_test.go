package dsp

import "testing"

func TestRingBufferDelay(t *testing.T) {
	r := NewRingBuffer(8)
	for i := 0; i < 10; i++ {
		r.Write(float64(i))
	}
	// Most recent write was 9.
	if got := r.Read(0); got != 9 {
		t.Fatalf("Read(0) = %v, want 9", got)
	}
	if got := r.Read(3); got != 6 {
		t.Fatalf("Read(3) = %v, want 6", got)
	}
}

func TestRingBufferReadFracInterpolates(t *testing.T) {
	r := NewRingBuffer(8)
	r.Write(0)
	r.Write(10)
	// Read(0)=10, Read(1)=0, so ReadFrac(0.5) should be halfway.
	got := r.ReadFrac(0.5)
	if got != 5 {
		t.Fatalf("ReadFrac(0.5) = %v, want 5", got)
	}
}

func TestRingBufferPowerOfTwoSizing(t *testing.T) {
	r := NewRingBuffer(5)
	if r.Len() != 8 {
		t.Fatalf("Len() = %d, want 8", r.Len())
	}
}

func TestDelayLineZeroDelayIsPassthrough(t *testing.T) {
	d := NewDelayLine(64)
	for i := 0; i < 5; i++ {
		in := float64(i)
		if out := d.Process(in); out != in {
			t.Fatalf("Process(%v) = %v, want passthrough", in, out)
		}
	}
}

func TestDelayLineDelaysByExactSampleCount(t *testing.T) {
	d := NewDelayLine(64)
	d.SetDelay(4)
	var outputs []float64
	for i := 0; i < 10; i++ {
		outputs = append(outputs, d.Process(float64(i)))
	}
	for i := 4; i < 10; i++ {
		if outputs[i] != float64(i-4) {
			t.Fatalf("outputs[%d] = %v, want %v", i, outputs[i], i-4)
		}
	}
}

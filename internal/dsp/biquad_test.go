package dsp

import (
	"math"
	"testing"
)

func TestBiquadLowPassAttenuatesHighFrequency(t *testing.T) {
	const sr = 48000.0
	b := NewBiquad(LowPass, sr, 500, 0.707, 0)

	// Settle the filter, then measure RMS response to a tone well above
	// cutoff versus well below it.
	rmsAt := func(freq float64) float64 {
		b.Reset()
		var sumSq float64
		n := 4096
		for i := 0; i < n; i++ {
			x := math.Sin(2 * math.Pi * freq * float64(i) / sr)
			y := b.Process(x)
			if i > n/2 { // skip settling transient
				sumSq += y * y
			}
		}
		return math.Sqrt(sumSq / float64(n/2))
	}

	low := rmsAt(100)
	high := rmsAt(8000)
	if high >= low {
		t.Fatalf("lowpass should attenuate 8kHz more than 100Hz: low=%v high=%v", low, high)
	}
}

func TestBiquadAdvanceSlewsTowardTarget(t *testing.T) {
	b := NewBiquad(Peak, 48000, 1000, 1, 0)
	b.SetTau(0.01)
	b.SetTarget(2000, 1, 0)
	before := b.freq
	b.Advance(256)
	if b.freq <= before || b.freq >= 2000 {
		t.Fatalf("freq after one block = %v, want strictly between %v and 2000", b.freq, before)
	}
}

func TestPanGainsEqualPowerAtCenter(t *testing.T) {
	l, r := PanGains(0)
	if math.Abs(l-r) > 1e-9 {
		t.Fatalf("center pan should be equal: l=%v r=%v", l, r)
	}
	sumSq := l*l + r*r
	if math.Abs(sumSq-1) > 1e-9 {
		t.Fatalf("equal-power law violated: l^2+r^2=%v, want 1", sumSq)
	}
}

func TestPanGainsHardLeft(t *testing.T) {
	l, r := PanGains(-1)
	if math.Abs(l-1) > 1e-9 || math.Abs(r) > 1e-9 {
		t.Fatalf("hard left should be l=1,r=0: got l=%v r=%v", l, r)
	}
}

package wav

import (
	"math"
	"math/rand"
	"testing"
)

func TestNormalizeScalesToTargetPeak(t *testing.T) {
	channels := [][]float64{{0.1, -0.2, 0.4}, {0.05, 0.1, -0.4}}
	Normalize(channels, -0.1)

	peak := 0.0
	for _, ch := range channels {
		for _, x := range ch {
			if a := abs(x); a > peak {
				peak = a
			}
		}
	}
	want := dbToLinear(-0.1)
	if math.Abs(peak-want) > 1e-9 {
		t.Fatalf("peak after normalize = %v, want %v", peak, want)
	}
}

func TestNormalizeNoOpOnSilence(t *testing.T) {
	channels := [][]float64{{0, 0, 0}}
	Normalize(channels, -0.1)
	for _, x := range channels[0] {
		if x != 0 {
			t.Fatalf("normalizing silence should remain silent, got %v", x)
		}
	}
}

func TestDitherSkippedAtFloat32(t *testing.T) {
	channels := [][]float64{{0.5, 0.5, 0.5}}
	original := append([]float64(nil), channels[0]...)
	Dither(channels, Float32, rand.New(rand.NewSource(1)))
	for i := range channels[0] {
		if channels[0][i] != original[i] {
			t.Fatalf("32-bit float export must skip dithering, sample %d changed", i)
		}
	}
}

func TestDitherPerturbsWithinQuantizationStep(t *testing.T) {
	channels := [][]float64{make([]float64, 1000)}
	Dither(channels, PCM16, rand.New(rand.NewSource(42)))

	q := quantizationStep(PCM16)
	for i, x := range channels[0] {
		if abs(x) > q {
			t.Fatalf("dithered sample %d = %v exceeds +/- one quantization step %v", i, x, q)
		}
	}
}

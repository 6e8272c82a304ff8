package wav

import (
	"math"
	"math/rand"
)

// Normalize scans the absolute peak P across every channel and, if P>0,
// scales all samples so the peak lands at targetDB (§4.10 Normalize,
// default -0.1 dB).
func Normalize(channels [][]float64, targetDB float64) {
	peak := 0.0
	for _, ch := range channels {
		for _, x := range ch {
			if a := abs(x); a > peak {
				peak = a
			}
		}
	}
	if peak <= 0 {
		return
	}
	targetLinear := dbToLinear(targetDB)
	scale := targetLinear / peak
	for _, ch := range channels {
		for i, x := range ch {
			ch[i] = x * scale
		}
	}
}

// Dither adds TPDF (triangular probability density function) dither ahead
// of quantization to depth, skipped entirely at 32-bit float (§4.10 TPDF
// dither). rng lets callers (and tests) supply a seeded source; nil uses
// a new source seeded with 1.
func Dither(channels [][]float64, depth BitDepth, rng *rand.Rand) {
	if depth == Float32 {
		return
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	q := quantizationStep(depth)
	for _, ch := range channels {
		for i, x := range ch {
			u1 := rng.Float64()
			u2 := rng.Float64()
			ch[i] = x + (u1-u2)*q
		}
	}
}

// quantizationStep returns q = 2^-bit_depth for the dither formula.
func quantizationStep(depth BitDepth) float64 {
	switch depth {
	case PCM16:
		return 1.0 / (1 << 16)
	case PCM24:
		return 1.0 / (1 << 24)
	default:
		return 0
	}
}

func dbToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

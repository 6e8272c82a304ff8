// Package meter implements the §4.8 analyzer node: a running RMS window,
// dB mapping to a normalized [0,1] meter value, and peak-hold with decay.
package meter

import "math"

// window is chosen for ~30ms at the engine's reference 44.1kHz rate; it is
// a sample count, not a duration, so analyzers at other rates simply get a
// slightly different window length rather than needing per-rate tuning.
const window = 1323 // ~30ms at 44.1kHz

const (
	peakHoldSeconds = 1.0
	peakDecayPerFrame = 0.02
	minDB = -60.0
	maxDB = 0.0
)

// Analyzer tracks a running RMS over the most recent ~30ms of samples and
// derives a normalized meter value plus a peak-hold indicator (§4.8).
type Analyzer struct {
	sampleRate float64

	ring      []float64
	pos       int
	filled    int
	sumSquare float64

	heldPeak     float64
	holdElapsed  float64
	holdExpired  bool
}

// NewAnalyzer creates an analyzer for the given sample rate.
func NewAnalyzer(sampleRate float64) *Analyzer {
	return &Analyzer{
		sampleRate: sampleRate,
		ring:       make([]float64, window),
	}
}

// Write feeds one sample into the running RMS window.
func (a *Analyzer) Write(sample float64) {
	old := a.ring[a.pos]
	a.sumSquare += sample*sample - old*old
	a.ring[a.pos] = sample
	a.pos = (a.pos + 1) % len(a.ring)
	if a.filled < len(a.ring) {
		a.filled++
	}
	if a.sumSquare < 0 {
		a.sumSquare = 0 // guard against float drift driving it negative
	}
}

// RMS returns the current running RMS value.
func (a *Analyzer) RMS() float64 {
	if a.filled == 0 {
		return 0
	}
	return math.Sqrt(a.sumSquare / float64(a.filled))
}

// Meter maps the current RMS to a normalized [0,1] value via
// 20*log10(max(rms,1e-5)) clamped to [-60,0]dB (§4.8).
func (a *Analyzer) Meter() float64 {
	rms := a.RMS()
	if rms < 1e-5 {
		rms = 1e-5
	}
	db := 20 * math.Log10(rms)
	if db < minDB {
		db = minDB
	}
	if db > maxDB {
		db = maxDB
	}
	return (db - minDB) / (maxDB - minDB)
}

// Tick advances peak-hold bookkeeping by one analysis frame (one call per
// block is the expected cadence). visual is the current meter value.
func (a *Analyzer) Tick(blockSeconds float64) float64 {
	visual := a.Meter()
	if visual > a.heldPeak {
		a.heldPeak = visual
		a.holdElapsed = 0
		a.holdExpired = false
		return a.heldPeak
	}
	if !a.holdExpired {
		a.holdElapsed += blockSeconds
		if a.holdElapsed >= peakHoldSeconds {
			a.holdExpired = true
		}
		return a.heldPeak
	}
	a.heldPeak -= peakDecayPerFrame
	if a.heldPeak < visual {
		a.heldPeak = visual
	}
	if a.heldPeak < 0 {
		a.heldPeak = 0
	}
	return a.heldPeak
}

// Peak returns the currently held peak value without advancing the hold
// timer (for pure reads between ticks).
func (a *Analyzer) Peak() float64 {
	return a.heldPeak
}

// Reset clears the analyzer to silence; the engine calls it on the master
// analyzers whenever the transport is stopped.
func (a *Analyzer) Reset() {
	for i := range a.ring {
		a.ring[i] = 0
	}
	a.sumSquare = 0
	a.filled = 0
	a.pos = 0
	a.heldPeak = 0
	a.holdElapsed = 0
	a.holdExpired = false
}

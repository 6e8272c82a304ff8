package pitch

import "math"

// Detector accumulates a 1024-sample analysis window and reports the
// fundamental frequency found by autocorrelation across the 80Hz..1000Hz
// period range (§4.6 Pitch detection). It processes one mono sample at a
// time so the caller can feed it directly from a block loop.
type Detector struct {
	sampleRate float64

	window    []float64
	fillCount int

	lastFreq float64
}

const analysisWindowSize = 1024
const noiseGateRMS = 0.01
const corrRatioThreshold = 0.5

// NewDetector creates a detector for the given sample rate.
func NewDetector(sampleRate float64) *Detector {
	return &Detector{
		sampleRate: sampleRate,
		window:     make([]float64, analysisWindowSize),
	}
}

// Feed appends one sample to the accumulating window. When the window
// fills, it runs detection and resets, per §4.6's "accumulating analysis
// window" model.
func (d *Detector) Feed(sample float64) {
	d.window[d.fillCount] = sample
	d.fillCount++
	if d.fillCount >= analysisWindowSize {
		d.detect()
		d.fillCount = 0
	}
}

// LastFrequency returns the most recently detected fundamental in Hz, or 0
// if the signal has never cleared the noise gate.
func (d *Detector) LastFrequency() float64 {
	return d.lastFreq
}

// detect runs one autocorrelation pass over the full window and stores
// the result in lastFreq (0 when the window is below the noise gate).
// Callers read the result through LastFrequency.
func (d *Detector) detect() {
	rms := 0.0
	for _, s := range d.window {
		rms += s * s
	}
	rms = math.Sqrt(rms / float64(len(d.window)))

	if rms < noiseGateRMS {
		d.lastFreq = 0
		return
	}

	minOffset := int(d.sampleRate / 1000) // 1000 Hz upper bound
	maxOffset := int(d.sampleRate / 80)    // 80 Hz lower bound
	if minOffset < 1 {
		minOffset = 1
	}
	if maxOffset >= len(d.window) {
		maxOffset = len(d.window) - 1
	}

	zeroLagEnergy := autocorrelate(d.window, 0)
	if zeroLagEnergy <= 0 {
		d.lastFreq = 0
		return
	}

	bestOffset := -1
	bestCorr := -math.MaxFloat64
	for offset := minOffset; offset <= maxOffset; offset += 2 {
		corr := autocorrelate(d.window, offset)
		if corr > bestCorr {
			bestCorr = corr
			bestOffset = offset
		}
	}

	if bestOffset > 0 && bestCorr > corrRatioThreshold*zeroLagEnergy {
		d.lastFreq = d.sampleRate / float64(bestOffset)
	}
	// Otherwise hold the last detected frequency (§4.6: "else hold last").
}

// autocorrelate computes the sum_i x[i]*x[i+offset] autocorrelation of
// window at the given lag, using only the overlapping region.
func autocorrelate(window []float64, offset int) float64 {
	n := len(window) - offset
	if n <= 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += window[i] * window[i+offset]
	}
	return sum
}

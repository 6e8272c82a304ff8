package plugin

import (
	"math"

	"github.com/oscilla-audio/engine/internal/model"
)

func init() {
	Register(model.PluginCompressor, newCompressor)
}

// compressorProcessor is a feed-forward peak compressor with one-pole
// attack/release smoothing of the gain-reduction envelope — the same
// shape of smoothing the biquad primitive uses for parameter changes
// (§4.1), applied here to the detector instead of a filter coefficient.
type compressorProcessor struct {
	sampleRate float64

	thresholdDB float64
	ratio       float64
	attackMS    float64
	releaseMS   float64
	makeupDB    float64

	envelope float64 // linear, tracks peak level
}

func newCompressor() Processor {
	return &compressorProcessor{
		thresholdDB: -18,
		ratio:       4,
		attackMS:    10,
		releaseMS:   80,
		makeupDB:    0,
	}
}

func (c *compressorProcessor) Prepare(sampleRate float64, blockSize int) {
	c.sampleRate = sampleRate
}

func (c *compressorProcessor) Process(channels [][]float64) {
	if c.sampleRate == 0 {
		c.sampleRate = 48000
	}
	attackCoeff := coeffFor(c.attackMS, c.sampleRate)
	releaseCoeff := coeffFor(c.releaseMS, c.sampleRate)
	makeup := math.Pow(10, c.makeupDB/20)
	thresholdLin := math.Pow(10, c.thresholdDB/20)

	// Detect on a mono sum of the block so stereo links rather than
	// pumping independently, then apply the same gain to every channel.
	n := 0
	if len(channels) > 0 {
		n = len(channels[0])
	}
	for i := 0; i < n; i++ {
		peak := 0.0
		for _, ch := range channels {
			a := math.Abs(ch[i])
			if a > peak {
				peak = a
			}
		}
		if peak > c.envelope {
			c.envelope += (peak - c.envelope) * attackCoeff
		} else {
			c.envelope += (peak - c.envelope) * releaseCoeff
		}

		gain := 1.0
		if c.envelope > thresholdLin && c.envelope > 0 {
			overDB := 20 * math.Log10(c.envelope/thresholdLin)
			reducedDB := overDB - overDB/c.ratio
			gain = math.Pow(10, -reducedDB/20)
		}
		gain *= makeup

		for _, ch := range channels {
			ch[i] *= gain
		}
	}
}

func coeffFor(ms, sampleRate float64) float64 {
	if ms <= 0 {
		return 1
	}
	tau := ms / 1000
	return 1 - math.Exp(-1/(tau*sampleRate))
}

func (c *compressorProcessor) SetParam(key string, value float64) {
	switch key {
	case "threshold_db":
		c.thresholdDB = clamp(value, -60, 0)
	case "ratio":
		c.ratio = clamp(value, 1, 20)
	case "attack_ms":
		c.attackMS = clamp(value, 0.1, 500)
	case "release_ms":
		c.releaseMS = clamp(value, 1, 2000)
	case "makeup_db":
		c.makeupDB = clamp(value, 0, 24)
	}
}

func (c *compressorProcessor) LatencySamples() int { return 0 }

func (c *compressorProcessor) Reset() {
	c.envelope = 0
}

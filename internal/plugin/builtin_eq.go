package plugin

import (
	"math"

	"github.com/oscilla-audio/engine/internal/dsp"
	"github.com/oscilla-audio/engine/internal/model"
)

func init() {
	Register(model.PluginEQ, newEQ)
	Register(model.PluginGain, newGain)
}

// eqProcessor is a single parametric peak/shelf band, configurable via
// freq/q/gain_db params. It has zero algorithmic latency.
type eqProcessor struct {
	sampleRate float64
	band       *dsp.Biquad

	freq   float64
	q      float64
	gainDB float64
	kind   dsp.BiquadKind
}

func newEQ() Processor {
	return &eqProcessor{freq: 1000, q: 0.707, gainDB: 0, kind: dsp.Peak}
}

func (e *eqProcessor) Prepare(sampleRate float64, blockSize int) {
	e.sampleRate = sampleRate
	e.band = dsp.NewBiquad(e.kind, sampleRate, e.freq, e.q, e.gainDB)
}

func (e *eqProcessor) Process(channels [][]float64) {
	if e.band == nil {
		return
	}
	for _, ch := range channels {
		for i, x := range ch {
			ch[i] = e.band.Process(x)
		}
	}
}

func (e *eqProcessor) SetParam(key string, value float64) {
	switch key {
	case "freq":
		e.freq = clamp(value, 20, 20000)
	case "q":
		e.q = clamp(value, 0.1, 18)
	case "gain_db":
		e.gainDB = clamp(value, -24, 24)
	case "kind":
		e.kind = dsp.BiquadKind(clamp(value, 0, 6))
	default:
		return
	}
	if e.band != nil {
		e.band.SetTarget(e.freq, e.q, e.gainDB)
	}
}

func (e *eqProcessor) LatencySamples() int { return 0 }

func (e *eqProcessor) Reset() {
	if e.band != nil {
		e.band.Reset()
	}
}

// gainProcessor is the simplest possible insert: a scalar multiply, used
// both directly (PluginGain) and as a building block other tests reach for.
type gainProcessor struct {
	gainDB float64
	linear float64
}

func newGain() Processor {
	return &gainProcessor{linear: 1}
}

func (g *gainProcessor) Prepare(sampleRate float64, blockSize int) {}

func (g *gainProcessor) Process(channels [][]float64) {
	for _, ch := range channels {
		for i, x := range ch {
			ch[i] = x * g.linear
		}
	}
}

func (g *gainProcessor) SetParam(key string, value float64) {
	if key != "gain_db" {
		return
	}
	g.gainDB = clamp(value, -60, 24)
	g.linear = dbToLinear(g.gainDB)
}

func (g *gainProcessor) LatencySamples() int { return 0 }
func (g *gainProcessor) Reset()              {}

func dbToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

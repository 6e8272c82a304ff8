package plugin

import (
	"github.com/oscilla-audio/engine/internal/dsp"
	"github.com/oscilla-audio/engine/internal/model"
)

func init() {
	Register(model.PluginDelay, newDelay)
}

// delayProcessor is a feedback delay line. It advertises an integer-sample
// algorithmic latency (§3 PluginInstance.Latency), exercising the §4.3 PDC
// path from a real insert rather than only from graph-level synthetic
// latency in tests.
type delayProcessor struct {
	sampleRate float64

	timeMS   float64
	feedback float64
	mix      float64
	samples  int

	lines []*dsp.RingBuffer
}

func newDelay() Processor {
	return &delayProcessor{timeMS: 250, feedback: 0.3, mix: 0.3}
}

func (d *delayProcessor) Prepare(sampleRate float64, blockSize int) {
	d.sampleRate = sampleRate
	maxSamples := int(sampleRate*2) + 1 // up to 2s delay
	d.lines = []*dsp.RingBuffer{
		dsp.NewRingBuffer(maxSamples),
		dsp.NewRingBuffer(maxSamples),
	}
	d.applyDelay()
}

func (d *delayProcessor) applyDelay() {
	d.samples = int(d.timeMS / 1000 * d.sampleRate)
	if d.samples < 1 {
		d.samples = 1
	}
}

func (d *delayProcessor) Process(channels [][]float64) {
	for ci, ch := range channels {
		var line *dsp.RingBuffer
		switch {
		case ci < len(d.lines):
			line = d.lines[ci]
		case len(d.lines) > 0:
			line = d.lines[len(d.lines)-1]
		default:
			continue
		}
		for i, x := range ch {
			tapped := line.Read(d.samples)
			line.Write(x + tapped*d.feedback)
			ch[i] = x*(1-d.mix) + tapped*d.mix
		}
	}
}

func (d *delayProcessor) SetParam(key string, value float64) {
	switch key {
	case "time_ms":
		d.timeMS = clamp(value, 1, 2000)
		d.applyDelay()
	case "feedback":
		d.feedback = clamp(value, 0, 0.95)
	case "mix":
		d.mix = clamp(value, 0, 1)
	}
}

func (d *delayProcessor) LatencySamples() int {
	return d.samples
}

func (d *delayProcessor) Reset() {
	for _, l := range d.lines {
		l.Reset()
	}
}

package plugin

import (
	"github.com/oscilla-audio/engine/internal/dsp"
	"github.com/oscilla-audio/engine/internal/mains"
	"github.com/oscilla-audio/engine/internal/model"
)

func init() {
	Register(model.PluginHumRemover, newHumRemover)
}

// humRemoverProcessor is a narrow notch at the electrical mains frequency
// (50/60Hz) plus its second harmonic, the supplemented "hum-remover"
// built-in described in SPEC_FULL.md. Its default frequency comes from
// mains.Frequency(), detected from the host's local timezone, rather than
// a fixed 60Hz guess.
type humRemoverProcessor struct {
	sampleRate float64
	freq       float64
	width      float64
	notches    []*dsp.Biquad
}

func newHumRemover() Processor {
	return &humRemoverProcessor{
		freq:  float64(mains.Frequency()),
		width: 2.0, // quality factor
	}
}

func (h *humRemoverProcessor) Prepare(sampleRate float64, blockSize int) {
	h.sampleRate = sampleRate
	h.notches = []*dsp.Biquad{
		dsp.NewBiquad(dsp.Notch, sampleRate, h.freq, h.width, 0),
		dsp.NewBiquad(dsp.Notch, sampleRate, h.freq*2, h.width, 0),
	}
}

func (h *humRemoverProcessor) Process(channels [][]float64) {
	if len(h.notches) == 0 {
		return
	}
	for _, ch := range channels {
		for i, x := range ch {
			y := x
			for _, n := range h.notches {
				y = n.Process(y)
			}
			ch[i] = y
		}
	}
}

func (h *humRemoverProcessor) SetParam(key string, value float64) {
	switch key {
	case "freq":
		h.freq = clamp(value, 40, 70)
	case "width":
		h.width = clamp(value, 0.5, 10)
	default:
		return
	}
	if len(h.notches) == 2 {
		h.notches[0].SetTarget(h.freq, h.width, 0)
		h.notches[1].SetTarget(h.freq*2, h.width, 0)
	}
}

func (h *humRemoverProcessor) LatencySamples() int { return 0 }

func (h *humRemoverProcessor) Reset() {
	for _, n := range h.notches {
		n.Reset()
	}
}

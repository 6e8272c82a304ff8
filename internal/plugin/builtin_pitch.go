package plugin

import (
	"github.com/oscilla-audio/engine/internal/model"
	"github.com/oscilla-audio/engine/internal/pitch"
)

func init() {
	Register(model.PluginPitchCorrect, newPitchCorrect)
}

// pitchCorrectProcessor exposes the §4.6 pitch engine as an ordinary
// insert: one mono pitch.Engine per channel, since stereo is duplicated
// rather than cross-correlated (§4.6 "stereo is duplicated"). It
// advertises zero latency -- the granular shifter trades pitch for a
// bounded grain-sized smear, not a reported algorithmic delay, matching
// the source's own treatment of pitch-correction as a zero-PDC insert.
type pitchCorrectProcessor struct {
	engines []*pitch.Engine

	sampleRate float64
	rootKey    int
	scale      pitch.Scale
	amount     float64
	retune     float64
}

func newPitchCorrect() Processor {
	return &pitchCorrectProcessor{
		scale:  pitch.Chromatic,
		amount: 0,
		retune: 0.5,
	}
}

// scaleOrder maps the "scale" parameter's integer index to one of the
// fixed §4.6 scales, so a plain float64 SetParam can select among them.
var scaleOrder = []pitch.Scale{
	pitch.Chromatic,
	pitch.Major,
	pitch.Minor,
	pitch.HarmonicMinor,
	pitch.Pentatonic,
	pitch.TrapDark,
}

func (p *pitchCorrectProcessor) Prepare(sampleRate float64, blockSize int) {
	p.sampleRate = sampleRate
	p.engines = []*pitch.Engine{pitch.NewEngine(sampleRate), pitch.NewEngine(sampleRate)}
	p.applyParams()
}

func (p *pitchCorrectProcessor) applyParams() {
	for _, e := range p.engines {
		e.RootKey = p.rootKey
		e.ScaleID = p.scale
		e.Amount = p.amount
		e.Retune = p.retune
	}
}

func (p *pitchCorrectProcessor) Process(channels [][]float64) {
	for ci, ch := range channels {
		var e *pitch.Engine
		switch {
		case ci < len(p.engines):
			e = p.engines[ci]
		case len(p.engines) > 0:
			e = p.engines[len(p.engines)-1]
		default:
			continue
		}
		e.ProcessBlock(ch)
	}
}

// SetParam accepts the parameters §4.6 exposes: root_key (0..11), scale
// (an index into the fixed scale set), amount (wet/dry) and retune_speed.
func (p *pitchCorrectProcessor) SetParam(key string, value float64) {
	switch key {
	case "root_key":
		p.rootKey = int(clamp(value, 0, 11))
	case "scale":
		idx := int(clamp(value, 0, float64(len(scaleOrder)-1)))
		p.scale = scaleOrder[idx]
	case "amount":
		p.amount = clamp(value, 0, 1)
	case "retune_speed":
		p.retune = clamp(value, 0, 1)
	default:
		return
	}
	p.applyParams()
}

func (p *pitchCorrectProcessor) LatencySamples() int { return 0 }

func (p *pitchCorrectProcessor) Reset() {
	for _, e := range p.engines {
		*e = *pitch.NewEngine(p.sampleRate)
	}
	p.applyParams()
}

// Feedback exposes the per-channel UI feedback of the first engine (§4.6
// UI feedback), matching the single-feed the host's meter bridge expects
// per insert instance.
func (p *pitchCorrectProcessor) Feedback() pitch.Feedback {
	if len(p.engines) == 0 {
		return pitch.Feedback{}
	}
	return p.engines[0].LastFeedback()
}

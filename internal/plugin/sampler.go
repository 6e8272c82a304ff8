package plugin

import (
	"github.com/oscilla-audio/engine/internal/dsp"
	"github.com/oscilla-audio/engine/internal/model"
)

// Sampler and DrumRack are the §9 "drum rack and sampler... modeled as
// plug-ins over a MIDI input stream" generators. They live in this package
// because they share its ADSR/envelope primitives and latency-free
// contract, but they generate source audio (§4.2 step 1) rather than
// transform it, so they implement NoteGenerator instead of Processor.

// NoteGenerator is driven by the track chain's source stage directly from
// a MIDI clip's note list; it is not part of the insert chain.
type NoteGenerator interface {
	Prepare(sampleRate float64, blockSize int)
	NoteOn(pitch int, velocity float64)
	NoteOff(pitch int)
	Render(out [][]float64)
}

type samplerVoice struct {
	pitch    int
	velocity float64
	readPos  float64
	env      *dsp.Envelope
}

// Sampler plays a single loaded buffer at unity pitch for every note,
// shaped by a shared ADSR (§3 DrumPad-adjacent "sampler" kind; §4.2).
// Transposition across pitches is deliberately out of scope for v1 — the
// buffer plays back at its native rate regardless of note pitch, matching
// how the teacher's domain (a one-shot podcast sampler pad) is used.
type Sampler struct {
	sampleRate float64
	buffer     *model.AudioBuffer

	attack, decay, sustain, release float64

	voices []*samplerVoice
}

// NewSampler creates an unloaded sampler with a fast default envelope.
func NewSampler() *Sampler {
	return &Sampler{attack: 0.002, decay: 0.05, sustain: 0.8, release: 0.2}
}

// LoadBuffer installs the one-shot source buffer (§6 loadSamplerBuffer).
func (s *Sampler) LoadBuffer(buf *model.AudioBuffer) {
	s.buffer = buf
}

// SetADSR reconfigures the envelope shared by every new voice (§6 setADSR).
func (s *Sampler) SetADSR(a, d, sus, r float64) {
	s.attack, s.decay, s.sustain, s.release = a, d, sus, r
}

func (s *Sampler) Prepare(sampleRate float64, blockSize int) {
	s.sampleRate = sampleRate
}

func (s *Sampler) NoteOn(pitch int, velocity float64) {
	env := dsp.NewEnvelope(s.sampleRate)
	env.SetADSR(s.attack, s.decay, s.sustain, s.release)
	env.Gate(true)
	s.voices = append(s.voices, &samplerVoice{pitch: pitch, velocity: velocity, env: env})
}

func (s *Sampler) NoteOff(pitch int) {
	for _, v := range s.voices {
		if v.pitch == pitch {
			v.env.Gate(false)
		}
	}
}

func (s *Sampler) Render(out [][]float64) {
	if s.buffer == nil || len(out) == 0 {
		return
	}
	n := len(out[0])
	alive := s.voices[:0]
	for _, v := range s.voices {
		for i := 0; i < n; i++ {
			if !v.env.Active() && v.readPos >= float64(s.buffer.Frames()) {
				continue
			}
			amp := v.env.Next() * v.velocity
			for c := range out {
				srcCh := v.readPos
				sample := readBufferFrac(s.buffer, c%len(s.buffer.Channels), srcCh)
				out[c][i] += sample * amp
			}
			v.readPos++
		}
		if v.env.Active() || v.readPos < float64(s.buffer.Frames()) {
			alive = append(alive, v)
		}
	}
	s.voices = alive
}

func readBufferFrac(buf *model.AudioBuffer, channel int, pos float64) float64 {
	frames := buf.Frames()
	if frames == 0 {
		return 0
	}
	i0 := int(pos)
	if i0 >= frames {
		return 0
	}
	i1 := i0 + 1
	frac := pos - float64(i0)
	a := buf.Channels[channel][i0]
	var b float64
	if i1 < frames {
		b = buf.Channels[channel][i1]
	} else {
		b = a
	}
	return a + (b-a)*frac
}

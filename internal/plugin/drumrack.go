package plugin

import (
	"github.com/oscilla-audio/engine/internal/dsp"
	"github.com/oscilla-audio/engine/internal/model"
)

type drumVoice struct {
	pad      *model.DrumPad
	readPos  float64
	env      *dsp.Envelope
	velocity float64
}

// DrumRack fires one voice per pad (§4.2 step 1: "for drum rack, voice per
// pad"), honoring each pad's own gain/pan/mute/solo rather than the shared
// ADSR the Sampler uses — pads are one-shots, not sustained notes.
type DrumRack struct {
	sampleRate float64
	pads       []*model.DrumPad
	voices     []*drumVoice
}

// NewDrumRack wires up against the track's fixed 30-pad set (§3).
func NewDrumRack(pads []*model.DrumPad) *DrumRack {
	return &DrumRack{pads: pads}
}

func (d *DrumRack) Prepare(sampleRate float64, blockSize int) {
	d.sampleRate = sampleRate
}

// Trigger fires a one-shot voice for the given pad id and velocity (§6
// triggerPad). Out-of-range ids are ignored (OutOfRange, §7).
func (d *DrumRack) Trigger(padID int, velocity float64) {
	var pad *model.DrumPad
	for _, p := range d.pads {
		if p.ID == padID {
			pad = p
			break
		}
	}
	if pad == nil || pad.Buffer == nil || pad.Mute {
		return
	}
	env := dsp.NewEnvelope(d.sampleRate)
	env.SetADSR(0.001, 0.02, 1.0, 0.05)
	env.Gate(true)
	d.voices = append(d.voices, &drumVoice{pad: pad, env: env, velocity: velocity})
}

func anyPadSoloed(pads []*model.DrumPad) bool {
	for _, p := range pads {
		if p.Solo {
			return true
		}
	}
	return false
}

// Render mixes every active one-shot voice into out, applying each pad's
// own gain/pan and the drum-rack-local solo rule (mirrors §3's
// solo-effective invariant, scoped to pads instead of tracks).
func (d *DrumRack) Render(out [][]float64) {
	if len(out) == 0 {
		return
	}
	n := len(out[0])
	soloed := anyPadSoloed(d.pads)

	alive := d.voices[:0]
	for _, v := range d.voices {
		effective := !v.pad.Mute && (!soloed || v.pad.Solo)
		left, right := dsp.PanGains(v.pad.Pan)
		for i := 0; i < n; i++ {
			if !v.env.Active() && v.readPos >= float64(v.pad.Buffer.Frames()) {
				continue
			}
			amp := v.env.Next() * v.velocity * v.pad.Gain
			if effective {
				mono := readBufferFrac(v.pad.Buffer, 0, v.readPos)
				if len(out) > 0 {
					out[0][i] += mono * amp * left
				}
				if len(out) > 1 {
					out[1][i] += mono * amp * right
				}
			}
			v.readPos++
		}
		if v.env.Active() || v.readPos < float64(v.pad.Buffer.Frames()) {
			alive = append(alive, v)
		}
	}
	d.voices = alive
}

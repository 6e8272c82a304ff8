package engine

import (
	"github.com/oscilla-audio/engine/internal/ids"
	"github.com/oscilla-audio/engine/internal/model"
)

// LoadDrumSample installs buf into padID on trackID's drum rack (§6
// loadDrumSample). Rejected as InvalidCommand if the track isn't a drum
// rack, and as OutOfRange if padID isn't 1..30 (§3 pad numbering).
func (e *Engine) LoadDrumSample(trackID ids.ID, padID int, buf *model.AudioBuffer) error {
	t, err := e.lookupTrack(trackID)
	if err != nil {
		return err
	}
	if t.Kind != model.KindDrumRack {
		return errf(InvalidCommand, "track %q is not a drum rack", trackID)
	}
	if padID < 1 || padID > len(t.DrumPads) {
		return errf(OutOfRange, "pad id %d out of range [1,%d]", padID, len(t.DrumPads))
	}
	return e.enqueue(func(e *Engine) error {
		t, err := e.findTrack(trackID)
		if err != nil {
			return err
		}
		for _, pad := range t.DrumPads {
			if pad.ID == padID {
				pad.Buffer = buf
				return nil
			}
		}
		return errf(OutOfRange, "pad id %d not found", padID)
	})
}

// TriggerPad fires a one-shot drum voice on trackID's rack (§6 triggerPad).
func (e *Engine) TriggerPad(trackID ids.ID, padID int, velocity float64) error {
	t, err := e.lookupTrack(trackID)
	if err != nil {
		return err
	}
	if t.Kind != model.KindDrumRack {
		return errf(InvalidCommand, "track %q is not a drum rack", trackID)
	}
	if padID < 1 || padID > len(t.DrumPads) {
		return errf(OutOfRange, "pad id %d out of range [1,%d]", padID, len(t.DrumPads))
	}
	return e.enqueue(func(e *Engine) error {
		ch, ok := e.chains[trackID]
		if !ok {
			return errf(UnknownID, "no chain for track %q", trackID)
		}
		ch.TriggerPad(padID, velocity)
		return nil
	})
}

// LoadSamplerBuffer installs trackID's one-shot sampler source (§6
// loadSamplerBuffer).
func (e *Engine) LoadSamplerBuffer(trackID ids.ID, buf *model.AudioBuffer) error {
	t, err := e.lookupTrack(trackID)
	if err != nil {
		return err
	}
	if t.Kind != model.KindSampler {
		return errf(InvalidCommand, "track %q is not a sampler", trackID)
	}
	return e.enqueue(func(e *Engine) error {
		ch, ok := e.chains[trackID]
		if !ok {
			return errf(UnknownID, "no chain for track %q", trackID)
		}
		s := ch.Sampler()
		if s == nil {
			return errf(InvalidCommand, "track %q has no sampler generator", trackID)
		}
		s.LoadBuffer(buf)
		return nil
	})
}

// SetADSR reconfigures trackID's sampler envelope (§6 setADSR).
func (e *Engine) SetADSR(trackID ids.ID, a, d, s, r float64) error {
	t, err := e.lookupTrack(trackID)
	if err != nil {
		return err
	}
	if t.Kind != model.KindSampler {
		return errf(InvalidCommand, "track %q is not a sampler", trackID)
	}
	return e.enqueue(func(e *Engine) error {
		ch, ok := e.chains[trackID]
		if !ok {
			return errf(UnknownID, "no chain for track %q", trackID)
		}
		sampler := ch.Sampler()
		if sampler == nil {
			return errf(InvalidCommand, "track %q has no sampler generator", trackID)
		}
		sampler.SetADSR(a, d, s, r)
		return nil
	})
}

package engine

import "github.com/oscilla-audio/engine/internal/model"

// PrepareForRecording enters the §4.5 zero-latency record path: every
// insert that contributes algorithmic latency is frozen (bypassed but
// parameter-preserving) and PDC compensation is disabled globally so
// monitoring stays at the lowest possible round-trip latency.
func (e *Engine) PrepareForRecording() error {
	return e.enqueue(func(e *Engine) error {
		e.pdcWasEnabled = e.project.PDCEnabled
		e.project.PDCEnabled = false
		e.project.RecMode = model.RecModeArmed
		e.project.IsRecording = true
		for _, t := range e.project.Tracks {
			for _, ins := range t.Inserts {
				if ins.Latency > 0 {
					ins.Frozen = true
				}
			}
		}
		return nil
	})
}

// FinalizeRecording reverses PrepareForRecording: unfreezes inserts and
// restores whatever PDC setting was active before recording started
// (§4.5).
func (e *Engine) FinalizeRecording() error {
	return e.enqueue(func(e *Engine) error {
		e.project.PDCEnabled = e.pdcWasEnabled
		e.project.RecMode = model.RecModeOff
		e.project.IsRecording = false
		for _, t := range e.project.Tracks {
			for _, ins := range t.Inserts {
				ins.Frozen = false
			}
		}
		return nil
	})
}

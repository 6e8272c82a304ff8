package engine

import (
	"github.com/oscilla-audio/engine/internal/automation"
	"github.com/oscilla-audio/engine/internal/ids"
	"github.com/oscilla-audio/engine/internal/model"
)

// RegisterAutomatable registers a track or plug-in parameter with the
// automation manager so it participates in Read/Write/Latch (§4.7). A
// host calls this once per automatable parameter when a track or insert
// is created; apply is invoked with the interpolated value every block
// the manager drives it.
func (e *Engine) RegisterAutomatable(id string, target model.ParamTarget, min, max float64, bridged bool, apply func(float64)) error {
	return e.enqueue(func(e *Engine) error {
		e.automation.Register(automation.Registration{
			ID: id, Target: target, Min: min, Max: max, Bridged: bridged, Apply: apply,
		})
		return nil
	})
}

// Touch marks an automated parameter as user-touched (§4.7 Write/Latch).
func (e *Engine) Touch(paramID string) error {
	return e.enqueue(func(e *Engine) error {
		e.automation.Touch(paramID)
		return nil
	})
}

// Release clears an automated parameter's touched flag (§4.7 Write:
// "on release, p leaves touched").
func (e *Engine) Release(paramID string) error {
	return e.enqueue(func(e *Engine) error {
		e.automation.Release(paramID)
		return nil
	})
}

// WriteAutomationValue applies a user-driven parameter change at the
// current transport time, recording a breakpoint under Write/Latch mode
// rules (§4.7 Write).
func (e *Engine) WriteAutomationValue(paramID string, value float64) error {
	return e.enqueue(func(e *Engine) error {
		e.automation.SetValue(paramID, value, e.scheduler.CurrentTime(e.audioNow))
		return nil
	})
}

// LoadAutomation replaces trackID's automation lanes wholesale, as when a
// host restores a persisted DAWState (§6 loadAutomation). Both the
// snapshot copy on model.Track (what GetState/SaveState round-trip) and
// the automation manager's own registered lane (what Read-mode playback
// actually interpolates from) are updated, so a loaded project's
// breakpoints take effect in Read mode rather than only in the persisted
// document.
func (e *Engine) LoadAutomation(trackID ids.ID, lanes []*model.AutomationLane) error {
	if _, err := e.lookupTrack(trackID); err != nil {
		return err
	}
	return e.enqueue(func(e *Engine) error {
		t, err := e.findTrack(trackID)
		if err != nil {
			return err
		}
		t.AutomationLanes = lanes
		for _, lane := range lanes {
			lane.Target.TrackID = trackID
			e.automation.LoadLane(lane)
		}
		return nil
	})
}

// Feedback exposes the automation manager's UI feedback channel (§4.7 UI
// feedback): a host drains this to drive meter/knob widgets without
// polling GetState every frame.
func (e *Engine) Feedback() <-chan automation.FeedbackEvent {
	return e.automation.Feedback()
}

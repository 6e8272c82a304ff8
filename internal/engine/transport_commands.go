package engine

import (
	"github.com/oscilla-audio/engine/internal/automation"
	"github.com/oscilla-audio/engine/internal/model"
)

// Play starts playback from startOffset seconds, or resumes from the
// current position when startOffset is nil (§4.4 transport commands).
func (e *Engine) Play(startOffset *float64) error {
	return e.enqueue(func(e *Engine) error {
		if startOffset != nil {
			if *startOffset < 0 {
				return errf(OutOfRange, "start offset must be non-negative, got %f", *startOffset)
			}
			e.scheduler.Seek(e.audioNow, *startOffset)
			e.project.CurrentTime = *startOffset
		}
		e.scheduler.Start(e.audioNow)
		e.project.IsPlaying = true
		return nil
	})
}

// Stop halts playback, latching the current project time as the resume
// point (§4.4).
func (e *Engine) Stop() error {
	return e.enqueue(func(e *Engine) error {
		e.scheduler.Stop(e.audioNow)
		e.project.IsPlaying = false
		e.project.CurrentTime = e.scheduler.CurrentTime(e.audioNow)
		return nil
	})
}

// Seek relocates the transport to target seconds (§4.4 Seek).
func (e *Engine) Seek(target float64) error {
	if target < 0 {
		return errf(OutOfRange, "seek target must be non-negative, got %f", target)
	}
	return e.enqueue(func(e *Engine) error {
		e.scheduler.Seek(e.audioNow, target)
		e.project.CurrentTime = target
		return nil
	})
}

// SetBPM changes the project tempo (§3: used by hosts that quantize note
// start times to musical positions; the engine itself schedules in
// absolute seconds, so this only affects how a host interprets the grid).
func (e *Engine) SetBPM(bpm float64) error {
	if bpm <= 0 {
		return errf(OutOfRange, "bpm must be positive, got %f", bpm)
	}
	return e.enqueue(func(e *Engine) error {
		e.project.BPM = bpm
		return nil
	})
}

// SetLoop configures the loop region (§4.4 Loop).
func (e *Engine) SetLoop(active bool, start, end float64) error {
	if active && end <= start {
		return errf(OutOfRange, "loop end %f must be after start %f", end, start)
	}
	if start < 0 {
		return errf(OutOfRange, "loop start must be non-negative, got %f", start)
	}
	return e.enqueue(func(e *Engine) error {
		e.scheduler.SetLoop(active, start, end)
		e.project.LoopActive = active
		e.project.LoopStart = start
		e.project.LoopEnd = end
		return nil
	})
}

// SetLatencyMode reconfigures the scheduler's tick/lookahead tradeoff
// (§4.4, §6 latency mode table).
func (e *Engine) SetLatencyMode(mode model.LatencyMode) error {
	return e.enqueue(func(e *Engine) error {
		e.scheduler.SetLatencyMode(mode)
		return nil
	})
}

// SetAutomationMode switches the automation manager's Off/Read/Write/Latch
// state (§4.7).
func (e *Engine) SetAutomationMode(mode automation.Mode) error {
	return e.enqueue(func(e *Engine) error {
		e.automation.SetMode(mode)
		return nil
	})
}

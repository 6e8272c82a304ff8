package engine

import (
	"context"

	"github.com/oscilla-audio/engine/internal/ids"
	"github.com/oscilla-audio/engine/internal/render"
)

// RenderRequest mirrors render.Request in the façade's own vocabulary so
// callers outside internal/ don't need to import it directly.
type RenderRequest struct {
	DurationSeconds    float64
	StartOffsetSeconds float64
	TargetSampleRate   int
	Progress           func(float64)
}

// RenderProject drives the full mix graph offline at faster-than-realtime
// speed (§4.9), reading a live snapshot of the current track list under
// the engine's mutex so a concurrent ProcessBlock never observes a
// half-rendered project. ctx cancellation stops the render early and
// surfaces as RenderCancelled (§7).
func (e *Engine) RenderProject(ctx context.Context, req RenderRequest) ([][]float64, error) {
	e.mu.Lock()
	tracks := e.project.Tracks
	e.mu.Unlock()

	out, err := render.Render(ctx, render.Request{
		Tracks:             tracks,
		DurationSeconds:    req.DurationSeconds,
		StartOffsetSeconds: req.StartOffsetSeconds,
		TargetSampleRate:   req.TargetSampleRate,
		Progress:           req.Progress,
	})
	if err == context.Canceled || err == context.DeadlineExceeded {
		return out, errf(RenderCancelled, "render cancelled: %v", err)
	}
	return out, err
}

// RenderStem renders only trackID's contribution to the mix (§4.9 stem
// export), reusing the same snapshot-under-lock discipline as
// RenderProject.
func (e *Engine) RenderStem(ctx context.Context, trackID ids.ID, req RenderRequest) ([][]float64, error) {
	e.mu.Lock()
	tracks := e.project.Tracks
	e.mu.Unlock()

	if e.project.FindTrack(trackID) == nil {
		return nil, errf(UnknownID, "no track with id %q", trackID)
	}

	out, err := render.RenderStem(ctx, render.Request{
		Tracks:             tracks,
		DurationSeconds:    req.DurationSeconds,
		StartOffsetSeconds: req.StartOffsetSeconds,
		TargetSampleRate:   req.TargetSampleRate,
		Progress:           req.Progress,
	}, trackID)
	if err == context.Canceled || err == context.DeadlineExceeded {
		return out, errf(RenderCancelled, "render cancelled: %v", err)
	}
	return out, err
}

// Save persists the current project to a YAML document at path (§6, §9
// supplemented project load/save).
func (e *Engine) Save(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return SaveState(e.project, path)
}

// Load replaces the engine's project with the document at path, rebuilding
// every chain from scratch. Clip buffers are left nil; the host must
// rehydrate them from Source before playback resumes (§6). Every loaded
// track's automation lanes are also handed to the automation manager
// (LoadAutomation's wiring, inlined here since this path replaces the
// whole project rather than one track) so Read-mode playback picks up the
// persisted breakpoints immediately rather than only the GetState
// snapshot.
func (e *Engine) Load(path string) error {
	project, err := LoadState(path)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.project = project
	e.rebuildChains()
	for _, t := range e.project.Tracks {
		for _, lane := range t.AutomationLanes {
			lane.Target.TrackID = t.ID
			e.automation.LoadLane(lane)
		}
	}
	e.publish()
	return nil
}

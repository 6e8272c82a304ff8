package engine

import (
	"github.com/oscilla-audio/engine/internal/graph"
	"github.com/oscilla-audio/engine/internal/ids"
	"github.com/oscilla-audio/engine/internal/model"
)

// AddTrack creates a new track of kind, routed to master, and returns its
// id (§3, §4.3).
func (e *Engine) AddTrack(kind model.TrackKind, name string) (ids.ID, error) {
	t := model.NewTrack(kind, name)
	if err := e.enqueue(func(e *Engine) error {
		e.project.Tracks = append(e.project.Tracks, t)
		e.rebuildChains()
		return nil
	}); err != nil {
		return "", err
	}
	return t.ID, nil
}

// DeleteTrack removes a track and any send pointing at it, rebuilding
// chains afterward (§3).
func (e *Engine) DeleteTrack(id ids.ID) error {
	if id == ids.Master {
		return errf(InvalidRouting, "cannot delete master")
	}
	if _, err := e.lookupTrack(id); err != nil {
		return err
	}
	return e.enqueue(func(e *Engine) error {
		tracks := e.project.Tracks[:0]
		for _, t := range e.project.Tracks {
			if t.ID == id {
				continue
			}
			tracks = append(tracks, t)
		}
		e.project.Tracks = tracks
		for _, t := range e.project.Tracks {
			if t.OutputTrackID == id {
				t.OutputTrackID = ids.Master
			}
			filtered := t.Sends[:0]
			for _, s := range t.Sends {
				if s.DestinationID != id {
					filtered = append(filtered, s)
				}
			}
			t.Sends = filtered
		}
		delete(e.chains, id)
		delete(e.compensation, id)
		delete(e.compensationCap, id)
		e.rebuildChains()
		return nil
	})
}

// TrackPatch is the set of track-level fields UpdateTrack may change; a
// nil field is left untouched (§3).
type TrackPatch struct {
	Name    *string
	Color   *string
	IsMuted *bool
	IsSolo  *bool
	IsArmed *bool
	Volume  *float64
	Pan     *float64
}

// UpdateTrack applies patch to track id's simple fields (§3). Volume and
// pan are clamped to their documented ranges.
func (e *Engine) UpdateTrack(id ids.ID, patch TrackPatch) error {
	if _, err := e.lookupTrack(id); err != nil {
		return err
	}
	return e.enqueue(func(e *Engine) error {
		t, err := e.findTrack(id)
		if err != nil {
			return err
		}
		if patch.Name != nil {
			t.Name = *patch.Name
		}
		if patch.Color != nil {
			t.Color = *patch.Color
		}
		if patch.IsMuted != nil {
			t.IsMuted = *patch.IsMuted
		}
		if patch.IsSolo != nil {
			t.IsSolo = *patch.IsSolo
		}
		if patch.IsArmed != nil {
			t.IsArmed = *patch.IsArmed
		}
		if patch.Volume != nil {
			t.Volume = clampRange(*patch.Volume, 0, 1.5)
		}
		if patch.Pan != nil {
			t.Pan = clampRange(*patch.Pan, -1, 1)
		}
		return nil
	})
}

// SetOutput reroutes trackID's output to destID, rejecting any change that
// would introduce a routing cycle (§4.3).
func (e *Engine) SetOutput(trackID, destID ids.ID) error {
	e.mu.Lock()
	_, err := e.findTrack(trackID)
	if err == nil {
		if _, err2 := e.findTrack(destID); err2 != nil && destID != ids.Master {
			err = err2
		} else if !graph.ValidDestination(e.project.Tracks, trackID, destID) {
			err = errf(InvalidRouting, "routing %s to %s would create a cycle", trackID, destID)
		}
	}
	e.mu.Unlock()
	if err != nil {
		return err
	}
	return e.enqueue(func(e *Engine) error {
		t, err := e.findTrack(trackID)
		if err != nil {
			return err
		}
		if !graph.ValidDestination(e.project.Tracks, trackID, destID) {
			return errf(InvalidRouting, "routing %s to %s would create a cycle", trackID, destID)
		}
		t.OutputTrackID = destID
		e.graphPub.Publish(e.project.Tracks)
		return nil
	})
}

// SetSend creates or updates trackID's send to destID at the given level
// and enabled state (§3).
func (e *Engine) SetSend(trackID, destID ids.ID, level float64, enabled bool) error {
	if _, err := e.lookupTrack(trackID); err != nil {
		return err
	}
	if _, err := e.lookupTrack(destID); err != nil {
		return err
	}
	level = clampRange(level, 0, 1.5)
	return e.enqueue(func(e *Engine) error {
		t, err := e.findTrack(trackID)
		if err != nil {
			return err
		}
		for _, s := range t.Sends {
			if s.DestinationID == destID {
				s.Level = level
				s.IsEnabled = enabled
				return nil
			}
		}
		t.Sends = append(t.Sends, &model.Send{DestinationID: destID, Level: level, IsEnabled: enabled})
		return nil
	})
}

// ReorderTracks moves the track at position src to position dst in the
// project's track order (§6 reorderTracks). Order is presentation only --
// it has no effect on routing or processing order, which the mix graph's
// topological sort always derives fresh -- but it's what a persisted
// project's track list displays in, so SaveState/GetState round-trip
// whatever order this leaves behind. Position 0 is always the master
// track and can neither be moved nor displaced.
func (e *Engine) ReorderTracks(src, dst int) error {
	e.mu.Lock()
	n := len(e.project.Tracks)
	e.mu.Unlock()
	if err := validateReorderIndices(src, dst, n); err != nil {
		return err
	}
	return e.enqueue(func(e *Engine) error {
		tracks := e.project.Tracks
		if err := validateReorderIndices(src, dst, len(tracks)); err != nil {
			return err
		}
		t := tracks[src]
		tracks = append(tracks[:src], tracks[src+1:]...)
		rest := append([]*model.Track{t}, tracks[dst:]...)
		e.project.Tracks = append(tracks[:dst], rest...)
		e.graphPub.Publish(e.project.Tracks)
		return nil
	})
}

func validateReorderIndices(src, dst, n int) error {
	if src < 1 || src >= n || dst < 1 || dst >= n {
		return errf(OutOfRange, "reorder indices must be in [1,%d), got src=%d dst=%d", n, src, dst)
	}
	return nil
}

func clampRange(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

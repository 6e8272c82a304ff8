package engine

import (
	"github.com/oscilla-audio/engine/internal/ids"
	"github.com/oscilla-audio/engine/internal/model"
)

// AddClip appends clip to trackID's clip list, minting an id if clip.ID is
// empty, and rejects it outright if it violates the §3 clip invariants.
func (e *Engine) AddClip(trackID ids.ID, clip *model.Clip) (ids.ID, error) {
	if _, err := e.lookupTrack(trackID); err != nil {
		return "", err
	}
	sourceLength := 0.0
	if clip.Buffer != nil {
		sourceLength = float64(clip.Buffer.Frames()) / float64(clip.Buffer.SampleRate)
	}
	if !clip.Valid(sourceLength) {
		return "", errf(OutOfRange, "clip fails validity invariants")
	}
	if clip.ID.Empty() {
		clip.ID = ids.New()
	}
	err := e.enqueue(func(e *Engine) error {
		t, err := e.findTrack(trackID)
		if err != nil {
			return err
		}
		t.Clips = append(t.Clips, clip)
		return nil
	})
	if err != nil {
		return "", err
	}
	return clip.ID, nil
}

// ClipEdit names one of the §6 clip editing operations.
type ClipEdit string

const (
	ClipUpdateProps ClipEdit = "update_props"
	ClipSplitAt     ClipEdit = "split_at"
	ClipDuplicate   ClipEdit = "duplicate"
	ClipDelete      ClipEdit = "delete"
	ClipNormalize   ClipEdit = "normalize"
	ClipRename      ClipEdit = "rename"
	ClipReverse     ClipEdit = "reverse"
)

// ClipPatch carries the fields ClipUpdateProps may change; nil fields are
// left untouched.
type ClipPatch struct {
	Start    *float64
	Duration *float64
	Offset   *float64
	FadeIn   *float64
	FadeOut  *float64
	Gain     *float64
	IsMuted  *bool
}

// EditClip performs one of the §6 clip operations against trackID/clipID.
// payload's meaning depends on op: *ClipPatch for update_props, float64
// split time for split_at, string for rename, nil otherwise.
func (e *Engine) EditClip(trackID, clipID ids.ID, op ClipEdit, payload any) error {
	if _, err := e.lookupTrack(trackID); err != nil {
		return err
	}
	return e.enqueue(func(e *Engine) error {
		t, err := e.findTrack(trackID)
		if err != nil {
			return err
		}
		idx := -1
		for i, c := range t.Clips {
			if c.ID == clipID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return errf(UnknownID, "no clip %q on track %q", clipID, trackID)
		}
		clip := t.Clips[idx]
		switch op {
		case ClipUpdateProps:
			patch, ok := payload.(*ClipPatch)
			if !ok {
				return errf(InvalidCommand, "update_props requires a *ClipPatch payload")
			}
			patched := *clip
			applyClipPatch(&patched, patch)
			if !patched.Valid(0) {
				return errf(OutOfRange, "patched clip fails validity invariants")
			}
			*clip = patched
		case ClipSplitAt:
			at, ok := payload.(float64)
			if !ok {
				return errf(InvalidCommand, "split_at requires a float64 payload")
			}
			tail, err := splitClip(clip, at)
			if err != nil {
				return err
			}
			t.Clips = append(t.Clips, tail)
		case ClipDuplicate:
			dup := *clip
			dup.ID = ids.New()
			t.Clips = append(t.Clips, &dup)
		case ClipDelete:
			t.Clips = append(t.Clips[:idx], t.Clips[idx+1:]...)
		case ClipNormalize:
			normalizeClipGain(clip)
		case ClipRename:
			// Clips have no name field in §3; rename is a no-op reserved for
			// future metadata, accepted rather than rejected so hosts that
			// always send it after a drag-rename don't need special-casing.
		case ClipReverse:
			clip.Reverse = !clip.Reverse
		default:
			return errf(InvalidCommand, "unknown clip edit op %q", op)
		}
		return nil
	})
}

func applyClipPatch(clip *model.Clip, patch *ClipPatch) {
	if patch.Start != nil {
		clip.Start = *patch.Start
	}
	if patch.Duration != nil {
		clip.Duration = *patch.Duration
	}
	if patch.Offset != nil {
		clip.Offset = *patch.Offset
	}
	if patch.FadeIn != nil {
		clip.FadeIn = *patch.FadeIn
	}
	if patch.FadeOut != nil {
		clip.FadeOut = *patch.FadeOut
	}
	if patch.Gain != nil {
		clip.Gain = *patch.Gain
	}
	if patch.IsMuted != nil {
		clip.IsMuted = *patch.IsMuted
	}
}

// splitClip divides clip at project time "at" into two back-to-back
// clips, returning the new tail; the original clip record is shortened in
// place to become the head.
func splitClip(clip *model.Clip, at float64) (*model.Clip, error) {
	if at <= clip.Start || at >= clip.End() {
		return nil, errf(OutOfRange, "split point %f outside clip [%f,%f)", at, clip.Start, clip.End())
	}
	headDuration := at - clip.Start
	tail := &model.Clip{
		ID:       ids.New(),
		Kind:     clip.Kind,
		Start:    at,
		Duration: clip.Duration - headDuration,
		Offset:   clip.Offset + headDuration,
		FadeOut:  clip.FadeOut,
		Gain:     clip.Gain,
		Reverse:  clip.Reverse,
		IsMuted:  clip.IsMuted,
		Source:   clip.Source,
		Buffer:   clip.Buffer,
	}
	clip.Duration = headDuration
	clip.FadeOut = 0
	return tail, nil
}

// normalizeClipGain scales clip.Gain so the clip's rehydrated buffer peaks
// at unity, mirroring the offline pipeline's normalize step (§4.10) but
// applied as a non-destructive per-clip gain rather than rewriting
// samples.
func normalizeClipGain(clip *model.Clip) {
	if clip.Buffer == nil {
		return
	}
	peak := 0.0
	for _, ch := range clip.Buffer.Channels {
		for _, v := range ch {
			if a := abs64(v); a > peak {
				peak = a
			}
		}
	}
	if peak > 1e-9 {
		clip.Gain = 1.0 / peak
	}
}

func abs64(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

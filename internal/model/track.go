// Package model holds the engine's plain data model (§3): tracks, clips,
// plug-in instances, sends, automation lanes, drum pads and the top-level
// project state. Types here are pure data — the realtime behavior that
// operates on them lives in sibling packages (track, graph, transport,
// automation, render).
package model

import "github.com/oscilla-audio/engine/internal/ids"

// TrackKind enumerates the families of track in §3.
type TrackKind int

const (
	KindAudio TrackKind = iota
	KindMIDI
	KindBus
	KindSend
	KindSampler
	KindDrumRack
)

// Track is the mutable per-track record described in §3. Mutation only
// ever happens on the audio thread via commands drained from the façade's
// queue (§5); everything else is a read of a published snapshot.
type Track struct {
	ID      ids.ID
	Name    string
	Color   string
	Kind    TrackKind

	IsMuted  bool
	IsSolo   bool
	IsArmed  bool
	IsFrozen bool

	Volume float64 // [0, 1.5], linear gain (§9 Open Question b)
	Pan    float64 // [-1, 1]

	InputID       string // external input identifier, host-defined; empty if none
	OutputTrackID ids.ID // destination; defaults to ids.Master

	Inserts []*PluginInstance
	Sends   []*Send

	Clips            []*Clip
	AutomationLanes  []*AutomationLane

	TotalLatency int // accumulated samples (§3 invariant, §4.3)

	// Sampler/drum-rack specific state; nil for other kinds.
	DrumPads []*DrumPad
}

// NewTrack creates a track routed to master with identity gain/pan and no
// content, matching the defaults a host's "add track" command expects.
func NewTrack(kind TrackKind, name string) *Track {
	t := &Track{
		ID:            ids.New(),
		Name:          name,
		Kind:          kind,
		Volume:        1.0,
		Pan:           0.0,
		OutputTrackID: ids.Master,
	}
	if kind == KindDrumRack {
		t.DrumPads = NewDrumRack()
	}
	return t
}

// EffectiveSolo implements the §3 solo-effective invariant: a track is
// effective iff some track is soloed and this one of them, or no track is
// soloed at all. Pass the full track list for the project.
func EffectiveSolo(tracks []*Track, track *Track) bool {
	anySolo := false
	for _, t := range tracks {
		if t.IsSolo {
			anySolo = true
			break
		}
	}
	if !anySolo {
		return true
	}
	return track.IsSolo
}

// Silenced reports whether the fader stage should zero this track's signal:
// muted, or non-effective under the solo rule (§3, §4.3 Solo semantics).
func Silenced(tracks []*Track, track *Track) bool {
	if track.IsMuted {
		return true
	}
	return !EffectiveSolo(tracks, track)
}

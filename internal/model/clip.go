package model

import "github.com/oscilla-audio/engine/internal/ids"

// Clip is the per-region record of §3. Exactly one of Buffer or Notes is
// meaningful, selected by Kind mirroring the owning track.
type Clip struct {
	ID ids.ID

	Kind TrackKind

	Start    float64 // seconds, timeline position
	Duration float64 // seconds
	Offset   float64 // seconds, playback offset inside the source
	FadeIn   float64 // seconds
	FadeOut  float64 // seconds
	Gain     float64 // linear
	Reverse  bool

	IsMuted bool

	// Source is a stable reference (URL or content hash) used by the host
	// to rehydrate Buffer; the engine never resolves it itself (§1, §3).
	Source string
	Buffer *AudioBuffer // nil until rehydrated by the host; absent => silence

	Notes []*MidiNote
}

// MidiNote is a single note event owned by a MIDI clip (§3).
type MidiNote struct {
	ID       ids.ID
	Pitch    int     // 0..127
	Start    float64 // seconds, relative to clip start
	Duration float64 // seconds
	Velocity float64 // 0..1
}

// AudioBuffer is a decoded, host-rehydrated multichannel PCM buffer at some
// fixed sample rate. It is treated as immutable and reference-counted by
// the clips/drum pads that point at it (§5 Shared resources).
type AudioBuffer struct {
	SampleRate int
	Channels   [][]float64 // Channels[c][frame]
	refs       int
}

// Frames reports the buffer's length in samples.
func (b *AudioBuffer) Frames() int {
	if b == nil || len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

// Retain increments the reference count; a buffer reaching zero references
// is eligible for eviction by the host's buffer cache (§3 Lifecycle).
func (b *AudioBuffer) Retain() {
	if b != nil {
		b.refs++
	}
}

// Release decrements the reference count and reports whether it reached
// zero.
func (b *AudioBuffer) Release() bool {
	if b == nil {
		return false
	}
	b.refs--
	return b.refs <= 0
}

// Valid checks the §3 clip invariants against a known source length (in
// seconds); sourceLength may be 0 if unknown (buffer not yet rehydrated),
// in which case the offset bound is skipped.
func (c *Clip) Valid(sourceLength float64) bool {
	if c.Start < 0 || c.Duration <= 0 {
		return false
	}
	if c.FadeIn < 0 || c.FadeOut < 0 || c.FadeIn+c.FadeOut > c.Duration {
		return false
	}
	if c.Offset < 0 {
		return false
	}
	if sourceLength > 0 && c.Offset >= sourceLength {
		return false
	}
	return true
}

// End returns the clip's end time on the timeline.
func (c *Clip) End() float64 {
	return c.Start + c.Duration
}

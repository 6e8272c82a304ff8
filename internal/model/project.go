package model

import "github.com/oscilla-audio/engine/internal/ids"

// RecMode selects the input monitoring / recording latency behavior (§4.5).
type RecMode int

const (
	RecModeOff RecMode = iota
	RecModeArmed
)

// LatencyMode selects the scheduler's lookahead/tick tradeoff (§4.4, §6).
type LatencyMode int

const (
	LatencyLow LatencyMode = iota
	LatencyBalanced
	LatencyHigh
)

// TickWindow returns the (tick interval, lookahead window) pair in
// milliseconds for a latency mode, per the §6 table.
func (m LatencyMode) TickWindow() (tickMS, windowMS float64) {
	switch m {
	case LatencyLow:
		return 15, 40
	case LatencyHigh:
		return 50, 200
	default:
		return 25, 100
	}
}

// ProjectState is the top-level engine state of §3.
type ProjectState struct {
	BPM   float64
	Key   string // optional, empty if unset
	Scale string // optional, empty if unset

	IsPlaying   bool
	IsRecording bool
	CurrentTime float64 // seconds

	LoopActive bool
	LoopStart  float64
	LoopEnd    float64

	Tracks        []*Track
	SelectedTrack ids.ID

	RecMode          RecMode
	PDCEnabled       bool
	SystemMaxLatency int // samples
}

// NewProjectState returns a freshly initialized project: 120 BPM, PDC on,
// a single master bus, nothing else — mirroring what a host's "new
// project" command would hand the engine.
func NewProjectState() *ProjectState {
	master := NewTrack(KindBus, "Master")
	master.ID = ids.Master
	master.OutputTrackID = ""
	return &ProjectState{
		BPM:        120,
		PDCEnabled: true,
		Tracks:     []*Track{master},
	}
}

// FindTrack returns the track with the given id, or nil.
func (p *ProjectState) FindTrack(id ids.ID) *Track {
	for _, t := range p.Tracks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

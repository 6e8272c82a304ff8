package model

import "github.com/oscilla-audio/engine/internal/ids"

// ParamTarget identifies an automatable parameter: either a track
// parameter (PluginID empty) or a plug-in parameter on a track (§3).
type ParamTarget struct {
	TrackID  ids.ID
	PluginID ids.ID // empty for a track-level parameter (volume, pan, ...)
	Param    string
}

// Breakpoint is one (time, value) point on an automation lane (§3).
type Breakpoint struct {
	Time  float64 // seconds
	Value float64
}

// AutomationLane is the per-parameter breakpoint list of §3. Breakpoints
// must remain strictly increasing in time (§3 invariant, §8).
type AutomationLane struct {
	ID         ids.ID
	Target     ParamTarget
	Breakpoints []Breakpoint
	Min, Max   float64
	IsExpanded bool // UI hint only, no engine semantics
}

// NewAutomationLane creates an empty lane over [min,max].
func NewAutomationLane(target ParamTarget, min, max float64) *AutomationLane {
	return &AutomationLane{ID: ids.New(), Target: target, Min: min, Max: max}
}

// Insert adds a breakpoint, keeping the slice sorted and collapsing any
// point at the same timestamp (the automation manager is responsible for
// the stronger 50ms collapse rule of §4.7; this only enforces strict
// monotonicity of the stored representation).
func (l *AutomationLane) Insert(bp Breakpoint) {
	for i, existing := range l.Breakpoints {
		if existing.Time == bp.Time {
			l.Breakpoints[i] = bp
			return
		}
		if existing.Time > bp.Time {
			l.Breakpoints = append(l.Breakpoints, Breakpoint{})
			copy(l.Breakpoints[i+1:], l.Breakpoints[i:])
			l.Breakpoints[i] = bp
			return
		}
	}
	l.Breakpoints = append(l.Breakpoints, bp)
}

// ValueAt linearly interpolates the lane at time t, clamping to the first
// or last breakpoint's value outside the lane's range (§4.7, §8).
func (l *AutomationLane) ValueAt(t float64) float64 {
	n := len(l.Breakpoints)
	if n == 0 {
		return l.Min
	}
	if t <= l.Breakpoints[0].Time {
		return l.Breakpoints[0].Value
	}
	if t >= l.Breakpoints[n-1].Time {
		return l.Breakpoints[n-1].Value
	}
	// Binary search for the bracketing pair.
	lo, hi := 0, n-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if l.Breakpoints[mid].Time <= t {
			lo = mid
		} else {
			hi = mid
		}
	}
	a, b := l.Breakpoints[lo], l.Breakpoints[hi]
	if b.Time == a.Time {
		return a.Value
	}
	frac := (t - a.Time) / (b.Time - a.Time)
	return a.Value + (b.Value-a.Value)*frac
}

// DrumPad is a single pad slot of the drum rack (§3). Pads are numbered
// 1..30 and map to MIDI note 60+(id-1).
type DrumPad struct {
	ID     int
	Buffer *AudioBuffer
	Gain   float64
	Pan    float64
	Mute   bool
	Solo   bool
}

// NewDrumRack allocates the fixed 30-pad set with identity gain/pan.
func NewDrumRack() []*DrumPad {
	pads := make([]*DrumPad, 30)
	for i := range pads {
		pads[i] = &DrumPad{ID: i + 1, Gain: 1.0}
	}
	return pads
}

// MidiNoteForPad returns the MIDI note number a pad is mapped to (§3).
func MidiNoteForPad(padID int) int {
	return 60 + (padID - 1)
}

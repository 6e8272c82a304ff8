// Package automation implements the §4.7 automation manager: the
// Off/Read/Write/Latch mode state machine, the touched-parameter set,
// breakpoint collapsing, and the bridged-parameter apply throttle. It
// layers on top of model.AutomationLane, which only stores the raw
// breakpoint data.
package automation

import "github.com/oscilla-audio/engine/internal/model"

// Mode selects how registered parameters are read from or written to
// their lanes (§4.7).
type Mode int

const (
	Off Mode = iota
	Read
	Write
	Latch
)

// breakpointCollapseWindow is the §4.7 Write-mode rule: consecutive
// breakpoints within this many seconds of each other collapse into the
// latest rather than both being recorded.
const breakpointCollapseWindow = 0.050

// bridgedThrottleWindow is the §4.7 Read-mode rule for bridged parameters:
// apply at most once per this many seconds even if the interpolated value
// keeps changing.
const bridgedThrottleWindow = 0.030

// Registration describes one automatable parameter (§4.7): its stable id,
// target, default, apply callback, and whether its apply path is
// expensive enough to need throttling.
type Registration struct {
	ID      string
	Target  model.ParamTarget
	Default float64
	Min, Max float64
	Apply   func(value float64)
	Bridged bool
}

type paramState struct {
	reg  Registration
	lane *model.AutomationLane

	touched bool

	hasLastBreakpoint bool
	lastBreakpointTime float64

	hasLastApply bool
	lastApplyTime float64
	lastAppliedValue float64
}

// FeedbackEvent is one UI-visible applied-value notification (§4.7 UI
// feedback), delivered independent of any render cycle.
type FeedbackEvent struct {
	ID    string
	Value float64
}

// Manager runs the automation mode state machine over a set of registered
// parameters. One Manager per project.
type Manager struct {
	mode   Mode
	params map[string]*paramState

	// pending holds lanes handed to LoadLane before their parameter has
	// been registered yet -- e.g. a host loading a persisted project
	// before it has re-registered every automatable parameter on the
	// freshly rebuilt chains. Register consumes a matching pending lane
	// instead of starting the parameter from an empty one.
	pending map[model.ParamTarget]*model.AutomationLane

	// currentBlockTime is the project time of the block currently being
	// processed, set once per block via Advance so that ValueAt -- which
	// the track chain calls without a time argument -- reads the lane at
	// the right instant (§4.2 step 2, §4.7 Read).
	currentBlockTime float64

	feedback chan FeedbackEvent
}

// Advance records the project time of the block about to be processed;
// call once per block before any chain's Process runs.
func (m *Manager) Advance(blockTime float64) {
	m.currentBlockTime = blockTime
}

// NewManager creates a manager in Off mode with a buffered feedback
// channel; a host that never drains it simply stops receiving updates
// once the buffer fills; actual values always remain one ValueAt/ReadPass
// call away.
func NewManager() *Manager {
	return &Manager{
		params:   make(map[string]*paramState),
		pending:  make(map[model.ParamTarget]*model.AutomationLane),
		feedback: make(chan FeedbackEvent, 256),
	}
}

// SetMode switches the manager's mode (§4.7).
func (m *Manager) SetMode(mode Mode) { m.mode = mode }

// Mode returns the manager's current mode.
func (m *Manager) Mode() Mode { return m.mode }

// Register adds a parameter. If LoadLane was already called for this
// target -- a persisted project's breakpoints arriving before the host
// re-registers the parameter -- that lane is adopted in place of a fresh
// empty one.
func (m *Manager) Register(reg Registration) {
	lane, ok := m.pending[reg.Target]
	if ok {
		delete(m.pending, reg.Target)
	} else {
		lane = model.NewAutomationLane(reg.Target, reg.Min, reg.Max)
	}
	m.params[reg.ID] = &paramState{reg: reg, lane: lane}
}

// LoadLane replaces the breakpoints driving lane.Target's Read-mode
// playback (§6 loadAutomation), not just the persisted-snapshot copy on
// model.Track -- the registered paramState a running ValueAt/ReadPass
// actually reads from. If the target hasn't been registered yet, the
// lane is held until Register supplies it.
func (m *Manager) LoadLane(lane *model.AutomationLane) {
	if _, p := m.findByTarget(lane.Target); p != nil {
		p.lane = lane
		p.hasLastBreakpoint = len(lane.Breakpoints) > 0
		if p.hasLastBreakpoint {
			p.lastBreakpointTime = lane.Breakpoints[len(lane.Breakpoints)-1].Time
		}
		return
	}
	m.pending[lane.Target] = lane
}

// Feedback returns the read-only UI feedback channel (§4.7 UI feedback).
func (m *Manager) Feedback() <-chan FeedbackEvent { return m.feedback }

// Touch marks a parameter as user-touched, entering the touched set
// (§4.7 Write).
func (m *Manager) Touch(id string) {
	if p, ok := m.params[id]; ok {
		p.touched = true
	}
}

// Release removes a parameter from the touched set (§4.7 Write: "on
// release, p leaves touched").
func (m *Manager) Release(id string) {
	if p, ok := m.params[id]; ok {
		p.touched = false
	}
}

// SetValue applies a user-driven value change immediately and, depending
// on mode, records a breakpoint (§4.7 Write): in Write mode unconditionally,
// in Latch mode only if the parameter has already been touched this pass.
func (m *Manager) SetValue(id string, value float64, blockTime float64) {
	p, ok := m.params[id]
	if !ok {
		return
	}
	if p.reg.Apply != nil {
		p.reg.Apply(value)
	}

	shouldRecord := m.mode == Write || (m.mode == Latch && p.touched)
	if !shouldRecord {
		return
	}

	if p.hasLastBreakpoint && blockTime-p.lastBreakpointTime < breakpointCollapseWindow {
		// Collapse into the latest: overwrite rather than insert.
		p.lane.Breakpoints[len(p.lane.Breakpoints)-1] = model.Breakpoint{Time: blockTime, Value: value}
	} else {
		p.lane.Insert(model.Breakpoint{Time: blockTime, Value: value})
		p.hasLastBreakpoint = true
	}
	p.lastBreakpointTime = blockTime
}

// ReadPass runs one block's worth of Read-mode application: every
// registered, untouched parameter is interpolated from its lane and
// applied via callback, subject to the bridged throttle (§4.7 Read).
func (m *Manager) ReadPass(blockTime float64) {
	if m.mode != Read {
		return
	}
	for id, p := range m.params {
		if p.touched {
			continue
		}
		value := p.lane.ValueAt(blockTime)
		if p.reg.Bridged && p.hasLastApply && blockTime-p.lastApplyTime < bridgedThrottleWindow {
			continue
		}
		m.apply(id, p, value, blockTime)
	}
}

// ValueAt implements track.AutomationSource: it reports the current
// Read-mode value for target, or ok=false when the manager isn't driving
// that parameter this block (Off/Write mode, or the parameter is touched).
// While a bridged parameter's throttle window hasn't elapsed, it reports
// the last applied value with ok=true and does not apply again.
func (m *Manager) ValueAt(target model.ParamTarget) (float64, bool) {
	id, p := m.findByTarget(target)
	if p == nil || m.mode != Read || p.touched {
		return 0, false
	}
	if p.reg.Bridged && p.hasLastApply && m.currentBlockTime-p.lastApplyTime < bridgedThrottleWindow {
		return p.lastAppliedValue, true
	}
	value := p.lane.ValueAt(m.currentBlockTime)
	m.apply(id, p, value, m.currentBlockTime)
	return value, true
}

func (m *Manager) apply(id string, p *paramState, value, blockTime float64) {
	if p.reg.Apply != nil {
		p.reg.Apply(value)
	}
	p.hasLastApply = true
	p.lastApplyTime = blockTime
	p.lastAppliedValue = value
	select {
	case m.feedback <- FeedbackEvent{ID: id, Value: value}:
	default: // UI feedback is best-effort; a full channel just drops the update
	}
}

func (m *Manager) findByTarget(target model.ParamTarget) (string, *paramState) {
	for id, p := range m.params {
		if p.reg.Target == target {
			return id, p
		}
	}
	return "", nil
}

package engine

import (
	"sync"
	"sync/atomic"

	"github.com/oscilla-audio/engine/internal/automation"
	"github.com/oscilla-audio/engine/internal/diag"
	"github.com/oscilla-audio/engine/internal/dsp"
	"github.com/oscilla-audio/engine/internal/graph"
	"github.com/oscilla-audio/engine/internal/ids"
	"github.com/oscilla-audio/engine/internal/meter"
	"github.com/oscilla-audio/engine/internal/model"
	"github.com/oscilla-audio/engine/internal/track"
	"github.com/oscilla-audio/engine/internal/transport"
)

const blockSize = 512

// BlockSize is the number of frames ProcessBlock produces per call, for a
// realtime host sizing its audio callback's buffer to match (§5).
const BlockSize = blockSize

// Engine is the §4.11 façade: the only thing a host touches. Internally
// it owns the project, the per-track chains (§4.2), the mix graph
// publisher (§4.3), the transport scheduler (§4.4) and the automation
// manager (§4.7). mu guards every field the audio thread (ProcessBlock)
// mutates; the one genuinely lock-free path is GetState, which reads an
// atomically-published DAWState snapshot so a host polling the UI every
// frame never contends with the block loop (§4.11 "Snapshot reads are
// lock-free via sequence-number versioning").
type Engine struct {
	mu sync.Mutex

	project    *model.ProjectState
	sampleRate float64

	chains          map[ids.ID]*track.Chain
	graphPub        *graph.Publisher
	compensation    map[ids.ID][2]*dsp.DelayLine
	compensationCap map[ids.ID]int

	automation *automation.Manager
	scheduler  *transport.Scheduler
	epoch      transport.EpochID

	audioNow float64 // seconds, monotonic engine-local audio clock

	pdcWasEnabled bool // saved across PrepareForRecording/FinalizeRecording

	commands chan command

	seq       atomic.Uint64
	snapshot  atomic.Pointer[DAWState]
	analyzerL *meter.Analyzer
	analyzerR *meter.Analyzer
}

// New creates an engine over a fresh project at the given sample rate and
// balanced latency mode (§6 default).
func New(sampleRate float64) *Engine {
	e := &Engine{
		project:         model.NewProjectState(),
		sampleRate:      sampleRate,
		chains:          make(map[ids.ID]*track.Chain),
		graphPub:        &graph.Publisher{},
		compensation:    make(map[ids.ID][2]*dsp.DelayLine),
		compensationCap: make(map[ids.ID]int),
		automation:      automation.NewManager(),
		commands:        make(chan command, commandQueueCapacity),
		analyzerL:       meter.NewAnalyzer(sampleRate),
		analyzerR:       meter.NewAnalyzer(sampleRate),
	}
	e.scheduler = transport.NewScheduler(model.LatencyBalanced, schedulerSource{e}, e.dispatchEvent)
	e.rebuildChains()
	e.publish()
	return e
}

// schedulerSource adapts the engine's live track list to transport.Source
// (§4.4): it reports every clip start/stop and loop-relevant event whose
// project time falls in the requested window. Automation breakpoints are
// not separately materialized here -- the automation manager already
// re-evaluates every registered lane every block (§4.7 Read), so the
// scheduler's job narrows to the event families that need a discrete
// dispatch (clip boundaries, MIDI, loop wrap).
type schedulerSource struct{ e *Engine }

func (s schedulerSource) EventsInRange(start, end float64) []transport.Event {
	var events []transport.Event
	for _, t := range s.e.project.Tracks {
		for _, c := range t.Clips {
			if c.Start >= start && c.Start < end {
				events = append(events, transport.Event{Time: c.Start, Kind: transport.EventClipStart, TrackID: string(t.ID)})
			}
			if ce := c.End(); ce >= start && ce < end {
				events = append(events, transport.Event{Time: ce, Kind: transport.EventClipStop, TrackID: string(t.ID)})
			}
			for _, n := range c.Notes {
				noteStart := c.Start + n.Start
				noteEnd := noteStart + n.Duration
				if noteStart >= start && noteStart < end {
					events = append(events, transport.Event{Time: noteStart, Kind: transport.EventNoteOn, TrackID: string(t.ID), Pitch: n.Pitch})
				}
				if noteEnd >= start && noteEnd < end {
					events = append(events, transport.Event{Time: noteEnd, Kind: transport.EventNoteOff, TrackID: string(t.ID), Pitch: n.Pitch})
				}
			}
		}
	}
	return events
}

// dispatchEvent handles one scheduler-materialized event by driving the
// matching track chain (§4.4: "downstream DSP honors sub-block
// accuracy"; this engine applies note-on/off at dispatch time rather than
// splitting the block, which is close enough for anything coarser than
// sample-accurate MIDI timing and is the same approximation the offline
// renderer's fixed-block loop makes).
func (e *Engine) dispatchEvent(ev transport.Event) {
	if ev.Epoch < e.epoch {
		return // stale, cancelled by a later seek/loop wrap (§4.4 Cancellation)
	}
	switch ev.Kind {
	case transport.EventNoteOn:
		if ch, ok := e.chains[ids.ID(ev.TrackID)]; ok {
			ch.NoteOn(ev.Pitch, 1.0)
		}
	case transport.EventNoteOff:
		if ch, ok := e.chains[ids.ID(ev.TrackID)]; ok {
			ch.NoteOff(ev.Pitch)
		}
	}
}

// rebuildChains (re)creates a track.Chain for every track in the project,
// preserving nothing from any previous generation -- callers that mutate
// the track list always follow with rebuildChains so the chain set never
// drifts from the project (§4.2, §4.3).
func (e *Engine) rebuildChains() {
	chains := make(map[ids.ID]*track.Chain, len(e.project.Tracks))
	for _, t := range e.project.Tracks {
		ch := track.NewChain(t, e.sampleRate, blockSize)
		ch.SetAutomationSource(e.automation)
		chains[t.ID] = ch
	}
	e.chains = chains
	e.graphPub.Publish(e.project.Tracks)
}

// findTrack looks up a track by id, returning UnknownId if absent. Callers
// must already hold mu -- it is used both from inside enqueued command
// closures (where drainCommands holds the lock) and from lookupTrack
// below.
func (e *Engine) findTrack(id ids.ID) (*model.Track, error) {
	t := e.project.FindTrack(id)
	if t == nil {
		return nil, errf(UnknownID, "no track with id %q", id)
	}
	return t, nil
}

// lookupTrack is findTrack's lock-taking counterpart, for façade methods
// that validate against live project state before enqueuing a mutation.
// It holds the engine mutex only for the lookup itself.
func (e *Engine) lookupTrack(id ids.ID) (*model.Track, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.findTrack(id)
}

// diagLog reports a rejected command the way the audio thread's
// anomaly-counter path does for in-block failures, except here it's a
// host-visible synchronous error too (§7).
func diagLog(action string, err error) {
	if err != nil {
		diag.Logger.Warn("command rejected", "action", action, "error", err)
	}
}

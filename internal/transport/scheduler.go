// Package transport implements the §4.4 transport scheduler: a
// cooperative, tick-driven lookahead scheduler that materializes clip,
// MIDI and automation events ahead of the audio clock, with epoch-tagged
// cancellation for seeks and loop wraps.
package transport

import "github.com/oscilla-audio/engine/internal/model"

// EventKind enumerates the event families §4.4 names.
type EventKind int

const (
	EventClipStart EventKind = iota
	EventClipStop
	EventNoteOn
	EventNoteOff
	EventAutomationBreakpoint
	EventLoopWrap
)

// Event is one scheduled occurrence, tagged with the epoch it was
// materialized under so a downstream consumer can discard anything
// dispatched under a now-stale epoch (§4.4 Loop, Seek cancellation).
type Event struct {
	Epoch EpochID
	Time  float64 // project time, seconds
	Kind  EventKind
	TrackID string
	Pitch   int
}

// EpochID tags a batch of materialized events; it is bumped on every seek
// and loop wrap so a consumer can cheaply ignore events from before the
// bump (§4.4: "events already emitted...must be cancelled").
type EpochID int

// Source supplies every event whose project time falls in [start, end) --
// clip starts/stops, MIDI note on/off and automation breakpoints crossed
// in that window (§4.4). The façade implements this over the live track
// list; tests supply a fixed fixture.
type Source interface {
	EventsInRange(start, end float64) []Event
}

// Scheduler is the single-threaded cooperative scheduler of §4.4. It owns
// no audio state itself; Tick is driven by the host's timer or, in an
// offline render, by the renderer's fixed-block loop.
type Scheduler struct {
	tickMS, windowMS float64

	source   Source
	dispatch func(Event)

	t0       float64 // project_time = audio_time - t0
	playing  bool
	pausedAt float64

	loopActive       bool
	loopStart, loopEnd float64

	epoch            EpochID
	nextScheduleTime float64
}

// NewScheduler creates a scheduler at the given latency mode's tick and
// lookahead settings (§6 table, model.LatencyMode.TickWindow).
func NewScheduler(mode model.LatencyMode, source Source, dispatch func(Event)) *Scheduler {
	s := &Scheduler{source: source, dispatch: dispatch}
	s.SetLatencyMode(mode)
	return s
}

// SetLatencyMode reconfigures tick interval and lookahead window.
func (s *Scheduler) SetLatencyMode(mode model.LatencyMode) {
	s.tickMS, s.windowMS = mode.TickWindow()
}

// TickIntervalMS reports the configured tick interval, for a host timer to
// schedule itself against.
func (s *Scheduler) TickIntervalMS() float64 { return s.tickMS }

// Epoch returns the scheduler's current epoch; events tagged with an older
// epoch are stale and should be ignored by consumers.
func (s *Scheduler) Epoch() EpochID { return s.epoch }

// Start begins playback from the current paused position (§4.4
// Current-time query). audioNow is the host audio clock's current sample
// time expressed in seconds.
func (s *Scheduler) Start(audioNow float64) {
	if s.playing {
		return
	}
	s.epoch++
	s.t0 = audioNow - s.pausedAt
	s.playing = true
	s.nextScheduleTime = s.pausedAt
}

// Stop halts playback, latching the current project time as the resume
// point (§4.4 Current-time query).
func (s *Scheduler) Stop(audioNow float64) {
	if !s.playing {
		return
	}
	s.pausedAt = s.CurrentTime(audioNow)
	s.playing = false
}

// CurrentTime reports the project time at audioNow (§4.4 Current-time
// query).
func (s *Scheduler) CurrentTime(audioNow float64) float64 {
	if s.playing {
		return audioNow - s.t0
	}
	return s.pausedAt
}

// Seek relocates playback to target, cancelling any events already
// materialized into the lookahead window beyond the new position (§4.4
// Seek) by bumping the epoch.
func (s *Scheduler) Seek(audioNow, target float64) {
	s.epoch++
	if s.playing {
		s.t0 = audioNow - target
		s.nextScheduleTime = target
	} else {
		s.pausedAt = target
	}
}

// SetLoop configures the loop region; disabling it (active=false) leaves
// start/end untouched but stops loop-wrap handling in Tick.
func (s *Scheduler) SetLoop(active bool, start, end float64) {
	s.loopActive = active
	s.loopStart = start
	s.loopEnd = end
}

// Tick advances the schedule, materializing every event in the lookahead
// window that hasn't been emitted yet (§4.4). Call at the scheduler's own
// TickIntervalMS cadence, or once per fixed block from an offline render.
func (s *Scheduler) Tick(audioNow float64) {
	if !s.playing {
		return
	}
	now := s.CurrentTime(audioNow)
	windowEnd := now + s.windowMS/1000

	if s.nextScheduleTime >= windowEnd {
		return
	}

	end := windowEnd
	hitLoopEnd := false
	if s.loopActive && s.loopEnd > s.nextScheduleTime && end >= s.loopEnd {
		end = s.loopEnd
		hitLoopEnd = true
	}

	for _, e := range s.source.EventsInRange(s.nextScheduleTime, end) {
		e.Epoch = s.epoch
		s.dispatch(e)
	}
	s.nextScheduleTime = end

	if hitLoopEnd {
		s.performLoopWrap(audioNow)
	}
}

// performLoopWrap re-seeks to loop_start and cancels any events emitted
// beyond loop_end during lookahead (§4.4 Loop), by bumping the epoch
// before dispatching the wrap marker.
func (s *Scheduler) performLoopWrap(audioNow float64) {
	s.epoch++
	s.t0 = audioNow - s.loopStart
	s.nextScheduleTime = s.loopStart
	s.dispatch(Event{Epoch: s.epoch, Time: s.loopStart, Kind: EventLoopWrap})
}

package transport

import (
	"testing"

	"github.com/oscilla-audio/engine/internal/model"
)

type fixtureSource struct {
	events []Event
}

func (f fixtureSource) EventsInRange(start, end float64) []Event {
	var out []Event
	for _, e := range f.events {
		if e.Time >= start && e.Time < end {
			out = append(out, e)
		}
	}
	return out
}

func TestSchedulerDispatchesEventsInLookahead(t *testing.T) {
	src := fixtureSource{events: []Event{
		{Time: 0.05, Kind: EventClipStart},
		{Time: 5.0, Kind: EventClipStart}, // far outside the first window
	}}
	var dispatched []Event
	sched := NewScheduler(model.LatencyBalanced, src, func(e Event) {
		dispatched = append(dispatched, e)
	})

	sched.Start(0)
	sched.Tick(0)

	if len(dispatched) != 1 {
		t.Fatalf("expected exactly 1 event in the first lookahead window, got %d", len(dispatched))
	}
	if dispatched[0].Time != 0.05 {
		t.Fatalf("dispatched event time = %v, want 0.05", dispatched[0].Time)
	}
}

func TestSchedulerCurrentTimeTracksAudioClockWhilePlaying(t *testing.T) {
	sched := NewScheduler(model.LatencyBalanced, fixtureSource{}, func(Event) {})
	sched.Start(10) // audio clock at t=10s, project time starts at 0
	if got := sched.CurrentTime(10.5); got != 0.5 {
		t.Fatalf("CurrentTime = %v, want 0.5", got)
	}
}

func TestSchedulerStopLatchesPausedAt(t *testing.T) {
	sched := NewScheduler(model.LatencyBalanced, fixtureSource{}, func(Event) {})
	sched.Start(0)
	sched.Stop(2.0)
	if got := sched.CurrentTime(999); got != 2.0 {
		t.Fatalf("CurrentTime after stop = %v, want 2.0 (latched)", got)
	}
}

func TestSchedulerSeekBumpsEpoch(t *testing.T) {
	sched := NewScheduler(model.LatencyBalanced, fixtureSource{}, func(Event) {})
	sched.Start(0)
	before := sched.Epoch()
	sched.Seek(1.0, 3.0)
	if sched.Epoch() == before {
		t.Fatal("Seek should bump the epoch to cancel stale lookahead events")
	}
	if got := sched.CurrentTime(1.0); got != 3.0 {
		t.Fatalf("CurrentTime right after seek = %v, want 3.0", got)
	}
}

func TestSchedulerLoopWrapCancelsAndReseeds(t *testing.T) {
	// loop_end (0.05s) sits well inside the first 100ms lookahead window so
	// a single Tick crosses it.
	src := fixtureSource{events: []Event{
		{Time: 0.02, Kind: EventClipStart},
	}}
	var dispatched []Event
	sched := NewScheduler(model.LatencyBalanced, src, func(e Event) {
		dispatched = append(dispatched, e)
	})
	sched.SetLoop(true, 0, 0.05)
	sched.Start(0)
	epochBeforeTick := sched.Epoch()

	sched.Tick(0)

	if sched.Epoch() == epochBeforeTick {
		t.Fatal("crossing loop_end should bump the epoch")
	}
	last := dispatched[len(dispatched)-1]
	if last.Kind != EventLoopWrap {
		t.Fatalf("expected a loop wrap event dispatched last, got kind %v", last.Kind)
	}
	if got := sched.CurrentTime(0); got != 0 {
		t.Fatalf("after loop wrap, current time should reset to loop_start, got %v", got)
	}
}

func TestSchedulerStartIsIdempotentWhilePlaying(t *testing.T) {
	sched := NewScheduler(model.LatencyBalanced, fixtureSource{}, func(Event) {})
	sched.Start(0)
	epochAfterFirstStart := sched.Epoch()
	sched.Start(5) // already playing; should be a no-op
	if sched.Epoch() != epochAfterFirstStart {
		t.Fatal("calling Start while already playing should not bump epoch or reset t0")
	}
}

package engine

import (
	"testing"

	"github.com/oscilla-audio/engine/internal/model"
)

func TestSetOutputRejectsCycle(t *testing.T) {
	e := New(48000)
	a, err := e.AddTrack(model.KindBus, "a")
	if err != nil {
		t.Fatalf("AddTrack: %v", err)
	}
	b, err := e.AddTrack(model.KindBus, "b")
	if err != nil {
		t.Fatalf("AddTrack: %v", err)
	}
	e.ProcessBlock() // drain the AddTrack commands

	if err := e.SetOutput(b, a); err != nil {
		t.Fatalf("b -> a should be valid, got %v", err)
	}
	e.ProcessBlock()

	err = e.SetOutput(a, b)
	if err == nil {
		t.Fatal("a -> b should be rejected: b already routes into a")
	}
	var engErr *Error
	if !errorsAs(err, &engErr) || engErr.Kind != InvalidRouting {
		t.Fatalf("expected InvalidRouting, got %v", err)
	}
}

func TestSetOutputUnknownDestination(t *testing.T) {
	e := New(48000)
	a, err := e.AddTrack(model.KindBus, "a")
	if err != nil {
		t.Fatalf("AddTrack: %v", err)
	}
	e.ProcessBlock()

	err = e.SetOutput(a, "does-not-exist")
	if err == nil {
		t.Fatal("expected an error routing to an unknown track")
	}
}

func TestDeleteTrackRewritesDependentRouting(t *testing.T) {
	e := New(48000)
	a, _ := e.AddTrack(model.KindBus, "a")
	b, _ := e.AddTrack(model.KindBus, "b")
	e.ProcessBlock()

	if err := e.SetOutput(b, a); err != nil {
		t.Fatalf("SetOutput: %v", err)
	}
	e.ProcessBlock()

	if err := e.DeleteTrack(a); err != nil {
		t.Fatalf("DeleteTrack: %v", err)
	}
	e.ProcessBlock()

	state := e.GetState()
	for _, ts := range state.Tracks {
		if ts.ID == string(b) && ts.OutputTrackID != "master" {
			t.Fatalf("b's output should have been rerouted to master after a was deleted, got %q", ts.OutputTrackID)
		}
	}
}

func TestDeleteTrackRejectsMaster(t *testing.T) {
	e := New(48000)
	if err := e.DeleteTrack("master"); err == nil {
		t.Fatal("expected deleting the master track to be rejected")
	}
}

func TestReorderTracksMovesTrackToNewPosition(t *testing.T) {
	e := New(48000)
	a, _ := e.AddTrack(model.KindAudio, "a")
	b, _ := e.AddTrack(model.KindAudio, "b")
	c, _ := e.AddTrack(model.KindAudio, "c")
	e.ProcessBlock() // tracks end up [master, a, b, c]

	if err := e.ReorderTracks(1, 3); err != nil {
		t.Fatalf("ReorderTracks: %v", err)
	}
	e.ProcessBlock()

	state := e.GetState()
	want := []string{"master", string(b), string(c), string(a)}
	if len(state.Tracks) != len(want) {
		t.Fatalf("expected %d tracks, got %d", len(want), len(state.Tracks))
	}
	for i, id := range want {
		if state.Tracks[i].ID != id {
			t.Fatalf("position %d: got %q, want %q", i, state.Tracks[i].ID, id)
		}
	}
}

func TestReorderTracksRejectsMasterPosition(t *testing.T) {
	e := New(48000)
	e.AddTrack(model.KindAudio, "a")
	e.AddTrack(model.KindAudio, "b")
	e.ProcessBlock()

	if err := e.ReorderTracks(0, 1); err == nil {
		t.Fatal("expected reordering the master track (position 0) to be rejected")
	}
	if err := e.ReorderTracks(1, 0); err == nil {
		t.Fatal("expected reordering into the master position (0) to be rejected")
	}
}

func TestReorderTracksRejectsOutOfRange(t *testing.T) {
	e := New(48000)
	e.AddTrack(model.KindAudio, "a")
	e.ProcessBlock()

	if err := e.ReorderTracks(1, 5); err == nil {
		t.Fatal("expected an out-of-range dst index to be rejected")
	}
}

// errorsAs is a tiny local helper so these tests don't need to import
// "errors" just to unwrap the concrete *Error every façade method returns.
func errorsAs(err error, target **Error) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	*target = e
	return true
}

package graph

import (
	"testing"

	"github.com/oscilla-audio/engine/internal/ids"
	"github.com/oscilla-audio/engine/internal/model"
)

func track(id, out ids.ID) *model.Track {
	return &model.Track{ID: id, Kind: model.KindBus, OutputTrackID: out}
}

func TestValidDestinationRejectsSelfRoute(t *testing.T) {
	tracks := []*model.Track{track("a", "")}
	if ValidDestination(tracks, "a", "a") {
		t.Fatal("a track may not route to itself")
	}
}

func TestValidDestinationMasterAlwaysValid(t *testing.T) {
	tracks := []*model.Track{track("a", "")}
	if !ValidDestination(tracks, "a", ids.Master) {
		t.Fatal("master should always be a valid destination")
	}
}

func TestValidDestinationRejectsCycle(t *testing.T) {
	// b -> a, so routing a -> b would close a 2-cycle.
	tracks := []*model.Track{
		track("a", ""),
		track("b", "a"),
	}
	if ValidDestination(tracks, "a", "b") {
		t.Fatal("routing a -> b should be rejected: b already routes into a")
	}
}

func TestValidDestinationAcceptsAcyclicChain(t *testing.T) {
	tracks := []*model.Track{
		track("a", ""),
		track("b", ""),
		track("c", "b"),
	}
	if !ValidDestination(tracks, "a", "b") {
		t.Fatal("a -> b should be valid: no path back from b to a")
	}
}

func TestTopoSortPlacesMasterLast(t *testing.T) {
	master := track(ids.Master, "")
	a := track("a", ids.Master)
	b := track("b", ids.Master)
	tracks := []*model.Track{master, a, b}

	order := TopoSort(tracks)
	if order[len(order)-1].ID != ids.Master {
		t.Fatalf("master must sort last, got order %v", idsOf(order))
	}
}

func TestTopoSortProducersBeforeConsumers(t *testing.T) {
	master := track(ids.Master, "")
	bus := track("bus", ids.Master)
	leaf := track("leaf", "bus")
	tracks := []*model.Track{master, bus, leaf}

	order := TopoSort(tracks)
	pos := make(map[ids.ID]int)
	for i, t := range order {
		pos[t.ID] = i
	}
	if pos["leaf"] >= pos["bus"] {
		t.Fatalf("leaf (producer into bus) must sort before bus, got order %v", idsOf(order))
	}
	if pos["bus"] >= pos[ids.Master] {
		t.Fatalf("bus must sort before master, got order %v", idsOf(order))
	}
}

func TestTopoSortBreaksTiesByStableID(t *testing.T) {
	master := track(ids.Master, "")
	c := track("ccc", ids.Master)
	a := track("aaa", ids.Master)
	b := track("bbb", ids.Master)
	tracks := []*model.Track{master, c, a, b}

	order := TopoSort(tracks)
	if order[0].ID != "aaa" || order[1].ID != "bbb" || order[2].ID != "ccc" {
		t.Fatalf("siblings with no ordering constraint should tie-break by id, got %v", idsOf(order))
	}
}

func idsOf(tracks []*model.Track) []ids.ID {
	out := make([]ids.ID, len(tracks))
	for i, t := range tracks {
		out[i] = t.ID
	}
	return out
}

func TestPublisherPublishesFreshOrdering(t *testing.T) {
	var p Publisher
	master := track(ids.Master, "")
	a := track("a", ids.Master)
	p.Publish([]*model.Track{master, a})

	current := p.Current()
	if len(current.Tracks) != 2 {
		t.Fatalf("expected 2 tracks in published ordering, got %d", len(current.Tracks))
	}
	if current.Tracks[len(current.Tracks)-1].ID != ids.Master {
		t.Fatalf("published ordering should keep master last")
	}
}

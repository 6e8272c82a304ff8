// Package graph implements the §4.3 mix graph: destination validity
// (cycle prevention), topological ordering for the audio thread's block
// loop, and plug-in delay compensation accounting.
package graph

import (
	"sort"

	"github.com/oscilla-audio/engine/internal/ids"
	"github.com/oscilla-audio/engine/internal/model"
)

// maxRouteDepth bounds the destination-validity walk (§4.3: "depth bound
// (20)"), guaranteeing acyclicity without an unbounded graph walk on a
// potentially malformed project.
const maxRouteDepth = 20

// ValidDestination reports whether routing candidate's output to dest is
// legal: master is always valid except as its own destination; any other
// bus is valid iff walking its own output_track_id chain never re-enters
// candidate within maxRouteDepth hops (§4.3).
func ValidDestination(tracks []*model.Track, candidate, dest ids.ID) bool {
	if candidate == dest {
		return false
	}
	if dest == ids.Master {
		return true
	}
	byID := indexByID(tracks)
	cur := dest
	for depth := 0; depth < maxRouteDepth; depth++ {
		if cur == candidate {
			return false
		}
		t, ok := byID[cur]
		if !ok || t.OutputTrackID.Empty() {
			return true // reached a track with no further routing; acyclic
		}
		cur = t.OutputTrackID
	}
	return false // exceeded depth bound without resolving; reject conservatively
}

func indexByID(tracks []*model.Track) map[ids.ID]*model.Track {
	m := make(map[ids.ID]*model.Track, len(tracks))
	for _, t := range tracks {
		m[t.ID] = t
	}
	return m
}

// Ordering is a published linearization of the track list: producers
// appear before their consumers, with master last and ties broken by
// stable track id (§4.3).
type Ordering struct {
	Tracks []*model.Track
}

// snapshot holds the double-buffered published orderings (§4.3, §5). The
// active index is a plain int flipped after the inactive buffer is
// written; Publish and Current do no synchronization of their own.
type snapshot struct {
	buffers [2]Ordering
	active  int
}

// Publisher double-buffers Ordering publications so readers never observe
// a half-written graph.
type Publisher struct {
	snap snapshot
}

// Publish computes a fresh topological ordering from tracks and swaps it
// into the inactive buffer, then flips the active index.
func (p *Publisher) Publish(tracks []*model.Track) {
	next := 1 - p.snap.active
	p.snap.buffers[next] = Ordering{Tracks: TopoSort(tracks)}
	p.snap.active = next
}

// Current returns the most recently published ordering.
func (p *Publisher) Current() Ordering {
	return p.snap.buffers[p.snap.active]
}

// TopoSort linearizes tracks so that every track appears after all tracks
// that route into it, with master always last and ties broken by id
// (§4.3). It assumes the graph is already acyclic (enforced by
// ValidDestination at mutation time).
func TopoSort(tracks []*model.Track) []*model.Track {
	byID := indexByID(tracks)
	indegree := make(map[ids.ID]int, len(tracks))
	children := make(map[ids.ID][]ids.ID, len(tracks))

	for _, t := range tracks {
		if _, ok := indegree[t.ID]; !ok {
			indegree[t.ID] = 0
		}
		if !t.OutputTrackID.Empty() {
			if _, ok := byID[t.OutputTrackID]; ok {
				indegree[t.OutputTrackID]++
				children[t.ID] = append(children[t.ID], t.OutputTrackID)
			}
		}
	}

	var ready []ids.ID
	for _, t := range tracks {
		if indegree[t.ID] == 0 {
			ready = append(ready, t.ID)
		}
	}
	sortIDs(ready)

	var order []ids.ID
	visited := make(map[ids.ID]bool, len(tracks))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		if visited[id] {
			continue
		}
		visited[id] = true
		order = append(order, id)
		for _, dest := range children[id] {
			indegree[dest]--
			if indegree[dest] == 0 {
				ready = append(ready, dest)
				sortIDs(ready)
			}
		}
	}

	// Any track not reached (shouldn't happen in an acyclic graph) is
	// appended in input slice order rather than silently dropped.
	for _, t := range tracks {
		if !visited[t.ID] {
			order = append(order, t.ID)
			visited[t.ID] = true
		}
	}

	result := make([]*model.Track, 0, len(order))
	var master *model.Track
	for _, id := range order {
		t := byID[id]
		if id == ids.Master {
			master = t
			continue
		}
		result = append(result, t)
	}
	if master != nil {
		result = append(result, master)
	}
	return result
}

func sortIDs(ids_ []ids.ID) {
	sort.Slice(ids_, func(i, j int) bool { return ids_[i] < ids_[j] })
}

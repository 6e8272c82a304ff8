package render

import (
	"context"

	"github.com/oscilla-audio/engine/internal/ids"
	"github.com/oscilla-audio/engine/internal/model"
)

// RenderStem renders only activeTrack's contribution to the mix: every
// other leaf track is muted except the buses and sends on activeTrack's
// own routing path to master, matching §4.9's "host iterates per track
// setting all others to effectively muted except buses/sends on the
// active track's routing path" (the renderer itself is re-run unchanged).
// mutedTracks are restored to their original IsMuted value before
// returning, so callers may reuse the same track slice across stems.
func RenderStem(ctx context.Context, req Request, activeTrack ids.ID) ([][]float64, error) {
	keep := routingPath(req.Tracks, activeTrack)

	restore := make(map[ids.ID]bool, len(req.Tracks))
	for _, t := range req.Tracks {
		restore[t.ID] = t.IsMuted
		if !keep[t.ID] {
			t.IsMuted = true
		}
	}
	defer func() {
		for _, t := range req.Tracks {
			t.IsMuted = restore[t.ID]
		}
	}()

	return Render(ctx, req)
}

// routingPath returns the set of track ids that must stay audible for
// activeTrack's stem: itself plus every bus/send on its path to master.
func routingPath(tracks []*model.Track, activeTrack ids.ID) map[ids.ID]bool {
	byID := make(map[ids.ID]*model.Track, len(tracks))
	for _, t := range tracks {
		byID[t.ID] = t
	}

	keep := map[ids.ID]bool{activeTrack: true}
	cur := activeTrack
	for i := 0; i < graphMaxDepth(); i++ {
		t, ok := byID[cur]
		if !ok || t.OutputTrackID.Empty() {
			break
		}
		keep[t.OutputTrackID] = true
		cur = t.OutputTrackID
	}
	return keep
}

// graphMaxDepth mirrors the graph package's routing depth bound so stem
// path-walking can never loop on a malformed project.
func graphMaxDepth() int { return 20 }

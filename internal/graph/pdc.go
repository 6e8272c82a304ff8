package graph

import (
	"github.com/oscilla-audio/engine/internal/ids"
	"github.com/oscilla-audio/engine/internal/model"
)

// PDCResult carries the per-track latency accounting of §4.3: each
// track's accumulated total_latency plus the compensation delay to apply
// to its signal before it is mixed into its parent bus.
type PDCResult struct {
	TotalLatency      map[ids.ID]int
	CompensationDelay map[ids.ID]int
}

// ComputePDC walks ordering (producers before consumers, as returned by
// TopoSort) and computes total_latency and compensation delay for every
// track, per §4.3's plug-in delay compensation rule. With pdcEnabled=false
// or recMode=true, compensation delays are all zero and insert latencies
// are treated as zero, matching §4.5's zero-latency record path.
func ComputePDC(ordering []*model.Track, pdcEnabled, recMode bool) PDCResult {
	total := make(map[ids.ID]int, len(ordering))
	children := make(map[ids.ID][]ids.ID)

	for _, t := range ordering {
		if !t.OutputTrackID.Empty() {
			children[t.OutputTrackID] = append(children[t.OutputTrackID], t.ID)
		}
	}

	for _, t := range ordering {
		own := 0
		if pdcEnabled && !recMode {
			for _, inst := range t.Inserts {
				own += inst.EffectiveLatency(pdcEnabled, recMode)
			}
		}
		total[t.ID] = own + maxChildLatency(children[t.ID], total)
	}

	comp := make(map[ids.ID]int, len(ordering))
	if !pdcEnabled || recMode {
		for _, t := range ordering {
			comp[t.ID] = 0
		}
		return PDCResult{TotalLatency: total, CompensationDelay: comp}
	}

	for parent, kids := range children {
		_ = parent
		maxLatency := 0
		for _, k := range kids {
			if total[k] > maxLatency {
				maxLatency = total[k]
			}
		}
		for _, k := range kids {
			comp[k] = maxLatency - total[k]
		}
	}
	return PDCResult{TotalLatency: total, CompensationDelay: comp}
}

func maxChildLatency(kids []ids.ID, total map[ids.ID]int) int {
	max := 0
	for _, k := range kids {
		if total[k] > max {
			max = total[k]
		}
	}
	return max
}

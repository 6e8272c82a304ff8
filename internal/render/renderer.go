// Package render implements the §4.9 offline renderer: a faster-than-
// realtime, deterministic drive of the exact same per-track chains and
// mix graph used live, with PDC always enabled, used for master and stem
// export (§4.10 hands the result to the WAV pipeline).
package render

import (
	"context"
	"fmt"

	"github.com/oscilla-audio/engine/internal/dsp"
	"github.com/oscilla-audio/engine/internal/graph"
	"github.com/oscilla-audio/engine/internal/ids"
	"github.com/oscilla-audio/engine/internal/model"
	"github.com/oscilla-audio/engine/internal/track"
)

const renderBlockSize = 1024

// Request bundles the offline render parameters of §4.9.
type Request struct {
	Tracks            []*model.Track
	DurationSeconds   float64
	StartOffsetSeconds float64
	TargetSampleRate  int
	Progress          func(float64) // reports [0,1], monotonically increasing
}

// Render drives tracks through the exact §4.3 graph at TargetSampleRate
// with pdc_enabled=true, starting playback at StartOffsetSeconds, and
// returns a single stereo buffer covering DurationSeconds. ctx cancellation
// stops the render early and returns ctx.Err() (§4.9, §7 RenderCancelled).
func Render(ctx context.Context, req Request) ([][]float64, error) {
	if req.TargetSampleRate <= 0 {
		return nil, fmt.Errorf("render: target sample rate must be positive, got %d", req.TargetSampleRate)
	}
	sampleRate := float64(req.TargetSampleRate)
	totalFrames := int(req.DurationSeconds * sampleRate)

	ordering := graph.TopoSort(req.Tracks)
	chains := make(map[ids.ID]*track.Chain, len(ordering))
	compensation := make(map[ids.ID][2]*dsp.DelayLine, len(ordering))
	for _, t := range ordering {
		chains[t.ID] = track.NewChain(t, sampleRate, renderBlockSize)
	}

	out := make([][]float64, 2)
	out[0] = make([]float64, 0, totalFrames)
	out[1] = make([]float64, 0, totalFrames)

	framesRendered := 0
	blockStart := req.StartOffsetSeconds

	for framesRendered < totalFrames {
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		default:
		}

		pdc := graph.ComputePDC(ordering, true, false)
		for _, t := range ordering {
			if _, ok := compensation[t.ID]; !ok {
				max := pdc.TotalLatency[t.ID] + 1
				compensation[t.ID] = [2]*dsp.DelayLine{dsp.NewDelayLine(max), dsp.NewDelayLine(max)}
			}
			compensation[t.ID][0].SetDelay(pdc.CompensationDelay[t.ID])
			compensation[t.ID][1].SetDelay(pdc.CompensationDelay[t.ID])
		}

		busInputs := make(map[ids.ID][][]float64, len(ordering))
		for _, t := range ordering {
			busInputs[t.ID] = [][]float64{make([]float64, renderBlockSize), make([]float64, renderBlockSize)}
		}

		var masterOutput [][]float64
		for _, t := range ordering {
			chain := chains[t.ID]
			var input [][]float64
			if t.Kind == model.KindBus || t.Kind == model.KindSend {
				input = busInputs[t.ID]
			}
			res := chain.Process(blockStart, input, req.Tracks)

			comp := compensation[t.ID]
			delayed := [][]float64{make([]float64, renderBlockSize), make([]float64, renderBlockSize)}
			for i := 0; i < renderBlockSize; i++ {
				delayed[0][i] = comp[0].Process(res.Output[0][i])
				delayed[1][i] = comp[1].Process(res.Output[1][i])
			}

			if t.ID == ids.Master {
				masterOutput = delayed
			} else if dest, ok := busInputs[t.OutputTrackID]; ok {
				accumulate(dest, delayed)
			}
			for destID, contrib := range res.Sends {
				if dest, ok := busInputs[destID]; ok {
					accumulate(dest, contrib)
				}
			}
		}

		if masterOutput == nil {
			masterOutput = busInputs[ids.Master]
		}

		framesThisBlock := renderBlockSize
		if framesRendered+framesThisBlock > totalFrames {
			framesThisBlock = totalFrames - framesRendered
		}
		out[0] = append(out[0], masterOutput[0][:framesThisBlock]...)
		out[1] = append(out[1], masterOutput[1][:framesThisBlock]...)

		framesRendered += framesThisBlock
		blockStart += float64(renderBlockSize) / sampleRate

		if req.Progress != nil {
			req.Progress(float64(framesRendered) / float64(totalFrames))
		}
	}

	return out, nil
}

func accumulate(dst, src [][]float64) {
	for ch := range dst {
		if ch >= len(src) {
			break
		}
		for i := range dst[ch] {
			dst[ch][i] += src[ch][i]
		}
	}
}

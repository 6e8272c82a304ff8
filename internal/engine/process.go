package engine

import (
	"github.com/oscilla-audio/engine/internal/dsp"
	"github.com/oscilla-audio/engine/internal/graph"
	"github.com/oscilla-audio/engine/internal/ids"
	"github.com/oscilla-audio/engine/internal/model"
)

// BlockResult is the stereo output of one realtime block (§4.2 step 7:
// routing terminates at master, whose signal is what a host's audio
// callback actually plays).
type BlockResult struct {
	Left, Right []float64
}

// ProcessBlock is the realtime audio thread's per-block entry point
// (§5): it drains the command queue, advances the scheduler and
// automation manager, runs every track chain in topological order with
// PDC compensation (§4.3), and returns master's post-fader signal. A
// host's audio callback (e.g. the PortAudio stream driver in cmd/osciliad)
// calls this once per hardware buffer.
func (e *Engine) ProcessBlock() BlockResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.drainCommands()

	blockDur := float64(blockSize) / e.sampleRate

	e.scheduler.Tick(e.audioNow)
	e.epoch = e.scheduler.Epoch()
	// blockStart is project time, not the free-running audio clock: Seek,
	// Play(startOffset) and loop wraps all move CurrentTime by rebasing the
	// scheduler's t0 rather than touching audioNow, so clip/MIDI rendering
	// must read through the scheduler to see those moves (§4.4).
	blockStart := e.scheduler.CurrentTime(e.audioNow)
	e.automation.Advance(blockStart)

	ordering := e.graphPub.Current().Tracks
	pdc := graph.ComputePDC(ordering, e.project.PDCEnabled, e.project.RecMode == model.RecModeArmed)
	for _, t := range ordering {
		t.TotalLatency = pdc.TotalLatency[t.ID]
	}

	busInputs := make(map[ids.ID][][]float64, len(ordering))
	for _, t := range ordering {
		busInputs[t.ID] = [][]float64{make([]float64, blockSize), make([]float64, blockSize)}
	}

	var master [][]float64
	for _, t := range ordering {
		ch, ok := e.chains[t.ID]
		if !ok {
			continue
		}
		var input [][]float64
		if t.Kind == model.KindBus || t.Kind == model.KindSend {
			input = busInputs[t.ID]
		}
		res := ch.Process(blockStart, input, e.project.Tracks)

		delayed := e.applyCompensation(t.ID, pdc.CompensationDelay[t.ID], res.Output)

		if t.ID == ids.Master {
			master = delayed
		} else if dest, ok := busInputs[t.OutputTrackID]; ok {
			accumulate(dest, delayed)
		}
		for destID, contrib := range res.Sends {
			if dest, ok := busInputs[destID]; ok {
				accumulate(dest, contrib)
			}
		}
	}
	if master == nil {
		master = busInputs[ids.Master]
	}

	e.tickMasterAnalyzers(master)

	e.audioNow += blockDur
	e.publish()

	return BlockResult{Left: master[0], Right: master[1]}
}

// applyCompensation runs track id's output through its PDC delay line,
// lazily sizing the line to the largest delay ever requested for that
// track (§4.3 Plug-in Delay Compensation).
func (e *Engine) applyCompensation(id ids.ID, delaySamples int, output [][]float64) [][]float64 {
	lines, ok := e.compensation[id]
	if !ok || delaySamples > e.compensationCap[id] {
		capacity := delaySamples
		if capacity < 1 {
			capacity = 1
		}
		lines = [2]*dsp.DelayLine{dsp.NewDelayLine(capacity), dsp.NewDelayLine(capacity)}
		e.compensation[id] = lines
		e.compensationCap[id] = capacity
	}
	lines[0].SetDelay(delaySamples)
	lines[1].SetDelay(delaySamples)

	out := [][]float64{make([]float64, len(output[0])), make([]float64, len(output[1]))}
	for i := range out[0] {
		out[0][i] = lines[0].Process(output[0][i])
		out[1][i] = lines[1].Process(output[1][i])
	}
	return out
}

// tickMasterAnalyzers feeds the master-bus meters, honoring the §4.8
// stop-gating rule: when the transport isn't playing, master analyzers
// report exactly zero regardless of residual buffer content.
func (e *Engine) tickMasterAnalyzers(master [][]float64) {
	if !e.project.IsPlaying {
		e.analyzerL.Reset()
		e.analyzerR.Reset()
		return
	}
	for i := range master[0] {
		e.analyzerL.Write(master[0][i])
		e.analyzerR.Write(master[1][i])
	}
	blockSeconds := float64(len(master[0])) / e.sampleRate
	e.analyzerL.Tick(blockSeconds)
	e.analyzerR.Tick(blockSeconds)
}

// drainCommands applies every queued mutation in enqueue order (§5
// Ordering), then rebuilds the published graph ordering once rather than
// once per command.
func (e *Engine) drainCommands() {
	applied := false
	for {
		select {
		case cmd := <-e.commands:
			if err := cmd.apply(e); err != nil {
				diagLog("command", err)
			}
			applied = true
		default:
			if applied {
				e.graphPub.Publish(e.project.Tracks)
			}
			return
		}
	}
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

// Package plugin implements the §9 Design Notes "tagged variant over the
// fixed plug-in family plus a shared trait/interface" for per-track insert
// processing: a Processor is prepared once per sample-rate/block-size
// change, runs synchronously inside the audio block (§5), and reports a
// latency in samples that feeds §4.3's PDC accounting.
package plugin

import (
	"github.com/oscilla-audio/engine/internal/diag"
	"github.com/oscilla-audio/engine/internal/model"
)

// Processor is the interface every built-in effect family implements,
// mirroring the VST3-style processing contract (prepare/process/
// set_param/latency_samples) called out explicitly in §9.
type Processor interface {
	// Prepare (re)configures the processor for a new block size / sample
	// rate. Called whenever either changes, never mid-block.
	Prepare(sampleRate float64, blockSize int)

	// Process filters one mono or stereo block in place. channels holds
	// one []float64 of length blockSize per channel.
	Process(channels [][]float64)

	// SetParam assigns a parameter by key; out-of-range values snap to the
	// nearest clamped value rather than erroring (§4.2 Failure semantics).
	SetParam(key string, value float64)

	// LatencySamples reports the processor's current algorithmic latency.
	LatencySamples() int

	// Reset clears internal filter/delay state (track reset, re-enable
	// after recording finalize, etc).
	Reset()
}

// Factory builds a fresh Processor for a plugin kind with sensible
// defaults. Registered by each builtin_*.go file via init().
type Factory func() Processor

var registry = map[model.PluginKind]Factory{}

// Register adds a plugin kind to the registry. Panics on duplicate
// registration, matching the fail-fast style of the algo-dsp effect chain
// registry this package is grounded on.
func Register(kind model.PluginKind, factory Factory) {
	if factory == nil {
		panic("plugin: nil factory for " + string(kind))
	}
	if _, exists := registry[kind]; exists {
		panic("plugin: duplicate registration for " + string(kind))
	}
	registry[kind] = factory
}

// New instantiates a processor for kind, or nil if the kind is unknown (the
// caller should treat that as InvalidCommand per §7).
func New(kind model.PluginKind) Processor {
	factory, ok := registry[kind]
	if !ok {
		return nil
	}
	return factory()
}

// Known reports whether kind has a registered factory.
func Known(kind model.PluginKind) bool {
	_, ok := registry[kind]
	return ok
}

// clamp restricts v to [lo,hi], used by every SetParam implementation to
// satisfy the "malformed plugin parameter snaps to nearest clamped value"
// failure semantics of §4.2.
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		diag.Global.ClampedPluginParam.Add(1)
		return lo
	}
	if v > hi {
		diag.Global.ClampedPluginParam.Add(1)
		return hi
	}
	return v
}

package model

import "github.com/oscilla-audio/engine/internal/ids"

// PluginKind enumerates the built-in effect family (§3: "kind (enumerated
// effect family)"). Sampler and drum rack are modeled as plug-ins over a
// MIDI input stream per §9 Design Notes.
type PluginKind string

const (
	PluginEQ          PluginKind = "eq"
	PluginCompressor   PluginKind = "compressor"
	PluginDelay        PluginKind = "delay"
	PluginHumRemover   PluginKind = "hum_remover"
	PluginGain         PluginKind = "gain"
	PluginSampler      PluginKind = "sampler"
	PluginDrumRack     PluginKind = "drum_rack"
	PluginPitchCorrect PluginKind = "pitch_correct"
)

// PluginInstance is the per-track insert record of §3.
type PluginInstance struct {
	ID        ids.ID
	Kind      PluginKind
	IsEnabled bool
	Params    map[string]float64

	// Latency is the advertised latency in samples (§3), kept in sync with
	// the live processor by whatever constructs/reconfigures it.
	Latency int

	// Frozen marks an insert disabled for the duration of recording
	// because it contributes latency (§4.5); its parameters are preserved.
	Frozen bool
}

// NewPluginInstance creates an enabled instance with an empty parameter
// map, ready for SetPluginParam commands to populate.
func NewPluginInstance(kind PluginKind) *PluginInstance {
	return &PluginInstance{
		ID:        ids.New(),
		Kind:      kind,
		IsEnabled: true,
		Params:    make(map[string]float64),
	}
}

// EffectiveLatency returns the latency this instance contributes to
// total_latency under the current pdc/frozen/rec-mode state (§4.3, §4.5).
func (p *PluginInstance) EffectiveLatency(pdcEnabled, recMode bool) int {
	if !p.IsEnabled || p.Frozen {
		return 0
	}
	if !pdcEnabled || recMode {
		return 0
	}
	return p.Latency
}

// Send is the destination record of §3.
type Send struct {
	DestinationID ids.ID
	Level         float64 // [0, 1.5]
	IsEnabled     bool
}

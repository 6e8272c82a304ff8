package plugin

import (
	"math"
	"testing"

	"github.com/oscilla-audio/engine/internal/model"
)

func TestKnownBuiltinKinds(t *testing.T) {
	for _, kind := range []model.PluginKind{
		model.PluginEQ, model.PluginCompressor, model.PluginDelay,
		model.PluginHumRemover, model.PluginGain,
	} {
		if !Known(kind) {
			t.Fatalf("expected %s to be registered", kind)
		}
	}
}

func TestNewUnknownKindReturnsNil(t *testing.T) {
	if p := New(model.PluginKind("nonexistent")); p != nil {
		t.Fatalf("expected nil processor for unknown kind")
	}
}

func TestGainProcessorAppliesExactDBGain(t *testing.T) {
	g := New(model.PluginGain)
	g.Prepare(48000, 64)
	g.SetParam("gain_db", -6)

	block := [][]float64{{1, 1, 1, 1}}
	g.Process(block)

	want := math.Pow(10, -6.0/20)
	for _, v := range block[0] {
		if math.Abs(v-want) > 1e-9 {
			t.Fatalf("got %v, want %v", v, want)
		}
	}
}

func TestDelayProcessorLatencyMatchesConfiguredTime(t *testing.T) {
	d := New(model.PluginDelay)
	d.Prepare(1000, 64) // 1kHz sample rate makes the math easy
	d.SetParam("time_ms", 10)

	if got := d.LatencySamples(); got != 10 {
		t.Fatalf("LatencySamples() = %d, want 10", got)
	}
}

func TestDelayProcessorOutputsTappedSignalAfterDelay(t *testing.T) {
	d := New(model.PluginDelay)
	d.Prepare(1000, 64)
	d.SetParam("time_ms", 3)
	d.SetParam("feedback", 0)
	d.SetParam("mix", 1) // fully wet, easy to assert on

	ch := make([]float64, 10)
	ch[0] = 1
	block := [][]float64{ch}
	d.Process(block)

	for i, v := range block[0] {
		if i == 3 {
			if v != 1 {
				t.Fatalf("expected delayed impulse at index 3, got %v", v)
			}
		} else if v != 0 {
			t.Fatalf("expected silence at index %d, got %v", i, v)
		}
	}
}

func TestCompressorReducesGainAboveThreshold(t *testing.T) {
	c := New(model.PluginCompressor)
	c.Prepare(48000, 64)
	c.SetParam("threshold_db", -20)
	c.SetParam("ratio", 4)
	c.SetParam("attack_ms", 0.01)
	c.SetParam("release_ms", 50)

	block := make([]float64, 2048)
	for i := range block {
		block[i] = 0.9
	}
	channels := [][]float64{block}
	c.Process(channels)

	if channels[0][len(block)-1] >= 0.9 {
		t.Fatalf("expected compressor to reduce a loud sustained signal, got %v", channels[0][len(block)-1])
	}
}

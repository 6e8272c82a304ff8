package graph

import (
	"testing"

	"github.com/oscilla-audio/engine/internal/ids"
	"github.com/oscilla-audio/engine/internal/model"
)

func trackWithLatency(id, out ids.ID, latencySamples int) *model.Track {
	t := &model.Track{ID: id, Kind: model.KindBus, OutputTrackID: out}
	if latencySamples > 0 {
		inst := model.NewPluginInstance(model.PluginDelay)
		inst.Latency = latencySamples
		t.Inserts = []*model.PluginInstance{inst}
	}
	return t
}

func TestComputePDCAccumulatesChildLatency(t *testing.T) {
	master := trackWithLatency(ids.Master, "", 0)
	bus := trackWithLatency("bus", ids.Master, 50)
	leaf := trackWithLatency("leaf", "bus", 100)

	ordering := TopoSort([]*model.Track{master, bus, leaf})
	res := ComputePDC(ordering, true, false)

	if res.TotalLatency["leaf"] != 100 {
		t.Fatalf("leaf total latency = %d, want 100", res.TotalLatency["leaf"])
	}
	if res.TotalLatency["bus"] != 150 {
		t.Fatalf("bus total latency = %d, want 150 (50 own + 100 from leaf)", res.TotalLatency["bus"])
	}
}

func TestComputePDCCompensatesSiblingMismatch(t *testing.T) {
	master := trackWithLatency(ids.Master, "", 0)
	fast := trackWithLatency("fast", ids.Master, 10)
	slow := trackWithLatency("slow", ids.Master, 100)

	ordering := TopoSort([]*model.Track{master, fast, slow})
	res := ComputePDC(ordering, true, false)

	if res.CompensationDelay["slow"] != 0 {
		t.Fatalf("slowest sibling should need no compensation, got %d", res.CompensationDelay["slow"])
	}
	if res.CompensationDelay["fast"] != 90 {
		t.Fatalf("fast sibling should be delayed by 90 samples to match slow, got %d", res.CompensationDelay["fast"])
	}
}

func TestComputePDCZeroedWhenDisabled(t *testing.T) {
	master := trackWithLatency(ids.Master, "", 0)
	bus := trackWithLatency("bus", ids.Master, 50)
	ordering := TopoSort([]*model.Track{master, bus})

	res := ComputePDC(ordering, false, false)
	if res.CompensationDelay["bus"] != 0 {
		t.Fatalf("pdc disabled should zero compensation delay, got %d", res.CompensationDelay["bus"])
	}
	if res.TotalLatency["bus"] != 0 {
		t.Fatalf("pdc disabled should treat insert latency as zero, got %d", res.TotalLatency["bus"])
	}
}

func TestComputePDCZeroedInRecMode(t *testing.T) {
	master := trackWithLatency(ids.Master, "", 0)
	bus := trackWithLatency("bus", ids.Master, 50)
	ordering := TopoSort([]*model.Track{master, bus})

	res := ComputePDC(ordering, true, true)
	if res.TotalLatency["bus"] != 0 {
		t.Fatalf("rec_mode should treat insert latency as zero, got %d", res.TotalLatency["bus"])
	}
}

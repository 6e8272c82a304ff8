package automation

import (
	"testing"

	"github.com/oscilla-audio/engine/internal/model"
)

func volumeTarget() model.ParamTarget {
	return model.ParamTarget{TrackID: "t1", Param: "volume"}
}

func TestWriteModeRecordsBreakpoints(t *testing.T) {
	m := NewManager()
	m.Register(Registration{ID: "vol", Target: volumeTarget(), Min: 0, Max: 1.5})
	m.SetMode(Write)

	m.SetValue("vol", 0.5, 0.0)
	m.SetValue("vol", 0.8, 1.0) // well past the 50ms collapse window

	lane := m.params["vol"].lane
	if len(lane.Breakpoints) != 2 {
		t.Fatalf("expected 2 breakpoints, got %d", len(lane.Breakpoints))
	}
}

func TestWriteModeCollapsesRapidBreakpoints(t *testing.T) {
	m := NewManager()
	m.Register(Registration{ID: "vol", Target: volumeTarget(), Min: 0, Max: 1.5})
	m.SetMode(Write)

	m.SetValue("vol", 0.5, 0.000)
	m.SetValue("vol", 0.6, 0.010) // within 50ms, should collapse into one point
	m.SetValue("vol", 0.7, 0.020)

	lane := m.params["vol"].lane
	if len(lane.Breakpoints) != 1 {
		t.Fatalf("expected rapid breakpoints to collapse to 1, got %d", len(lane.Breakpoints))
	}
	if lane.Breakpoints[0].Value != 0.7 {
		t.Fatalf("collapsed breakpoint should hold the latest value, got %v", lane.Breakpoints[0].Value)
	}
}

func TestLatchModeOnlyRecordsWhenTouched(t *testing.T) {
	m := NewManager()
	m.Register(Registration{ID: "vol", Target: volumeTarget(), Min: 0, Max: 1.5})
	m.SetMode(Latch)

	m.SetValue("vol", 0.5, 0.0) // not touched yet
	lane := m.params["vol"].lane
	if len(lane.Breakpoints) != 0 {
		t.Fatalf("untouched Latch-mode setValue should not record, got %d breakpoints", len(lane.Breakpoints))
	}

	m.Touch("vol")
	m.SetValue("vol", 0.6, 1.0)
	if len(lane.Breakpoints) != 1 {
		t.Fatalf("touched Latch-mode setValue should record, got %d breakpoints", len(lane.Breakpoints))
	}

	m.Release("vol")
	m.SetValue("vol", 0.7, 2.0)
	if len(lane.Breakpoints) != 1 {
		t.Fatalf("setValue after release should not record another breakpoint, got %d", len(lane.Breakpoints))
	}
}

func TestReadModeInterpolatesUntouchedParams(t *testing.T) {
	m := NewManager()
	var applied float64
	m.Register(Registration{
		ID: "vol", Target: volumeTarget(), Min: 0, Max: 1.5,
		Apply: func(v float64) { applied = v },
	})
	lane := m.params["vol"].lane
	lane.Insert(model.Breakpoint{Time: 0, Value: 0})
	lane.Insert(model.Breakpoint{Time: 1, Value: 1})
	m.SetMode(Read)

	m.Advance(0.5)
	if _, ok := m.ValueAt(volumeTarget()); !ok {
		t.Fatal("ValueAt should report ok=true for a registered, untouched param in Read mode")
	}
	if applied != 0.5 {
		t.Fatalf("applied value at t=0.5 = %v, want 0.5 (midpoint)", applied)
	}
}

func TestReadModeSkipsTouchedParams(t *testing.T) {
	m := NewManager()
	m.Register(Registration{ID: "vol", Target: volumeTarget(), Min: 0, Max: 1.5})
	m.SetMode(Read)
	m.Touch("vol")

	m.Advance(0.5)
	if _, ok := m.ValueAt(volumeTarget()); ok {
		t.Fatal("ValueAt should not apply automation to a touched parameter")
	}
}

func TestBridgedParamThrottled(t *testing.T) {
	m := NewManager()
	var applyCount int
	m.Register(Registration{
		ID: "bridge", Target: model.ParamTarget{TrackID: "t1", PluginID: "p1", Param: "freq"},
		Min: 0, Max: 1, Bridged: true,
		Apply: func(float64) { applyCount++ },
	})
	lane := m.params["bridge"].lane
	lane.Insert(model.Breakpoint{Time: 0, Value: 0})
	lane.Insert(model.Breakpoint{Time: 1, Value: 1})
	m.SetMode(Read)

	target := model.ParamTarget{TrackID: "t1", PluginID: "p1", Param: "freq"}
	m.Advance(0.0)
	m.ValueAt(target)
	m.Advance(0.010) // 10ms later, inside the 30ms throttle window
	m.ValueAt(target)
	m.Advance(0.011)
	m.ValueAt(target)

	if applyCount != 1 {
		t.Fatalf("expected exactly 1 apply within the 30ms throttle window, got %d", applyCount)
	}

	m.Advance(0.050) // past the throttle window
	m.ValueAt(target)
	if applyCount != 2 {
		t.Fatalf("expected a second apply once the throttle window elapsed, got %d", applyCount)
	}
}

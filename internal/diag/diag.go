// Package diag is the engine-wide leveled logger used for command-queue
// rejections, render lifecycle events and audio-thread anomaly counters
// (§4.2 Failure semantics, §7). It never runs on the realtime audio thread
// itself — anomalies there increment a lock-free counter instead (see
// Counters) and are drained and logged by the host at its own pace.
package diag

import (
	"os"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

// Logger is the shared structured logger. Host code may swap it (e.g. to
// redirect to a file) before starting the engine.
var Logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	Prefix:          "oscilla",
})

// Counters tracks anomalies that happen inside the realtime audio block and
// must never allocate, lock, or log synchronously (§5, §7: "Runtime
// anomalies during the audio block never throw; they degrade to silence
// for the offending component and record a diagnostic counter.").
type Counters struct {
	MissingClipBuffer   atomic.Int64
	ClampedPluginParam  atomic.Int64
	GraphCycleRejected  atomic.Int64
	RenderCancellations atomic.Int64
}

// Global is the process-wide anomaly counter set. A host polls it
// periodically (e.g. once per UI frame) and forwards deltas to Logger.
var Global Counters

// Snapshot is a point-in-time copy of Counters suitable for diffing between
// polls.
type Snapshot struct {
	MissingClipBuffer   int64
	ClampedPluginParam  int64
	GraphCycleRejected  int64
	RenderCancellations int64
}

// Load reads the current counter values.
func Load() Snapshot {
	return Snapshot{
		MissingClipBuffer:   Global.MissingClipBuffer.Load(),
		ClampedPluginParam:  Global.ClampedPluginParam.Load(),
		GraphCycleRejected:  Global.GraphCycleRejected.Load(),
		RenderCancellations: Global.RenderCancellations.Load(),
	}
}

// Diff reports which counters changed between two snapshots and logs one
// warning line per nonzero delta. Intended to be called off the audio
// thread.
func Diff(prev, cur Snapshot) {
	if d := cur.MissingClipBuffer - prev.MissingClipBuffer; d > 0 {
		Logger.Warn("clip buffer missing, silenced", "count", d)
	}
	if d := cur.ClampedPluginParam - prev.ClampedPluginParam; d > 0 {
		Logger.Warn("plugin parameter clamped to range", "count", d)
	}
	if d := cur.GraphCycleRejected - prev.GraphCycleRejected; d > 0 {
		Logger.Warn("routing change rejected, would create a cycle", "count", d)
	}
	if d := cur.RenderCancellations - prev.RenderCancellations; d > 0 {
		Logger.Info("render cancelled", "count", d)
	}
}

package engine

// publish stores a fresh DAWState snapshot atomically, bumping the
// sequence counter a host can use to tell two reads apart without taking
// the engine's mutex (§4.11 "Snapshot reads are lock-free via
// sequence-number versioning"). Called once per block, at the very end of
// ProcessBlock, under the mutex that guards project mutation -- the store
// itself needs no lock because atomic.Pointer publication is what makes a
// concurrent GetState safe.
func (e *Engine) publish() {
	state := ToState(e.project)
	e.snapshot.Store(&state)
	e.seq.Add(1)
}

// GetState returns the most recently published project snapshot. It never
// blocks on ProcessBlock's mutex, so a UI polling every frame never
// contends with the audio thread (§4.11).
func (e *Engine) GetState() DAWState {
	s := e.snapshot.Load()
	if s == nil {
		return DAWState{}
	}
	return *s
}

// Seq returns the monotonically increasing sequence number of the last
// published snapshot, so a poller can cheaply detect "nothing changed"
// without comparing the whole document.
func (e *Engine) Seq() uint64 {
	return e.seq.Load()
}

// SampleRate returns the sample rate the engine was created with, for a
// realtime host configuring its audio device stream to match.
func (e *Engine) SampleRate() float64 {
	return e.sampleRate
}

// TransportSnapshot is a lightweight, host-polled view of transport
// position and master meter levels -- the pieces of live state a monitor
// UI needs every frame that DAWState (the persisted document) doesn't
// carry.
type TransportSnapshot struct {
	CurrentTime float64
	IsPlaying   bool
	PeakL       float64
	PeakR       float64
}

// Transport reports the current playhead position and master bus peak
// levels. Unlike GetState, it takes the mutex briefly rather than reading
// a lock-free snapshot, since it's polled at UI frame rate rather than
// audio-block rate.
func (e *Engine) Transport() TransportSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return TransportSnapshot{
		CurrentTime: e.scheduler.CurrentTime(e.audioNow),
		IsPlaying:   e.project.IsPlaying,
		PeakL:       e.analyzerL.Peak(),
		PeakR:       e.analyzerR.Peak(),
	}
}

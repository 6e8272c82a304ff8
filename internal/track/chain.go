// Package track runs the per-block DSP chain of §4.2 for a single track:
// source generation, automation pre-apply, the insert chain, post-fader
// sends, the fader, the analyzer tap, and routing into the output
// accumulator the mix graph (internal/graph) hands back to the bus graph.
package track

import (
	"github.com/oscilla-audio/engine/internal/diag"
	"github.com/oscilla-audio/engine/internal/dsp"
	"github.com/oscilla-audio/engine/internal/ids"
	"github.com/oscilla-audio/engine/internal/meter"
	"github.com/oscilla-audio/engine/internal/model"
	"github.com/oscilla-audio/engine/internal/plugin"
)

// AutomationSource supplies the current value of an automated parameter at
// block start (§4.2 step 2). The automation manager (internal/automation)
// implements this; chains never know about lanes or modes directly.
type AutomationSource interface {
	ValueAt(target model.ParamTarget) (value float64, ok bool)
}

// noAutomation is the zero-value source used when a chain is built without
// a manager wired in (e.g. in isolated tests).
type noAutomation struct{}

func (noAutomation) ValueAt(model.ParamTarget) (float64, bool) { return 0, false }

// Chain is the live per-track DSP state: instantiated processors for each
// insert, an optional note generator for sampler/drum-rack tracks, and the
// analyzer tap. One Chain per track, rebuilt whenever the insert list
// changes shape (not on every parameter tweak).
type Chain struct {
	track *model.Track

	sampleRate float64
	blockSize  int

	processors []plugin.Processor // aligned 1:1 with track.Inserts
	generator  plugin.NoteGenerator

	analyzerL *meter.Analyzer
	analyzerR *meter.Analyzer

	automation AutomationSource

	fadeState map[ids.ID]*clipFade // per-clip fade ramp memory across blocks
}

type clipFade struct {
	framesIn int
}

// NewChain builds a chain for track, instantiating a Processor for every
// insert via the plugin registry and a NoteGenerator for sampler/drum-rack
// tracks.
func NewChain(t *model.Track, sampleRate float64, blockSize int) *Chain {
	c := &Chain{
		track:      t,
		sampleRate: sampleRate,
		blockSize:  blockSize,
		analyzerL:  meter.NewAnalyzer(sampleRate),
		analyzerR:  meter.NewAnalyzer(sampleRate),
		automation: noAutomation{},
		fadeState:  make(map[ids.ID]*clipFade),
	}
	c.rebuildProcessors()
	switch t.Kind {
	case model.KindSampler:
		c.generator = plugin.NewSampler()
	case model.KindDrumRack:
		c.generator = plugin.NewDrumRack(t.DrumPads)
	}
	if c.generator != nil {
		c.generator.Prepare(sampleRate, blockSize)
	}
	return c
}

// SetAutomationSource wires the chain to an automation manager; required
// before automation-driven volume/pan/plugin-param ramping takes effect.
func (c *Chain) SetAutomationSource(src AutomationSource) {
	if src == nil {
		src = noAutomation{}
	}
	c.automation = src
}

// rebuildProcessors (re)instantiates every insert's processor, preserving
// none of the old DSP state -- callers that need param continuity across a
// rebuild should re-apply SetParam calls from track.Inserts afterward,
// which the engine façade does whenever the insert list shape changes.
func (c *Chain) rebuildProcessors() {
	c.processors = make([]plugin.Processor, len(c.track.Inserts))
	for i, inst := range c.track.Inserts {
		p := plugin.New(inst.Kind)
		if p == nil {
			continue // unknown kind: treated as InvalidCommand at the façade layer
		}
		p.Prepare(c.sampleRate, c.blockSize)
		for key, val := range inst.Params {
			p.SetParam(key, val)
		}
		c.processors[i] = p
		inst.Latency = p.LatencySamples()
	}
}

// Prepare reconfigures every processor and the generator for a new sample
// rate or block size (§9 Processor contract).
func (c *Chain) Prepare(sampleRate float64, blockSize int) {
	c.sampleRate = sampleRate
	c.blockSize = blockSize
	for _, p := range c.processors {
		if p != nil {
			p.Prepare(sampleRate, blockSize)
		}
	}
	if c.generator != nil {
		c.generator.Prepare(sampleRate, blockSize)
	}
}

// NoteOn/NoteOff forward to the track's generator, a no-op for non
// sampler/drum-rack tracks.
func (c *Chain) NoteOn(pitch int, velocity float64) {
	if c.generator != nil {
		c.generator.NoteOn(pitch, velocity)
	}
}

func (c *Chain) NoteOff(pitch int) {
	if c.generator != nil {
		c.generator.NoteOff(pitch)
	}
}

// TriggerPad fires a one-shot drum-rack voice; a no-op on any other kind
// of chain (§7 OutOfRange handled by the caller, which knows the kind).
func (c *Chain) TriggerPad(padID int, velocity float64) {
	if dr, ok := c.generator.(*plugin.DrumRack); ok {
		dr.Trigger(padID, velocity)
	}
}

// ProcessorAt returns the live Processor backing insert index idx, or nil
// if out of range, so a façade command can poke a parameter on the
// running instance without rebuilding the whole chain (§4.2 step 3, §4.7
// Write: automation writes a parameter every block and cannot afford a
// fresh Processor each time).
func (c *Chain) ProcessorAt(idx int) plugin.Processor {
	if idx < 0 || idx >= len(c.processors) {
		return nil
	}
	return c.processors[idx]
}

// Sampler returns the chain's generator as a *plugin.Sampler, or nil if
// this chain's track isn't a sampler track.
func (c *Chain) Sampler() *plugin.Sampler {
	s, _ := c.generator.(*plugin.Sampler)
	return s
}

// DrumRack returns the chain's generator as a *plugin.DrumRack, or nil if
// this chain's track isn't a drum-rack track.
func (c *Chain) DrumRack() *plugin.DrumRack {
	dr, _ := c.generator.(*plugin.DrumRack)
	return dr
}

// Result is everything downstream of a single block's processing: the
// post-fader signal routed to the track's output, and the post-fader
// contribution to each active send destination.
type Result struct {
	Output   [][]float64
	Sends    map[ids.ID][][]float64
	PeakL    float64
	PeakR    float64
}

// Process runs the full §4.2 chain for one block. busInput is the
// accumulated input already routed to this track by the graph (nil for
// audio/MIDI/sampler/drum-rack tracks, which generate their own source).
// allTracks is the full project track list, needed for the solo-effective
// check (§3).
func (c *Chain) Process(blockStart float64, busInput [][]float64, allTracks []*model.Track) Result {
	channels := 2
	buf := make([][]float64, channels)
	for i := range buf {
		buf[i] = make([]float64, c.blockSize)
	}

	// Step 1: source stage.
	switch c.track.Kind {
	case model.KindBus, model.KindSend:
		if busInput != nil {
			copyInto(buf, busInput)
		}
	case model.KindSampler, model.KindDrumRack:
		if c.generator != nil {
			c.generator.Render(buf)
		}
	default: // audio, MIDI: render clips (MIDI clips drive a generator elsewhere)
		c.renderClips(buf, blockStart)
	}

	// Solo short-circuit happens before inserts to save work (§4.3), but
	// meters still report zero rather than being skipped entirely.
	if model.Silenced(allTracks, c.track) {
		silence(buf)
		c.analyzerL.Write(0)
		c.analyzerR.Write(0)
		return Result{Output: buf, Sends: map[ids.ID][][]float64{}}
	}

	// Step 2: automation pre-apply for volume/pan (plugin params are
	// sampled by each processor's own SetParam call path, driven by the
	// same automation pass at the façade layer).
	if v, ok := c.automation.ValueAt(model.ParamTarget{TrackID: c.track.ID, Param: "volume"}); ok {
		c.track.Volume = v
	}
	if v, ok := c.automation.ValueAt(model.ParamTarget{TrackID: c.track.ID, Param: "pan"}); ok {
		c.track.Pan = v
	}

	// Step 3: inserts, in order. A disabled or frozen insert passes
	// samples through unprocessed but its advertised latency already
	// reflects that (model.PluginInstance.EffectiveLatency).
	for i, inst := range c.track.Inserts {
		p := c.processors[i]
		if p == nil || !inst.IsEnabled || inst.Frozen {
			continue
		}
		p.Process(buf)
	}

	// Step 4: post-fader sends, copied at the configured level. Each send
	// carries the signal with the fader's per-channel volume/pan gain
	// applied, the same values step 5 writes into buf.
	left, right := dsp.PanGains(c.track.Pan)
	gain := dsp.VolumeGain(c.track.Volume)
	faderGains := []float64{gain * left, gain * right}
	sends := make(map[ids.ID][][]float64, len(c.track.Sends))
	for _, s := range c.track.Sends {
		if !s.IsEnabled {
			continue
		}
		contrib := make([][]float64, channels)
		for ch := range buf {
			contrib[ch] = make([]float64, c.blockSize)
			for i, v := range buf[ch] {
				contrib[ch][i] = v * faderGains[ch] * s.Level
			}
		}
		sends[s.DestinationID] = contrib
	}

	// Step 5: fader -- volume and equal-power pan.
	for i := 0; i < c.blockSize; i++ {
		mono := (buf[0][i] + buf[1][i]) / 2
		if len(buf) >= 2 && !sameSignal(buf) {
			// True stereo source: scale each channel directly rather than
			// collapsing to mono, pan only biases balance.
			buf[0][i] *= gain * left
			buf[1][i] *= gain * right
		} else {
			buf[0][i] = mono * gain * left
			buf[1][i] = mono * gain * right
		}
	}

	// Step 6: analyzer tap.
	var peakL, peakR float64
	for i := 0; i < c.blockSize; i++ {
		c.analyzerL.Write(buf[0][i])
		c.analyzerR.Write(buf[1][i])
		if a := abs(buf[0][i]); a > peakL {
			peakL = a
		}
		if a := abs(buf[1][i]); a > peakR {
			peakR = a
		}
	}

	return Result{Output: buf, Sends: sends, PeakL: peakL, PeakR: peakR}
}

// Meters exposes the track's stereo meter pair for the host UI.
func (c *Chain) Meters() (left, right *meter.Analyzer) {
	return c.analyzerL, c.analyzerR
}

// renderClips mixes every active clip into buf for the block starting at
// blockStart seconds (§4.2 step 1: offset, fades, gain, reverse, mute).
func (c *Chain) renderClips(buf [][]float64, blockStart float64) {
	blockDur := float64(c.blockSize) / c.sampleRate
	blockEnd := blockStart + blockDur

	for _, clip := range c.track.Clips {
		if clip.IsMuted || clip.Kind != model.KindAudio {
			continue
		}
		if clip.End() <= blockStart || clip.Start >= blockEnd {
			continue // outside this block's window
		}
		if clip.Buffer == nil {
			reportMissingBuffer() // silently outputs zero, §4.2 Failure semantics
			continue
		}
		c.mixClipBlock(buf, clip, blockStart)
	}
}

func (c *Chain) mixClipBlock(buf [][]float64, clip *model.Clip, blockStart float64) {
	frames := c.blockSize
	for i := 0; i < frames; i++ {
		t := blockStart + float64(i)/c.sampleRate
		if t < clip.Start || t >= clip.End() {
			continue
		}
		localT := t - clip.Start
		envelope := fadeEnvelope(clip, localT)
		if envelope <= 0 {
			continue
		}
		srcT := clip.Offset + localT
		if clip.Reverse {
			srcT = clip.Offset + (clip.Duration - localT)
		}
		srcFrame := srcT * float64(clip.Buffer.SampleRate)
		for ch := range buf {
			srcCh := ch % len(clip.Buffer.Channels)
			buf[ch][i] += readFrac(clip.Buffer, srcCh, srcFrame) * clip.Gain * envelope
		}
	}
}

// fadeEnvelope returns the linear fade gain at localT seconds into the
// clip (§3: fade_in, fade_out).
func fadeEnvelope(clip *model.Clip, localT float64) float64 {
	g := 1.0
	if clip.FadeIn > 0 && localT < clip.FadeIn {
		g *= localT / clip.FadeIn
	}
	remaining := clip.Duration - localT
	if clip.FadeOut > 0 && remaining < clip.FadeOut {
		g *= remaining / clip.FadeOut
	}
	if g < 0 {
		g = 0
	}
	return g
}

func readFrac(buf *model.AudioBuffer, channel int, pos float64) float64 {
	frames := buf.Frames()
	if frames == 0 || pos < 0 {
		return 0
	}
	i0 := int(pos)
	if i0 >= frames {
		return 0
	}
	frac := pos - float64(i0)
	a := buf.Channels[channel][i0]
	b := a
	if i0+1 < frames {
		b = buf.Channels[channel][i0+1]
	}
	return a + (b-a)*frac
}

func copyInto(dst, src [][]float64) {
	for ch := range dst {
		if ch >= len(src) {
			break
		}
		copy(dst[ch], src[ch])
	}
}

func silence(buf [][]float64) {
	for ch := range buf {
		for i := range buf[ch] {
			buf[ch][i] = 0
		}
	}
}

func sameSignal(buf [][]float64) bool {
	if len(buf) < 2 {
		return true
	}
	for i := range buf[0] {
		if buf[0][i] != buf[1][i] {
			return false
		}
	}
	return true
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// reportMissingBuffer bumps the diagnostics counter kept for every clip
// that renderClips drops because its buffer never got rehydrated.
func reportMissingBuffer() {
	diag.Global.MissingClipBuffer.Add(1)
}

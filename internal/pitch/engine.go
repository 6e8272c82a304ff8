package pitch

import "math"

// Feedback is the UI-visible snapshot posted at most once every 8 blocks
// (§4.6 "UI feedback").
type Feedback struct {
	DetectedHz float64
	TargetHz   float64
	Cents      float64
}

// Engine combines detection, target selection, ratio smoothing and
// granular shifting into the per-block vocal correction node described by
// §4.6 end to end. One Engine handles one mono signal; stereo callers run
// two (§4.6: "stereo is duplicated").
type Engine struct {
	sampleRate float64

	detector *Detector
	shifter  *Shifter

	RootKey int   // 0..11, pitch class of the root
	ScaleID Scale
	Amount  float64 // [0,1] wet/dry mix
	Retune  float64 // [0,1] retune_speed

	currentRatio float64

	blockCount   int
	lastFeedback Feedback
}

// NewEngine creates a pitch-correction engine for the given sample rate,
// defaulting to chromatic scale, root C, Amount 0 and a retune speed of
// 0.5. With Amount at 0 a freshly constructed engine is passthrough per
// §8's bit-identical-at-amount-0 property.
func NewEngine(sampleRate float64) *Engine {
	return &Engine{
		sampleRate:   sampleRate,
		detector:     NewDetector(sampleRate),
		shifter:      NewShifter(),
		ScaleID:      Chromatic,
		Amount:       0,
		Retune:       0.5,
		currentRatio: 1,
	}
}

// ProcessBlock runs pitch correction over one mono block in place. It is
// the unit §4.6 counts against the "every 8 processed blocks" UI-feedback
// throttle: one call is one block, regardless of its length.
func (e *Engine) ProcessBlock(block []float64) {
	if e.Amount <= 0 {
		return // bit-identical passthrough, §8
	}

	var lastDetectedHz float64
	for i, dry := range block {
		e.detector.Feed(dry)
		detectedHz := e.detector.LastFrequency()
		lastDetectedHz = detectedHz

		if detectedHz > 0 {
			targetHz := e.targetFrequency(detectedHz)
			targetRatio := clampRatio(targetHz / detectedHz)
			alpha := 0.1 + 0.89*e.Retune
			e.currentRatio = alpha*e.currentRatio + (1-alpha)*targetRatio
		}

		wet := e.shifter.Process(dry, e.currentRatio)
		block[i] = wet*e.Amount + dry*(1-e.Amount)
	}

	e.blockCount++
	if e.blockCount%8 == 0 {
		e.lastFeedback = Feedback{
			DetectedHz: lastDetectedHz,
			TargetHz:   e.targetFrequencyOrHold(lastDetectedHz),
			Cents:      1200 * math.Log2(e.currentRatio),
		}
	}
}

// targetFrequencyOrHold avoids recomputing a target display value against
// a zero (noise-gated) detection.
func (e *Engine) targetFrequencyOrHold(detectedHz float64) float64 {
	if detectedHz <= 0 {
		return 0
	}
	return e.targetFrequency(detectedHz)
}

// targetFrequency implements §4.6 Target selection: detected Hz -> nearest
// MIDI note -> nearest scale member -> back to Hz.
func (e *Engine) targetFrequency(detectedHz float64) float64 {
	midi := 69 + 12*math.Log2(detectedHz/440)
	nearestMidi := math.Round(midi)
	pitchClass := int(math.Mod(nearestMidi-float64(e.RootKey), 12))
	if pitchClass < 0 {
		pitchClass += 12
	}
	targetClass := NearestMember(e.ScaleID, pitchClass)
	delta := targetClass - pitchClass
	targetMidi := nearestMidi + float64(delta)
	return 440 * math.Pow(2, (targetMidi-69)/12)
}

func clampRatio(r float64) float64 {
	if r < 0.5 {
		return 0.5
	}
	if r > 2.0 {
		return 2.0
	}
	return r
}

// LastFeedback returns the most recently posted UI feedback snapshot.
func (e *Engine) LastFeedback() Feedback {
	return e.lastFeedback
}

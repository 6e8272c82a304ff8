package dsp

// EnvelopeStage identifies which phase of the ADSR contour is active.
type EnvelopeStage int

const (
	StageIdle EnvelopeStage = iota
	StageAttack
	StageDecay
	StageSustain
	StageRelease
)

// Envelope is a per-stage-gated ADSR generator used by the sampler and
// drum rack voices (§4.2 step 1) to shape each triggered grain.
type Envelope struct {
	sampleRate float64

	attack  float64 // seconds
	decay   float64 // seconds
	sustain float64 // level 0..1
	release float64 // seconds

	stage EnvelopeStage
	level float64

	attackRate  float64
	decayRate   float64
	releaseRate float64
}

// NewEnvelope creates an idle envelope for the given sample rate.
func NewEnvelope(sampleRate float64) *Envelope {
	return &Envelope{sampleRate: sampleRate, sustain: 1}
}

// SetADSR configures the stage durations (seconds) and sustain level.
func (e *Envelope) SetADSR(attack, decay, sustain, release float64) {
	e.attack = attack
	e.decay = decay
	e.sustain = clamp01(sustain)
	e.release = release
	e.attackRate = rateFor(attack, e.sampleRate, 1)
	e.decayRate = rateFor(decay, e.sampleRate, 1-e.sustain)
	e.releaseRate = rateFor(release, e.sampleRate, 1)
}

func rateFor(seconds, sampleRate, span float64) float64 {
	if seconds <= 0 {
		return span + 1 // instantaneous: guarantee we overshoot in one tick
	}
	samples := seconds * sampleRate
	if samples < 1 {
		samples = 1
	}
	return span / samples
}

// Gate opens (true) or closes (false) the envelope, entering the attack or
// release stage respectively.
func (e *Envelope) Gate(on bool) {
	if on {
		e.stage = StageAttack
	} else if e.stage != StageIdle {
		e.stage = StageRelease
	}
}

// Active reports whether the envelope still contributes non-zero output.
func (e *Envelope) Active() bool {
	return e.stage != StageIdle
}

// Next advances the envelope by one sample and returns its current level.
func (e *Envelope) Next() float64 {
	switch e.stage {
	case StageAttack:
		e.level += e.attackRate
		if e.level >= 1 {
			e.level = 1
			e.stage = StageDecay
		}
	case StageDecay:
		e.level -= e.decayRate
		if e.level <= e.sustain {
			e.level = e.sustain
			e.stage = StageSustain
		}
	case StageSustain:
		e.level = e.sustain
	case StageRelease:
		e.level -= e.releaseRate
		if e.level <= 0 {
			e.level = 0
			e.stage = StageIdle
		}
	case StageIdle:
		e.level = 0
	}
	return e.level
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

package pitch

import "math"

const grainSize = 2048

// Shifter is the granular pitch shifter of §4.6: two read heads offset by
// half a grain, each windowed triangularly and linearly interpolated,
// advancing at a rate derived from the current pitch ratio.
type Shifter struct {
	history []float64 // circular input history, at least grainSize*2 long
	writePos int

	phaseA, phaseB float64
}

// NewShifter allocates a shifter with enough history to read a full grain
// behind the write head.
func NewShifter() *Shifter {
	return &Shifter{
		history: make([]float64, grainSize*4),
		phaseB:  0.5, // offset by half a grain, per §4.6
	}
}

// triangularWindow implements w(p) = 1 - 2|p-0.5| for phase p in [0,1).
func triangularWindow(p float64) float64 {
	return 1 - 2*math.Abs(p-0.5)
}

// Process shifts one input sample by ratio (current_ratio from the caller's
// smoothing) and returns the output sample.
func (s *Shifter) Process(input, ratio float64) float64 {
	n := len(s.history)
	s.history[s.writePos%n] = input
	s.writePos++

	readA := s.readAt(s.phaseA)
	readB := s.readAt(s.phaseB)

	wA := triangularWindow(s.phaseA)
	wB := triangularWindow(s.phaseB)

	step := (1 - ratio) / grainSize
	s.phaseA = wrap01(s.phaseA + step)
	s.phaseB = wrap01(s.phaseB + step)

	return wA*readA + wB*readB
}

// readAt interpolates the history buffer at the position grainSize*phase
// samples behind the current write head.
func (s *Shifter) readAt(phase float64) float64 {
	n := len(s.history)
	delay := phase * grainSize
	i0 := int(delay)
	frac := delay - float64(i0)

	idx0 := (s.writePos - 1 - i0 + n*2) % n
	idx1 := (idx0 - 1 + n) % n

	a := s.history[idx0]
	b := s.history[idx1]
	return a + (b-a)*frac
}

func wrap01(p float64) float64 {
	p -= math.Floor(p)
	return p
}

// Reset clears the shifter's history and re-offsets the two read heads,
// used when pitch correction is toggled back on after being bypassed.
func (s *Shifter) Reset() {
	for i := range s.history {
		s.history[i] = 0
	}
	s.writePos = 0
	s.phaseA = 0
	s.phaseB = 0.5
}

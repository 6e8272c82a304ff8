package logging

import "math"

// RenderReport is the supplemented (SPEC_FULL.md) per-render summary: peak
// and RMS level, duration, stems written and how long the render actually
// took, printed by the demo host after `osciliad render` in the teacher's
// MetricTable style (§4.9, §4.10).
type RenderReport struct {
	PeakDB          float64
	RMSDB           float64
	DurationSeconds float64
	WallClockSeconds float64
	Stems           []string
}

// PeakRMS computes the peak and RMS dBFS of a multichannel buffer, for
// populating a RenderReport after an offline render.
func PeakRMS(channels [][]float64) (peakDB, rmsDB float64) {
	peak := 0.0
	var sumSquares float64
	var n int
	for _, ch := range channels {
		for _, x := range ch {
			if a := math.Abs(x); a > peak {
				peak = a
			}
			sumSquares += x * x
			n++
		}
	}
	if n == 0 {
		return math.Inf(-1), math.Inf(-1)
	}
	rms := math.Sqrt(sumSquares / float64(n))
	return linearToDB(peak), linearToDB(rms)
}

func linearToDB(linear float64) float64 {
	if linear <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(linear)
}

// String renders the report as a single-column MetricTable, matching the
// teacher's table-driven report layout.
func (r RenderReport) String() string {
	table := NewMetricTable("Master")
	table.AddRow("Peak", []string{formatMetricDB(r.PeakDB, 2)}, "dBFS", "")
	table.AddRow("RMS", []string{formatMetricDB(r.RMSDB, 2)}, "dBFS", "")
	table.AddRow("Duration", []string{formatMetric(r.DurationSeconds, 1)}, "s", "")
	table.AddRow("Render time", []string{formatMetric(r.WallClockSeconds, 2)}, "s", "")
	if r.DurationSeconds > 0 && r.WallClockSeconds > 0 {
		multiple := r.DurationSeconds / r.WallClockSeconds
		table.AddRow("Realtime multiple", []string{formatMetric(multiple, 1)}, "x", "")
	}
	return table.String()
}

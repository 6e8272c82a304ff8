package dsp

import "math"

// PanGains computes the equal-power pan law of §4.1: pan ranges over
// [-1,1], theta = (pan+1)*pi/4 maps it onto a quarter turn, and
// L=cos(theta), R=sin(theta) keeps perceived loudness constant across the
// stereo field.
func PanGains(pan float64) (left, right float64) {
	if pan < -1 {
		pan = -1
	} else if pan > 1 {
		pan = 1
	}
	theta := (pan + 1) * math.Pi / 4
	return math.Cos(theta), math.Sin(theta)
}

// VolumeGain converts a track's [0,1.5] volume control into a linear gain.
// Per §9 Open Question (b), the source's sqrt(volume/1.5) curve is a
// visual-fader-position mapping only; the actual applied gain is linear in
// volume, so this function is the identity clamp.
func VolumeGain(volume float64) float64 {
	if volume < 0 {
		return 0
	}
	if volume > 1.5 {
		return 1.5
	}
	return volume
}

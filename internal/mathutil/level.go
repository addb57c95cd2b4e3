package mathutil

import "math"

// DBToGain converts decibels to a linear amplitude factor.
func DBToGain(db float64) float64 {
	return math.Pow(10, db/dbAmplitudeFactor)
}

// GainToDB converts a linear amplitude to decibels, flooring at floorDB.
func GainToDB(gain, floorDB float64) float64 {
	if gain <= minLinear {
		return floorDB
	}
	return math.Max(dbAmplitudeFactor*math.Log10(gain), floorDB)
}

// PowerToDB converts a mean-square power to decibels, flooring at floorDB.
func PowerToDB(power, floorDB float64) float64 {
	if power <= minLinear {
		return floorDB
	}
	return math.Max(dbPowerFactor*math.Log10(power), floorDB)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// IsFinite reports whether v is neither NaN nor ±Inf.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Smoothstep is the cubic Hermite ramp 3t²-2t³ on [0, 1]. Smoothstep(t) and
// Smoothstep(1-t) always sum to one, which makes it usable as a crossfade.
func Smoothstep(t float64) float64 {
	t = Clamp(t, 0, 1)
	return t * t * (3 - 2*t)
}

// ExpInterp glides exponentially from a to b as t goes from 0 to 1.
// Both endpoints must be positive.
func ExpInterp(a, b, t float64) float64 {
	t = Clamp(t, 0, 1)
	return a * math.Pow(b/a, t)
}

// NextPow2 returns the smallest power of two >= n (and at least 1).
func NextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

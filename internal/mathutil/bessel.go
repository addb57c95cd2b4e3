// Package mathutil provides the numeric helpers shared by the analysis and
// render stages: Kaiser window design math, level conversions and ramps.
package mathutil

import (
	"math"
)

// BesselI0 computes the modified Bessel function of the first kind, order
// zero. It is only used to evaluate Kaiser windows, so the polynomial
// approximations from Abramowitz & Stegun (9.8.1, 9.8.2) are accurate enough.
func BesselI0(x float64) float64 {
	ax := math.Abs(x)

	if ax < besselSmallArgThreshold {
		t := x / besselSmallArgThreshold
		t *= t
		return 1.0 + t*(besselI0Coeff1+t*(besselI0Coeff2+t*(besselI0Coeff3+
			t*(besselI0Coeff4+t*(besselI0Coeff5+t*besselI0Coeff6)))))
	}

	t := besselSmallArgThreshold / ax
	p := besselI0AsympCoeff0 + t*(besselI0AsympCoeff1+t*(besselI0AsympCoeff2+
		t*(besselI0AsympCoeff3+t*(besselI0AsympCoeff4+t*(besselI0AsympCoeff5+
			t*(besselI0AsympCoeff6+t*(besselI0AsympCoeff7+t*besselI0AsympCoeff8)))))))

	return math.Exp(ax) * p / math.Sqrt(ax)
}

// KaiserBeta returns the Kaiser window β for a stopband attenuation in dB,
// using the Kaiser & Schafer empirical formula.
func KaiserBeta(attenuation float64) float64 {
	switch {
	case attenuation > kaiserAttHigh:
		return kaiserBetaHighCoeff * (attenuation - kaiserBetaHighOffset)
	case attenuation >= kaiserAttMedium:
		delta := attenuation - kaiserAttMedium
		return kaiserBetaMediumCoeff1*math.Pow(delta, kaiserBetaMediumPower) + kaiserBetaMediumCoeff2*delta
	default:
		return 0
	}
}

// EstimateFilterLength returns an odd tap count that reaches attenuation dB
// with the given transition bandwidth (fraction of the sample rate).
//
//	N ≈ (att - 8) / (2.285 · 2π · Δf)
func EstimateFilterLength(attenuation, transitionBW float64) int {
	if transitionBW <= 0 {
		transitionBW = defaultTransitionBW
	}

	n := (attenuation - kaiserLengthOffset) / (kaiserLengthMultiplier * twoPi * transitionBW)

	taps := int(math.Ceil(n))
	if taps%2 == 0 {
		taps++
	}

	return min(max(taps, minFilterLength), maxFilterLength)
}

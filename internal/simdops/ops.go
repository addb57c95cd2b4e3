// Package simdops wraps the SIMD kernels from github.com/tphakala/simd with
// the small vector helpers the analysis and render stages need.
package simdops

import (
	"math"

	"github.com/tphakala/simd/cpu"
	"github.com/tphakala/simd/f64"
)

// Dot returns the dot product of the common prefix of a and b.
func Dot(a, b []float64) float64 {
	n := min(len(a), len(b))
	if n == 0 {
		return 0
	}
	return f64.DotProduct(a[:n], b[:n])
}

// Energy returns the sum of squares of a.
func Energy(a []float64) float64 {
	if len(a) == 0 {
		return 0
	}
	return f64.DotProduct(a, a)
}

// Sum returns the sum of all elements.
func Sum(a []float64) float64 {
	if len(a) == 0 {
		return 0
	}
	return f64.Sum(a)
}

// Mean returns the arithmetic mean of a, or 0 for an empty slice.
func Mean(a []float64) float64 {
	if len(a) == 0 {
		return 0
	}
	return f64.Sum(a) / float64(len(a))
}

// RMS returns the root mean square of a.
func RMS(a []float64) float64 {
	if len(a) == 0 {
		return 0
	}
	return math.Sqrt(Energy(a) / float64(len(a)))
}

// Scale writes a[i]*s into dst. dst may alias a.
func Scale(dst, a []float64, s float64) {
	if len(a) == 0 {
		return
	}
	f64.Scale(dst, a, s)
}

// ConvolveValid computes the valid part of the correlation of signal with
// kernel: dst[i] = Σ signal[i+k]·kernel[k]. dst needs
// len(signal)-len(kernel)+1 elements.
func ConvolveValid(dst, signal, kernel []float64) {
	if len(kernel) == 0 || len(signal) < len(kernel) {
		return
	}
	f64.ConvolveValid(dst, signal, kernel)
}

// Interleave2 interleaves two equal-length channels into dst.
func Interleave2(dst, a, b []float64) {
	if len(a) == 0 {
		return
	}
	f64.Interleave2(dst, a, b)
}

// AddScaled accumulates dst[i] += a[i]*s over the common prefix.
func AddScaled(dst, a []float64, s float64) {
	n := min(len(dst), len(a))
	for i := range n {
		dst[i] += a[i] * s
	}
}

// MixDown averages planar channels into a newly allocated mono slice.
func MixDown(channels [][]float64) []float64 {
	if len(channels) == 0 {
		return nil
	}
	out := make([]float64, len(channels[0]))
	copy(out, channels[0])
	for _, ch := range channels[1:] {
		AddScaled(out, ch, 1)
	}
	if len(channels) > 1 {
		Scale(out, out, 1/float64(len(channels)))
	}
	return out
}

// Peak returns the largest absolute sample value.
func Peak(a []float64) float64 {
	var peak float64
	for _, v := range a {
		if av := math.Abs(v); av > peak {
			peak = av
		}
	}
	return peak
}

// CPUInfo describes the SIMD instruction set in use.
func CPUInfo() string {
	return cpu.Info()
}

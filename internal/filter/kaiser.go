// Package filter provides the filters used by the remix engine: Kaiser
// windowed-sinc FIR design and decimation for analysis, RBJ biquads for
// sweeps and loudness weighting, and FFT convolution for long kernels.
package filter

import (
	"fmt"
	"math"

	"github.com/tphakala/go-audio-remix/internal/mathutil"
	"github.com/tphakala/go-audio-remix/internal/simdops"
)

const (
	minFilterTaps = 3
	maxFilterTaps = 8191

	halfDivisor       = 2.0
	sincZeroThreshold = 1e-10
)

// KaiserWindow generates a symmetric Kaiser window of the given length.
// Larger β trades main lobe width for lower sidelobes. The peak is 1.
func KaiserWindow(length int, beta float64) []float64 {
	if length < 1 {
		return []float64{}
	}

	window := make([]float64, length)
	if length == 1 {
		window[0] = 1
		return window
	}

	alpha := float64(length-1) / halfDivisor
	i0Beta := mathutil.BesselI0(beta)

	for n := range length {
		x := (float64(n) - alpha) / alpha
		window[n] = mathutil.BesselI0(beta*math.Sqrt(1-x*x)) / i0Beta
	}

	return window
}

// FilterParams holds parameters for windowed-sinc low-pass design.
type FilterParams struct {
	// NumTaps is the filter length; odd lengths give an integer group delay.
	NumTaps int

	// CutoffFreq is the normalized cutoff in (0, 0.5), 0.5 being Nyquist.
	CutoffFreq float64

	// Attenuation is the stopband attenuation target in dB.
	Attenuation float64

	// Gain is the DC gain.
	Gain float64
}

// Validate checks if filter parameters are valid.
func (fp *FilterParams) Validate() error {
	if fp.NumTaps < minFilterTaps || fp.NumTaps > maxFilterTaps {
		return fmt.Errorf("filter length %d outside [%d, %d]", fp.NumTaps, minFilterTaps, maxFilterTaps)
	}

	if fp.CutoffFreq <= 0 || fp.CutoffFreq >= 0.5 {
		return fmt.Errorf("invalid cutoff frequency: %f (must be in (0, 0.5))", fp.CutoffFreq)
	}

	if fp.Attenuation < 0 {
		return fmt.Errorf("invalid attenuation: %f dB (must be positive)", fp.Attenuation)
	}

	if fp.Gain <= 0 {
		return fmt.Errorf("invalid gain: %f (must be positive)", fp.Gain)
	}

	return nil
}

// DesignLowPassFilter designs a linear-phase Kaiser windowed-sinc low-pass
// filter normalized to params.Gain at DC.
func DesignLowPassFilter(params FilterParams) ([]float64, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	window := KaiserWindow(params.NumTaps, mathutil.KaiserBeta(params.Attenuation))

	coeffs := make([]float64, params.NumTaps)
	center := float64(params.NumTaps-1) / halfDivisor

	for n := range params.NumTaps {
		x := float64(n) - center

		var sinc float64
		if math.Abs(x) < sincZeroThreshold {
			sinc = 2 * params.CutoffFreq
		} else {
			sinc = math.Sin(2*math.Pi*params.CutoffFreq*x) / (math.Pi * x)
		}

		coeffs[n] = sinc * window[n]
	}

	if sum := simdops.Sum(coeffs); math.Abs(sum) > sincZeroThreshold {
		simdops.Scale(coeffs, coeffs, params.Gain/sum)
	}

	return coeffs, nil
}

// DesignLowPassFilterAuto sizes the filter from the attenuation and the
// normalized transition bandwidth, then designs it.
func DesignLowPassFilterAuto(cutoffFreq, transitionBW, attenuation, gain float64) ([]float64, error) {
	return DesignLowPassFilter(FilterParams{
		NumTaps:     mathutil.EstimateFilterLength(attenuation, transitionBW),
		CutoffFreq:  cutoffFreq,
		Attenuation: attenuation,
		Gain:        gain,
	})
}

// FilterResponse holds a sampled frequency response.
type FilterResponse struct {
	Frequencies []float64 // normalized, 0 to 0.5
	Magnitude   []float64 // linear
}

// ComputeFrequencyResponse evaluates the DTFT of an FIR filter at numPoints
// frequencies from DC up to (but excluding) Nyquist.
func ComputeFrequencyResponse(coeffs []float64, numPoints int) FilterResponse {
	if numPoints <= 0 {
		numPoints = 512
	}

	response := FilterResponse{
		Frequencies: make([]float64, numPoints),
		Magnitude:   make([]float64, numPoints),
	}

	for k := range numPoints {
		freq := float64(k) / (halfDivisor * float64(numPoints))
		response.Frequencies[k] = freq
		response.Magnitude[k] = FIRMagnitude(coeffs, freq)
	}

	return response
}

// FIRMagnitude returns |H(f)| of an FIR filter at normalized frequency f.
func FIRMagnitude(coeffs []float64, freq float64) float64 {
	omega := 2 * math.Pi * freq

	var re, im float64
	for n, h := range coeffs {
		angle := omega * float64(n)
		re += h * math.Cos(angle)
		im -= h * math.Sin(angle)
	}

	return math.Hypot(re, im)
}

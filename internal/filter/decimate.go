package filter

import (
	"fmt"

	"github.com/tphakala/go-audio-remix/internal/simdops"
)

const (
	// Passband edge as a fraction of the post-decimation Nyquist.
	decimPassbandFraction = 0.8
	// Stopband starts at the post-decimation Nyquist.
	decimStopbandFraction = 1.0

	// DefaultDecimationAttenuation is the stopband rejection used for
	// analysis decimators.
	DefaultDecimationAttenuation = 80.0
)

// Decimator low-pass filters and downsamples by an integer factor. The
// filter is linear phase and centred, so output sample j lines up with
// input sample j·factor. A Decimator holds no mutable state and may be
// shared.
type Decimator struct {
	factor int
	kernel []float64
}

// NewDecimator designs the anti-alias filter for the given factor. A
// factor of 1 returns a pass-through decimator.
func NewDecimator(factor int, attenuation float64) (*Decimator, error) {
	if factor < 1 {
		return nil, fmt.Errorf("invalid decimation factor: %d", factor)
	}
	if factor == 1 {
		return &Decimator{factor: 1}, nil
	}

	nyquist := 0.5 / float64(factor)
	passband := nyquist * decimPassbandFraction
	stopband := nyquist * decimStopbandFraction

	kernel, err := DesignLowPassFilterAuto((passband+stopband)/2, stopband-passband, attenuation, 1.0)
	if err != nil {
		return nil, fmt.Errorf("designing decimation filter: %w", err)
	}

	return &Decimator{factor: factor, kernel: kernel}, nil
}

// Factor returns the downsampling factor.
func (d *Decimator) Factor() int {
	return d.factor
}

// Process returns ceil(len(x)/factor) filtered samples.
func (d *Decimator) Process(x []float64) []float64 {
	if d.factor == 1 {
		out := make([]float64, len(x))
		copy(out, x)
		return out
	}

	outLen := (len(x) + d.factor - 1) / d.factor
	out := make([]float64, outLen)
	if outLen == 0 {
		return out
	}

	taps := len(d.kernel)
	half := (taps - 1) / 2
	padded := make([]float64, len(x)+taps-1)
	copy(padded[half:], x)

	// The kernel is symmetric, so a dot product is the convolution.
	for j := range outLen {
		start := j * d.factor
		out[j] = simdops.Dot(d.kernel, padded[start:start+taps])
	}

	return out
}

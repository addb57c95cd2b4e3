package analysis

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/tphakala/go-audio-remix/internal/filter"
)

// stft walks a signal in Hann-windowed frames and hands each magnitude
// spectrum to a callback. Spectra are not retained, so memory stays flat
// for long tracks. An stft is single-goroutine.
type stft struct {
	size, hop int

	fft    *fourier.FFT
	window []float64
	frame  []float64
	coeffs []complex128
	mag    []float64
}

func newSTFT(size, hop int) *stft {
	bins := size/2 + 1
	return &stft{
		size:   size,
		hop:    hop,
		fft:    fourier.NewFFT(size),
		window: filter.Hann(size, true),
		frame:  make([]float64, size),
		coeffs: make([]complex128, bins),
		mag:    make([]float64, bins),
	}
}

// frameCount returns the number of frames for n samples. Input shorter
// than one frame still yields a single zero-padded frame.
func (s *stft) frameCount(n int) int {
	switch {
	case n <= 0:
		return 0
	case n <= s.size:
		return 1
	default:
		return 1 + (n-s.size)/s.hop
	}
}

// binFreq returns the centre frequency of bin k at the given rate.
func (s *stft) binFreq(k int, rate float64) float64 {
	return float64(k) * rate / float64(s.size)
}

// each calls fn for every frame. mag is reused between calls.
func (s *stft) each(x []float64, fn func(index int, mag []float64)) {
	count := s.frameCount(len(x))
	for i := range count {
		start := i * s.hop
		end := min(start+s.size, len(x))

		clear(s.frame)
		copy(s.frame, x[start:end])
		for j, w := range s.window {
			s.frame[j] *= w
		}

		s.coeffs = s.fft.Coefficients(s.coeffs, s.frame)
		for k, c := range s.coeffs {
			s.mag[k] = cmplx.Abs(c)
		}

		fn(i, s.mag)
	}
}

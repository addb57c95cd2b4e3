package filter

import (
	"github.com/tphakala/simd/c128"
	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/tphakala/go-audio-remix/internal/mathutil"
	"github.com/tphakala/go-audio-remix/internal/simdops"
)

const (
	// Below this kernel length direct SIMD convolution beats the gonum FFT.
	minKernelForFFT = 400

	defaultFFTBlockSize = 512

	// A real FFT of size N has N/2 + 1 unique bins.
	fftHermitianDivisor = 2
)

// FFTConvolver performs overlap-save FFT convolution with a fixed kernel.
//
// Each block of fftSize input samples yields fftSize-kernelLen+1 valid
// outputs; the first kernelLen-1 results of every block hold circular wrap
// and are discarded.
//
// An FFTConvolver owns scratch buffers and must not be shared between
// goroutines.
type FFTConvolver struct {
	fft       *fourier.FFT
	fftSize   int
	blockSize int

	kernelFFT []complex128
	kernelLen int
	scale     float64 // gonum's inverse transform is unnormalized

	signalBlock []float64
	signalFFT   []complex128
	productFFT  []complex128
	ifftResult  []float64
}

// NewFFTConvolver transforms kernel once for reuse. Returns nil for an
// empty kernel.
func NewFFTConvolver(kernel []float64) *FFTConvolver {
	kernelLen := len(kernel)
	if kernelLen == 0 {
		return nil
	}

	fftSize := max(defaultFFTBlockSize, mathutil.NextPow2(2*kernelLen))

	fft := fourier.NewFFT(fftSize)

	kernelPadded := make([]float64, fftSize)
	copy(kernelPadded, kernel)
	kernelFFT := fft.Coefficients(nil, kernelPadded)

	fftLen := fftSize/fftHermitianDivisor + 1

	return &FFTConvolver{
		fft:         fft,
		fftSize:     fftSize,
		blockSize:   fftSize - kernelLen + 1,
		kernelFFT:   kernelFFT,
		kernelLen:   kernelLen,
		scale:       1.0 / float64(fftSize),
		signalBlock: make([]float64, fftSize),
		signalFFT:   make([]complex128, fftLen),
		productFFT:  make([]complex128, fftLen),
		ifftResult:  make([]float64, fftSize),
	}
}

// Convolve computes the valid part of the linear convolution:
//
//	dst[i] = Σ h[k]·signal[i+K-1-k]  for i in [0, len(signal)-K+1)
//
// dst must hold at least len(signal)-K+1 samples.
func (c *FFTConvolver) Convolve(dst, signal []float64) {
	signalLen := len(signal)
	outputLen := signalLen - c.kernelLen + 1
	if outputLen <= 0 || len(dst) < outputLen {
		return
	}

	overlap := c.kernelLen - 1

	for outIdx := 0; outIdx < outputLen; {
		clear(c.signalBlock)

		copyLen := min(c.fftSize, signalLen-outIdx)
		copy(c.signalBlock, signal[outIdx:outIdx+copyLen])

		c.signalFFT = c.fft.Coefficients(c.signalFFT, c.signalBlock)
		c128.Mul(c.productFFT, c.signalFFT, c.kernelFFT)
		c.ifftResult = c.fft.Sequence(c.ifftResult, c.productFFT)
		f64.Scale(c.ifftResult, c.ifftResult, c.scale)

		validSamples := min(c.blockSize, outputLen-outIdx)
		copy(dst[outIdx:outIdx+validSamples], c.ifftResult[overlap:overlap+validSamples])

		outIdx += validSamples
	}
}

// Filter applies the kernel causally: dst[n] = Σ h[k]·src[n-k], with src
// treated as zero before its start. dst and src have equal length.
func (c *FFTConvolver) Filter(dst, src []float64) {
	padded := make([]float64, len(src)+c.kernelLen-1)
	copy(padded[c.kernelLen-1:], src)
	c.Convolve(dst[:len(src)], padded)
}

// Apply filters src causally with kernel and returns a new slice of the
// same length. Long kernels go through FFTConvolver, short ones through
// direct SIMD convolution.
func Apply(src, kernel []float64) []float64 {
	dst := make([]float64, len(src))
	if len(kernel) == 0 || len(src) == 0 {
		return dst
	}

	if len(kernel) >= minKernelForFFT {
		NewFFTConvolver(kernel).Filter(dst, src)
		return dst
	}

	// simdops.ConvolveValid correlates, so feed it the reversed kernel.
	reversed := make([]float64, len(kernel))
	for i, h := range kernel {
		reversed[len(kernel)-1-i] = h
	}
	padded := make([]float64, len(src)+len(kernel)-1)
	copy(padded[len(kernel)-1:], src)
	simdops.ConvolveValid(dst, padded, reversed)

	return dst
}

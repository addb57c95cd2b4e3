package filter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-remix/internal/simdops"
	"github.com/tphakala/go-audio-remix/internal/testutil"
)

const testSampleRate = 44100.0

func naiveCausal(src, kernel []float64) []float64 {
	out := make([]float64, len(src))
	for n := range src {
		for k, h := range kernel {
			if n-k >= 0 {
				out[n] += h * src[n-k]
			}
		}
	}
	return out
}

func TestApply_MatchesNaiveConvolution(t *testing.T) {
	src := testutil.Sine(440, 0.8, 8000, 3000)
	src[17] += 1.0

	tests := []struct {
		name string
		taps int
	}{
		{"direct", 31},
		{"fft", 700},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kernel := make([]float64, tt.taps)
			for i := range kernel {
				kernel[i] = math.Exp(-float64(i)/50) * math.Cos(float64(i))
			}

			got := Apply(src, kernel)
			want := naiveCausal(src, kernel)

			require.Len(t, got, len(src))
			for i := range want {
				assert.InDelta(t, want[i], got[i], 1e-9, "sample %d", i)
			}
		})
	}
}

func TestApply_EmptyInputs(t *testing.T) {
	assert.Empty(t, Apply(nil, []float64{1}))
	assert.Equal(t, []float64{0, 0}, Apply([]float64{1, 2}, nil))
}

func TestFFTConvolver_Identity(t *testing.T) {
	conv := NewFFTConvolver([]float64{1})
	require.NotNil(t, conv)
	assert.Equal(t, 1, conv.kernelLen)
	assert.Nil(t, NewFFTConvolver(nil))

	src := testutil.Sine(1000, 0.5, 44100, 2000)
	dst := make([]float64, len(src))
	conv.Filter(dst, src)

	for i := range src {
		assert.InDelta(t, src[i], dst[i], 1e-12)
	}
}

func TestHann(t *testing.T) {
	sym := Hann(9, false)
	testutil.AssertSymmetric(t, sym, 1e-12)
	assert.InDelta(t, 0.0, sym[0], 1e-12)
	assert.InDelta(t, 1.0, sym[4], 1e-12)

	// Periodic windows overlap-add to a constant at hop n/2.
	const n = 64
	per := Hann(n, true)
	for i := range n / 2 {
		assert.InDelta(t, 1.0, per[i]+per[i+n/2], 1e-12)
	}

	assert.Empty(t, Hann(0, true))
	assert.Equal(t, []float64{1}, Hann(1, true))
}

func TestDecimator(t *testing.T) {
	const (
		factor = 4
		n      = 44100
	)

	dec, err := NewDecimator(factor, DefaultDecimationAttenuation)
	require.NoError(t, err)
	assert.Equal(t, factor, dec.Factor())
	assert.Greater(t, len(dec.kernel), 100)

	t.Run("passband_preserved", func(t *testing.T) {
		out := dec.Process(testutil.Sine(1000, 1.0, n, n))
		require.Len(t, out, n/factor)

		interior := out[1000 : len(out)-1000]
		testutil.AssertRelativeError(t, 1/math.Sqrt2, simdops.RMS(interior), 0.01)
	})

	t.Run("alias_rejected", func(t *testing.T) {
		// 9 kHz folds to 2025 Hz at 11025 Hz unless removed.
		out := dec.Process(testutil.Sine(9000, 1.0, n, n))
		interior := out[1000 : len(out)-1000]
		assert.Less(t, simdops.RMS(interior), 1e-3)
	})

	t.Run("rounds_up_length", func(t *testing.T) {
		assert.Len(t, dec.Process(make([]float64, 10)), 3)
		assert.Empty(t, dec.Process(nil))
	})

	t.Run("pass_through", func(t *testing.T) {
		one, err := NewDecimator(1, DefaultDecimationAttenuation)
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 2, 3}, one.Process([]float64{1, 2, 3}))
	})

	_, err = NewDecimator(0, DefaultDecimationAttenuation)
	assert.Error(t, err)
}

func TestBiquad_Responses(t *testing.T) {
	const fc = 1000.0

	lp := LowPass(fc, ButterworthQ, testSampleRate)
	assert.InDelta(t, 1.0, lp.Magnitude(0, testSampleRate), 1e-9)
	assert.InDelta(t, 1/math.Sqrt2, lp.Magnitude(fc, testSampleRate), 1e-3)
	assert.Less(t, lp.Magnitude(10000, testSampleRate), 0.02)

	hp := HighPass(fc, ButterworthQ, testSampleRate)
	assert.InDelta(t, 0.0, hp.Magnitude(0, testSampleRate), 1e-9)
	assert.InDelta(t, 1/math.Sqrt2, hp.Magnitude(fc, testSampleRate), 1e-3)
	assert.InDelta(t, 1.0, hp.Magnitude(15000, testSampleRate), 0.01)

	shelf := HighShelf(1500, 4, ButterworthQ, testSampleRate)
	assert.InDelta(t, 1.0, shelf.Magnitude(0, testSampleRate), 1e-6)
	assert.InDelta(t, math.Pow(10, 4.0/20), shelf.Magnitude(20000, testSampleRate), 0.02)
}

func TestBiquad_ProcessMatchesResponse(t *testing.T) {
	const n = 44100
	bq := NewBiquad(LowPass(500, ButterworthQ, testSampleRate))

	buf := testutil.Sine(4000, 1.0, n, n)
	bq.Process(buf)

	want := bq.Coefficients().Magnitude(4000, testSampleRate) / math.Sqrt2
	testutil.AssertRelativeError(t, want, simdops.RMS(buf[n/2:]), 0.01)
	testutil.AssertNoNaNOrInf(t, buf)

	bq.Reset()
	assert.InDelta(t, bq.Coefficients().B0, bq.Tick(1), 1e-15)
}

func TestBiquad_ExtremeCutoffStable(t *testing.T) {
	c := Cascade{
		NewBiquad(LowPass(30000, ButterworthQ, testSampleRate)),
		NewBiquad(HighPass(0, ButterworthQ, testSampleRate)),
	}
	buf := make([]float64, 4096)
	buf[0] = 1
	c.Process(buf)
	testutil.AssertNoNaNOrInf(t, buf)
	assert.Less(t, math.Abs(buf[len(buf)-1]), 1e-3)

	c.Reset()
	for _, b := range c {
		b.SetCoefficients(LowPass(200, ButterworthQ, testSampleRate))
	}
	assert.InDelta(t, 1.0, c[0].Coefficients().Magnitude(0, testSampleRate), 1e-9)
}

package filter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-remix/internal/mathutil"
	"github.com/tphakala/go-audio-remix/internal/testutil"
)

const (
	defaultTolerance   = 1e-10
	magnitudeTolerance = 1e-2
	windowTolerance    = 1e-10

	testBeta5  = 5.0
	testBeta8  = 8.653728
	testBeta10 = 10.0

	testAttenuation80 = 80.0
	testCutoff0_25    = 0.25
	testTransitionBW  = 0.05
	testGainUnity     = 1.0

	testNumPoints512 = 512

	passbandRippleDB = 0.1
	dbFloor          = -300.0
)

func TestKaiserWindow_Symmetry(t *testing.T) {
	tests := []struct {
		name   string
		length int
		beta   float64
	}{
		{"length_11_beta_5", 11, testBeta5},
		{"length_21_beta_8", 21, testBeta8},
		{"length_51_beta_10", 51, testBeta10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			window := KaiserWindow(tt.length, tt.beta)

			assert.Len(t, window, tt.length)
			testutil.AssertSymmetric(t, window, windowTolerance)
			testutil.AssertCenterIsMax(t, window)
			assert.InDelta(t, 1.0, window[tt.length/2], windowTolerance)
		})
	}
}

func TestKaiserWindow_EdgeCases(t *testing.T) {
	assert.Empty(t, KaiserWindow(0, testBeta5))
	assert.Empty(t, KaiserWindow(-1, testBeta5))
	assert.Equal(t, []float64{1}, KaiserWindow(1, testBeta5))
	assert.Len(t, KaiserWindow(2, testBeta5), 2)
}

func TestFilterParams_Validate(t *testing.T) {
	valid := FilterParams{NumTaps: 101, CutoffFreq: testCutoff0_25, Attenuation: testAttenuation80, Gain: testGainUnity}

	tests := []struct {
		name    string
		mutate  func(p *FilterParams)
		wantErr bool
	}{
		{"valid_params", func(*FilterParams) {}, false},
		{"too_few_taps", func(p *FilterParams) { p.NumTaps = 1 }, true},
		{"too_many_taps", func(p *FilterParams) { p.NumTaps = 10000 }, true},
		{"cutoff_too_low", func(p *FilterParams) { p.CutoffFreq = 0 }, true},
		{"cutoff_too_high", func(p *FilterParams) { p.CutoffFreq = 0.5 }, true},
		{"negative_attenuation", func(p *FilterParams) { p.Attenuation = -10 }, true},
		{"zero_gain", func(p *FilterParams) { p.Gain = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDesignLowPassFilter_DCGain(t *testing.T) {
	for _, gain := range []float64{0.5, 1.0, 2.0} {
		filter, err := DesignLowPassFilter(FilterParams{
			NumTaps:     101,
			CutoffFreq:  testCutoff0_25,
			Attenuation: testAttenuation80,
			Gain:        gain,
		})
		require.NoError(t, err)

		assert.Len(t, filter, 101)
		testutil.AssertSymmetric(t, filter, defaultTolerance)
		testutil.AssertDCGain(t, filter, gain, defaultTolerance)
	}
}

func TestDesignLowPassFilter_FrequencyResponse(t *testing.T) {
	filter, err := DesignLowPassFilterAuto(testCutoff0_25, testTransitionBW, testAttenuation80, testGainUnity)
	require.NoError(t, err)
	assert.Equal(t, 1, len(filter)%2, "auto-sized filters have odd length")

	response := ComputeFrequencyResponse(filter, testNumPoints512)
	require.Len(t, response.Frequencies, testNumPoints512)

	passbandEnd := testCutoff0_25 - testTransitionBW/2
	stopbandStart := testCutoff0_25 + testTransitionBW/2
	const stopbandTarget = -testAttenuation80 + 10

	for i, freq := range response.Frequencies {
		magDB := mathutil.GainToDB(response.Magnitude[i], dbFloor)
		switch {
		case freq <= passbandEnd:
			assert.LessOrEqual(t, math.Abs(magDB), passbandRippleDB, "passband ripple at %f", freq)
		case freq >= stopbandStart:
			assert.LessOrEqual(t, magDB, stopbandTarget, "stopband leak at %f", freq)
		}
	}
}

func TestComputeFrequencyResponse(t *testing.T) {
	coeffs := []float64{0.25, 0.5, 0.25}

	response := ComputeFrequencyResponse(coeffs, testNumPoints512)

	assert.Len(t, response.Magnitude, testNumPoints512)
	assert.InDelta(t, 1.0, response.Magnitude[0], magnitudeTolerance)
	assert.LessOrEqual(t, response.Magnitude[testNumPoints512-1], magnitudeTolerance)
}

func BenchmarkDesignLowPassFilter(b *testing.B) {
	params := FilterParams{NumTaps: 201, CutoffFreq: 0.1125, Attenuation: testAttenuation80, Gain: testGainUnity}
	for b.Loop() {
		_, _ = DesignLowPassFilter(params)
	}
}

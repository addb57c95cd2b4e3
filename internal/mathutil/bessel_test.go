package mathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tphakala/go-audio-remix/internal/testutil"
)

func TestBesselI0(t *testing.T) {
	tests := []struct {
		name      string
		x         float64
		expected  float64
		tolerance float64
	}{
		{"zero", 0.0, 1.0, 1e-15},
		{"half", 0.5, 1.063483344, 1e-7},
		{"one", 1.0, 1.266065848, 1e-7},
		{"three", 3.0, 4.880792565, 1e-7},
		{"boundary", 3.75, 9.118945994, 1e-7},
		{"five", 5.0, 27.23987183, 1e-7},
		{"ten", 10.0, 2815.716628, 1e-6},
		{"negative", -1.0, 1.266065848, 1e-7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertRelativeError(t, tt.expected, BesselI0(tt.x), tt.tolerance)
		})
	}
}

func TestBesselI0_EvenAndIncreasing(t *testing.T) {
	prev := BesselI0(0)
	for x := 0.25; x <= 12; x += 0.25 {
		v := BesselI0(x)
		assert.InDelta(t, v, BesselI0(-x), 1e-10, "I0 must be even at %v", x)
		assert.Greater(t, v, prev, "I0 must increase at %v", x)
		prev = v
	}
}

func TestKaiserBeta(t *testing.T) {
	tests := []struct {
		name        string
		attenuation float64
		minBeta     float64
		maxBeta     float64
	}{
		{"below knee", 20.0, 0.0, 0.1},
		{"50dB", 50.0, 4.5, 4.6},
		{"80dB", 80.0, 7.8, 7.9},
		{"100dB", 100.0, 10.0, 10.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertInRange(t, KaiserBeta(tt.attenuation), tt.minBeta, tt.maxBeta)
		})
	}
}


func TestEstimateFilterLength(t *testing.T) {
	tests := []struct {
		name         string
		attenuation  float64
		transitionBW float64
		minTaps      int
		maxTaps      int
	}{
		{"decimator", 80.0, 0.025, 190, 215},
		{"wide transition", 80.0, 0.2, 20, 35},
		{"zero bandwidth", 100.0, 0.0, 3, maxFilterLength},
		{"clamped", 200.0, 0.0001, maxFilterLength, maxFilterLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			taps := EstimateFilterLength(tt.attenuation, tt.transitionBW)
			assert.Equal(t, 1, taps%2, "tap count %d must be odd", taps)
			assert.GreaterOrEqual(t, taps, tt.minTaps)
			assert.LessOrEqual(t, taps, tt.maxTaps)
		})
	}
}

func BenchmarkBesselI0(b *testing.B) {
	for b.Loop() {
		_ = BesselI0(8.5)
	}
}

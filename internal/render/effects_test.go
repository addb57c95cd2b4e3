package render

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-remix/internal/filter"
	"github.com/tphakala/go-audio-remix/internal/simdops"
	"github.com/tphakala/go-audio-remix/internal/testutil"
)

func TestStretchedLength(t *testing.T) {
	tests := []struct {
		n    int
		m    float64
		want int
	}{
		{44100, 1, 44100},
		{44100, 1.35, 32667},
		{44100, 0.75, 58800},
		{100, 1.2, 83},
		{0, 1.1, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StretchedLength(tt.n, tt.m), "n=%d m=%v", tt.n, tt.m)
	}
}

func TestStretch_PreservesPitch(t *testing.T) {
	const freq = 440.0
	in := [][]float64{testutil.Sine(freq, 0.5, testRate, testRate)}

	for _, m := range []float64{0.8, 1.25} {
		out, err := Stretch(in, m, testRate, false)
		require.NoError(t, err)
		require.Len(t, out[0], StretchedLength(testRate, m))

		// Skip the edges, where frames overlap padding.
		edge := testRate / 10
		got := testutil.ZeroCrossingRate(out[0][edge:len(out[0])-edge], testRate)
		testutil.AssertRelativeError(t, freq, got, 0.02, "m=%v", m)
	}
}

func TestStretch_SharedSplicesKeepChannelsLinked(t *testing.T) {
	mono := testutil.Sine(330, 0.5, testRate, testRate/2)
	in := [][]float64{mono, testutil.Scale([][]float64{mono}, 0.5)[0]}

	out, err := Stretch(in, 1.2, testRate, true)
	require.NoError(t, err)

	for i := range out[0] {
		require.InDelta(t, out[0][i]*0.5, out[1][i], 1e-12)
	}
}

func TestStretch_Bypass(t *testing.T) {
	in := [][]float64{{1, 2, 3}}
	out, err := Stretch(in, 1, testRate, false)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestStretch_Silence(t *testing.T) {
	in := [][]float64{make([]float64, 5000)}
	out, err := Stretch(in, 0.9, testRate, false)
	require.NoError(t, err)
	require.Len(t, out[0], 5556)
	for _, v := range out[0] {
		assert.Zero(t, v)
	}
}

func TestSweepFilter_Endpoints(t *testing.T) {
	s := newSweep("low-pass", filter.LowPass, 8000, 500, 1000, 2000, testRate)

	assert.Equal(t, 8000.0, s.cutoffAt(0))
	assert.InDelta(t, 8000.0, s.cutoffAt(1000), 1e-9)
	assert.InDelta(t, 2000.0, s.cutoffAt(1500), 1e-9)
	assert.InDelta(t, 500.0, s.cutoffAt(2000), 1e-9)
	assert.InDelta(t, 500.0, s.cutoffAt(5000), 1e-9)
}

func TestSweepFilter_ClosesOverSection(t *testing.T) {
	n := testRate
	x := testutil.Sine(3000, 0.5, testRate, n)
	newSweep("low-pass", filter.LowPass, 18000, 300, 0, n, testRate).Process(x, 0)

	head := simdops.RMS(x[testRate/20 : testRate/10])
	tail := simdops.RMS(x[n-testRate/20:])
	assert.InDelta(t, 0.5/math.Sqrt2, head, 0.02)
	assert.Less(t, tail, 0.05)
}

func TestModDelay_LFOPhaseByChannel(t *testing.T) {
	plan := &Plan{ModDelayMs: 7, ModDepthMs: 3, ModMix: 0.5}
	left := newModDelay(plan, 0.8, 0, testRate)
	right := newModDelay(plan, 0.8, 1, testRate)

	assert.Zero(t, left.phase)
	assert.InDelta(t, math.Pi/2, right.phase, 1e-15)
	assert.InDelta(t, 7*testRate/1000.0, left.baseDelay, 1e-9)
}

func TestModDelay_ImpulseLandsAtDelay(t *testing.T) {
	plan := &Plan{ModDelayMs: 10, ModMix: 1}
	m := newModDelay(plan, 0.25, 0, testRate)

	buf := make([]float64, 1000)
	buf[0] = 1
	m.Process(buf, 0)

	delay := int(math.Round(10 * testRate / 1000.0))
	assert.InDelta(t, 1.0, buf[delay], 1e-9)
	assert.Zero(t, buf[0])
}

func TestDrive(t *testing.T) {
	d := newDrive(1, 6)
	buf := []float64{-1, -0.1, 0, 0.1, 1}
	d.Process(buf, 0)

	assert.InDelta(t, -1.0, buf[0], 1e-12, "full scale maps to full scale")
	assert.InDelta(t, 1.0, buf[4], 1e-12)
	assert.Zero(t, buf[2])
	assert.Greater(t, buf[3], 0.1, "small signals are driven up")
	assert.InDelta(t, -buf[3], buf[1], 1e-15, "odd symmetry")
}

func TestCompressor_StaticCurve(t *testing.T) {
	c := newCompressor(-20, 4, testRate)

	assert.Zero(t, c.staticCurve(-40))
	assert.InDelta(t, -7.5, c.staticCurve(-10), 1e-12)
	knee := c.staticCurve(-20)
	assert.Less(t, knee, 0.0)
	assert.Greater(t, knee, -1.0)
}

func TestCompressor_ReducesLoudSignal(t *testing.T) {
	loud := testutil.Sine(200, 0.9, testRate, testRate)
	quiet := testutil.Sine(200, 0.01, testRate, testRate)

	newCompressor(-20, 4, testRate).Process(loud, 0)
	newCompressor(-20, 4, testRate).Process(quiet, 0)

	assert.Less(t, simdops.Peak(loud[testRate/2:]), 0.5)
	assert.InDelta(t, 0.01, simdops.Peak(quiet[testRate/2:]), 1e-4)
}

func TestDCBlocker(t *testing.T) {
	buf := make([]float64, testRate)
	for i := range buf {
		buf[i] = 0.5
	}
	newDCBlocker(testRate).Process(buf, 0)
	assert.Less(t, math.Abs(buf[len(buf)-1]), 1e-3)
}

func TestImpulseResponse(t *testing.T) {
	a := impulseResponse(0.5, testRate, 0)
	b := impulseResponse(0.5, testRate, 0)
	c := impulseResponse(0.5, testRate, 1)

	assert.Equal(t, a, b, "fixed seed")
	assert.NotEqual(t, a, c, "channels decorrelate")
	assert.InDelta(t, 1.0, simdops.Energy(a), 1e-9)

	pre := int(math.Round(reverbPreDelay * testRate))
	for _, v := range a[:pre] {
		assert.Zero(t, v)
	}
	head := simdops.RMS(a[pre : pre+1000])
	tail := simdops.RMS(a[len(a)-1000:])
	assert.Less(t, tail, head*0.01)
}

func TestNormalizePeak(t *testing.T) {
	chans := [][]float64{{0.5, -2}, {1, 0}}
	normalizePeak(chans, 1)
	assert.Equal(t, [][]float64{{0.25, -1}, {0.5, 0}}, chans)

	quiet := [][]float64{{0.1, -0.2}}
	normalizePeak(quiet, 1)
	assert.Equal(t, [][]float64{{0.1, -0.2}}, quiet, "never boosts")
}

func BenchmarkRender(b *testing.B) {
	in := shortTrack(10)
	p := testParams(1.1, 0.6, 0.7)
	sections := twoSections(10)
	for b.Loop() {
		_, _ = Render(in, testRate, sections, p)
	}
}

package render

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-remix/internal/analysis"
	"github.com/tphakala/go-audio-remix/internal/mathutil"
	"github.com/tphakala/go-audio-remix/internal/simdops"
	"github.com/tphakala/go-audio-remix/internal/testutil"
)

const testRate = 44100

func testProfile() Profile {
	return Profile{
		LowPassMin: 700, LowPassMax: 18000,
		HighPassMin: 20, HighPassMax: 420,
		ModRate: 0.25, ModDelayMs: 2, ModDepthMs: 1.5, ModFeedback: 0.35, ModMix: 0.5,
		DriveMax:  6,
		CompRatio: 4, CompThresholdDB: -24,
		SpaceMix: 0.12, SpaceDecay: 0.6,
		CeilingDB: -1,
	}
}

func testParams(m, intensity, effects float64) *Params {
	return &Params{
		Profile:         testProfile(),
		TempoMultiplier: m,
		Intensity:       intensity,
		EffectLevel:     effects,
		Crossfade:       30 * time.Millisecond,
		Parallel:        true,
	}
}

func twoSections(seconds float64) []analysis.Section {
	return []analysis.Section{
		{Label: analysis.LabelVerse, Start: 0, End: seconds / 2, Energy: 0.5},
		{Label: analysis.LabelDrop, Start: seconds / 2, End: seconds, Energy: 1},
	}
}

func shortTrack(seconds float64) [][]float64 {
	return testutil.PulseTrack(testutil.PulseTrackConfig{
		SampleRate: testRate,
		Seconds:    seconds,
		BPM:        128,
		Loud:       [][2]float64{{seconds / 2, seconds}},
	})
}

func TestRender_DurationLaw(t *testing.T) {
	in := shortTrack(4)
	n := len(in[0])

	for _, m := range []float64{0.75, 0.9, 1, 1.1, 1.35} {
		res, err := Render(in, testRate, twoSections(4), testParams(m, 0.6, 0.7))
		require.NoError(t, err)

		want := int(math.Round(float64(n) / m))
		for ch := range res.Channels {
			assert.Len(t, res.Channels[ch], want, "m=%v channel %d", m, ch)
		}

		last := res.Plans[len(res.Plans)-1]
		assert.InDelta(t, float64(want)/testRate, last.OutEnd, 1e-12, "m=%v", m)
		assert.Equal(t, n, last.EndSample)
	}
}

func TestRender_Deterministic(t *testing.T) {
	in := shortTrack(3)
	p := testParams(1.1, 0.8, 0.9)

	first, err := Render(in, testRate, twoSections(3), p)
	require.NoError(t, err)
	second, err := Render(in, testRate, twoSections(3), p)
	require.NoError(t, err)
	testutil.AssertBitIdentical(t, first.Channels, second.Channels)

	seq := *p
	seq.Parallel = false
	sequential, err := Render(in, testRate, twoSections(3), &seq)
	require.NoError(t, err)
	testutil.AssertBitIdentical(t, first.Channels, sequential.Channels)
}

func TestRender_DoesNotMutateInput(t *testing.T) {
	in := shortTrack(2)
	orig := testutil.Scale(in, 1)

	res, err := Render(in, testRate, twoSections(2), testParams(1, 1, 1))
	require.NoError(t, err)

	testutil.AssertBitIdentical(t, orig, in)
	res.Channels[0][0] = 42
	assert.NotEqual(t, 42.0, in[0][0])
}

func TestRender_PeakCeiling(t *testing.T) {
	in := testutil.Stereo(testutil.Sine(220, 1, testRate, testRate*2))
	p := testParams(1, 1, 1)

	res, err := Render(in, testRate, twoSections(2), p)
	require.NoError(t, err)

	ceiling := mathutil.DBToGain(p.Profile.CeilingDB)
	for ch := range res.Channels {
		testutil.AssertNoNaNOrInf(t, res.Channels[ch])
		assert.LessOrEqual(t, simdops.Peak(res.Channels[ch]), ceiling+1e-12)
	}
}

func TestRender_SmoothBoundaries(t *testing.T) {
	const amp = 0.5
	in := testutil.Stereo(testutil.Sine(440, amp, testRate, testRate*2))

	res, err := Render(in, testRate, twoSections(2), testParams(1, 0, 0))
	require.NoError(t, err)

	maxStep := amp * 2 * math.Pi * 440 / testRate
	out := res.Channels[0]
	for i := 1; i < len(out); i++ {
		require.LessOrEqual(t, math.Abs(out[i]-out[i-1]), 1.5*maxStep, "discontinuity at sample %d", i)
	}
}

func TestRender_ShortInput(t *testing.T) {
	in := [][]float64{testutil.Sine(440, 0.5, testRate, 100)}
	sections := []analysis.Section{{Label: analysis.LabelIntro, Start: 0, End: 100.0 / testRate}}

	res, err := Render(in, testRate, sections, testParams(1.2, 0.6, 0.7))
	require.NoError(t, err)
	assert.Len(t, res.Channels[0], 83)
}

func TestRender_Errors(t *testing.T) {
	in := shortTrack(1)
	sections := twoSections(1)

	tests := []struct {
		name     string
		channels [][]float64
		rate     int
		sections []analysis.Section
		params   *Params
		want     error
	}{
		{"nil_params", in, testRate, sections, nil, ErrInvalidParams},
		{"nan_intensity", in, testRate, sections, testParams(1, math.NaN(), 0), ErrInvalidParams},
		{"inf_tempo", in, testRate, sections, testParams(math.Inf(1), 0, 0), ErrInvalidParams},
		{"zero_tempo", in, testRate, sections, testParams(0, 0, 0), ErrInvalidParams},
		{"effects_above_one", in, testRate, sections, testParams(1, 0, 1.5), ErrInvalidParams},
		{"no_channels", nil, testRate, sections, testParams(1, 0, 0), ErrInvalidInput},
		{"zero_rate", in, 0, sections, testParams(1, 0, 0), ErrInvalidInput},
		{"ragged", [][]float64{in[0], in[1][:10]}, testRate, sections, testParams(1, 0, 0), ErrInvalidInput},
		{"no_sections", in, testRate, nil, testParams(1, 0, 0), ErrInvalidSections},
		{"past_duration", in, testRate, twoSections(2), testParams(1, 0, 0), ErrInvalidSections},
		{"reversed", in, testRate, []analysis.Section{{Label: analysis.LabelDrop, Start: 0.8, End: 0.2}}, testParams(1, 0, 0), ErrInvalidSections},
		{"overlapping", in, testRate, []analysis.Section{
			{Label: analysis.LabelVerse, Start: 0, End: 0.8},
			{Label: analysis.LabelDrop, Start: 0.4, End: 1},
		}, testParams(1, 0, 0), ErrInvalidSections},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Render(tt.channels, tt.rate, tt.sections, tt.params)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestBuildSchedule(t *testing.T) {
	sections := []analysis.Section{
		{Label: analysis.LabelIntro, Start: 0, End: 10},
		{Label: analysis.LabelDrop, Start: 10, End: 20},
		{Label: analysis.LabelOutro, Start: 20, End: 29.99999},
	}
	n := 30 * testRate
	p := testParams(1.25, 1, 1)

	plans := BuildSchedule(sections, testRate, n, p)
	require.Len(t, plans, 3)

	assert.Equal(t, 0, plans[0].StartSample)
	assert.Equal(t, n, plans[2].EndSample)
	for i := 1; i < len(plans); i++ {
		assert.Equal(t, plans[i-1].EndSample, plans[i].StartSample)
		assert.Equal(t, plans[i-1].OutEnd, plans[i].OutStart)
	}
	assert.InDelta(t, 24.0, plans[2].OutEnd, 1e-12)
	assert.InDelta(t, 8.0, plans[1].OutStart, 1e-12)

	starts := make([]float64, len(plans))
	for i, plan := range plans {
		starts[i] = plan.OutStart
	}
	testutil.AssertMonotonic(t, starts)

	intro, drop := plans[0], plans[1]
	assert.Equal(t, []string{"high-pass", "low-pass", "mod-delay", "drive", "compressor", "gain"}, drop.Stages)
	assert.Greater(t, drop.Drive, intro.Drive)
	assert.Greater(t, drop.CompRatio, intro.CompRatio)
	assert.Less(t, drop.CompThresholdDB, intro.CompThresholdDB)
	assert.Greater(t, drop.Gain, intro.Gain)
	assert.InDelta(t, p.Profile.LowPassMax, drop.LowPassFrom, 1e-9, "drops play fully open")
	assert.Greater(t, intro.LowPassTo, intro.LowPassFrom, "intro opens up")
}

func TestBuildSchedule_ZeroIntensityIsNeutral(t *testing.T) {
	p := testParams(1, 0, 0)
	plans := BuildSchedule(twoSections(10), testRate, 10*testRate, p)

	for _, plan := range plans {
		assert.Equal(t, p.Profile.LowPassMax, plan.LowPassFrom)
		assert.Equal(t, p.Profile.LowPassMax, plan.LowPassTo)
		assert.Equal(t, p.Profile.HighPassMin, plan.HighPassFrom)
		assert.Zero(t, plan.Drive)
		assert.Zero(t, plan.ModMix)
		assert.Equal(t, 1.0, plan.CompRatio)
		assert.Equal(t, 1.0, plan.Gain)
		assert.Equal(t, []string{"high-pass", "low-pass"}, plan.Stages)
	}
}

func TestCrossfadeWeightsSumToOne(t *testing.T) {
	plans := []Plan{
		{StartSample: 0, EndSample: 1000},
		{StartSample: 1000, EndSample: 1100},
		{StartSample: 1100, EndSample: 3000},
	}
	halves := crossfadeHalves(plans, 400)
	assert.Equal(t, []int{0, 50, 50, 0}, halves, "fades never exceed half a section")

	for pos := range 3000 {
		var sum float64
		for i := range plans {
			if pos >= plans[i].StartSample-halves[i] && pos < plans[i].EndSample+halves[i+1] {
				sum += sectionWeight(plans, halves, i, pos)
			}
		}
		require.InDelta(t, 1.0, sum, 1e-12, "pos %d", pos)
	}
}

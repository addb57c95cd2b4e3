package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-remix/internal/testutil"
)

func clickTrain(bpm, seconds, rate float64) []float64 {
	n := int(seconds * rate)
	x := make([]float64, n)
	period := 60 / bpm
	for i := range x {
		since := math.Mod(float64(i)/rate, period)
		if since < 0.01 {
			x[i] = math.Exp(-since*400) * math.Sin(2*math.Pi*1000*since)
		}
	}
	return x
}

func TestEstimateTempo(t *testing.T) {
	tests := []struct {
		name string
		bpm  float64
	}{
		{"bpm_90", 90},
		{"bpm_120", 120},
		{"bpm_128", 128},
		{"bpm_140", 140},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateTempo(clickTrain(tt.bpm, 30, analysisRate), analysisRate)
			assert.InDelta(t, tt.bpm, got, 2)
		})
	}
}

func TestEstimateTempo_Degenerate(t *testing.T) {
	assert.Equal(t, DefaultTempo, EstimateTempo(nil, analysisRate))
	assert.Equal(t, DefaultTempo, EstimateTempo(make([]float64, 5*int(analysisRate)), analysisRate))
	assert.Equal(t, DefaultTempo, EstimateTempo(clickTrain(128, 1, analysisRate), analysisRate))
}

func TestParabolicOffset(t *testing.T) {
	assert.InDelta(t, 0.0, parabolicOffset(1, 2, 1), 1e-12)
	assert.InDelta(t, 0.25, parabolicOffset(0, 3, 2), 1e-12)
	assert.InDelta(t, 0.0, parabolicOffset(1, 1, 1), 0, "flat neighbourhood")
}

func TestTempoPriorPrefersModerateTempi(t *testing.T) {
	assert.InDelta(t, 1.0, tempoPrior(120), 1e-12)
	assert.Greater(t, tempoPrior(128), tempoPrior(64))
	assert.InDelta(t, tempoPrior(60), tempoPrior(240), 1e-12)
}

func TestPitchClassOf(t *testing.T) {
	assert.Equal(t, 9, pitchClassOf(440))
	assert.Equal(t, 0, pitchClassOf(261.63))
	assert.Equal(t, 0, pitchClassOf(65.41))
	assert.Equal(t, 7, pitchClassOf(392))
	assert.Equal(t, 11, pitchClassOf(246.94))
}

func TestDetectKey(t *testing.T) {
	rotate := func(profile [pitchClasses]float64, tonic int) [pitchClasses]float64 {
		var out [pitchClasses]float64
		for i, v := range profile {
			out[(i+tonic)%pitchClasses] = v
		}
		return out
	}

	for _, k := range AllKeys() {
		profile := majorProfile
		if k.Mode == Minor {
			profile = minorProfile
		}
		got, score := DetectKey(rotate(profile, k.Tonic))
		assert.Equal(t, k, got, k.String())
		assert.InDelta(t, 1.0, score, 1e-12)
	}

	flat, score := DetectKey([pitchClasses]float64{})
	assert.Equal(t, "C Major", flat.String())
	assert.InDelta(t, 0.0, score, 0)
}

func TestKeyNames(t *testing.T) {
	keys := AllKeys()
	require.Len(t, keys, 24)
	assert.Equal(t, "C Major", keys[0].String())
	assert.Equal(t, "C Minor", keys[1].String())
	assert.Equal(t, "C# Minor", keys[3].String())
	assert.Equal(t, "B Minor", keys[23].String())
}

func TestLoudness(t *testing.T) {
	sine := testutil.Sine(1000, 1, testSampleRate, 5*testSampleRate)

	full, err := Loudness([][]float64{sine}, testSampleRate, false)
	require.NoError(t, err)
	testutil.AssertInRange(t, full, -5, 0)

	stereo, err := Loudness(testutil.Stereo(sine), testSampleRate, true)
	require.NoError(t, err)
	assert.InDelta(t, full+10*math.Log10(2), stereo, 1e-9, "channel powers add")

	silent, err := Loudness([][]float64{make([]float64, testSampleRate)}, testSampleRate, false)
	require.NoError(t, err)
	assert.InDelta(t, LoudnessFloor, silent, 0)

	short, err := Loudness([][]float64{sine[:1000]}, testSampleRate, false)
	require.NoError(t, err)
	assert.Greater(t, short, LoudnessFloor)

	tiny, err := Loudness([][]float64{testutil.Sine(1000, 1e-6, testSampleRate, testSampleRate)}, testSampleRate, false)
	require.NoError(t, err)
	assert.InDelta(t, LoudnessFloor, tiny, 0, "below the floor reports the floor")
}

func TestLoudness_RelativeGateIgnoresQuietPassages(t *testing.T) {
	loud := testutil.Sine(1000, 0.5, testSampleRate, 4*testSampleRate)
	quiet := testutil.Sine(1000, 0.001, testSampleRate, 4*testSampleRate)

	base, err := Loudness([][]float64{loud}, testSampleRate, false)
	require.NoError(t, err)

	mixed, err := Loudness([][]float64{append(append([]float64{}, loud...), quiet...)}, testSampleRate, false)
	require.NoError(t, err)

	assert.InDelta(t, base, mixed, 0.3)
}

func TestLabelSections(t *testing.T) {
	tests := []struct {
		name     string
		energies []float64
		want     []Label
	}{
		{"single", []float64{1}, []Label{LabelVerse}},
		{"pair", []float64{0.4, 1}, []Label{LabelIntro, LabelOutro}},
		{
			"builds_before_drops",
			[]float64{0.3, 0.5, 1.0, 0.4, 0.95, 0.2},
			[]Label{LabelIntro, LabelBuild, LabelDrop, LabelBuild, LabelDrop, LabelOutro},
		},
		{
			"breakdown_after_drop",
			[]float64{0.3, 1.0, 0.5, 0.4, 0.2},
			[]Label{LabelIntro, LabelDrop, LabelBreakdown, LabelBreakdown, LabelOutro},
		},
		{
			"verse_when_not_quiet",
			[]float64{0.3, 1.0, 0.7, 0.2},
			[]Label{LabelIntro, LabelDrop, LabelVerse, LabelOutro},
		},
		{"silent", []float64{0, 0, 0}, []Label{LabelIntro, LabelVerse, LabelOutro}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sections := make([]Section, len(tt.energies))
			for i, e := range tt.energies {
				sections[i].Energy = e
			}
			labelSections(sections)

			got := make([]Label, len(sections))
			for i, s := range sections {
				got[i] = s.Label
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPickBoundaries_MinimumSpacing(t *testing.T) {
	const w = 8
	nov := make([]float64, 101)
	nov[20] = 5
	nov[23] = 4 // within 4 s of the stronger peak at 10 s
	nov[40] = 3
	nov[95] = 6 // too close to the end

	bounds := pickBoundaries(nov, w, featureBlockSeconds, 50)
	assert.Equal(t, []float64{10, 20}, bounds)
}

func TestSegment_SingleSectionWhenShort(t *testing.T) {
	f := &blockFeatures{logEnergy: make([]float64, 10), logCentroid: make([]float64, 10)}
	sections := Segment(f, make([]float64, 100), analysisRate, 5)
	require.Len(t, sections, 1)
	assert.Equal(t, Section{Label: LabelVerse, Start: 0, End: 5}, sections[0])
}

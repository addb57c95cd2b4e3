package testutil

import "math"

// Sine returns n samples of a sine wave.
func Sine(freq, amplitude float64, sampleRate, n int) []float64 {
	out := make([]float64, n)
	w := 2 * math.Pi * freq / float64(sampleRate)
	for i := range out {
		out[i] = amplitude * math.Sin(w*float64(i))
	}
	return out
}

// Stereo duplicates a mono signal into two channels.
func Stereo(mono []float64) [][]float64 {
	right := make([]float64, len(mono))
	copy(right, mono)
	return [][]float64{mono, right}
}

// Scale returns a copy of a planar buffer multiplied by gain.
func Scale(channels [][]float64, gain float64) [][]float64 {
	out := make([][]float64, len(channels))
	for ch, data := range channels {
		out[ch] = make([]float64, len(data))
		for i, v := range data {
			out[ch][i] = v * gain
		}
	}
	return out
}

// ZeroCrossingRate estimates the fundamental of a clean tone in Hz.
func ZeroCrossingRate(x []float64, sampleRate int) float64 {
	crossings := 0
	for i := 1; i < len(x); i++ {
		if (x[i-1] < 0) != (x[i] < 0) {
			crossings++
		}
	}
	seconds := float64(len(x)) / float64(sampleRate)
	if seconds == 0 {
		return 0
	}
	return float64(crossings) / 2 / seconds
}

// C major I-IV-V-I chord tones in Hz (C4 E4 G4, F4 A4 C5, G4 B4 D5).
var cMajorProgression = [][]float64{
	{261.63, 329.63, 392.00},
	{349.23, 440.00, 523.25},
	{392.00, 493.88, 587.33},
	{261.63, 329.63, 392.00},
}

// PulseTrackConfig describes a synthetic test track.
type PulseTrackConfig struct {
	SampleRate int
	Seconds    float64
	BPM        float64
	// Loud gives the time ranges (seconds) where the arrangement is
	// louder, so segmentation has structure to find.
	Loud [][2]float64
}

// PulseTrack synthesizes a stereo track with a kick on every beat and a
// C major chord progression changing every bar. It is deterministic.
func PulseTrack(cfg PulseTrackConfig) [][]float64 {
	n := int(cfg.Seconds * float64(cfg.SampleRate))
	sr := float64(cfg.SampleRate)
	beat := 60 / cfg.BPM
	bar := 4 * beat

	mono := make([]float64, n)
	for i := range mono {
		tm := float64(i) / sr

		level := 0.5
		for _, r := range cfg.Loud {
			if tm >= r[0] && tm < r[1] {
				level = 1.0
			}
		}

		// Kick: decaying 55 Hz sine with a click, restarted every beat.
		sinceBeat := math.Mod(tm, beat)
		env := math.Exp(-sinceBeat * 30)
		kick := env * math.Sin(2*math.Pi*55*sinceBeat)
		if sinceBeat < 0.004 {
			kick += 0.5 * (1 - sinceBeat/0.004)
		}

		chord := cMajorProgression[int(tm/bar)%len(cMajorProgression)]
		var tone float64
		for _, f := range chord {
			tone += math.Sin(2 * math.Pi * f * tm)
		}

		mono[i] = level * (0.45*kick + 0.12*tone)
	}

	return Stereo(mono)
}

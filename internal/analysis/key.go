package analysis

import (
	"math"
)

// PitchNames lists pitch classes from C, using sharps.
var PitchNames = [pitchClasses]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Krumhansl-Kessler key profiles, indexed from the tonic.
var (
	majorProfile = [pitchClasses]float64{6.35, 2.23, 3.48, 2.33, 4.38, 4.09, 2.52, 5.19, 2.39, 3.66, 2.29, 2.88}
	minorProfile = [pitchClasses]float64{6.33, 2.68, 3.52, 5.38, 2.60, 3.53, 2.54, 4.75, 3.98, 2.69, 3.34, 3.17}
)

// Mode is major or minor.
type Mode int

const (
	Major Mode = iota
	Minor
)

func (m Mode) String() string {
	if m == Minor {
		return "Minor"
	}
	return "Major"
}

// Key is a tonic pitch class and mode.
type Key struct {
	Tonic int
	Mode  Mode
}

// String formats the key as "<Pitch> Major|Minor".
func (k Key) String() string {
	return PitchNames[k.Tonic] + " " + k.Mode.String()
}

// AllKeys enumerates the 24 keys in tie-break order: C..B, major first.
func AllKeys() []Key {
	keys := make([]Key, 0, 2*pitchClasses)
	for tonic := range pitchClasses {
		keys = append(keys, Key{Tonic: tonic, Mode: Major}, Key{Tonic: tonic, Mode: Minor})
	}
	return keys
}

// pitchClassOf maps a frequency to its nearest equal-tempered pitch class
// with C = 0.
func pitchClassOf(freq float64) int {
	semis := int(math.Round(pitchClasses * math.Log2(freq/tuningA4)))
	return ((semis+pitchClassA)%pitchClasses + pitchClasses) % pitchClasses
}

// chromaBins maps each STFT bin to a pitch class, -1 outside the chroma band.
func chromaBins(s *stft, rate float64) []int {
	bins := make([]int, s.size/2+1)
	for k := range bins {
		f := s.binFreq(k, rate)
		if f < chromaMinFreq || f > chromaMaxFreq {
			bins[k] = -1
			continue
		}
		bins[k] = pitchClassOf(f)
	}
	return bins
}

// pearson returns the correlation of chroma with profile rotated to tonic.
// A flat chroma correlates with nothing and returns 0.
func pearson(chroma *[pitchClasses]float64, profile *[pitchClasses]float64, tonic int) float64 {
	var meanX, meanY float64
	for i := range pitchClasses {
		meanX += chroma[i]
		meanY += profile[i]
	}
	meanX /= pitchClasses
	meanY /= pitchClasses

	var sxy, sxx, syy float64
	for pc := range pitchClasses {
		dx := chroma[pc] - meanX
		dy := profile[(pc-tonic+pitchClasses)%pitchClasses] - meanY
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0
	}
	return sxy / math.Sqrt(sxx*syy)
}

// DetectKey picks the key profile best correlated with chroma. Scores
// within keyTieEpsilon tie; ties go to the stronger tonic chroma bin, then
// to enumeration order.
func DetectKey(chroma [pitchClasses]float64) (Key, float64) {
	best := Key{}
	bestScore := math.Inf(-1)

	for _, k := range AllKeys() {
		profile := &majorProfile
		if k.Mode == Minor {
			profile = &minorProfile
		}
		score := pearson(&chroma, profile, k.Tonic)

		switch {
		case score > bestScore+keyTieEpsilon:
			best, bestScore = k, score
		case math.Abs(score-bestScore) <= keyTieEpsilon && chroma[k.Tonic] > chroma[best.Tonic]:
			best, bestScore = k, score
		}
	}

	return best, bestScore
}

package analysis

import (
	"math"
	"slices"

	"github.com/tphakala/go-audio-remix/internal/mathutil"
	"github.com/tphakala/go-audio-remix/internal/simdops"
)

// Label classifies a section's role in the arrangement.
type Label string

const (
	LabelIntro     Label = "intro"
	LabelVerse     Label = "verse"
	LabelBuild     Label = "build"
	LabelDrop      Label = "drop"
	LabelBreakdown Label = "breakdown"
	LabelOutro     Label = "outro"
)

// Labels lists every label.
func Labels() []Label {
	return []Label{LabelIntro, LabelVerse, LabelBuild, LabelDrop, LabelBreakdown, LabelOutro}
}

// Valid reports whether l belongs to the closed label set.
func (l Label) Valid() bool {
	return slices.Contains(Labels(), l)
}

// Section is a labelled time range in seconds with relative energy.
type Section struct {
	Label  Label   `json:"label"`
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
	Energy float64 `json:"energy"`
}

// blockFeatures holds per-block log-energy and log spectral centroid.
// Both are in natural-log units, so a level change and a brightness change
// of the same ratio weigh the same.
type blockFeatures struct {
	logEnergy   []float64
	logCentroid []float64
}

func (f *blockFeatures) len() int {
	return len(f.logEnergy)
}

// novelty scores each block boundary b in [w, n-w] by the distance between
// the mean feature vectors of the w blocks before and after it. Entries
// outside that range are zero.
func novelty(f *blockFeatures, w int) []float64 {
	n := f.len()
	out := make([]float64, n+1)
	if n < 2*w {
		return out
	}

	mean := func(x []float64, lo, hi int) float64 {
		return simdops.Mean(x[lo:hi])
	}
	for b := w; b <= n-w; b++ {
		de := mean(f.logEnergy, b-w, b) - mean(f.logEnergy, b, b+w)
		dc := mean(f.logCentroid, b-w, b) - mean(f.logCentroid, b, b+w)
		out[b] = math.Hypot(de, dc)
	}
	return out
}

// pickBoundaries returns boundary times in seconds, ascending. Peaks of
// nov above mean + k·std are taken strongest first while every boundary
// stays MinSectionSeconds from the others and from both ends.
func pickBoundaries(nov []float64, w int, blockSecs, duration float64) []float64 {
	lo, hi := w, len(nov)-1-w
	if hi < lo {
		return nil
	}

	vals := nov[lo : hi+1]
	mean := simdops.Mean(vals)
	var v float64
	for _, x := range vals {
		v += (x - mean) * (x - mean)
	}
	threshold := mean + noveltyThresholdStd*math.Sqrt(v/float64(len(vals)))

	type peak struct {
		idx      int
		strength float64
	}
	var peaks []peak
	for b := lo; b <= hi; b++ {
		left := math.Inf(-1)
		if b > lo {
			left = nov[b-1]
		}
		right := math.Inf(-1)
		if b < hi {
			right = nov[b+1]
		}
		if nov[b] > threshold && nov[b] > 0 && nov[b] >= left && nov[b] > right {
			peaks = append(peaks, peak{b, nov[b]})
		}
	}

	slices.SortStableFunc(peaks, func(a, b peak) int {
		switch {
		case a.strength > b.strength:
			return -1
		case a.strength < b.strength:
			return 1
		default:
			return a.idx - b.idx
		}
	})

	var bounds []float64
	for _, p := range peaks {
		if len(bounds) == MaxSections-1 {
			break
		}
		t := float64(p.idx) * blockSecs
		if t < MinSectionSeconds || duration-t < MinSectionSeconds {
			continue
		}
		ok := true
		for _, b := range bounds {
			if math.Abs(t-b) < MinSectionSeconds {
				ok = false
				break
			}
		}
		if ok {
			bounds = append(bounds, t)
		}
	}

	slices.Sort(bounds)
	return bounds
}

// sectionEnergies returns per-section RMS of x (sampled at rate) divided by
// the loudest section's RMS. Silence gives zeros.
func sectionEnergies(sections []Section, x []float64, rate float64) {
	rms := make([]float64, len(sections))
	var loudest float64
	for i, s := range sections {
		lo := min(len(x), int(s.Start*rate))
		hi := min(len(x), max(lo, int(math.Ceil(s.End*rate))))
		if hi > lo {
			rms[i] = simdops.RMS(x[lo:hi])
		}
		loudest = math.Max(loudest, rms[i])
	}
	for i := range sections {
		if loudest > 0 {
			sections[i].Energy = mathutil.Clamp(rms[i]/loudest, 0, 1)
		}
	}
}

// labelSections assigns labels from section energies.
func labelSections(sections []Section) {
	n := len(sections)
	if n == 1 {
		sections[0].Label = LabelVerse
		return
	}

	var peakEnergy, interiorMax float64
	for i, s := range sections {
		peakEnergy = math.Max(peakEnergy, s.Energy)
		if i > 0 && i < n-1 {
			interiorMax = math.Max(interiorMax, s.Energy)
		}
	}

	isDrop := make([]bool, n)
	if n >= 3 && interiorMax > 0 {
		for i := 1; i < n-1; i++ {
			isDrop[i] = sections[i].Energy >= dropShareOfMax*interiorMax
		}
	}

	seenDrop := false
	for i := range sections {
		s := &sections[i]
		switch {
		case isDrop[i]:
			s.Label = LabelDrop
		case i == 0:
			s.Label = LabelIntro
		case i == n-1:
			s.Label = LabelOutro
		case isDrop[i+1] && s.Energy < sections[i+1].Energy:
			s.Label = LabelBuild
		case seenDrop && s.Energy < breakdownShareOfMax*peakEnergy:
			s.Label = LabelBreakdown
		default:
			s.Label = LabelVerse
		}
		if isDrop[i] {
			seenDrop = true
		}
	}
}

// Segment splits [0, duration] into labelled sections from block features
// and the analysis-rate mono signal used for section energy.
func Segment(f *blockFeatures, x []float64, rate, duration float64) []Section {
	w := int(math.Round(noveltyWindowSecs / featureBlockSeconds))

	var bounds []float64
	if duration >= 2*MinSectionSeconds && f.len() >= 2*w+1 {
		bounds = pickBoundaries(novelty(f, w), w, featureBlockSeconds, duration)
	}

	sections := make([]Section, 0, len(bounds)+1)
	start := 0.0
	for _, b := range bounds {
		sections = append(sections, Section{Start: start, End: b})
		start = b
	}
	sections = append(sections, Section{Start: start, End: duration})

	sectionEnergies(sections, x, rate)
	labelSections(sections)

	return sections
}

package render

import (
	"github.com/tphakala/go-audio-remix/internal/mathutil"
)

// crossfadeHalves returns, for every boundary, the half-width in samples of
// its crossfade. Entry i belongs to the boundary before plans[i]; the outer
// edges of the track have width zero. A fade never takes more than half of
// either neighbouring section.
func crossfadeHalves(plans []Plan, crossfade int) []int {
	halves := make([]int, len(plans)+1)
	for i := 1; i < len(plans); i++ {
		prev := plans[i-1].EndSample - plans[i-1].StartSample
		cur := plans[i].EndSample - plans[i].StartSample
		halves[i] = max(0, min(crossfade/2, prev/2, cur/2))
	}
	return halves
}

// fadeIn is the rising smoothstep gain at sample pos for a boundary at b
// with half-width h. The falling side uses 1 - fadeIn so the pair sums to
// one.
func fadeIn(pos, b, h int) float64 {
	u := (float64(pos-(b-h)) + 0.5) / float64(2*h)
	return mathutil.Smoothstep(u)
}

// sectionWeight is the gain section i contributes at sample pos.
func sectionWeight(plans []Plan, halves []int, i, pos int) float64 {
	w := 1.0
	if h := halves[i]; h > 0 && pos < plans[i].StartSample+h {
		w = fadeIn(pos, plans[i].StartSample, h)
	}
	if h := halves[i+1]; h > 0 && pos >= plans[i].EndSample-h {
		w *= 1 - fadeIn(pos, plans[i].EndSample, h)
	}
	return w
}

// renderSections runs every section's chain over its range of one channel,
// extended by the neighbouring half crossfades, and sums the weighted
// results into a new slice.
func renderSections(in []float64, plans []Plan, halves []int, modRate float64, channel int, sampleRate float64) []float64 {
	out := make([]float64, len(in))
	var seg []float64

	for i := range plans {
		lo := plans[i].StartSample - halves[i]
		hi := plans[i].EndSample + halves[i+1]
		if hi <= lo {
			continue
		}

		seg = append(seg[:0], in[lo:hi]...)
		newSectionChain(&plans[i], modRate, channel, sampleRate).Process(seg, lo)

		for j, y := range seg {
			pos := lo + j
			out[pos] += sectionWeight(plans, halves, i, pos) * y
		}
	}

	return out
}

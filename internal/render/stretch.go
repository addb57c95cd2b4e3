package render

import (
	"math"

	"github.com/tphakala/go-audio-remix/internal/filter"
	"github.com/tphakala/go-audio-remix/internal/pipeline"
	"github.com/tphakala/go-audio-remix/internal/simdops"
)

const (
	wsolaFrameSeconds  = 0.046
	wsolaSearchSeconds = 0.012

	// The coarse similarity pass runs on a guide box-averaged by this factor.
	guideDecimation = 4

	minWSOLAHalfFrame = 8
)

// StretchedLength is the output length of an n-sample signal played
// m times faster.
func StretchedLength(n int, m float64) int {
	if m == 1 {
		return n
	}
	return int(math.Round(float64(n) / m))
}

// stretcher is a WSOLA time-stretcher. Frames are periodic-Hann windowed
// with 50% overlap so the synthesis windows sum to one.
type stretcher struct {
	frame  int
	hop    int
	search int
	window []float64
}

func newStretcher(sampleRate float64) *stretcher {
	half := max(minWSOLAHalfFrame, int(math.Round(wsolaFrameSeconds*sampleRate/2)))
	frame := 2 * half
	return &stretcher{
		frame:  frame,
		hop:    half,
		search: int(math.Round(wsolaSearchSeconds * sampleRate)),
		window: filter.Hann(frame, true),
	}
}

// splicing is the frame layout shared by every channel.
type splicing struct {
	starts []int // analysis frame starts in padded coordinates
	front  int   // zeros before the first input sample
	total  int   // padded length
	outLen int
}

// plan chooses the analysis position of every frame from the mono guide.
// Frame k is centred on output sample k·hop; its nominal input centre is
// k·hop·m, refined by the similarity search against the natural
// continuation of frame k-1.
func (s *stretcher) plan(guide []float64, m float64, outLen int) *splicing {
	half := s.frame / 2
	front := half + s.search

	frames := (outLen + half + s.hop - 1) / s.hop
	nominal := func(k int) int {
		return int(math.Round(float64(k*s.hop)*m)) - half + front
	}

	total := max(front+len(guide), nominal(frames-1)+s.search+s.frame+s.hop)
	padded := make([]float64, total)
	copy(padded[front:], guide)
	coarse := boxDecimate(padded, guideDecimation)

	starts := make([]int, frames)
	starts[0] = nominal(0)
	for k := 1; k < frames; k++ {
		starts[k] = nominal(k) + s.bestOffset(padded, coarse, starts[k-1]+s.hop, nominal(k))
	}

	return &splicing{starts: starts, front: front, total: total, outLen: outLen}
}

// similarity is the normalized cross-correlation of a candidate frame with
// the template, up to the template's constant norm.
func similarity(template, candidate []float64) float64 {
	e := simdops.Energy(candidate)
	if e == 0 {
		return 0
	}
	return simdops.Dot(template, candidate) / math.Sqrt(e)
}

// bestOffset searches [-search, search] around nominal for the frame most
// similar to the one starting at tmpl. Offset 0 wins ties.
func (s *stretcher) bestOffset(guide, coarse []float64, tmpl, nominal int) int {
	d := guideDecimation
	cn := s.frame / d
	ct := coarse[tmpl/d : tmpl/d+cn]

	best := 0
	bestScore := similarity(ct, coarse[nominal/d:nominal/d+cn])
	limit := (s.search / d) * d
	for off := -limit; off <= limit; off += d {
		if off == 0 {
			continue
		}
		c := (nominal + off) / d
		if score := similarity(ct, coarse[c:c+cn]); score > bestScore {
			best, bestScore = off, score
		}
	}

	template := guide[tmpl : tmpl+s.frame]
	center := best
	bestScore = similarity(template, guide[nominal+center:nominal+center+s.frame])
	for off := max(-s.search, center-d+1); off <= min(s.search, center+d-1); off++ {
		if off == center {
			continue
		}
		start := nominal + off
		if score := similarity(template, guide[start:start+s.frame]); score > bestScore {
			best, bestScore = off, score
		}
	}

	return best
}

// overlapAdd renders one channel with the planned frame positions.
func (s *stretcher) overlapAdd(x []float64, sp *splicing) []float64 {
	padded := make([]float64, sp.total)
	copy(padded[sp.front:], x)

	acc := make([]float64, (len(sp.starts)-1)*s.hop+s.frame)
	for k, start := range sp.starts {
		dst := acc[k*s.hop : k*s.hop+s.frame]
		src := padded[start : start+s.frame]
		for j, w := range s.window {
			dst[j] += w * src[j]
		}
	}

	out := make([]float64, sp.outLen)
	copy(out, acc[s.frame/2:])
	return out
}

// boxDecimate averages consecutive groups of factor samples.
func boxDecimate(x []float64, factor int) []float64 {
	out := make([]float64, len(x)/factor)
	scale := 1 / float64(factor)
	for i := range out {
		out[i] = simdops.Sum(x[i*factor:(i+1)*factor]) * scale
	}
	return out
}

// Stretch time-scales every channel by 1/m without changing pitch. All
// channels are spliced at the same positions, chosen on their mono mix.
// m == 1 returns channels unchanged.
func Stretch(channels [][]float64, m, sampleRate float64, parallel bool) ([][]float64, error) {
	if m == 1 || len(channels) == 0 {
		return channels, nil
	}

	outLen := StretchedLength(len(channels[0]), m)
	out := make([][]float64, len(channels))
	if outLen == 0 {
		for ch := range out {
			out[ch] = []float64{}
		}
		return out, nil
	}

	s := newStretcher(sampleRate)
	sp := s.plan(simdops.MixDown(channels), m, outLen)

	err := pipeline.ForEachChannel(len(channels), parallel, func(ch int) error {
		out[ch] = s.overlapAdd(channels[ch], sp)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

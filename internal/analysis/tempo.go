package analysis

import (
	"math"

	"github.com/tphakala/go-audio-remix/internal/mathutil"
	"github.com/tphakala/go-audio-remix/internal/simdops"
)

// onsetEnvelope returns the rectified, locally de-meaned spectral flux of
// square-root compressed magnitudes. It scales with the square root of the
// input gain, so anything built on its shape is gain invariant.
func onsetEnvelope(x []float64, rate float64) (onset []float64, frameRate float64) {
	s := newSTFT(tempoFrameSize, tempoHop)
	frameRate = rate / tempoHop

	flux := make([]float64, s.frameCount(len(x)))
	prev := make([]float64, tempoFrameSize/2+1)
	s.each(x, func(i int, mag []float64) {
		var sum float64
		for k, m := range mag {
			c := math.Sqrt(m)
			if i > 0 && c > prev[k] {
				sum += c - prev[k]
			}
			prev[k] = c
		}
		flux[i] = sum
	})

	return subtractLocalMean(flux, max(1, int(math.Round(onsetMeanSeconds*frameRate)))), frameRate
}

// subtractLocalMean removes a centred moving average of width w and
// half-wave rectifies the result.
func subtractLocalMean(x []float64, w int) []float64 {
	n := len(x)
	prefix := make([]float64, n+1)
	for i, v := range x {
		prefix[i+1] = prefix[i] + v
	}

	out := make([]float64, n)
	half := w / 2
	for i := range n {
		lo := max(0, i-half)
		hi := min(n, i+half+1)
		mean := (prefix[hi] - prefix[lo]) / float64(hi-lo)
		out[i] = math.Max(0, x[i]-mean)
	}
	return out
}

// autocorrelation returns the unbiased autocorrelation at a lag.
func autocorrelation(x []float64, lag int) float64 {
	n := len(x) - lag
	if n <= 0 {
		return 0
	}
	return simdops.Dot(x[:n], x[lag:]) / float64(n)
}

// tempoPrior weights a candidate with a log-normal centred on 120 BPM.
func tempoPrior(bpm float64) float64 {
	octaves := math.Log2(bpm/tempoPriorCentre) / tempoPriorOctaves
	return math.Exp(-0.5 * octaves * octaves)
}

// EstimateTempo returns the dominant beat rate of x (sampled at rate) in
// whole BPM within [MinTempo, MaxTempo].
func EstimateTempo(x []float64, rate float64) int {
	onset, frameRate := onsetEnvelope(x, rate)

	minLag := max(1, int(math.Floor(60*frameRate/MaxTempo)))
	maxLag := int(math.Ceil(60 * frameRate / MinTempo))
	if len(onset) < 2*maxLag+1 || simdops.Energy(onset) == 0 {
		return DefaultTempo
	}

	// Score every candidate lag; index 0 of scores is minLag-1 so the
	// parabolic fit always has neighbours.
	scores := make([]float64, maxLag-minLag+3)
	lagAt := func(i int) int { return minLag - 1 + i }
	for i := range scores {
		lag := lagAt(i)
		if lag < 1 {
			continue
		}
		bpm := 60 * frameRate / float64(lag)
		ac := autocorrelation(onset, lag) + harmonicWeight*autocorrelation(onset, 2*lag)
		scores[i] = ac * tempoPrior(bpm)
	}

	best := 1
	for i := 1; i < len(scores)-1; i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	if scores[best] <= 0 {
		return DefaultTempo
	}

	lag := float64(lagAt(best)) + parabolicOffset(scores[best-1], scores[best], scores[best+1])
	bpm := 60 * frameRate / lag

	return int(mathutil.Clamp(math.Round(bpm), MinTempo, MaxTempo))
}

// parabolicOffset returns the vertex offset in (-0.5, 0.5) of the
// parabola through three equally spaced points.
func parabolicOffset(a, b, c float64) float64 {
	denom := a - 2*b + c
	if denom >= 0 {
		return 0
	}
	return mathutil.Clamp(0.5*(a-c)/denom, -0.5, 0.5)
}

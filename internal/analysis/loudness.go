package analysis

import (
	"math"

	"github.com/tphakala/go-audio-remix/internal/filter"
	"github.com/tphakala/go-audio-remix/internal/mathutil"
	"github.com/tphakala/go-audio-remix/internal/pipeline"
)

// kWeighting returns the BS.1770 pre-filter: a high shelf modelling the
// head followed by a low-frequency high-pass.
func kWeighting(sampleRate float64) filter.Cascade {
	return filter.Cascade{
		filter.NewBiquad(filter.HighShelf(kShelfFreq, kShelfGainDB, filter.ButterworthQ, sampleRate)),
		filter.NewBiquad(filter.HighPass(kHighPassFreq, kHighPassQ, sampleRate)),
	}
}

// subBlockPowers K-weights x and returns the summed squares of every
// complete sub-block, plus the summed squares of the whole signal.
func subBlockPowers(x []float64, sampleRate float64, subLen int) (sums []float64, total float64) {
	kw := kWeighting(sampleRate)
	sums = make([]float64, len(x)/subLen)

	var acc float64
	for i, v := range x {
		for _, bq := range kw {
			v = bq.Tick(v)
		}
		sq := v * v
		total += sq
		acc += sq
		if (i+1)%subLen == 0 {
			if idx := (i+1)/subLen - 1; idx < len(sums) {
				sums[idx] = acc
			}
			acc = 0
		}
	}
	return sums, total
}

// Loudness returns gated integrated loudness in dB relative to full scale.
// Channel powers are summed with unit weights. Silence and anything below
// LoudnessFloor report LoudnessFloor.
func Loudness(channels [][]float64, sampleRate int, parallel bool) (float64, error) {
	if len(channels) == 0 || len(channels[0]) == 0 || sampleRate <= 0 {
		return LoudnessFloor, nil
	}

	sr := float64(sampleRate)
	subLen := max(1, int(math.Round(subBlockSeconds*sr)))

	sums := make([][]float64, len(channels))
	totals := make([]float64, len(channels))
	err := pipeline.ForEachChannel(len(channels), parallel, func(ch int) error {
		sums[ch], totals[ch] = subBlockPowers(channels[ch], sr, subLen)
		return nil
	})
	if err != nil {
		return LoudnessFloor, err
	}

	numSub := len(sums[0])
	if numSub < subBlocksPerBlk {
		// Shorter than one gating block: ungated mean square.
		var power float64
		for _, t := range totals {
			power += t / float64(len(channels[0]))
		}
		return powerToLoudness(power), nil
	}

	blockLen := float64(subLen * subBlocksPerBlk)
	blocks := make([]float64, numSub-subBlocksPerBlk+1)
	for j := range blocks {
		var power float64
		for ch := range channels {
			for s := j; s < j+subBlocksPerBlk; s++ {
				power += sums[ch][s]
			}
		}
		blocks[j] = power / blockLen
	}

	return gatedLoudness(blocks), nil
}

// gatedLoudness applies the absolute then the relative gate to block powers.
func gatedLoudness(blocks []float64) float64 {
	absGated := gateMean(blocks, LoudnessFloor)
	if absGated <= 0 {
		return LoudnessFloor
	}

	relGate := powerToLoudness(absGated) + relativeGateLU
	final := gateMean(blocks, relGate)
	if final <= 0 {
		return LoudnessFloor
	}

	return powerToLoudness(final)
}

// gateMean averages the block powers whose loudness exceeds gate.
func gateMean(blocks []float64, gate float64) float64 {
	var sum float64
	var n int
	for _, p := range blocks {
		if p > 0 && loudnessOffset+10*math.Log10(p) > gate {
			sum += p
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func powerToLoudness(power float64) float64 {
	if !(power > 0) || !mathutil.IsFinite(power) {
		return LoudnessFloor
	}
	return math.Max(LoudnessFloor, loudnessOffset+mathutil.PowerToDB(power, LoudnessFloor))
}

package render

import (
	"math"

	"github.com/tphakala/go-audio-remix/internal/filter"
	"github.com/tphakala/go-audio-remix/internal/mathutil"
	"github.com/tphakala/go-audio-remix/internal/pipeline"
	"github.com/tphakala/go-audio-remix/internal/simdops"
)

const (
	reverbSeed      uint64 = 0x9E3779B97F4A7C15
	reverbPreDelay         = 0.012 // seconds
	decay60dB              = 6.907755278982137 // ln(1000)
	dcBlockFreq            = 20.0
	xorshiftMantissa       = 1 << 53
)

// xorshift64 is a tiny deterministic generator for impulse responses.
type xorshift64 uint64

func (x *xorshift64) next() float64 {
	v := uint64(*x)
	v ^= v << 13
	v ^= v >> 7
	v ^= v << 17
	*x = xorshift64(v)
	return float64(v>>11)/xorshiftMantissa*2 - 1
}

// impulseResponse builds an exponentially decaying noise tail reaching
// -60 dB after decay seconds, normalized to unit energy. Each channel gets
// its own seed so the tail decorrelates across channels.
func impulseResponse(decay, sampleRate float64, channel int) []float64 {
	pre := int(math.Round(reverbPreDelay * sampleRate))
	n := max(1, int(math.Round(decay*sampleRate)))
	ir := make([]float64, pre+n)

	rng := xorshift64(reverbSeed + uint64(channel))
	k := decay60dB / float64(n)
	for i := range n {
		ir[pre+i] = rng.next() * math.Exp(-k*float64(i))
	}

	if e := simdops.Energy(ir); e > 0 {
		simdops.Scale(ir, ir, 1/math.Sqrt(e))
	}
	return ir
}

// applySpace blends x with its convolution through the channel's impulse
// response.
func applySpace(x []float64, mix, decay, sampleRate float64, channel int) {
	wet := filter.Apply(x, impulseResponse(decay, sampleRate, channel))
	for i, w := range wet {
		x[i] = (1-mix)*x[i] + mix*w
	}
}

// dcBlocker is the one-pole high-pass y[n] = x[n] - x[n-1] + r·y[n-1].
type dcBlocker struct {
	r      float64
	x1, y1 float64
}

func newDCBlocker(sampleRate float64) *dcBlocker {
	return &dcBlocker{r: math.Exp(-2 * math.Pi * dcBlockFreq / sampleRate)}
}

func (d *dcBlocker) Process(buf []float64, _ int) {
	for i, x := range buf {
		y := x - d.x1 + d.r*d.y1
		d.x1, d.y1 = x, y
		buf[i] = y
	}
}

func (d *dcBlocker) Reset() { d.x1, d.y1 = 0, 0 }

func (d *dcBlocker) Name() string { return "dc-block" }

// postProcess applies the space reverb and DC blocker to every channel in
// place, then scales all channels together so the peak sits at or below
// ceilingDB.
func postProcess(channels [][]float64, p *Params, sampleRate float64) error {
	mix := p.Profile.SpaceMix * p.EffectLevel

	err := pipeline.ForEachChannel(len(channels), p.Parallel, func(ch int) error {
		if mix > 0 {
			applySpace(channels[ch], mix, p.Profile.SpaceDecay, sampleRate, ch)
		}
		newDCBlocker(sampleRate).Process(channels[ch], 0)
		return nil
	})
	if err != nil {
		return err
	}

	normalizePeak(channels, mathutil.DBToGain(p.Profile.CeilingDB))
	return nil
}

// normalizePeak attenuates all channels by the same factor when the peak
// exceeds ceiling. It never boosts.
func normalizePeak(channels [][]float64, ceiling float64) {
	var peak float64
	for _, data := range channels {
		peak = math.Max(peak, simdops.Peak(data))
	}
	if peak <= ceiling {
		return
	}

	g := ceiling / peak
	for _, data := range channels {
		simdops.Scale(data, data, g)
	}
}

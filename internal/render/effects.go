package render

import (
	"math"

	"github.com/tphakala/go-audio-remix/internal/filter"
	"github.com/tphakala/go-audio-remix/internal/mathutil"
	"github.com/tphakala/go-audio-remix/internal/pipeline"
	"github.com/tphakala/go-audio-remix/internal/simdops"
)

const (
	// Sweeping filters recompute coefficients at this sample interval.
	sweepUpdateInterval = 32

	// Below this the waveshaper is indistinguishable from a wire.
	minDriveAmount = 1e-6

	compKneeDB    = 6.0
	compAttackMs  = 10.0
	compReleaseMs = 120.0
	compFloorDB   = -120.0

	msPerSecond = 1000.0
)

// sweepFilter is a biquad whose cutoff glides exponentially from one
// frequency to another across the section's sample range.
type sweepFilter struct {
	name       string
	design     func(freq, q, sampleRate float64) filter.Coefficients
	from, to   float64
	start, end int
	sampleRate float64
	biquad     *filter.Biquad
}

func newSweep(name string, design func(freq, q, sampleRate float64) filter.Coefficients,
	from, to float64, start, end int, sampleRate float64,
) *sweepFilter {
	s := &sweepFilter{
		name:       name,
		design:     design,
		from:       from,
		to:         to,
		start:      start,
		end:        end,
		sampleRate: sampleRate,
	}
	s.biquad = filter.NewBiquad(design(from, filter.ButterworthQ, sampleRate))
	return s
}

// cutoffAt returns the cutoff at absolute sample position pos. Outside the
// section range the endpoints hold.
func (s *sweepFilter) cutoffAt(pos int) float64 {
	span := s.end - s.start
	if span <= 0 || s.from == s.to {
		return s.from
	}
	t := float64(pos-s.start) / float64(span)
	return mathutil.ExpInterp(s.from, s.to, t)
}

func (s *sweepFilter) Process(buf []float64, offset int) {
	if s.from == s.to {
		s.biquad.Process(buf)
		return
	}

	for i := 0; i < len(buf); i += sweepUpdateInterval {
		s.biquad.SetCoefficients(s.design(s.cutoffAt(offset+i), filter.ButterworthQ, s.sampleRate))
		s.biquad.Process(buf[i:min(i+sweepUpdateInterval, len(buf))])
	}
}

func (s *sweepFilter) Reset() {
	s.biquad.Reset()
	s.biquad.SetCoefficients(s.design(s.from, filter.ButterworthQ, s.sampleRate))
}

func (s *sweepFilter) Name() string { return s.name }

// modDelay is a chorus or flanger: a feedback delay line read at a delay
// swept by a sine LFO and mixed with the dry signal.
type modDelay struct {
	line       *pipeline.DelayLine
	baseDelay  float64 // samples
	depth      float64 // samples
	omega      float64 // LFO radians per sample
	phase      float64
	mix        float64
	feedback   float64
	sampleRate float64
}

func newModDelay(plan *Plan, rate float64, channel int, sampleRate float64) *modDelay {
	base := plan.ModDelayMs * sampleRate / msPerSecond
	depth := math.Min(plan.ModDepthMs*sampleRate/msPerSecond, base)

	return &modDelay{
		line:       pipeline.NewDelayLine(int(math.Ceil(base+depth)) + 1),
		baseDelay:  base,
		depth:      depth,
		omega:      2 * math.Pi * rate / sampleRate,
		phase:      float64(channel) * math.Pi / 2,
		mix:        plan.ModMix,
		feedback:   plan.ModFeedback,
		sampleRate: sampleRate,
	}
}

func (m *modDelay) Process(buf []float64, offset int) {
	for i, x := range buf {
		lfo := math.Sin(m.omega*float64(offset+i) + m.phase)
		delayed := m.line.Read(m.baseDelay + m.depth*lfo)
		m.line.Write(x + m.feedback*delayed)
		buf[i] = (1-m.mix)*x + m.mix*delayed
	}
}

func (m *modDelay) Reset() { m.line.Reset() }

func (m *modDelay) Name() string { return "mod-delay" }

// drive blends the dry signal with tanh(k·x)/tanh(k).
type drive struct {
	amount float64
	k      float64
	norm   float64
}

func newDrive(amount, k float64) *drive {
	return &drive{amount: amount, k: k, norm: 1 / math.Tanh(k)}
}

func (d *drive) Process(buf []float64, _ int) {
	for i, x := range buf {
		shaped := math.Tanh(d.k*x) * d.norm
		buf[i] = x + d.amount*(shaped-x)
	}
}

func (d *drive) Reset() {}

func (d *drive) Name() string { return "drive" }

// compressor is a feed-forward soft-knee compressor. Gain reduction is
// computed in dB per sample and smoothed by a one-pole attack/release
// follower.
type compressor struct {
	threshold float64
	ratio     float64
	knee      float64
	attack    float64
	release   float64
	reduction float64 // smoothed gain change, dB (<= 0)
}

func newCompressor(thresholdDB, ratio, sampleRate float64) *compressor {
	return &compressor{
		threshold: thresholdDB,
		ratio:     ratio,
		knee:      compKneeDB,
		attack:    math.Exp(-1 / (compAttackMs * sampleRate / msPerSecond)),
		release:   math.Exp(-1 / (compReleaseMs * sampleRate / msPerSecond)),
	}
}

// staticCurve returns the gain change in dB for an input level in dB.
func (c *compressor) staticCurve(level float64) float64 {
	over := level - c.threshold
	slope := 1/c.ratio - 1

	switch {
	case 2*over <= -c.knee:
		return 0
	case 2*over >= c.knee:
		return slope * over
	default:
		x := over + c.knee/2
		return slope * x * x / (2 * c.knee)
	}
}

func (c *compressor) Process(buf []float64, _ int) {
	for i, x := range buf {
		target := c.staticCurve(mathutil.GainToDB(math.Abs(x), compFloorDB))

		coeff := c.release
		if target < c.reduction {
			coeff = c.attack
		}
		c.reduction = coeff*c.reduction + (1-coeff)*target

		buf[i] = x * mathutil.DBToGain(c.reduction)
	}
}

func (c *compressor) Reset() { c.reduction = 0 }

func (c *compressor) Name() string { return "compressor" }

type gainStage struct {
	gain float64
}

func (g gainStage) Process(buf []float64, _ int) {
	simdops.Scale(buf, buf, g.gain)
}

func (g gainStage) Reset() {}

func (g gainStage) Name() string { return "gain" }

// newSectionChain builds the effect chain for one section and channel.
// Stages whose settings make them a no-op are left out.
func newSectionChain(plan *Plan, modRate float64, channel int, sampleRate float64) *pipeline.Chain {
	stages := []pipeline.Stage{
		newSweep("high-pass", filter.HighPass, plan.HighPassFrom, plan.HighPassTo,
			plan.StartSample, plan.EndSample, sampleRate),
		newSweep("low-pass", filter.LowPass, plan.LowPassFrom, plan.LowPassTo,
			plan.StartSample, plan.EndSample, sampleRate),
	}

	if plan.ModMix > 0 && plan.ModDelayMs > 0 {
		stages = append(stages, newModDelay(plan, modRate, channel, sampleRate))
	}
	if plan.Drive > 0 {
		stages = append(stages, newDrive(plan.Drive, plan.DriveGain))
	}
	if plan.CompRatio > 1 {
		stages = append(stages, newCompressor(plan.CompThresholdDB, plan.CompRatio, sampleRate))
	}
	if plan.Gain != 1 {
		stages = append(stages, gainStage{gain: plan.Gain})
	}

	return pipeline.NewChain(stages...)
}

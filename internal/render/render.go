// Package render turns an analyzed track into a remix: a per-section effect
// chain joined by crossfades, a WSOLA tempo change and global
// post-processing.
package render

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/tphakala/go-audio-remix/internal/analysis"
	"github.com/tphakala/go-audio-remix/internal/mathutil"
	"github.com/tphakala/go-audio-remix/internal/pipeline"
)

var (
	// ErrInvalidParams indicates out-of-range or non-finite render parameters.
	ErrInvalidParams = errors.New("invalid render parameters")

	// ErrInvalidSections indicates a section list that cannot be scheduled.
	ErrInvalidSections = errors.New("invalid section schedule")

	// ErrInvalidInput indicates malformed sample data.
	ErrInvalidInput = errors.New("invalid render input")
)

// Section bounds may overshoot the buffer duration by this much.
const durationTolerance = 0.01

// Params configures one render.
type Params struct {
	Profile Profile

	TempoMultiplier float64
	Intensity       float64
	EffectLevel     float64

	Crossfade time.Duration
	Parallel  bool
}

// Validate checks the parameters.
func (p *Params) Validate() error {
	for _, v := range []float64{p.TempoMultiplier, p.Intensity, p.EffectLevel} {
		if !mathutil.IsFinite(v) {
			return fmt.Errorf("%w: non-finite value", ErrInvalidParams)
		}
	}

	if p.TempoMultiplier <= 0 {
		return fmt.Errorf("%w: tempo multiplier must be positive", ErrInvalidParams)
	}
	if p.Intensity < 0 || p.Intensity > 1 {
		return fmt.Errorf("%w: intensity must be in [0, 1]", ErrInvalidParams)
	}
	if p.EffectLevel < 0 || p.EffectLevel > 1 {
		return fmt.Errorf("%w: effect level must be in [0, 1]", ErrInvalidParams)
	}
	if p.Crossfade < 0 {
		return fmt.Errorf("%w: negative crossfade", ErrInvalidParams)
	}

	return nil
}

// Result is a rendered remix.
type Result struct {
	Channels [][]float64
	Plans    []Plan
}

func validateSections(sections []analysis.Section, duration float64) error {
	if len(sections) == 0 {
		return fmt.Errorf("%w: no sections", ErrInvalidSections)
	}

	prevEnd := 0.0
	for i, s := range sections {
		switch {
		case !mathutil.IsFinite(s.Start) || !mathutil.IsFinite(s.End):
			return fmt.Errorf("%w: section %d has non-finite bounds", ErrInvalidSections, i)
		case s.Start < 0 || s.End < s.Start:
			return fmt.Errorf("%w: section %d spans [%.3f, %.3f]", ErrInvalidSections, i, s.Start, s.End)
		case s.Start < prevEnd-durationTolerance:
			return fmt.Errorf("%w: section %d overlaps its predecessor", ErrInvalidSections, i)
		case s.End > duration+durationTolerance:
			return fmt.Errorf("%w: section %d ends at %.3f past duration %.3f", ErrInvalidSections, i, s.End, duration)
		}
		prevEnd = s.End
	}

	return nil
}

func validateInput(channels [][]float64, sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidInput, sampleRate)
	}
	if len(channels) == 0 {
		return fmt.Errorf("%w: no channels", ErrInvalidInput)
	}
	for ch, data := range channels {
		if len(data) != len(channels[0]) {
			return fmt.Errorf("%w: channel %d has %d samples, want %d", ErrInvalidInput, ch, len(data), len(channels[0]))
		}
	}
	return nil
}

// Render produces the remix of channels. The input is not modified and the
// result shares no memory with it.
func Render(channels [][]float64, sampleRate int, sections []analysis.Section, p *Params) (*Result, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: params are nil", ErrInvalidParams)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := validateInput(channels, sampleRate); err != nil {
		return nil, err
	}

	n := len(channels[0])
	sr := float64(sampleRate)
	if err := validateSections(sections, float64(n)/sr); err != nil {
		return nil, err
	}

	plans := BuildSchedule(sections, sampleRate, n, p)
	halves := crossfadeHalves(plans, int(math.Round(p.Crossfade.Seconds()*sr)))

	sectioned := make([][]float64, len(channels))
	err := pipeline.ForEachChannel(len(channels), p.Parallel, func(ch int) error {
		sectioned[ch] = renderSections(channels[ch], plans, halves, p.Profile.ModRate, ch, sr)
		return nil
	})
	if err != nil {
		return nil, err
	}

	out, err := Stretch(sectioned, p.TempoMultiplier, sr, p.Parallel)
	if err != nil {
		return nil, err
	}

	if err := postProcess(out, p, sr); err != nil {
		return nil, err
	}

	return &Result{Channels: out, Plans: plans}, nil
}

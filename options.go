package remix

import (
	"fmt"
	"math"

	"github.com/tphakala/go-audio-remix/internal/mathutil"
)

// Options are the user's remix controls.
type Options struct {
	Style Style `json:"style"`

	// TempoMultiplier speeds the track up (>1) or down (<1) without
	// changing pitch. Valid range [0.75, 1.35].
	TempoMultiplier float64 `json:"tempoMultiplier"`

	// Intensity scales filter sweeps, drive and compression, [0, 1].
	Intensity float64 `json:"intensity"`

	// EffectLevel scales modulation and reverb, [0, 1].
	EffectLevel float64 `json:"effectLevel"`
}

// DefaultOptions returns electronic at the original tempo with intensity
// 0.6 and effect level 0.7.
func DefaultOptions() Options {
	return Options{
		Style:           StyleElectronic,
		TempoMultiplier: defaultTempoMultiplier,
		Intensity:       defaultIntensity,
		EffectLevel:     defaultEffectLevel,
	}
}

// Normalize returns a copy with every value clamped into range and the
// style resolved. Non-finite values and unknown styles are errors wrapping
// ErrRender.
func (o Options) Normalize() (Options, error) {
	fields := []struct {
		name  string
		value float64
	}{
		{"tempo multiplier", o.TempoMultiplier},
		{"intensity", o.Intensity},
		{"effect level", o.EffectLevel},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return Options{}, fmt.Errorf("%w: %s is %v", ErrRender, f.name, f.value)
		}
	}

	style, err := ParseStyle(string(o.Style))
	if err != nil {
		return Options{}, fmt.Errorf("%w: %w", ErrRender, err)
	}

	return Options{
		Style:           style,
		TempoMultiplier: mathutil.Clamp(o.TempoMultiplier, MinTempoMultiplier, MaxTempoMultiplier),
		Intensity:       mathutil.Clamp(o.Intensity, 0, 1),
		EffectLevel:     mathutil.Clamp(o.EffectLevel, 0, 1),
	}, nil
}

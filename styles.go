package remix

import (
	"fmt"
	"strings"

	"github.com/tphakala/go-audio-remix/internal/render"
)

// Style selects a remix character.
type Style string

const (
	// StyleElectronic is "Neon Pulse": a flanger, hard drive and a tight
	// compressor.
	StyleElectronic Style = "electronic"

	// StyleChill is "Midnight Drift": dark filtering, a slow wide chorus and
	// plenty of space.
	StyleChill Style = "chill"

	// StyleUpbeat is "Festival Lift": bright filtering and a fast chorus.
	StyleUpbeat Style = "upbeat"
)

// StyleSpec defines the effect ranges of one style. Section plans are
// interpolated inside these ranges.
type StyleSpec struct {
	Style       Style  `json:"style"`
	Label       string `json:"label"`
	Description string `json:"description"`

	// Filter sweep ranges in Hz.
	LowPassMin  float64 `json:"lowPassMin"`
	LowPassMax  float64 `json:"lowPassMax"`
	HighPassMin float64 `json:"highPassMin"`
	HighPassMax float64 `json:"highPassMax"`

	// Modulated delay: LFO rate in Hz, centre delay and excursion in ms.
	ModRate     float64 `json:"modRate"`
	ModDelayMs  float64 `json:"modDelayMs"`
	ModDepthMs  float64 `json:"modDepthMs"`
	ModFeedback float64 `json:"modFeedback"`
	ModMix      float64 `json:"modMix"`

	DriveMax        float64 `json:"driveMax"`
	CompRatio       float64 `json:"compRatio"`
	CompThresholdDB float64 `json:"compThresholdDb"`

	// Reverb wet share at full effect level and its decay time in seconds.
	SpaceMix   float64 `json:"spaceMix"`
	SpaceDecay float64 `json:"spaceDecay"`

	// CeilingDB is the output peak ceiling in dBFS.
	CeilingDB float64 `json:"ceilingDb"`
}

var styleSpecs = []StyleSpec{
	{
		Style:       StyleElectronic,
		Label:       "Neon Pulse",
		Description: "Rollicking peaks, crisp percussion, lush club atmosphere.",
		LowPassMin:  700, LowPassMax: 18000,
		HighPassMin: 20, HighPassMax: 420,
		ModRate: 0.25, ModDelayMs: 2, ModDepthMs: 1.5, ModFeedback: 0.35, ModMix: 0.5,
		DriveMax: 6, CompRatio: 4, CompThresholdDB: -24,
		SpaceMix: 0.12, SpaceDecay: 1.2,
		CeilingDB: -1,
	},
	{
		Style:       StyleChill,
		Label:       "Midnight Drift",
		Description: "Smooth downtempo textures perfect for lo-fi lounges.",
		LowPassMin:  450, LowPassMax: 9000,
		HighPassMin: 20, HighPassMax: 160,
		ModRate: 0.12, ModDelayMs: 14, ModDepthMs: 6, ModFeedback: 0, ModMix: 0.45,
		DriveMax: 2.5, CompRatio: 2, CompThresholdDB: -18,
		SpaceMix: 0.28, SpaceDecay: 2.2,
		CeilingDB: -1,
	},
	{
		Style:       StyleUpbeat,
		Label:       "Festival Lift",
		Description: "Feel-good energy, bright synth swells, crowd-ready drops.",
		LowPassMin:  1100, LowPassMax: 20000,
		HighPassMin: 20, HighPassMax: 320,
		ModRate: 0.8, ModDelayMs: 7, ModDepthMs: 3, ModFeedback: 0.1, ModMix: 0.35,
		DriveMax: 4, CompRatio: 3, CompThresholdDB: -20,
		SpaceMix: 0.08, SpaceDecay: 0.9,
		CeilingDB: -1,
	},
}

// Styles lists every style in display order.
func Styles() []StyleSpec {
	out := make([]StyleSpec, len(styleSpecs))
	copy(out, styleSpecs)
	return out
}

// GetStyleSpec returns the specification of a style.
func GetStyleSpec(style Style) (StyleSpec, bool) {
	for _, spec := range styleSpecs {
		if spec.Style == style {
			return spec, true
		}
	}
	return StyleSpec{}, false
}

// ParseStyle resolves a style by key or display label, ignoring case and
// surrounding space. The empty string is StyleElectronic.
func ParseStyle(name string) (Style, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return StyleElectronic, nil
	}

	for _, spec := range styleSpecs {
		if strings.EqualFold(name, string(spec.Style)) || strings.EqualFold(name, spec.Label) {
			return spec.Style, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownStyle, name)
}

// profile converts the public table row into the renderer's profile.
func (s *StyleSpec) profile() render.Profile {
	return render.Profile{
		LowPassMin:      s.LowPassMin,
		LowPassMax:      s.LowPassMax,
		HighPassMin:     s.HighPassMin,
		HighPassMax:     s.HighPassMax,
		ModRate:         s.ModRate,
		ModDelayMs:      s.ModDelayMs,
		ModDepthMs:      s.ModDepthMs,
		ModFeedback:     s.ModFeedback,
		ModMix:          s.ModMix,
		DriveMax:        s.DriveMax,
		CompRatio:       s.CompRatio,
		CompThresholdDB: s.CompThresholdDB,
		SpaceMix:        s.SpaceMix,
		SpaceDecay:      s.SpaceDecay,
		CeilingDB:       s.CeilingDB,
	}
}

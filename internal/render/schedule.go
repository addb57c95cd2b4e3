package render

import (
	"math"

	"github.com/tphakala/go-audio-remix/internal/analysis"
	"github.com/tphakala/go-audio-remix/internal/mathutil"
)

// Profile holds the effect ranges of one style. Plans are interpolated
// inside these ranges by section label, intensity and effect level.
type Profile struct {
	LowPassMin, LowPassMax   float64 // Hz
	HighPassMin, HighPassMax float64 // Hz

	ModRate     float64 // LFO rate, Hz
	ModDelayMs  float64 // centre delay
	ModDepthMs  float64 // LFO excursion around the centre delay
	ModFeedback float64
	ModMix      float64 // wet share at full effect level

	DriveMax float64 // waveshaper gain at full intensity

	CompRatio       float64
	CompThresholdDB float64 // threshold at full intensity on a drop

	SpaceMix   float64 // reverb wet share at full effect level
	SpaceDecay float64 // seconds to -60 dB

	CeilingDB float64 // peak ceiling after normalization
}

// labelProfile shapes a section's processing by its role.
//
// Filter positions are fractions of the style range: 0 is fully open (low
// pass at its maximum, high pass at its minimum) and 1 fully closed. Each
// section glides from the From to the To position.
type labelProfile struct {
	drive    float64
	compress float64
	mod      float64
	gainDB   float64

	lowPassFrom, lowPassTo   float64
	highPassFrom, highPassTo float64
}

var labelProfiles = map[analysis.Label]labelProfile{
	analysis.LabelIntro: {
		drive: 0.3, compress: 0.3, mod: 0.8, gainDB: -1,
		lowPassFrom: 0.65, lowPassTo: 0.15, highPassFrom: 0.5, highPassTo: 0.1,
	},
	analysis.LabelVerse: {
		drive: 0.6, compress: 0.6, mod: 0.6,
		lowPassFrom: 0.2, lowPassTo: 0.1, highPassFrom: 0.1, highPassTo: 0.1,
	},
	analysis.LabelBuild: {
		drive: 0.7, compress: 0.7, mod: 0.7,
		lowPassFrom: 0.5, lowPassTo: 0, highPassFrom: 0.2, highPassTo: 0.8,
	},
	analysis.LabelDrop: {
		drive: 1, compress: 1, mod: 1, gainDB: 1,
	},
	analysis.LabelBreakdown: {
		drive: 0.3, compress: 0.4, mod: 0.9, gainDB: -1.5,
		lowPassFrom: 0.55, lowPassTo: 0.4, highPassFrom: 0.15, highPassTo: 0.1,
	},
	analysis.LabelOutro: {
		drive: 0.25, compress: 0.3, mod: 0.8, gainDB: -1,
		lowPassFrom: 0.15, lowPassTo: 0.7, highPassFrom: 0.1, highPassTo: 0.4,
	},
}

const (
	// Threshold of the gentlest compressor setting.
	compGentleThresholdDB = -6.0
	// Ratio floor before intensity and label weighting.
	compMinRatio = 1.0
)

// Plan is the effect setup for one section.
type Plan struct {
	Label analysis.Label `json:"label"`

	// Sample range in the input, half-open.
	StartSample int `json:"startSample"`
	EndSample   int `json:"endSample"`

	// Section bounds in output time, seconds.
	OutStart float64 `json:"outStart"`
	OutEnd   float64 `json:"outEnd"`

	HighPassFrom float64 `json:"highPassFrom"`
	HighPassTo   float64 `json:"highPassTo"`
	LowPassFrom  float64 `json:"lowPassFrom"`
	LowPassTo    float64 `json:"lowPassTo"`

	ModDelayMs  float64 `json:"modDelayMs"`
	ModDepthMs  float64 `json:"modDepthMs"`
	ModMix      float64 `json:"modMix"`
	ModFeedback float64 `json:"modFeedback"`

	// Drive is the waveshaper wet share in [0, 1]; DriveGain its pre-gain.
	Drive     float64 `json:"drive"`
	DriveGain float64 `json:"driveGain"`

	CompThresholdDB float64 `json:"compThresholdDb"`
	CompRatio       float64 `json:"compRatio"`

	Gain float64 `json:"gain"`

	// Stages names the effects the section's chain runs, in order.
	Stages []string `json:"stages"`
}

// lowPassAt maps a closed-ness position to a cutoff. intensity 0 leaves
// the filter fully open.
func (p *Profile) lowPassAt(pos, intensity float64) float64 {
	return mathutil.ExpInterp(p.LowPassMax, p.LowPassMin, pos*intensity)
}

func (p *Profile) highPassAt(pos, intensity float64) float64 {
	return mathutil.ExpInterp(p.HighPassMin, p.HighPassMax, pos*intensity)
}

// planFor derives one section's plan from the tables.
func planFor(p *Profile, label analysis.Label, intensity, effectLevel float64) Plan {
	lp, ok := labelProfiles[label]
	if !ok {
		lp = labelProfiles[analysis.LabelVerse]
	}

	driveAmt := intensity * lp.drive
	if driveAmt < minDriveAmount {
		driveAmt = 0
	}
	modAmt := effectLevel * lp.mod
	compAmt := intensity * lp.compress

	return Plan{
		Label: label,

		HighPassFrom: p.highPassAt(lp.highPassFrom, intensity),
		HighPassTo:   p.highPassAt(lp.highPassTo, intensity),
		LowPassFrom:  p.lowPassAt(lp.lowPassFrom, intensity),
		LowPassTo:    p.lowPassAt(lp.lowPassTo, intensity),

		ModDelayMs:  p.ModDelayMs,
		ModDepthMs:  p.ModDepthMs * modAmt,
		ModMix:      p.ModMix * modAmt,
		ModFeedback: p.ModFeedback * modAmt,

		Drive:     driveAmt,
		DriveGain: 1 + (p.DriveMax-1)*driveAmt,

		CompThresholdDB: compGentleThresholdDB + (p.CompThresholdDB-compGentleThresholdDB)*compAmt,
		CompRatio:       compMinRatio + (p.CompRatio-compMinRatio)*compAmt,

		Gain: mathutil.DBToGain(lp.gainDB * intensity),
	}
}

// BuildSchedule maps sections onto contiguous sample ranges of an n-frame
// input and derives each plan. The first section starts at 0 and the last
// ends at n.
func BuildSchedule(sections []analysis.Section, sampleRate, n int, p *Params) []Plan {
	sr := float64(sampleRate)
	outLen := StretchedLength(n, p.TempoMultiplier)

	plans := make([]Plan, len(sections))
	for i, s := range sections {
		plan := planFor(&p.Profile, s.Label, p.Intensity, p.EffectLevel)

		if i > 0 {
			plan.StartSample = plans[i-1].EndSample
		}
		plan.EndSample = max(plan.StartSample, min(n, int(math.Round(s.End*sr))))
		if i == len(sections)-1 {
			plan.EndSample = n
		}

		plan.OutStart = float64(plan.StartSample) / p.TempoMultiplier / sr
		plan.OutEnd = float64(plan.EndSample) / p.TempoMultiplier / sr
		if i == len(sections)-1 {
			plan.OutEnd = float64(outLen) / sr
		}
		if i > 0 {
			plan.OutStart = plans[i-1].OutEnd
		}
		plan.Stages = newSectionChain(&plan, p.Profile.ModRate, 0, sr).Names()

		plans[i] = plan
	}
	return plans
}

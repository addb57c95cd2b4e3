package remix

import (
	"time"

	"github.com/tphakala/go-audio-remix/internal/analysis"
)

// Analysis ranges re-exported for callers.
const (
	// LoudnessFloor is the loudness reported for silence, in dBFS.
	LoudnessFloor = analysis.LoudnessFloor

	// MinTempo and MaxTempo bound the detected tempo in BPM.
	MinTempo = analysis.MinTempo
	MaxTempo = analysis.MaxTempo

	// DefaultTempo is reported when a track is too short to measure.
	DefaultTempo = analysis.DefaultTempo
)

// Option ranges
const (
	MinTempoMultiplier = 0.75
	MaxTempoMultiplier = 1.35

	defaultTempoMultiplier = 1.0
	defaultIntensity       = 0.6
	defaultEffectLevel     = 0.7
)

// Config defaults and limits
const (
	defaultBitDepth  = 16
	defaultCrossfade = 30 * time.Millisecond
	minCrossfade     = 5 * time.Millisecond
	maxCrossfade     = 200 * time.Millisecond
)

// Buffer limits
const (
	maxChannels = 256

	// durationTolerance is how far an analysis duration may differ from
	// the buffer it is rendered against, in seconds.
	durationTolerance = 0.01
)

// outputSuffix is appended to the input's base name by OutputName.
const outputSuffix = "-remix.wav"

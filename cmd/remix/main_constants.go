package main

import "time"

// Environment variables that override flag defaults
const (
	envStyle     = "REMIX_STYLE"
	envTempo     = "REMIX_TEMPO"
	envIntensity = "REMIX_INTENSITY"
	envEffects   = "REMIX_EFFECTS"
	envBitDepth  = "REMIX_BITDEPTH"
	envOutDir    = "REMIX_OUT_DIR"
)

// Default command-line flag values
const (
	defaultTempo     = 1.0
	defaultIntensity = 0.6
	defaultEffects   = 0.7
	defaultBitDepth  = 16
	defaultCrossfade = 30 * time.Millisecond
)

// Watch mode
const (
	watchQueueSize = 16
	// Newly created files are given this long to finish writing.
	watchSettleDelay = 500 * time.Millisecond
)

const outputDirMode = 0o755

package analysis

const (
	// LoudnessFloor is reported for silence and anything quieter.
	LoudnessFloor = -70.0

	// DefaultTempo is reported when there is too little material to
	// estimate a beat period.
	DefaultTempo = 120

	MinTempo = 40
	MaxTempo = 220

	// MinSectionSeconds is the shortest section segmentation produces,
	// except for a single section covering a short track.
	MinSectionSeconds = 4.0

	// MaxSections caps the number of sections.
	MaxSections = 16

	// Decimated analysis rate target.
	analysisRate = 11025.0
)

// Loudness (BS.1770).
const (
	kShelfFreq      = 1500.0
	kShelfGainDB    = 4.0
	kHighPassFreq   = 38.0
	kHighPassQ      = 0.5
	loudnessOffset  = -0.691
	blockSeconds    = 0.4
	subBlockSeconds = 0.1 // 75% overlap between 400 ms blocks
	subBlocksPerBlk = 4
	relativeGateLU  = -10.0
)

// Tempo.
const (
	tempoFrameSize    = 1024
	tempoHop          = 128
	onsetMeanSeconds  = 1.0
	harmonicWeight    = 0.5
	tempoPriorCentre  = 120.0
	tempoPriorOctaves = 1.0
)

// Key and segmentation features.
const (
	keyFrameSize  = 4096
	keyHop        = 2048
	chromaMinFreq = 65.0
	chromaMaxFreq = 2100.0
	tuningA4      = 440.0
	pitchClasses  = 12
	pitchClassA   = 9
	keyTieEpsilon = 1e-9

	featureBlockSeconds = 0.5
	noveltyWindowSecs   = 4.0
	noveltyThresholdStd = 0.5
	dropShareOfMax      = 0.9
	breakdownShareOfMax = 0.6
	logEnergyEpsilon    = 1e-12
)

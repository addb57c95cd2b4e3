// Package analysis extracts musical descriptors from decoded audio:
// integrated loudness, tempo, key and a labelled section map.
package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/go-audio-remix/internal/filter"
	"github.com/tphakala/go-audio-remix/internal/pipeline"
	"github.com/tphakala/go-audio-remix/internal/simdops"
)

var (
	// ErrInvalidInput indicates a malformed sample buffer.
	ErrInvalidInput = errors.New("invalid input buffer")

	// ErrInvalidResult indicates an analysis that breaks its own guarantees.
	ErrInvalidResult = errors.New("invalid analysis result")
)

// Result is the outcome of Analyze.
type Result struct {
	Tempo         int
	Key           string
	KeyConfidence float64
	Loudness      float64
	Duration      float64
	Sections      []Section
}

// spectralFeatures makes one STFT pass over x, accumulating the chroma
// vector for key detection and the 0.5 s block features for segmentation.
func spectralFeatures(x []float64, rate, duration float64) ([pitchClasses]float64, *blockFeatures) {
	s := newSTFT(keyFrameSize, keyHop)
	bins := chromaBins(s, rate)

	numBlocks := max(1, int(math.Ceil(duration/featureBlockSeconds)))
	energy := make([]float64, numBlocks)
	centroid := make([]float64, numBlocks)
	counts := make([]int, numBlocks)

	var chroma [pitchClasses]float64
	s.each(x, func(i int, mag []float64) {
		var power, weighted, total float64
		for k, m := range mag {
			if pc := bins[k]; pc >= 0 {
				chroma[pc] += m
			}
			power += m * m
			weighted += s.binFreq(k, rate) * m
			total += m
		}

		centre := (float64(i*s.hop) + float64(s.size)/2) / rate
		b := min(numBlocks-1, int(centre/featureBlockSeconds))
		energy[b] += power / float64(s.size)
		if total > 0 {
			centroid[b] += weighted / total
		}
		counts[b]++
	})

	f := &blockFeatures{
		logEnergy:   make([]float64, numBlocks),
		logCentroid: make([]float64, numBlocks),
	}
	for b := range numBlocks {
		// Blocks no frame centre fell into repeat their predecessor.
		if counts[b] == 0 {
			if b > 0 {
				f.logEnergy[b] = f.logEnergy[b-1]
				f.logCentroid[b] = f.logCentroid[b-1]
			} else {
				f.logEnergy[b] = math.Log(logEnergyEpsilon)
			}
			continue
		}
		n := float64(counts[b])
		f.logEnergy[b] = math.Log(energy[b]/n + logEnergyEpsilon)
		f.logCentroid[b] = math.Log1p(centroid[b] / n)
	}

	return chroma, f
}

// decimationFactor picks the integer factor that brings sampleRate
// closest to the analysis rate.
func decimationFactor(sampleRate int) int {
	return max(1, int(math.Round(float64(sampleRate)/analysisRate)))
}

func validateInput(channels [][]float64, sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidInput, sampleRate)
	}
	if len(channels) == 0 || len(channels[0]) == 0 {
		return fmt.Errorf("%w: no samples", ErrInvalidInput)
	}
	for ch := range channels {
		if len(channels[ch]) != len(channels[0]) {
			return fmt.Errorf("%w: channel %d length %d, want %d", ErrInvalidInput, ch, len(channels[ch]), len(channels[0]))
		}
	}
	return nil
}

// Analyze runs loudness, tempo and key/segmentation over planar channels.
// The three groups run concurrently when parallel is set. channels are
// not modified.
func Analyze(channels [][]float64, sampleRate int, parallel bool) (*Result, error) {
	if err := validateInput(channels, sampleRate); err != nil {
		return nil, err
	}

	duration := float64(len(channels[0])) / float64(sampleRate)

	decimator, err := filter.NewDecimator(decimationFactor(sampleRate), filter.DefaultDecimationAttenuation)
	if err != nil {
		return nil, err
	}
	mono := decimator.Process(simdops.MixDown(channels))
	rate := float64(sampleRate) / float64(decimator.Factor())

	res := &Result{Duration: duration}

	loudnessTask := func() error {
		l, err := Loudness(channels, sampleRate, parallel)
		res.Loudness = l
		return err
	}
	tempoTask := func() error {
		res.Tempo = EstimateTempo(mono, rate)
		return nil
	}
	keyTask := func() error {
		chroma, features := spectralFeatures(mono, rate, duration)
		key, confidence := DetectKey(chroma)
		res.Key = key.String()
		res.KeyConfidence = confidence
		res.Sections = Segment(features, mono, rate, duration)
		return nil
	}

	if parallel {
		err = pipeline.RunAll(loudnessTask, tempoTask, keyTask)
	} else {
		for _, task := range []func() error{loudnessTask, tempoTask, keyTask} {
			if err = task(); err != nil {
				break
			}
		}
	}
	if err != nil {
		return nil, err
	}

	if err := res.Validate(); err != nil {
		return nil, err
	}
	return res, nil
}

// Validate checks ranges, section ordering and coverage.
func (r *Result) Validate() error {
	if r.Tempo < MinTempo || r.Tempo > MaxTempo {
		return fmt.Errorf("%w: tempo %d outside [%d, %d]", ErrInvalidResult, r.Tempo, MinTempo, MaxTempo)
	}
	if math.IsNaN(r.Loudness) || math.IsInf(r.Loudness, 0) || r.Loudness < LoudnessFloor {
		return fmt.Errorf("%w: loudness %v", ErrInvalidResult, r.Loudness)
	}
	if r.Key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidResult)
	}
	if len(r.Sections) == 0 {
		return fmt.Errorf("%w: no sections", ErrInvalidResult)
	}

	prevEnd := 0.0
	for i, s := range r.Sections {
		switch {
		case !s.Label.Valid():
			return fmt.Errorf("%w: section %d label %q", ErrInvalidResult, i, s.Label)
		case s.Start != prevEnd:
			return fmt.Errorf("%w: section %d starts at %v, previous ends at %v", ErrInvalidResult, i, s.Start, prevEnd)
		case !(s.End > s.Start):
			return fmt.Errorf("%w: section %d is empty", ErrInvalidResult, i)
		case s.Energy < 0 || s.Energy > 1 || math.IsNaN(s.Energy):
			return fmt.Errorf("%w: section %d energy %v", ErrInvalidResult, i, s.Energy)
		}
		prevEnd = s.End
	}
	if prevEnd != r.Duration {
		return fmt.Errorf("%w: last section ends at %v, duration %v", ErrInvalidResult, prevEnd, r.Duration)
	}

	return nil
}

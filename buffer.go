package remix

import (
	"fmt"

	"github.com/tphakala/go-audio-remix/internal/analysis"
	"github.com/tphakala/go-audio-remix/internal/decode"
)

// Source formats reported in SampleBuffer.Format.
const (
	FormatWAV  = string(decode.ContainerWAV)
	FormatMP3  = string(decode.ContainerMP3)
	FormatFLAC = string(decode.ContainerFLAC)
)

// SampleBuffer is planar PCM audio normalized to [-1, 1].
//
// Buffers are treated as read-only once created: nothing in this package
// modifies the samples of a buffer it is given.
type SampleBuffer struct {
	Channels   [][]float64
	SampleRate int

	// BitDepth is the source PCM depth, 0 when the source was compressed.
	BitDepth int

	// Format is the source container, empty for synthetic buffers.
	Format string
}

// NewSampleBuffer wraps planar channels without copying them.
func NewSampleBuffer(channels [][]float64, sampleRate int) (*SampleBuffer, error) {
	buf := &SampleBuffer{Channels: channels, SampleRate: sampleRate}
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	return buf, nil
}

// NumChannels returns the channel count.
func (b *SampleBuffer) NumChannels() int {
	return len(b.Channels)
}

// Len returns the per-channel sample count.
func (b *SampleBuffer) Len() int {
	if len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

// Duration returns the length in seconds.
func (b *SampleBuffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(b.Len()) / float64(b.SampleRate)
}

// Validate checks the buffer invariants: 1-256 channels of equal, non-zero
// length and a positive sample rate.
func (b *SampleBuffer) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: buffer is nil", ErrInvalidBuffer)
	}
	if b.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive", ErrInvalidBuffer)
	}
	if len(b.Channels) < 1 || len(b.Channels) > maxChannels {
		return fmt.Errorf("%w: channel count %d outside 1-%d", ErrInvalidBuffer, len(b.Channels), maxChannels)
	}

	n := len(b.Channels[0])
	if n == 0 {
		return fmt.Errorf("%w: buffer is empty", ErrInvalidBuffer)
	}
	for ch, data := range b.Channels {
		if len(data) != n {
			return fmt.Errorf("%w: channel %d has %d samples, want %d", ErrInvalidBuffer, ch, len(data), n)
		}
	}

	return nil
}

// Clone returns a deep copy.
func (b *SampleBuffer) Clone() *SampleBuffer {
	out := *b
	out.Channels = make([][]float64, len(b.Channels))
	for ch, data := range b.Channels {
		out.Channels[ch] = append([]float64(nil), data...)
	}
	return &out
}

// SectionLabel names a section's role in the arrangement.
type SectionLabel string

const (
	LabelIntro     = SectionLabel(analysis.LabelIntro)
	LabelVerse     = SectionLabel(analysis.LabelVerse)
	LabelBuild     = SectionLabel(analysis.LabelBuild)
	LabelDrop      = SectionLabel(analysis.LabelDrop)
	LabelBreakdown = SectionLabel(analysis.LabelBreakdown)
	LabelOutro     = SectionLabel(analysis.LabelOutro)
)

// Valid reports whether l is one of the six labels.
func (l SectionLabel) Valid() bool {
	return analysis.Label(l).Valid()
}

// Section is a labelled span of the track in seconds.
type Section struct {
	Label  SectionLabel `json:"label"`
	Start  float64      `json:"start"`
	End    float64      `json:"end"`
	Energy float64      `json:"energy"`
}

// Duration returns End - Start.
func (s Section) Duration() float64 {
	return s.End - s.Start
}

// Share returns the fraction of a track of length total that the section
// covers.
func (s Section) Share(total float64) float64 {
	if total <= 0 {
		return 0
	}
	return s.Duration() / total
}

// Analysis describes a track.
type Analysis struct {
	Tempo         int       `json:"tempo"`
	Key           string    `json:"key"`
	KeyConfidence float64   `json:"keyConfidence"`
	Loudness      float64   `json:"loudness"`
	Duration      float64   `json:"duration"`
	Sections      []Section `json:"sections"`
}

// TotalEnergy sums the section energies.
func (a *Analysis) TotalEnergy() float64 {
	var sum float64
	for _, s := range a.Sections {
		sum += s.Energy
	}
	return sum
}

// Validate checks the tempo, loudness and key ranges and that the sections
// are contiguous and cover [0, Duration].
func (a *Analysis) Validate() error {
	if err := a.toResult().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrAnalysis, err)
	}
	return nil
}

func (a *Analysis) toResult() *analysis.Result {
	return &analysis.Result{
		Tempo:         a.Tempo,
		Key:           a.Key,
		KeyConfidence: a.KeyConfidence,
		Loudness:      a.Loudness,
		Duration:      a.Duration,
		Sections:      sectionsToInternal(a.Sections),
	}
}

func analysisFromResult(r *analysis.Result) *Analysis {
	sections := make([]Section, len(r.Sections))
	for i, s := range r.Sections {
		sections[i] = Section{
			Label:  SectionLabel(s.Label),
			Start:  s.Start,
			End:    s.End,
			Energy: s.Energy,
		}
	}

	return &Analysis{
		Tempo:         r.Tempo,
		Key:           r.Key,
		KeyConfidence: r.KeyConfidence,
		Loudness:      r.Loudness,
		Duration:      r.Duration,
		Sections:      sections,
	}
}

func sectionsToInternal(sections []Section) []analysis.Section {
	out := make([]analysis.Section, len(sections))
	for i, s := range sections {
		out[i] = analysis.Section{
			Label:  analysis.Label(s.Label),
			Start:  s.Start,
			End:    s.End,
			Energy: s.Energy,
		}
	}
	return out
}

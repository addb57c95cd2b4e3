package remix

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/tphakala/go-audio-remix/internal/analysis"
	"github.com/tphakala/go-audio-remix/internal/decode"
	"github.com/tphakala/go-audio-remix/internal/render"
	"github.com/tphakala/go-audio-remix/internal/wavio"
)

// Common errors returned by the engine.
var (
	// ErrDecode indicates the input bytes could not be decoded.
	ErrDecode = errors.New("decode failed")

	// ErrAnalysis indicates an invalid buffer or an analysis result that
	// failed validation.
	ErrAnalysis = errors.New("analysis failed")

	// ErrRender indicates invalid render options, a mismatched analysis or
	// an encoding failure.
	ErrRender = errors.New("render failed")

	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid remix configuration")

	// ErrInvalidBuffer indicates a SampleBuffer violating its invariants.
	ErrInvalidBuffer = errors.New("invalid sample buffer")

	// ErrUnknownStyle indicates a style name outside the style table.
	ErrUnknownStyle = errors.New("unknown style")
)

// Config holds engine configuration.
type Config struct {
	// BitDepth is the PCM depth of rendered WAV output: 16, 24 or 32.
	BitDepth int

	// EnableParallel processes channels and analysis stages concurrently.
	// Results are identical either way.
	EnableParallel bool

	// Crossfade is the overlap between adjacent sections, 5-200 ms.
	Crossfade time.Duration

	// MaxDuration rejects longer inputs at decode time. Zero disables the
	// limit.
	MaxDuration time.Duration
}

// DefaultConfig returns 16-bit output, parallel processing and a 30 ms
// crossfade.
func DefaultConfig() Config {
	return Config{
		BitDepth:       defaultBitDepth,
		EnableParallel: true,
		Crossfade:      defaultCrossfade,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := (wavio.Format{SampleRate: 1, Channels: 1, BitDepth: c.BitDepth}).Validate(); err != nil {
		return fmt.Errorf("%w: bit depth must be 16, 24 or 32", ErrInvalidConfig)
	}

	if c.Crossfade < minCrossfade || c.Crossfade > maxCrossfade {
		return fmt.Errorf("%w: crossfade must be %v-%v", ErrInvalidConfig, minCrossfade, maxCrossfade)
	}

	if c.MaxDuration < 0 {
		return fmt.Errorf("%w: max duration must not be negative", ErrInvalidConfig)
	}

	return nil
}

// Engine decodes, analyzes and renders with a fixed configuration.
//
// An Engine holds no mutable state and is safe for concurrent use.
type Engine struct {
	config Config
}

// New creates an engine. The configuration is copied.
func New(config *Config) (*Engine, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Engine{config: *config}, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.config
}

// Decode sniffs and decodes WAV, MP3 or FLAC bytes. data is not modified.
func (e *Engine) Decode(data []byte) (*SampleBuffer, error) {
	res, err := decode.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	buf := &SampleBuffer{
		Channels:   res.Channels,
		SampleRate: res.SampleRate,
		BitDepth:   res.BitDepth,
		Format:     string(res.Format),
	}
	if err := buf.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	if limit := e.config.MaxDuration; limit > 0 && buf.Duration() > limit.Seconds() {
		return nil, fmt.Errorf("%w: %.1fs exceeds the %v limit", ErrDecode, buf.Duration(), limit)
	}

	return buf, nil
}

// Analyze measures loudness, tempo and key and splits the track into
// labelled sections. buf is not modified.
func (e *Engine) Analyze(buf *SampleBuffer) (*Analysis, error) {
	if err := buf.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAnalysis, err)
	}

	res, err := analysis.Analyze(buf.Channels, buf.SampleRate, e.config.EnableParallel)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAnalysis, err)
	}

	return analysisFromResult(res), nil
}

// Render builds the remix of buf described by opts, using a previously
// computed analysis of the same buffer. Neither input is modified, and the
// result shares no memory with them.
func (e *Engine) Render(buf *SampleBuffer, a *Analysis, opts Options) (*RenderResult, error) {
	norm, err := opts.Normalize()
	if err != nil {
		return nil, err
	}

	if err := buf.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	if a == nil {
		return nil, fmt.Errorf("%w: analysis is nil", ErrRender)
	}
	if math.Abs(a.Duration-buf.Duration()) > durationTolerance {
		return nil, fmt.Errorf("%w: analysis duration %.3fs does not match buffer duration %.3fs",
			ErrRender, a.Duration, buf.Duration())
	}

	spec, _ := GetStyleSpec(norm.Style)
	params := &render.Params{
		Profile:         spec.profile(),
		TempoMultiplier: norm.TempoMultiplier,
		Intensity:       norm.Intensity,
		EffectLevel:     norm.EffectLevel,
		Crossfade:       e.config.Crossfade,
		Parallel:        e.config.EnableParallel,
	}

	res, err := render.Render(buf.Channels, buf.SampleRate, sectionsToInternal(a.Sections), params)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}

	wav, err := wavio.Encode(res.Channels, buf.SampleRate, e.config.BitDepth)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}

	return &RenderResult{
		Buffer: &SampleBuffer{
			Channels:   res.Channels,
			SampleRate: buf.SampleRate,
			BitDepth:   e.config.BitDepth,
			Format:     FormatWAV,
		},
		WAV:      wav,
		Options:  norm,
		Schedule: plansToSchedule(res.Plans),
	}, nil
}

// RenderResult is a finished remix. The caller owns every field.
type RenderResult struct {
	Buffer   *SampleBuffer
	WAV      []byte
	Options  Options
	Schedule []SectionPlan
}

// Duration returns the rendered length in seconds.
func (r *RenderResult) Duration() float64 {
	return r.Buffer.Duration()
}

// SectionPlan is the effect setup one section was rendered with. Times are
// in output seconds, after the tempo change.
type SectionPlan struct {
	Label SectionLabel `json:"label"`
	Start float64      `json:"start"`
	End   float64      `json:"end"`

	HighPassFrom float64 `json:"highPassFrom"`
	HighPassTo   float64 `json:"highPassTo"`
	LowPassFrom  float64 `json:"lowPassFrom"`
	LowPassTo    float64 `json:"lowPassTo"`

	ChorusDepthMs  float64 `json:"chorusDepthMs"`
	ChorusMix      float64 `json:"chorusMix"`
	ChorusFeedback float64 `json:"chorusFeedback"`

	Drive           float64 `json:"drive"`
	CompThresholdDB float64 `json:"compThresholdDb"`
	CompRatio       float64 `json:"compRatio"`
	Gain            float64 `json:"gain"`

	// Effects lists the processing stages in order.
	Effects []string `json:"effects"`
}

func plansToSchedule(plans []render.Plan) []SectionPlan {
	out := make([]SectionPlan, len(plans))
	for i, p := range plans {
		out[i] = SectionPlan{
			Label:           SectionLabel(p.Label),
			Start:           p.OutStart,
			End:             p.OutEnd,
			HighPassFrom:    p.HighPassFrom,
			HighPassTo:      p.HighPassTo,
			LowPassFrom:     p.LowPassFrom,
			LowPassTo:       p.LowPassTo,
			ChorusDepthMs:   p.ModDepthMs,
			ChorusMix:       p.ModMix,
			ChorusFeedback:  p.ModFeedback,
			Drive:           p.Drive,
			CompThresholdDB: p.CompThresholdDB,
			CompRatio:       p.CompRatio,
			Gain:            p.Gain,
			Effects:         p.Stages,
		}
	}
	return out
}

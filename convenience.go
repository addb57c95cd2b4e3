package remix

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const outputFileMode = 0o644

// defaultEngine backs the package-level functions.
func defaultEngine() *Engine {
	return &Engine{config: DefaultConfig()}
}

// Decode decodes WAV, MP3 or FLAC bytes with the default configuration.
func Decode(data []byte) (*SampleBuffer, error) {
	return defaultEngine().Decode(data)
}

// Analyze analyzes buf with the default configuration.
func Analyze(buf *SampleBuffer) (*Analysis, error) {
	return defaultEngine().Analyze(buf)
}

// Render renders a remix with the default configuration.
func Render(buf *SampleBuffer, a *Analysis, opts Options) (*RenderResult, error) {
	return defaultEngine().Render(buf, a, opts)
}

// DecodeFile reads and decodes an audio file with the default
// configuration.
func DecodeFile(path string) (*SampleBuffer, error) {
	return defaultEngine().DecodeFile(path)
}

// RemixFile decodes, analyzes and renders inPath and writes the WAV to
// outPath, using the default configuration.
func RemixFile(inPath, outPath string, opts Options) (*Analysis, *RenderResult, error) {
	return defaultEngine().RemixFile(inPath, outPath, opts)
}

// DecodeFile reads and decodes an audio file.
func (e *Engine) DecodeFile(path string) (*SampleBuffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	buf, err := e.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return buf, nil
}

// RemixFile runs the whole pipeline on one file and writes the result.
func (e *Engine) RemixFile(inPath, outPath string, opts Options) (*Analysis, *RenderResult, error) {
	buf, err := e.DecodeFile(inPath)
	if err != nil {
		return nil, nil, err
	}

	a, err := e.Analyze(buf)
	if err != nil {
		return nil, nil, err
	}

	res, err := e.Render(buf, a, opts)
	if err != nil {
		return nil, nil, err
	}

	if err := os.WriteFile(outPath, res.WAV, outputFileMode); err != nil {
		return nil, nil, fmt.Errorf("failed to write %s: %w", outPath, err)
	}

	return a, res, nil
}

// OutputName returns "<name>-remix.wav" next to inPath, where name is the
// input's base name without its extension.
func OutputName(inPath string) string {
	base := filepath.Base(inPath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(inPath), name+outputSuffix)
}

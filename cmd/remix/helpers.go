package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	remix "github.com/tphakala/go-audio-remix"
)

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// isAudioFile reports whether path has a decodable extension and is not one
// of our own renders.
func isAudioFile(path string) bool {
	lower := strings.ToLower(filepath.Base(path))
	if strings.HasSuffix(lower, "-remix.wav") {
		return false
	}
	switch filepath.Ext(lower) {
	case ".wav", ".mp3", ".flac":
		return true
	default:
		return false
	}
}

// remixJob carries the settings shared by every file of one invocation.
type remixJob struct {
	engine  *remix.Engine
	opts    remix.Options
	outDir  string
	asJSON  bool
	verbose bool
	out     io.Writer
}

// outputPath places the render next to the input, or in outDir when set.
func (j *remixJob) outputPath(in string) string {
	name := remix.OutputName(in)
	if j.outDir == "" {
		return name
	}
	return filepath.Join(j.outDir, filepath.Base(name))
}

func (j *remixJob) process(in string) error {
	out := j.outputPath(in)
	if j.outDir != "" {
		if err := os.MkdirAll(j.outDir, outputDirMode); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if j.verbose {
		log.Printf("Input: %s", in)
		log.Printf("Output: %s", out)
	}

	start := time.Now()
	a, res, err := j.engine.RemixFile(in, out, j.opts)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if j.asJSON {
		return writeJSON(j.out, in, out, a, res)
	}

	fmt.Fprintf(j.out, "Remixed %s -> %s\n", filepath.Base(in), filepath.Base(out))
	writeReport(j.out, a)
	fmt.Fprintf(j.out, "  Output: %.2fs, %d channels, %d Hz\n",
		res.Duration(), res.Buffer.NumChannels(), res.Buffer.SampleRate)
	fmt.Fprintf(j.out, "  Took %.2fs, %.1fx realtime\n", elapsed.Seconds(), a.Duration/elapsed.Seconds())

	if j.verbose {
		for _, s := range res.Schedule {
			log.Printf("%s %s - %s: %s", s.Label, formatTime(s.Start), formatTime(s.End), strings.Join(s.Effects, ", "))
		}
	}
	return nil
}

// writeReport prints an analysis as indented text.
func writeReport(w io.Writer, a *remix.Analysis) {
	fmt.Fprintf(w, "  Tempo: %d BPM\n", a.Tempo)
	fmt.Fprintf(w, "  Key: %s (confidence %.2f)\n", a.Key, a.KeyConfidence)
	fmt.Fprintf(w, "  Loudness: %.1f dBFS\n", a.Loudness)
	fmt.Fprintf(w, "  Duration: %s\n", formatTime(a.Duration))
	fmt.Fprintf(w, "  Sections:\n")
	for _, s := range a.Sections {
		fmt.Fprintf(w, "    %-9s %s - %s  energy %3.0f%%  share %3.0f%%\n",
			s.Label, formatTime(s.Start), formatTime(s.End), s.Energy*100, s.Share(a.Duration)*100)
	}
}

type jsonReport struct {
	Input    string              `json:"input"`
	Output   string              `json:"output"`
	Analysis *remix.Analysis     `json:"analysis"`
	Options  remix.Options       `json:"options"`
	Schedule []remix.SectionPlan `json:"schedule"`
}

func writeJSON(w io.Writer, in, out string, a *remix.Analysis, res *remix.RenderResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{
		Input:    in,
		Output:   out,
		Analysis: a,
		Options:  res.Options,
		Schedule: res.Schedule,
	})
}

// formatTime renders seconds as m:ss.t.
func formatTime(seconds float64) string {
	whole := int(seconds)
	tenths := int((seconds - float64(whole)) * 10)
	return fmt.Sprintf("%d:%02d.%d", whole/60, whole%60, tenths)
}

func printStyles(w io.Writer) {
	for _, s := range remix.Styles() {
		fmt.Fprintf(w, "%-11s %-15s %s\n", s.Style, s.Label, s.Description)
	}
}

// Command analyze prints the tempo, key, loudness and section structure of
// audio files.
//
// Usage:
//
//	analyze song.mp3
//	analyze -json *.flac
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	remix "github.com/tphakala/go-audio-remix"
)

const minSectionBarWidth = 1

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	asJSON := flag.Bool("json", false, "Print JSON instead of a text report")
	parallel := flag.Bool("parallel", true, "Run analysis stages concurrently")
	width := flag.Int("width", defaultBarWidth, "Width of the section timeline in characters")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input...\n\n", os.Args[0])
		flag.PrintDefaults()
		return errors.New("no input files")
	}

	config := remix.DefaultConfig()
	config.EnableParallel = *parallel
	e, err := remix.New(&config)
	if err != nil {
		return err
	}

	for _, path := range args {
		start := time.Now()
		buf, err := e.DecodeFile(path)
		if err != nil {
			return err
		}
		a, err := e.Analyze(buf)
		if err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		if *verbose {
			log.Printf("%s: %s, %d Hz, %d channels, analyzed in %v",
				path, buf.Format, buf.SampleRate, buf.NumChannels(), time.Since(start).Round(time.Millisecond))
		}

		if *asJSON {
			if err := writeJSON(os.Stdout, path, a); err != nil {
				return err
			}
			continue
		}
		writeReport(os.Stdout, path, a, *width)
	}

	return nil
}

func writeJSON(w io.Writer, path string, a *remix.Analysis) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		File string `json:"file"`
		*remix.Analysis
	}{File: path, Analysis: a})
}

func writeReport(w io.Writer, path string, a *remix.Analysis, width int) {
	fmt.Fprintf(w, "%s\n", filepath.Base(path))
	fmt.Fprintf(w, "  Tempo:    %d BPM\n", a.Tempo)
	fmt.Fprintf(w, "  Key:      %s (%.2f)\n", a.Key, a.KeyConfidence)
	fmt.Fprintf(w, "  Loudness: %.1f dBFS\n", a.Loudness)
	fmt.Fprintf(w, "  Duration: %.2fs\n", a.Duration)
	fmt.Fprintf(w, "  %s\n", timeline(a, width))
	for _, s := range a.Sections {
		fmt.Fprintf(w, "  %c %-9s %7.2fs - %7.2fs  energy %.2f\n",
			sectionGlyph(s.Label), s.Label, s.Start, s.End, s.Energy)
	}
}

// timeline draws the sections as a bar of width characters, one glyph per
// label.
func timeline(a *remix.Analysis, width int) string {
	if width < len(a.Sections) {
		width = len(a.Sections)
	}

	bar := make([]rune, 0, width)
	for i, s := range a.Sections {
		n := max(minSectionBarWidth, int(s.Share(a.Duration)*float64(width)+0.5))
		if i == len(a.Sections)-1 {
			n = max(minSectionBarWidth, width-len(bar))
		}
		for range n {
			bar = append(bar, sectionGlyph(s.Label))
		}
	}
	return "[" + string(bar) + "]"
}

func sectionGlyph(label remix.SectionLabel) rune {
	switch label {
	case remix.LabelIntro:
		return 'i'
	case remix.LabelBuild:
		return '/'
	case remix.LabelDrop:
		return '#'
	case remix.LabelBreakdown:
		return '_'
	case remix.LabelOutro:
		return 'o'
	default:
		return '='
	}
}

// Command remix analyzes an audio file and renders a styled remix of it.
//
// Usage:
//
//	remix song.mp3                              # writes song-remix.wav
//	remix -style chill -tempo 0.9 song.flac     # slower, darker remix
//	remix -json -out renders/ a.wav b.mp3       # JSON reports, custom output dir
//	remix -watch incoming/                      # remix every new file in a folder
//
// Flag defaults can be set with REMIX_STYLE, REMIX_TEMPO, REMIX_INTENSITY,
// REMIX_EFFECTS, REMIX_BITDEPTH and REMIX_OUT_DIR.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"

	remix "github.com/tphakala/go-audio-remix"
	"github.com/tphakala/go-audio-remix/internal/simdops"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	style := flag.String("style", envStr(envStyle, string(remix.StyleElectronic)), "Remix style: electronic, chill, upbeat")
	tempo := flag.Float64("tempo", envFloat(envTempo, defaultTempo), "Tempo multiplier (0.75-1.35)")
	intensity := flag.Float64("intensity", envFloat(envIntensity, defaultIntensity), "Intensity of sweeps, drive and compression (0-1)")
	effects := flag.Float64("effects", envFloat(envEffects, defaultEffects), "Modulation and reverb level (0-1)")
	bitDepth := flag.Int("bits", envInt(envBitDepth, defaultBitDepth), "Output bit depth: 16, 24, 32")
	outDir := flag.String("out", envStr(envOutDir, ""), "Output directory (default: next to the input)")
	crossfade := flag.Duration("crossfade", defaultCrossfade, "Crossfade between sections")
	parallel := flag.Bool("parallel", true, "Process channels concurrently")
	watch := flag.String("watch", "", "Watch a directory and remix files as they appear")
	asJSON := flag.Bool("json", false, "Print the analysis and schedule as JSON")
	listStyles := flag.Bool("styles", false, "List the available styles and exit")
	verbose := flag.Bool("v", false, "Verbose output")
	cpuprofile := flag.String("cpuprofile", "", "Write CPU profile to file (for PGO)")
	flag.Parse()

	if *listStyles {
		printStyles(os.Stdout)
		return nil
	}

	args := flag.Args()
	if len(args) == 0 && *watch == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input...\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s song.mp3                         # Writes song-remix.wav\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -style chill -tempo 0.9 in.flac  # Slower, darker remix\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -watch incoming/                 # Remix new files as they arrive\n", os.Args[0])
		return errors.New("no input files")
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	parsedStyle, err := remix.ParseStyle(*style)
	if err != nil {
		return err
	}
	opts, err := remix.Options{
		Style:           parsedStyle,
		TempoMultiplier: *tempo,
		Intensity:       *intensity,
		EffectLevel:     *effects,
	}.Normalize()
	if err != nil {
		return err
	}

	config := remix.DefaultConfig()
	config.BitDepth = *bitDepth
	config.EnableParallel = *parallel
	config.Crossfade = *crossfade
	e, err := remix.New(&config)
	if err != nil {
		return err
	}

	if *verbose {
		log.Printf("SIMD: %s", simdops.CPUInfo())
		log.Printf("Style: %s, tempo x%.2f, intensity %.2f, effects %.2f",
			opts.Style, opts.TempoMultiplier, opts.Intensity, opts.EffectLevel)
		log.Printf("Output: %d-bit, crossfade %v, parallel %v", config.BitDepth, config.Crossfade, config.EnableParallel)
	}

	job := &remixJob{
		engine:  e,
		opts:    opts,
		outDir:  *outDir,
		asJSON:  *asJSON,
		verbose: *verbose,
		out:     os.Stdout,
	}

	for _, in := range args {
		if err := job.process(in); err != nil {
			return err
		}
	}

	if *watch != "" {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return watchDir(ctx, *watch, job)
	}

	return nil
}

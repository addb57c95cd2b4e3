// Package remix analyzes music tracks and renders stylistic remixes of them
// in pure Go.
//
// A track flows through three steps, each usable on its own:
//
//	Decode (WAV/MP3/FLAC bytes) -> SampleBuffer
//	Analyze (SampleBuffer)      -> Analysis: loudness, tempo, key, sections
//	Render (buffer, analysis)   -> RenderResult: remixed buffer plus WAV bytes
//
// Analysis is done once per track; Render can then be called any number of
// times with different [Options] against the same buffer and analysis.
//
// # Quick Start
//
//	buf, err := remix.DecodeFile("track.mp3")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	a, err := remix.Analyze(buf)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(a.Tempo, a.Key)
//
//	res, err := remix.Render(buf, a, remix.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("track-remix.wav", res.WAV, 0o644)
//
// [RemixFile] runs all three steps and writes the result.
//
// # Analysis
//
// Loudness is BS.1770 integrated loudness (K-weighted, gated) in dBFS with a
// floor of [LoudnessFloor]. Tempo comes from the autocorrelation of a
// spectral-flux onset envelope and lies in [MinTempo, MaxTempo]. The key is
// the best Krumhansl-Kessler profile match of the track's chroma, one of 24
// values such as "C Major" or "F# Minor". Sections are found from changes
// in level and brightness and labelled intro, verse, build, drop, breakdown
// or outro; the last section always ends exactly at the track duration.
//
// # Styles
//
// Three styles are provided, see [Styles]:
//
//   - [StyleElectronic] ("Neon Pulse"): flanger, heavy drive, tight compression.
//   - [StyleChill] ("Midnight Drift"): dark filters, slow chorus, long reverb.
//   - [StyleUpbeat] ("Festival Lift"): bright filters, fast chorus, punchy drops.
//
// Each section gets a plan derived from the style and its label: drops play
// open and driven, builds sweep their filters up, intros and outros stay
// gentle. [Options.Intensity] scales sweeps, drive and compression;
// [Options.EffectLevel] scales modulation and reverb. Adjacent sections are
// joined by smoothstep crossfades.
//
// # Tempo
//
// [Options.TempoMultiplier] changes the tempo without changing pitch using
// WSOLA time-stretching. The output holds round(N / TempoMultiplier)
// samples per channel.
//
// # Errors
//
// Failures wrap one of [ErrDecode], [ErrAnalysis], [ErrRender] or
// [ErrInvalidConfig], together with the specific cause:
//
//	if errors.Is(err, remix.ErrDecode) { ... }
//
// # Thread Safety
//
// Decoding, analysis and rendering are pure functions of their inputs. An
// [Engine] holds only its configuration, and concurrent renders of the same
// buffer and analysis are safe. With [Config.EnableParallel] channels are
// processed in goroutines; results are bit-identical to sequential
// processing.
package remix

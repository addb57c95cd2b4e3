// Package decode turns encoded audio (WAV, MP3, FLAC) into planar float64
// samples normalized to [-1, 1]. Nothing is resampled or remixed: the
// result keeps the source rate and channel layout.
package decode

import (
	"bytes"
	"errors"
	"fmt"
)

var (
	// ErrTruncated indicates the input ends before its headers say it should.
	ErrTruncated = errors.New("truncated input")

	// ErrUnsupported indicates an unknown container or an unsupported codec
	// variant.
	ErrUnsupported = errors.New("unsupported format")

	// ErrNoSamples indicates a well-formed stream holding zero frames.
	ErrNoSamples = errors.New("no samples")
)

// Container identifies the sniffed input format.
type Container string

const (
	ContainerUnknown Container = ""
	ContainerWAV     Container = "wav"
	ContainerMP3     Container = "mp3"
	ContainerFLAC    Container = "flac"
)

const (
	minSniffLen = 4
	riffHeadLen = 12
)

var (
	magicRIFF = []byte("RIFF")
	magicWAVE = []byte("WAVE")
	magicFLAC = []byte("fLaC")
	magicID3  = []byte("ID3")
)

// Result is a decoded stream.
type Result struct {
	Channels   [][]float64
	SampleRate int
	// BitDepth is the source PCM depth, 0 for MP3.
	BitDepth int
	Format   Container
}

// Frames returns the per-channel sample count.
func (r *Result) Frames() int {
	if len(r.Channels) == 0 {
		return 0
	}
	return len(r.Channels[0])
}

// Sniff identifies the container from its leading bytes.
func Sniff(data []byte) (Container, error) {
	if len(data) < minSniffLen {
		return ContainerUnknown, fmt.Errorf("%w: %d bytes", ErrTruncated, len(data))
	}

	switch {
	case bytes.HasPrefix(data, magicRIFF):
		if len(data) < riffHeadLen {
			return ContainerUnknown, fmt.Errorf("%w: RIFF header", ErrTruncated)
		}
		if !bytes.Equal(data[8:12], magicWAVE) {
			return ContainerUnknown, fmt.Errorf("%w: RIFF form %q", ErrUnsupported, data[8:12])
		}
		return ContainerWAV, nil
	case bytes.HasPrefix(data, magicFLAC):
		return ContainerFLAC, nil
	case bytes.HasPrefix(data, magicID3), isMPEGSync(data):
		return ContainerMP3, nil
	default:
		return ContainerUnknown, fmt.Errorf("%w: unrecognized header % x", ErrUnsupported, data[:minSniffLen])
	}
}

// Decode sniffs and decodes data. data is never modified.
func Decode(data []byte) (*Result, error) {
	container, err := Sniff(data)
	if err != nil {
		return nil, err
	}

	var res *Result
	switch container {
	case ContainerWAV:
		res, err = decodeWAV(data)
	case ContainerMP3:
		res, err = decodeMP3(data)
	case ContainerFLAC:
		res, err = decodeFLAC(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", container, err)
	}

	if res.Frames() == 0 {
		return nil, fmt.Errorf("%s: %w", container, ErrNoSamples)
	}
	res.Format = container

	return res, nil
}

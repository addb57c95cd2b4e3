package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/wav"

	"github.com/tphakala/go-audio-remix/internal/wavio"
)

const (
	wavFormatPCM        = 1
	wavFormatFloat      = 3
	wavFormatExtensible = 0xFFFE

	// Only single-precision float data is read.
	wavFloatBitDepth = 32

	// Canonical header length; anything shorter cannot hold a data chunk.
	wavMinHeaderLen = 44
	bitsPerByte     = 8
)

func decodeWAV(data []byte) (*Result, error) {
	decoder := wav.NewDecoder(bytes.NewReader(data))
	if !decoder.IsValidFile() {
		if len(data) < wavMinHeaderLen {
			return nil, fmt.Errorf("%w: %d byte header", ErrTruncated, len(data))
		}
		// A parsed fmt chunk with nothing playable behind it.
		if decoder.NumChans > 0 && decoder.SampleRate > 0 && decoder.BitDepth > 0 {
			return nil, ErrNoSamples
		}
		return nil, fmt.Errorf("%w: invalid WAV header", ErrUnsupported)
	}

	isFloat := decoder.WavAudioFormat == wavFormatFloat
	if f := decoder.WavAudioFormat; f != wavFormatPCM && f != wavFormatExtensible && !isFloat {
		return nil, fmt.Errorf("%w: WAV audio format 0x%04x", ErrUnsupported, f)
	}

	bitDepth := int(decoder.BitDepth)
	if isFloat && bitDepth != wavFloatBitDepth {
		return nil, fmt.Errorf("%w: %d-bit float WAV", ErrUnsupported, bitDepth)
	}
	if _, err := wavio.MaxValue(bitDepth); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupported, err)
	}
	numChannels := int(decoder.NumChans)

	pcm, err := decoder.FullPCMBuffer()
	if err != nil {
		if isEOF(err) {
			return nil, fmt.Errorf("%w: %w", ErrTruncated, err)
		}
		return nil, fmt.Errorf("reading PCM data: %w", err)
	}

	// The data chunk header declares its size; fewer bytes on disk means
	// the file was cut short.
	bytesPerSample := bitDepth / bitsPerByte
	if want := int(decoder.PCMSize) / bytesPerSample; len(pcm.Data) < want {
		return nil, fmt.Errorf("%w: %d of %d samples", ErrTruncated, len(pcm.Data), want)
	}

	var channels [][]float64
	if isFloat {
		channels = deinterleaveFloat32(pcm.Data, numChannels)
	} else if channels, err = wavio.Deinterleave(pcm.Data, numChannels, bitDepth); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupported, err)
	}

	return &Result{
		Channels:   channels,
		SampleRate: int(decoder.SampleRate),
		BitDepth:   bitDepth,
	}, nil
}

// deinterleaveFloat32 reinterprets 32-bit words as IEEE floats. Values are
// clamped to [-1, 1] and NaN becomes silence.
func deinterleaveFloat32(data []int, numChannels int) [][]float64 {
	frames := len(data) / numChannels
	out := make([][]float64, numChannels)
	for ch := range out {
		out[ch] = make([]float64, frames)
	}
	for i := range frames {
		for ch := range numChannels {
			v := float64(math.Float32frombits(uint32(data[i*numChannels+ch])))
			if math.IsNaN(v) {
				continue
			}
			out[ch][i] = max(-1, min(1, v))
		}
	}
	return out
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

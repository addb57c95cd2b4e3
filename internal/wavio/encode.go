package wavio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

const (
	wavHeaderSize      = 44
	wavPCMSubchunkSize = 16
	wavFormatPCM       = 1
	// RIFF size excludes the "RIFF" tag and the size field itself.
	wavRiffHeaderSize = wavHeaderSize - 8
)

// ErrTooLarge indicates audio whose data chunk does not fit the 32-bit RIFF
// size fields.
var ErrTooLarge = errors.New("audio too large for WAV")

// Format describes a PCM WAV stream.
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// Validate rejects formats the encoder cannot write.
func (f Format) Validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate: %d", f.SampleRate)
	}
	if f.Channels < monoChannels || f.Channels > 0xFFFF {
		return fmt.Errorf("invalid channel count: %d", f.Channels)
	}
	switch f.BitDepth {
	case BitDepth16, BitDepth24, BitDepth32:
		return nil
	default:
		return fmt.Errorf("unsupported output bit depth: %d", f.BitDepth)
	}
}

func (f Format) blockAlign() int {
	return f.Channels * (f.BitDepth / bitsPerByte)
}

// dataSize returns the data chunk size for frames, rejecting sizes the RIFF
// header cannot express.
func (f Format) dataSize(frames int) (uint32, error) {
	size := uint64(frames) * uint64(f.blockAlign())
	if size > math.MaxUint32-wavRiffHeaderSize {
		return 0, fmt.Errorf("%w: %d bytes of PCM data", ErrTooLarge, size)
	}
	return uint32(size), nil
}

// Encode renders normalized float channels as a complete RIFF/WAVE PCM file.
func Encode(channels [][]float64, sampleRate, bitDepth int) ([]byte, error) {
	format := Format{SampleRate: sampleRate, Channels: len(channels), BitDepth: bitDepth}
	if err := format.Validate(); err != nil {
		return nil, err
	}

	frames := len(channels[0])
	for ch := range channels {
		if len(channels[ch]) != frames {
			return nil, fmt.Errorf("channel %d has %d frames, want %d", ch, len(channels[ch]), frames)
		}
	}

	dataSize, err := format.dataSize(frames)
	if err != nil {
		return nil, err
	}

	samples, err := Interleave(channels, bitDepth)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(wavHeaderSize + int(dataSize))

	if err := writeHeader(&buf, format, dataSize); err != nil {
		return nil, err
	}
	writeSamples(&buf, samples, bitDepth)

	return buf.Bytes(), nil
}

func writeHeader(w io.Writer, f Format, dataSize uint32) error {
	byteRate := f.SampleRate * f.blockAlign()

	header := make([]byte, wavHeaderSize)

	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], wavRiffHeaderSize+dataSize)
	copy(header[8:12], "WAVE")

	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], wavPCMSubchunkSize)
	binary.LittleEndian.PutUint16(header[20:22], wavFormatPCM)
	binary.LittleEndian.PutUint16(header[22:24], uint16(f.Channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(f.SampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(f.blockAlign()))
	binary.LittleEndian.PutUint16(header[34:36], uint16(f.BitDepth))

	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], dataSize)

	_, err := w.Write(header)
	return err
}

func writeSamples(buf *bytes.Buffer, samples []int, bitDepth int) {
	var tmp [4]byte
	switch bitDepth {
	case BitDepth16:
		for _, s := range samples {
			binary.LittleEndian.PutUint16(tmp[:2], uint16(int16(s)))
			buf.Write(tmp[:2])
		}
	case BitDepth24:
		for _, s := range samples {
			tmp[0] = byte(s)
			tmp[1] = byte(s >> 8)
			tmp[2] = byte(s >> 16)
			buf.Write(tmp[:3])
		}
	case BitDepth32:
		for _, s := range samples {
			binary.LittleEndian.PutUint32(tmp[:4], uint32(int32(s)))
			buf.Write(tmp[:4])
		}
	}
}

// Package wavio converts between normalized float channels and PCM WAV.
package wavio

import (
	"fmt"
	"math"

	"github.com/tphakala/go-audio-remix/internal/simdops"
)

const (
	bitsPerByte = 8

	BitDepth8  = 8
	BitDepth16 = 16
	BitDepth24 = 24
	BitDepth32 = 32

	maxInt8  = 127.0
	maxInt16 = 32767.0
	maxInt24 = 8388607.0
	maxInt32 = 2147483647.0

	// 8-bit WAV is unsigned around this midpoint.
	unsigned8Offset = 128

	monoChannels   = 1
	stereoChannels = 2
)

// MaxValue returns the positive full-scale integer for a bit depth.
func MaxValue(bitDepth int) (float64, error) {
	switch bitDepth {
	case BitDepth8:
		return maxInt8, nil
	case BitDepth16:
		return maxInt16, nil
	case BitDepth24:
		return maxInt24, nil
	case BitDepth32:
		return maxInt32, nil
	default:
		return 0, fmt.Errorf("unsupported bit depth: %d", bitDepth)
	}
}

// Quantize maps a float sample to an integer at full scale maxVal. Input is
// clamped to [-1, 1] and rounded to nearest; no dither is applied.
func Quantize(sample, maxVal float64) int {
	if math.IsNaN(sample) {
		return 0
	}
	if sample > 1 {
		sample = 1
	} else if sample < -1 {
		sample = -1
	}
	return int(math.Round(sample * maxVal))
}

// Interleave quantizes per-channel float slices into interleaved ints.
func Interleave(channels [][]float64, bitDepth int) ([]int, error) {
	maxVal, err := MaxValue(bitDepth)
	if err != nil {
		return nil, err
	}
	if len(channels) == 0 || len(channels[0]) == 0 {
		return nil, nil
	}

	numChannels := len(channels)
	frames := len(channels[0])
	dst := make([]int, frames*numChannels)

	if numChannels == stereoChannels {
		interleaved := make([]float64, len(dst))
		simdops.Interleave2(interleaved, channels[0], channels[1])
		for i, v := range interleaved {
			dst[i] = Quantize(v, maxVal)
		}
		return dst, nil
	}

	for i := range frames {
		base := i * numChannels
		for ch := range numChannels {
			dst[base+ch] = Quantize(channels[ch][i], maxVal)
		}
	}
	return dst, nil
}

// Deinterleave splits interleaved integer PCM into normalized float
// channels. 8-bit input is expected unsigned, as stored in WAV.
func Deinterleave(data []int, numChannels, bitDepth int) ([][]float64, error) {
	if numChannels < monoChannels {
		return nil, fmt.Errorf("invalid channel count: %d", numChannels)
	}
	maxVal, err := MaxValue(bitDepth)
	if err != nil {
		return nil, err
	}

	offset := 0
	if bitDepth == BitDepth8 {
		offset = unsigned8Offset
	}
	// 8-bit has one more negative step than positive; scale by 128.
	invMax := 1.0 / (maxVal + 1)

	frames := len(data) / numChannels
	out := make([][]float64, numChannels)
	for ch := range numChannels {
		out[ch] = make([]float64, frames)
	}

	if numChannels == monoChannels {
		buf := out[0]
		for i := range frames {
			buf[i] = float64(data[i]-offset) * invMax
		}
		return out, nil
	}

	for i := range frames {
		base := i * numChannels
		for ch := range numChannels {
			out[ch][i] = float64(data[base+ch]-offset) * invMax
		}
	}
	return out, nil
}

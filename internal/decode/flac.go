package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
)

// flacCapacity bounds the per-channel preallocation by what data could
// hold uncompressed, since NSamples is untrusted header input.
func flacCapacity(declared uint64, dataLen, numChannels, bitDepth int) int {
	limit := uint64(dataLen) * bitsPerByte / uint64(numChannels*bitDepth)
	return int(min(declared, limit))
}

// checkFrame rejects frames that disagree with STREAMINFO.
func checkFrame(f *frame.Frame, numChannels, bitDepth int) error {
	if len(f.Subframes) != numChannels {
		return fmt.Errorf("%w: frame %d has %d channels, stream has %d", ErrUnsupported, f.Num, len(f.Subframes), numChannels)
	}
	if bps := int(f.BitsPerSample); bps != 0 && bps != bitDepth {
		return fmt.Errorf("%w: frame %d is %d-bit, stream is %d-bit", ErrUnsupported, f.Num, bps, bitDepth)
	}
	for ch, sub := range f.Subframes {
		if sub == nil || len(sub.Samples) < int(f.BlockSize) {
			return fmt.Errorf("%w: frame %d channel %d is short", ErrTruncated, f.Num, ch)
		}
	}
	return nil
}

func decodeFLAC(data []byte) (*Result, error) {
	stream, err := flac.New(bytes.NewReader(data))
	if err != nil {
		if isEOF(err) {
			return nil, fmt.Errorf("%w: %w", ErrTruncated, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrUnsupported, err)
	}
	defer stream.Close()

	info := stream.Info
	numChannels := int(info.NChannels)
	bitDepth := int(info.BitsPerSample)
	if numChannels < 1 || bitDepth < 4 || bitDepth > 32 {
		return nil, fmt.Errorf("%w: %d channels at %d bits", ErrUnsupported, numChannels, bitDepth)
	}

	channels := make([][]float64, numChannels)
	for ch := range numChannels {
		channels[ch] = make([]float64, 0, flacCapacity(info.NSamples, len(data), numChannels, bitDepth))
	}
	scale := 1.0 / float64(uint64(1)<<(bitDepth-1))

	var parseErr error
	for {
		f, err := stream.ParseNext()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				parseErr = err
			}
			break
		}
		if err := checkFrame(f, numChannels, bitDepth); err != nil {
			return nil, err
		}
		for ch := range numChannels {
			samples := f.Subframes[ch].Samples[:f.BlockSize]
			for _, s := range samples {
				channels[ch] = append(channels[ch], float64(s)*scale)
			}
		}
	}

	got := uint64(len(channels[0]))
	if info.NSamples > 0 && got < info.NSamples {
		return nil, fmt.Errorf("%w: %d of %d samples", ErrTruncated, got, info.NSamples)
	}
	if parseErr != nil {
		if isEOF(parseErr) {
			return nil, fmt.Errorf("%w: %w", ErrTruncated, parseErr)
		}
		return nil, fmt.Errorf("decoding FLAC frames: %w", parseErr)
	}

	return &Result{
		Channels:   channels,
		SampleRate: int(info.SampleRate),
		BitDepth:   bitDepth,
	}, nil
}

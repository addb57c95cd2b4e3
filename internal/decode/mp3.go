package decode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
)

const (
	id3HeaderLen     = 10
	id3FooterFlag    = 0x10
	mpegHeaderLen    = 4
	mpegSyncMask     = 0xE0
	mpegChannelMono  = 3
	mpegScanLimit    = 64 << 10
	mp3DecoderChans  = 2 // go-mp3 always emits interleaved stereo
	mp3BytesPerValue = 2
)

func isMPEGSync(data []byte) bool {
	return len(data) >= 2 && data[0] == 0xFF && data[1]&mpegSyncMask == mpegSyncMask
}

// validMPEGHeader rejects sync look-alikes: reserved version, layer,
// bitrate or sample rate indices.
func validMPEGHeader(h []byte) bool {
	if len(h) < mpegHeaderLen || !isMPEGSync(h) {
		return false
	}
	version := (h[1] >> 3) & 0x3
	layer := (h[1] >> 1) & 0x3
	bitrate := h[2] >> 4
	rate := (h[2] >> 2) & 0x3
	return version != 1 && layer != 0 && bitrate != 0xF && rate != 0x3
}

// id3v2Size returns the byte length of a leading ID3v2 tag, 0 if none.
func id3v2Size(data []byte) (int, error) {
	if !bytes.HasPrefix(data, magicID3) {
		return 0, nil
	}
	if len(data) < id3HeaderLen {
		return 0, fmt.Errorf("%w: ID3 header", ErrTruncated)
	}
	// Syncsafe integer: 7 bits per byte.
	size := int(data[6]&0x7F)<<21 | int(data[7]&0x7F)<<14 | int(data[8]&0x7F)<<7 | int(data[9]&0x7F)
	size += id3HeaderLen
	if data[5]&id3FooterFlag != 0 {
		size += id3HeaderLen
	}
	return size, nil
}

// mpegChannels reads the channel mode of the first frame header.
func mpegChannels(data []byte) (int, error) {
	offset, err := id3v2Size(data)
	if err != nil {
		return 0, err
	}
	if offset >= len(data) {
		return 0, fmt.Errorf("%w: no audio after ID3 tag", ErrTruncated)
	}

	end := min(len(data)-mpegHeaderLen, offset+mpegScanLimit)
	for i := offset; i <= end; i++ {
		if validMPEGHeader(data[i : i+mpegHeaderLen]) {
			if data[i+3]>>6 == mpegChannelMono {
				return 1, nil
			}
			return 2, nil
		}
	}
	return 0, fmt.Errorf("%w: no MPEG frame header", ErrUnsupported)
}

func decodeMP3(data []byte) (*Result, error) {
	numChannels, err := mpegChannels(data)
	if err != nil {
		return nil, err
	}

	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		if isEOF(err) {
			return nil, fmt.Errorf("%w: %w", ErrTruncated, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrUnsupported, err)
	}

	pcm, err := io.ReadAll(decoder)
	if err != nil {
		if isEOF(err) {
			return nil, fmt.Errorf("%w: %w", ErrTruncated, err)
		}
		return nil, fmt.Errorf("decoding MPEG frames: %w", err)
	}

	frameBytes := mp3DecoderChans * mp3BytesPerValue
	frames := len(pcm) / frameBytes
	channels := make([][]float64, numChannels)
	for ch := range numChannels {
		channels[ch] = make([]float64, frames)
	}

	// Mono sources come out duplicated on both sides; keep the left.
	const scale = 1.0 / 32768
	for i := range frames {
		base := i * frameBytes
		for ch := range numChannels {
			v := int16(binary.LittleEndian.Uint16(pcm[base+ch*mp3BytesPerValue:]))
			channels[ch][i] = float64(v) * scale
		}
	}

	return &Result{
		Channels:   channels,
		SampleRate: decoder.SampleRate(),
	}, nil
}

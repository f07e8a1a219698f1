// Package wav encodes and decodes the 44-byte RIFF/WAVE header used for
// PCM audio handed to the transcription backend.
package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

// HeaderSize is the fixed size of a canonical PCM WAVE header.
const HeaderSize = 44

// ErrFormat is returned when a buffer is not a valid PCM WAVE header.
var ErrFormat = errors.New("malformed wave header")

// Info holds the fields read back from a decoded header.
type Info struct {
	SampleRate int
	DataLength int
}

// EncodeHeader builds the canonical 44-byte header for raw PCM data of
// dataLength bytes.
func EncodeHeader(sampleRate, channels, bitsPerSample, dataLength int) []byte {
	blockAlign := channels * bitsPerSample / 8
	byteRate := sampleRate * blockAlign

	h := make([]byte, HeaderSize)
	copy(h[0:4], "RIFF")
	binary.LittleEndian.PutUint32(h[4:8], uint32(36+dataLength))
	copy(h[8:12], "WAVE")
	copy(h[12:16], "fmt ")
	binary.LittleEndian.PutUint32(h[16:20], 16)
	binary.LittleEndian.PutUint16(h[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(h[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(h[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(h[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(h[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(h[34:36], uint16(bitsPerSample))
	copy(h[36:40], "data")
	binary.LittleEndian.PutUint32(h[40:44], uint32(dataLength))
	return h
}

// DecodeHeader reads the sample rate and data length back out of a header.
func DecodeHeader(b []byte) (Info, error) {
	if len(b) < HeaderSize {
		return Info{}, fmt.Errorf("header is %d bytes, want %d: %w", len(b), HeaderSize, ErrFormat)
	}
	if string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		return Info{}, fmt.Errorf("missing RIFF/WAVE markers: %w", ErrFormat)
	}
	return Info{
		SampleRate: int(binary.LittleEndian.Uint32(b[24:28])),
		DataLength: int(binary.LittleEndian.Uint32(b[40:44])),
	}, nil
}

// WriteFile writes header plus samples to path in one shot.
func WriteFile(path string, pcm []byte, sampleRate, channels, bitsPerSample int) error {
	buf := make([]byte, 0, HeaderSize+len(pcm))
	buf = append(buf, EncodeHeader(sampleRate, channels, bitsPerSample, len(pcm))...)
	buf = append(buf, pcm...)
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("write wave file: %w", err)
	}
	return nil
}

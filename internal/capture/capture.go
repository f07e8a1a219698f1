// Package capture provides microphone capture sources. Two variants
// exist behind the same interface: an ffmpeg-backed source reading the
// real default input device, and a deterministic synthetic generator
// for tests and machines without ffmpeg.
package capture

import (
	"errors"
	"time"
)

// ErrDevice is returned when the underlying input device cannot be
// opened (missing binary, no device, permission denied).
var ErrDevice = errors.New("capture device unavailable")

// Options describes how the microphone should be captured.
type Options struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Device     string // empty means the platform default
}

// DefaultOptions returns 16 kHz mono 16-bit, the rate whisper models
// expect.
func DefaultOptions() Options {
	return Options{
		SampleRate: 16000,
		Channels:   1,
		BitDepth:   16,
	}
}

// ChunkInterval is the nominal duration of one delivered chunk.
const ChunkInterval = 100 * time.Millisecond

// ChunkBytes returns the size of one chunk of PCM at these options.
func (o Options) ChunkBytes() int {
	bytesPerSecond := o.SampleRate * o.Channels * o.BitDepth / 8
	return bytesPerSecond * int(ChunkInterval/time.Millisecond) / 1000
}

// ChunkFunc receives one chunk of raw interleaved PCM. The callback
// owns the slice; sources never reuse it.
type ChunkFunc func(chunk []byte)

// Source is a microphone capture session factory. Start opens the
// device and begins delivering fixed-size chunks; Stop closes it. Stop
// must be safe to call from inside the chunk callback.
type Source interface {
	Start(opts Options, onChunk ChunkFunc) error
	Stop() error
}

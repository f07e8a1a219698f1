package capture

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// Synthetic generates a deterministic sine tone with a slow amplitude
// envelope at wall-clock pace. It stands in for the microphone in tests
// and on machines without ffmpeg.
type Synthetic struct {
	// Interval overrides the delivery cadence. Zero means ChunkInterval.
	Interval time.Duration
	// Freq is the tone frequency in Hz. Zero means 440.
	Freq float64
	// Silent produces all-zero chunks when set.
	Silent bool

	mu      sync.Mutex
	stopped chan struct{}
	running bool
}

// NewSynthetic creates a synthetic capture source.
func NewSynthetic() *Synthetic {
	return &Synthetic{}
}

// Start begins generating chunks on a ticker.
func (s *Synthetic) Start(opts Options, onChunk ChunkFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("synthetic source already running: %w", ErrDevice)
	}

	interval := s.Interval
	if interval <= 0 {
		interval = ChunkInterval
	}
	freq := s.Freq
	if freq == 0 {
		freq = 440
	}

	stopped := make(chan struct{})
	s.stopped = stopped
	s.running = true

	chunkSize := opts.ChunkBytes()
	samplesPerChunk := chunkSize / 2

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var sampleIndex int
		for {
			select {
			case <-stopped:
				return
			case <-ticker.C:
			}

			chunk := make([]byte, chunkSize)
			if !s.Silent {
				for i := 0; i < samplesPerChunk; i++ {
					t := float64(sampleIndex+i) / float64(opts.SampleRate)
					// Envelope keeps the level meter moving.
					envelope := 0.4 + 0.3*math.Sin(2*math.Pi*0.5*t)
					v := int16(envelope * 0.5 * 32767 * math.Sin(2*math.Pi*freq*t))
					chunk[2*i] = byte(v)
					chunk[2*i+1] = byte(v >> 8)
				}
			}
			sampleIndex += samplesPerChunk

			select {
			case <-stopped:
				return
			default:
			}
			onChunk(chunk)
		}
	}()

	return nil
}

// Stop ends chunk generation. Safe to call from the chunk callback.
func (s *Synthetic) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false
	close(s.stopped)
	return nil
}

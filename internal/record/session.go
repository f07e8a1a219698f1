// Package record owns the recording lifecycle: it opens a capture
// source, accumulates PCM chunks, emits amplitude samples for the
// waveform display, and enforces the maximum recording duration.
package record

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spenceriam/voice-tui/internal/capture"
	"github.com/spenceriam/voice-tui/internal/waveform"
	"go.uber.org/zap"
)

// ErrInvalidState is returned when an operation is requested in a state
// that forbids it: Start while recording, Stop while idle.
var ErrInvalidState = errors.New("invalid session state")

// smoothingFactor damps the amplitude callback to avoid visual jitter.
const smoothingFactor = 0.3

// numBands is how many waveform bars the amplitude callback carries.
const numBands = 12

// Options configures one recording.
type Options struct {
	Capture     capture.Options
	MaxDuration time.Duration
}

// DefaultOptions returns 16 kHz mono capped at 60 seconds.
func DefaultOptions() Options {
	return Options{
		Capture:     capture.DefaultOptions(),
		MaxDuration: 60 * time.Second,
	}
}

func (o Options) validate() error {
	c := o.Capture
	if c.SampleRate <= 0 || c.Channels <= 0 || c.BitDepth <= 0 {
		return fmt.Errorf("sample rate, channels and bit depth must be positive: %w", ErrInvalidState)
	}
	if o.MaxDuration <= 0 {
		return fmt.Errorf("max duration must be positive: %w", ErrInvalidState)
	}
	return nil
}

// Sample is one amplitude observation derived from a chunk, for
// visualization only.
type Sample struct {
	Level float64
	Bands []float64
}

// Result is the finished recording. Duration is wall clock, not derived
// from the sample count, since capture may drop samples.
type Result struct {
	Samples    []byte
	Duration   time.Duration
	SampleRate int
}

// Session coordinates one recording at a time over a capture source.
// The chunk handler is invoked from the source's delivery goroutine and
// stays O(chunk size).
type Session struct {
	src capture.Source
	log *zap.SugaredLogger

	onSample   func(Sample)
	onAutoStop func(Result)

	mu        sync.Mutex
	opts      Options
	recording bool
	chunks    [][]byte
	startedAt time.Time
	level     float64
}

// NewSession creates a session over the given capture source.
func NewSession(src capture.Source, log *zap.SugaredLogger) *Session {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Session{src: src, log: log}
}

// SetSampleFunc registers the amplitude callback. Must be set before
// Start; it is invoked once per chunk with the smoothed level.
func (s *Session) SetSampleFunc(fn func(Sample)) {
	s.onSample = fn
}

// SetAutoStopFunc registers the callback invoked with the finished
// Result when the maximum duration stops the recording from inside the
// chunk handler.
func (s *Session) SetAutoStopFunc(fn func(Result)) {
	s.onAutoStop = fn
}

// Start opens the capture source and begins accumulating chunks.
func (s *Session) Start(opts Options) error {
	if err := opts.validate(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.recording {
		s.mu.Unlock()
		return fmt.Errorf("start: already recording: %w", ErrInvalidState)
	}
	s.opts = opts
	s.chunks = s.chunks[:0]
	s.level = 0
	s.startedAt = time.Now()
	s.recording = true
	s.mu.Unlock()

	if err := s.src.Start(opts.Capture, s.ingest); err != nil {
		s.mu.Lock()
		s.recording = false
		s.mu.Unlock()
		return fmt.Errorf("open capture source: %w", err)
	}

	s.log.Infow("recording started", "maxDuration", opts.MaxDuration)
	return nil
}

// ingest is the chunk handler. It appends the chunk, emits a smoothed
// amplitude sample, and stops the session once the wall-clock elapsed
// time reaches the configured maximum.
func (s *Session) ingest(chunk []byte) {
	s.mu.Lock()
	if !s.recording {
		s.mu.Unlock()
		return
	}
	s.chunks = append(s.chunks, chunk)

	raw := waveform.Scalar(chunk)
	s.level = waveform.Smooth(raw, s.level, smoothingFactor)
	sample := Sample{
		Level: s.level,
		Bands: waveform.Bands(chunk, s.opts.Capture.SampleRate, numBands),
	}
	onSample := s.onSample

	var autoResult *Result
	if time.Since(s.startedAt) >= s.opts.MaxDuration {
		res := s.stopLocked()
		autoResult = &res
	}
	s.mu.Unlock()

	if onSample != nil {
		onSample(sample)
	}
	if autoResult != nil {
		s.log.Infow("recording auto-stopped", "duration", autoResult.Duration)
		if s.onAutoStop != nil {
			s.onAutoStop(*autoResult)
		}
	}
}

// Stop ends the recording and returns the concatenated samples. A
// second Stop, or Stop while idle, returns ErrInvalidState.
func (s *Session) Stop() (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.recording {
		return Result{}, fmt.Errorf("stop: not recording: %w", ErrInvalidState)
	}
	res := s.stopLocked()
	s.log.Infow("recording stopped", "duration", res.Duration, "bytes", len(res.Samples))
	return res, nil
}

// stopLocked closes the source and assembles the Result. Caller holds
// s.mu.
func (s *Session) stopLocked() Result {
	s.recording = false
	s.src.Stop()

	var total int
	for _, c := range s.chunks {
		total += len(c)
	}
	samples := make([]byte, 0, total)
	for _, c := range s.chunks {
		samples = append(samples, c...)
	}
	s.chunks = nil

	return Result{
		Samples:    samples,
		Duration:   time.Since(s.startedAt),
		SampleRate: s.opts.Capture.SampleRate,
	}
}

// Recording reports whether a recording is active.
func (s *Session) Recording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recording
}

// Elapsed returns wall-clock time since Start while recording, zero
// otherwise.
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.recording {
		return 0
	}
	return time.Since(s.startedAt)
}

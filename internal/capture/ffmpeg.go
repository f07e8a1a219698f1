package capture

import (
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"sync"

	"github.com/smallnest/ringbuffer"
	"go.uber.org/zap"
)

// FFmpeg captures the microphone by running ffmpeg with a raw s16le
// pipe on stdout. Device reads land in a blocking ring buffer; a
// separate delivery loop cuts the stream into exact chunk sizes so the
// callback cadence is independent of how ffmpeg sizes its writes.
type FFmpeg struct {
	log *zap.SugaredLogger

	mu      sync.Mutex
	cmd     *exec.Cmd
	rb      *ringbuffer.RingBuffer
	stopped chan struct{}
	running bool
}

// NewFFmpeg creates an ffmpeg-backed capture source.
func NewFFmpeg(log *zap.SugaredLogger) *FFmpeg {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &FFmpeg{log: log}
}

// Available reports whether the ffmpeg binary is on PATH.
func (f *FFmpeg) Available() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

// inputArgs returns the platform capture flags for the given device.
func inputArgs(device string) []string {
	switch runtime.GOOS {
	case "darwin":
		if device == "" {
			device = ":default"
		}
		return []string{"-f", "avfoundation", "-i", device}
	case "windows":
		if device == "" {
			device = "audio=default"
		}
		return []string{"-f", "dshow", "-i", device}
	default:
		if device == "" {
			device = "default"
		}
		return []string{"-f", "alsa", "-i", device}
	}
}

// Start launches ffmpeg and begins delivering chunks.
func (f *FFmpeg) Start(opts Options, onChunk ChunkFunc) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.running {
		return fmt.Errorf("capture already running: %w", ErrDevice)
	}

	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg not found on PATH: %w", ErrDevice)
	}

	args := inputArgs(opts.Device)
	args = append(args,
		"-ac", fmt.Sprint(opts.Channels),
		"-ar", fmt.Sprint(opts.SampleRate),
		"-f", "s16le",
		"-loglevel", "quiet",
		"-",
	)

	cmd := exec.Command("ffmpeg", args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("ffmpeg stdout pipe: %w", ErrDevice)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %v: %w", err, ErrDevice)
	}

	chunkSize := opts.ChunkBytes()
	rb := ringbuffer.New(chunkSize * 16)
	rb.SetBlocking(true)

	stopped := make(chan struct{})
	f.cmd = cmd
	f.rb = rb
	f.stopped = stopped
	f.running = true

	f.log.Infow("capture started", "backend", "ffmpeg", "rate", opts.SampleRate, "chunkBytes", chunkSize)

	// Device read loop: ffmpeg stdout into the ring buffer.
	go func() {
		_, err := io.Copy(rb, stdout)
		if err != nil {
			f.log.Debugw("ffmpeg read loop ended", "err", err)
		}
		rb.CloseWriter()
	}()

	// Delivery loop: exact chunk sizes out of the ring buffer.
	go func() {
		for {
			chunk := make([]byte, chunkSize)
			if _, err := io.ReadFull(rb, chunk); err != nil {
				return
			}
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

// Stop kills the ffmpeg process and ends chunk delivery. Safe to call
// from the chunk callback and safe to call when not running.
func (f *FFmpeg) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.running {
		return nil
	}
	f.running = false
	close(f.stopped)

	if f.cmd.Process != nil {
		f.cmd.Process.Kill()
	}
	f.rb.CloseWriter()
	go f.cmd.Wait() // reap without blocking the caller

	f.log.Infow("capture stopped", "backend", "ffmpeg")
	return nil
}

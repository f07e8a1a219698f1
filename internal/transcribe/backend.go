package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"
)

// Backend is the opaque transcription capability: given a model file
// and a WAV file, produce text. Implementations are selected at
// construction time, never discovered at runtime.
type Backend interface {
	Transcribe(ctx context.Context, modelPath, wavPath string, cfg Config) (text, language string, err error)
}

// Whisper runs the whisper.cpp command-line binary.
type Whisper struct {
	// BinPath is the whisper executable. Empty means "whisper-cli" on
	// PATH.
	BinPath string
}

// Available reports whether the whisper binary can be found.
func (w *Whisper) Available() bool {
	_, err := exec.LookPath(w.bin())
	return err == nil
}

func (w *Whisper) bin() string {
	if w.BinPath != "" {
		return w.BinPath
	}
	return "whisper-cli"
}

// Transcribe invokes whisper.cpp non-streaming and captures its stdout.
func (w *Whisper) Transcribe(ctx context.Context, modelPath, wavPath string, cfg Config) (string, string, error) {
	args := []string{
		"-m", modelPath,
		"-f", wavPath,
		"--no-timestamps",
	}
	if cfg.LanguageHint != "" {
		args = append(args, "-l", cfg.LanguageHint)
	}
	if cfg.Translate {
		args = append(args, "--translate")
	}

	cmd := exec.CommandContext(ctx, w.bin(), args...)
	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return "", "", fmt.Errorf("%s: %v: %s", w.bin(), err, bytes.TrimSpace(errBuf.Bytes()))
	}
	return out.String(), cfg.LanguageHint, nil
}

// Synthetic is a deterministic backend for tests and demo mode. It
// returns a fixed text after an optional delay.
type Synthetic struct {
	Text     string
	Language string
	Delay    time.Duration
	Err      error
}

// Transcribe returns the configured text.
func (s *Synthetic) Transcribe(ctx context.Context, modelPath, wavPath string, cfg Config) (string, string, error) {
	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return "", "", ctx.Err()
		}
	}
	if s.Err != nil {
		return "", "", s.Err
	}
	lang := s.Language
	if lang == "" {
		lang = "en"
	}
	return s.Text, lang, nil
}

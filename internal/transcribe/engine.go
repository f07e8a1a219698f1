// Package transcribe wraps a local speech-to-text capability behind one
// asynchronous contract: hand it a finished recording, observe progress,
// get text back. The model file is fetched on demand through the model
// store before the first inference.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spenceriam/voice-tui/internal/models"
	"github.com/spenceriam/voice-tui/internal/record"
	"github.com/spenceriam/voice-tui/internal/wav"
	"go.uber.org/zap"
)

var (
	// ErrModelUnavailable means the model asset could not be fetched;
	// inference never started.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrInference means the transcription capability itself failed.
	ErrInference = errors.New("inference failed")
)

// Status tags a progress report.
type Status string

const (
	StatusLoading    Status = "loading"    // model download in progress
	StatusProcessing Status = "processing" // inference running
	StatusComplete   Status = "complete"
)

// Progress is reported through the transcription callback. Percent is
// -1 while indeterminate.
type Progress struct {
	Status  Status
	Percent float64
	Message string
}

// ProgressFunc observes transcription progress. Reports are strictly
// non-decreasing in percent within one call.
type ProgressFunc func(Progress)

// Config selects the model and task for one transcription.
type Config struct {
	ModelName    string
	LanguageHint string // empty means auto-detect
	Translate    bool   // translate to English instead of transcribing
}

// Result is the finished transcription.
type Result struct {
	Text       string
	Language   string
	Duration   time.Duration
	Confidence float64
}

// Engine runs transcriptions against a pluggable backend.
type Engine struct {
	store      *models.Store
	backend    Backend
	scratchDir string
	log        *zap.SugaredLogger
}

// NewEngine creates an engine over the given store and backend.
// scratchDir is where intermediate WAV files are written; empty means
// the OS temp directory.
func NewEngine(store *models.Store, backend Backend, scratchDir string, log *zap.SugaredLogger) *Engine {
	if scratchDir == "" {
		scratchDir = os.TempDir()
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Engine{store: store, backend: backend, scratchDir: scratchDir, log: log}
}

// Available reports whether at least one registered model is present
// locally.
func (e *Engine) Available() bool {
	return e.store.AnyPresent()
}

// Transcribe converts a finished recording to text. The model is
// downloaded first if missing; download failures surface as
// ErrModelUnavailable and inference is not attempted.
func (e *Engine) Transcribe(ctx context.Context, rec record.Result, cfg Config, onProgress ProgressFunc) (Result, error) {
	report := func(p Progress) {
		if onProgress != nil {
			onProgress(p)
		}
	}

	desc, err := e.store.Registry().Lookup(cfg.ModelName)
	if err != nil {
		return Result{}, err
	}

	if !e.store.IsPresent(cfg.ModelName) {
		report(Progress{
			Status:  StatusLoading,
			Percent: 0,
			Message: fmt.Sprintf("downloading model %s (%s)", desc.Name, desc.SizeLabel),
		})
		err := e.store.Download(ctx, cfg.ModelName, func(p models.Progress) {
			report(Progress{
				Status:  StatusLoading,
				Percent: p.Percent,
				Message: fmt.Sprintf("downloading model %s", desc.Name),
			})
		})
		if err != nil {
			return Result{}, fmt.Errorf("fetch model %s: %v: %w", cfg.ModelName, err, ErrModelUnavailable)
		}
	}

	report(Progress{Status: StatusProcessing, Percent: 0, Message: "transcribing"})

	scratch := filepath.Join(e.scratchDir, fmt.Sprintf("voice-tui-%s.wav", uuid.NewString()))
	if err := wav.WriteFile(scratch, rec.Samples, rec.SampleRate, 1, 16); err != nil {
		return Result{}, fmt.Errorf("persist audio (%.1fs): %v: %w", rec.Duration.Seconds(), err, ErrInference)
	}
	defer os.Remove(scratch)

	start := time.Now()
	text, lang, err := e.backend.Transcribe(ctx, desc.LocalPath, scratch, cfg)
	if err != nil {
		return Result{}, fmt.Errorf("transcribe %.1fs of audio: %v: %w", rec.Duration.Seconds(), err, ErrInference)
	}

	text = strings.TrimSpace(text)
	if lang == "" {
		lang = cfg.LanguageHint
	}

	res := Result{
		Text:       text,
		Language:   lang,
		Duration:   rec.Duration,
		Confidence: Confidence(text),
	}

	e.log.Infow("transcription complete",
		"audio", rec.Duration,
		"inference", time.Since(start),
		"chars", len(text),
		"confidence", res.Confidence)

	report(Progress{Status: StatusComplete, Percent: 100})
	return res, nil
}

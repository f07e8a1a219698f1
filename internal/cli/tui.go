package cli

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/spenceriam/voice-tui/internal/app"
	"github.com/spenceriam/voice-tui/internal/capture"
	"github.com/spenceriam/voice-tui/internal/history"
	"github.com/spenceriam/voice-tui/internal/record"
	"github.com/spenceriam/voice-tui/internal/session"
	"github.com/spenceriam/voice-tui/internal/transcribe"
)

// runTUI assembles the recording pipeline and hands the terminal to
// bubbletea.
func runTUI(deps *Dependencies) error {
	cfg := deps.Config

	src, err := newSource(deps)
	if err != nil {
		return err
	}
	backend, err := newBackend(deps)
	if err != nil {
		return err
	}

	engine := transcribe.NewEngine(deps.Models, backend, os.TempDir(), deps.Log)

	opts := record.DefaultOptions()
	opts.Capture.SampleRate = cfg.Audio.SampleRate
	opts.Capture.Channels = cfg.Audio.Channels
	opts.Capture.BitDepth = cfg.Audio.BitDepth
	opts.Capture.Device = cfg.Audio.Device
	opts.MaxDuration = time.Duration(cfg.Audio.MaxDurationSeconds) * time.Second

	tCfg := transcribe.Config{
		ModelName:    cfg.Model.Name,
		LanguageHint: cfg.Whisper.Language,
	}

	sess := record.NewSession(src, deps.Log)
	ctrl := session.New(sess, engine, opts, tCfg, deps.Log)

	// History is best-effort; the recorder works without it.
	var store *history.Store
	if cfg.HistoryPath != "" {
		store, err = history.Open(cfg.HistoryPath)
		if err != nil {
			deps.Log.Warnw("history unavailable", "path", cfg.HistoryPath, "err", err)
			store = nil
		} else {
			defer store.Close()
		}
	}

	m := app.New(ctrl, store, cfg.ExportDir, cfg.Model.Name, deps.Log)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

func newSource(deps *Dependencies) (capture.Source, error) {
	switch deps.Config.Audio.Backend {
	case "", "ffmpeg":
		return capture.NewFFmpeg(deps.Log), nil
	case "synthetic":
		return capture.NewSynthetic(), nil
	default:
		return nil, fmt.Errorf("unknown audio backend %q", deps.Config.Audio.Backend)
	}
}

func newBackend(deps *Dependencies) (transcribe.Backend, error) {
	switch deps.Config.Whisper.Backend {
	case "", "whisper":
		return &transcribe.Whisper{BinPath: deps.Config.Whisper.BinPath}, nil
	case "synthetic":
		return &transcribe.Synthetic{Text: "synthetic transcript", Language: "en"}, nil
	default:
		return nil, fmt.Errorf("unknown whisper backend %q", deps.Config.Whisper.Backend)
	}
}

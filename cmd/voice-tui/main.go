package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spenceriam/voice-tui/internal/cli"
	"github.com/spenceriam/voice-tui/internal/config"
	"github.com/spenceriam/voice-tui/internal/logging"
	"github.com/spenceriam/voice-tui/internal/models"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logging.Build(cfg.LogPath, cfg.Debug)
	defer log.Sync()

	store := models.NewStore(
		models.DefaultRegistry(cfg.Model.Dir),
		&http.Client{Timeout: 30 * time.Minute},
		log,
	)

	deps := &cli.Dependencies{
		Config: cfg,
		Log:    log,
		Models: store,
	}

	return cli.NewRootCmd(deps).Execute()
}

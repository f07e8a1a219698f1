// Package cli defines the voice-tui command tree.
package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spenceriam/voice-tui/internal/config"
	"github.com/spenceriam/voice-tui/internal/models"
)

// Dependencies carries the shared wiring for all commands.
type Dependencies struct {
	Config *config.Config
	Log    *zap.SugaredLogger
	Models *models.Store
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "voice-tui",
		Short: "Record and transcribe voice notes in the terminal",
		Long:  "A terminal app that records from the microphone, shows a live waveform, and transcribes locally with whisper.cpp models.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(deps)
		},
	}

	rootCmd.AddCommand(NewDownloadCmd(deps))
	rootCmd.AddCommand(NewModelsCmd(deps))
	rootCmd.AddCommand(NewHistoryCmd(deps))
	rootCmd.AddCommand(NewDoctorCmd(deps))

	return rootCmd
}

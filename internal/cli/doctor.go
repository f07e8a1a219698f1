package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/spenceriam/voice-tui/internal/capture"
	"github.com/spenceriam/voice-tui/internal/transcribe"
)

func NewDoctorCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check prerequisites",
		RunE: func(cmd *cobra.Command, args []string) error {
			ok := true

			if capture.NewFFmpeg(nil).Available() {
				check(true, "ffmpeg", "installed")
			} else {
				check(false, "ffmpeg", "not found. Install it or set audio.backend: synthetic")
				ok = false
			}

			w := &transcribe.Whisper{BinPath: deps.Config.Whisper.BinPath}
			if w.Available() {
				check(true, "whisper-cli", "installed")
			} else {
				check(false, "whisper-cli", "not found. Install whisper.cpp or set whisper.bin_path")
				ok = false
			}

			if deps.Models.IsPresent(deps.Config.Model.Name) {
				check(true, "model "+deps.Config.Model.Name, "downloaded")
			} else {
				check(false, "model "+deps.Config.Model.Name, "missing. Run: voice-tui download "+deps.Config.Model.Name)
				ok = false
			}

			dir := filepath.Dir(deps.Config.HistoryPath)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				check(false, "data directory", dir+" is not writable")
				ok = false
			} else {
				check(true, "data directory", dir)
			}

			if ok {
				fmt.Println("\nEverything looks good.")
			} else {
				fmt.Println("\nSome prerequisites are missing.")
			}
			return nil
		},
	}
}

func check(passed bool, name, detail string) {
	mark := "✗"
	if passed {
		mark = "✓"
	}
	fmt.Printf("%s %-24s %s\n", mark, name, detail)
}

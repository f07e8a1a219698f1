package cli

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/spenceriam/voice-tui/internal/models"
)

func NewDownloadCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "download <model>",
		Short: "Download a whisper model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			if deps.Models.IsPresent(name) {
				fmt.Printf("%s is already downloaded\n", name)
				return nil
			}

			fmt.Printf("Downloading %s...\n", name)
			err := deps.Models.Download(cmd.Context(), name, func(p models.Progress) {
				if p.Percent < 0 {
					fmt.Fprintf(os.Stdout, "\r%s", humanize.IBytes(uint64(p.Downloaded)))
					return
				}
				fmt.Fprintf(os.Stdout, "\r%3.0f%%  %s / %s",
					p.Percent,
					humanize.IBytes(uint64(p.Downloaded)),
					humanize.IBytes(uint64(p.Total)))
			})
			fmt.Println()
			if err != nil {
				return fmt.Errorf("download %s: %w", name, err)
			}

			fmt.Printf("Done. %s is ready to use.\n", name)
			return nil
		},
	}
}

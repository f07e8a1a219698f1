package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/spenceriam/voice-tui/internal/history"
)

func NewHistoryCmd(deps *Dependencies) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent transcriptions",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := history.Open(deps.Config.HistoryPath)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			entries, err := store.Recent(limit)
			if err != nil {
				return fmt.Errorf("read history: %w", err)
			}
			if len(entries) == 0 {
				fmt.Println("No transcriptions yet.")
				return nil
			}

			for _, e := range entries {
				fmt.Printf("%s · %s · %.0f%% · %s\n",
					humanize.Time(e.CreatedAt),
					e.ModelName,
					e.Confidence*100,
					e.Duration.Truncate(100*time.Millisecond))
				fmt.Printf("  %s\n", e.Text)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of entries to show")
	return cmd
}

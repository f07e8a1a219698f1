package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewModelsCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List available whisper models",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := deps.Models.Registry()
			for _, name := range reg.Names() {
				d, err := reg.Lookup(name)
				if err != nil {
					return err
				}
				mark := " "
				if deps.Models.IsPresent(name) {
					mark = "✓"
				}
				fmt.Printf("%s %-10s %s\n", mark, d.Name, d.SizeLabel)
			}
			return nil
		},
	}
}

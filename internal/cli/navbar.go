package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/gokatarajesh/trivia-quiz/internal/navbar"
)

// NewNavbarCmd prints the application header.
func NewNavbarCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "navbar",
		Short: "Print the navigation bar",
		RunE: func(cmd *cobra.Command, args []string) error {
			bar := navbar.Default()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(bar)
			}
			return bar.Render(cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the navbar document as JSON")
	return cmd
}

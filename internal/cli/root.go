// Package cli holds the cobra commands of the quiz terminal binary.
package cli

import (
	"github.com/spf13/cobra"
)

// Execute runs the CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd assembles the quiz command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "quiz",
		Short:         "Play a trivia quiz in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(NewPlayCmd())
	cmd.AddCommand(NewNavbarCmd())
	return cmd
}

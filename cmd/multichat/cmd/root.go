package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "multichat",
	Short: "Multi-platform chat aggregator and relay",
	Long: `Multichat aggregates chat events from multiple platforms, runs them
through a chain of processing modules and relays the results to the native
UI and to websocket-connected browsers.

Use "multichat [command] --help" for more information about a command.`,
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

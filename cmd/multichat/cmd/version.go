package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the multichat version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("multichat %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

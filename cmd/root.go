// Package cmd implements the skillweaver CLI using cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"
const logo = "🧵"

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "skillweaver",
	Short: logo + " skillweaver — LLM capability dispatcher",
	Long:  logo + " skillweaver — routes requests to on-disk capabilities and grows new ones on demand",
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version

	rootCmd.AddCommand(onboardCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(capabilitiesCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}

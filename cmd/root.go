// ABOUTME: Root cobra command for the agent dashboard binary
// ABOUTME: Initializes logging and loads configuration before any subcommand runs

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/markalston/agent-dashboard/config"
	"github.com/markalston/agent-dashboard/logger"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "agent-dashboard",
	Short: "Agent dashboard API",
	Long: `Agent dashboard API serves the task board, notifications and agent health
to the dashboard UI, guarding every write with a shared secret, a per-operator
rate limit and request validation.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.Init()

		var err error
		cfg, err = config.Get()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

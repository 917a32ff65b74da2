// Package cmd implements the agentterm CLI.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coordinatio/agentterm/internal/config"
)

var (
	flagConfig  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "agentterm",
	Short: "Manage interactive agent sessions",
	Long: `agentterm supervises multiple interactive agent processes, each with
its own output buffer and display surface, and keeps track of which
session is active and which was active last.

Running agentterm without a subcommand starts the interactive console:

  agentterm> new planner
  agentterm> send s1 summarize the open issues
  agentterm> peek s1
  agentterm> toggle`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConsole(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "",
		"Config file (default: $AGENTTERM_CONFIG or the user config dir)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false,
		"Enable debug logging")
}

// loadConfig resolves and loads the effective config file.
func loadConfig() (*config.Config, string, error) {
	path := flagConfig
	if path == "" {
		path = config.ResolvePath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

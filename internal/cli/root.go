// Package cli wires the habitr commands together.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the command tree. Running it without a subcommand
// opens the terminal UI.
func NewRootCommand(version string) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "habitr",
		Short: "Track daily time spent on personal tasks",
		Long: `habitr times sessions against per-task daily targets and keeps
the finished records in a local SQLite database. Run it without arguments
for the terminal UI, or use "serve" to expose the same data over HTTP.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, configPath)
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/habitr/config.toml)")

	root.AddCommand(newTUICommand(&configPath))
	root.AddCommand(newServeCommand(&configPath))
	root.AddCommand(newExportCommand(&configPath))
	root.AddCommand(newRemindersCommand(&configPath))
	root.AddCommand(newConfigCommand(&configPath))

	return root
}

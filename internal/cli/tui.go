package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sadopc/habitr/internal/tui"
)

// runProgram runs a Bubble Tea model, replaceable in tests.
var runProgram = func(m tea.Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func newTUICommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the terminal UI (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, *configPath)
		},
	}
}

func runTUI(cmd *cobra.Command, configPath string) error {
	e, err := openEnv(configPath, false)
	if err != nil {
		return err
	}
	defer e.Close()

	ownerID, err := e.owner(cmd.Context(), "")
	if err != nil {
		return err
	}
	e.logger.Info("starting tui", zap.String("owner", ownerID))

	return runProgram(tui.NewApp(e.store, tui.Options{
		OwnerID:     ownerID,
		IdleTimeout: e.cfg.IdleTimeout,
		Location:    e.loc,
		Logger:      e.logger,
	}))
}

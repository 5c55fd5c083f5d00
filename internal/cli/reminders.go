package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/habitr/internal/reminder"
)

func newRemindersCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "Inspect reminders",
	}
	cmd.AddCommand(newRemindersListCommand(configPath))
	cmd.AddCommand(newRemindersDueCommand(configPath))
	return cmd
}

func newRemindersListCommand(configPath *string) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reminders with their next fire time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv(*configPath, false)
			if err != nil {
				return err
			}
			defer e.Close()

			ctx := cmd.Context()
			ownerID, err := e.owner(ctx, user)
			if err != nil {
				return err
			}
			rems, err := e.store.ListReminders(ctx, ownerID)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(rems) == 0 {
				_, _ = fmt.Fprintln(w, "No reminders.")
				return nil
			}
			now := time.Now().In(e.loc)
			for _, r := range rems {
				_, _ = fmt.Fprintf(w, "%-16s %-24s next %s\n",
					reminder.Describe(r), r.TaskName, reminder.Next(r, now).Format("Mon Jan 02 15:04"))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "owner ID (default: local owner)")
	return cmd
}

func newRemindersDueCommand(configPath *string) *cobra.Command {
	var user, at string

	cmd := &cobra.Command{
		Use:   "due",
		Short: "Print reminders that fire in the current minute",
		Long: `Print the reminders whose time and repeat pattern match the given
minute. Suitable for running from cron once a minute.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv(*configPath, false)
			if err != nil {
				return err
			}
			defer e.Close()

			now := time.Now().In(e.loc)
			if at != "" {
				t, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("--at must be RFC3339: %w", err)
				}
				now = t.In(e.loc)
			}

			ctx := cmd.Context()
			ownerID, err := e.owner(ctx, user)
			if err != nil {
				return err
			}
			rems, err := e.store.ListReminders(ctx, ownerID)
			if err != nil {
				return err
			}

			for _, r := range reminder.Due(rems, now) {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", r.Time, r.TaskName)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "owner ID (default: local owner)")
	cmd.Flags().StringVar(&at, "at", "", "check this instant instead of now (RFC3339)")
	return cmd
}

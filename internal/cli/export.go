package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sadopc/habitr/internal/export"
	"github.com/sadopc/habitr/internal/stats"
	"github.com/sadopc/habitr/internal/store"
)

func newExportCommand(configPath *string) *cobra.Command {
	var format, output, from, to, user string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export records as CSV, JSON or YAML",
		Long: `Export finished records, oldest first. Output goes to stdout
unless --output names a file.`,
		Example: `  habitr export --format json --from 2024-01-01 --to 2024-01-31
  habitr export --format csv --output records.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			e, err := openEnv(*configPath, false)
			if err != nil {
				return err
			}
			defer e.Close()

			for _, d := range []string{from, to} {
				if d == "" {
					continue
				}
				if _, err := stats.ParseDate(d, e.loc); err != nil {
					return fmt.Errorf("date %q is not YYYY-MM-DD", d)
				}
			}

			ctx := cmd.Context()
			ownerID, err := e.owner(ctx, user)
			if err != nil {
				return err
			}
			records, err := e.store.ListRecords(ctx, ownerID, store.RecordFilter{From: from, To: to})
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				return export.Write(f, cmd.OutOrStdout(), records)
			}
			if err := export.ToFile(f, records, output); err != nil {
				return err
			}
			e.logger.Info("exported records", zap.String("path", output), zap.Int("count", len(records)))
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d records to %s\n", len(records), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(export.CSV), "csv, json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&from, "from", "", "first date, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "last date, YYYY-MM-DD")
	cmd.Flags().StringVar(&user, "user", "", "owner ID (default: local owner)")
	return cmd
}

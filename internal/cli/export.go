package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"vitalwatch/internal/dashboard"
	"vitalwatch/internal/export"
	"vitalwatch/internal/models"

	"github.com/spf13/cobra"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		format string
		outDir string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Fetch recent logs and write them as CSV or XLSX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var render func([]models.HistoricalRecord) ([]byte, bool, error)
			switch format {
			case "csv":
				render = export.CSV
			case "xlsx":
				render = export.XLSX
			default:
				return fmt.Errorf("unsupported format %q (want csv or xlsx)", format)
			}

			ctx := cmd.Context()
			st, err := a.store(ctx)
			if err != nil {
				return err
			}

			if limit <= 0 {
				limit = a.cfg.Dashboard.HistoryLimit
			}
			state := dashboard.NewState(a.cfg.Dashboard.ChartSize, a.now())
			adapter := dashboard.NewAdapter(st, state, dashboard.AdapterOptions{HistoryLimit: limit, Now: a.now}, a.logger)
			records, err := adapter.RefreshHistory(ctx)
			if err != nil {
				return err
			}

			data, ok, err := render(records)
			if err != nil {
				return err
			}
			if !ok {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "no logs to export")
				return err
			}

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			path := filepath.Join(outDir, export.Filename(a.now(), format))
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %d records to %s\n", len(records), path)
			return err
		},
	}

	cmd.Flags().StringVar(&format, "format", "csv", "export format: csv or xlsx")
	cmd.Flags().StringVar(&outDir, "out", ".", "output directory")
	cmd.Flags().IntVar(&limit, "limit", 0, "number of recent logs (default: dashboard history limit)")
	return cmd
}

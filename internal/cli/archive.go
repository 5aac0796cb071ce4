package cli

import (
	"fmt"
	"text/tabwriter"

	"vitalwatch/internal/repository"
	"vitalwatch/internal/vitals"

	"github.com/spf13/cobra"
)

func newArchiveCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "List recent frames from the PostgreSQL archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, err := a.database(ctx)
			if err != nil {
				return err
			}

			logs, err := repository.NewVitalLogRepository(db, a.logger).ListRecent(ctx, limit)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tHEART RATE\tSPO2\tBP WARNING\tFALL")
			for _, l := range logs {
				snap := vitals.NormalizeLog(l.Key, &l.Reading, l.RecordedAt, nil)
				fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%t\n", l.Key, snap.HeartRate, snap.SpO2, snap.BPWarning, snap.FallDetected)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of rows")
	return cmd
}

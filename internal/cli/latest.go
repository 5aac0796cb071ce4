package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"vitalwatch/internal/store"
	"vitalwatch/internal/vitals"

	"github.com/spf13/cobra"
)

func newLatestCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "latest",
		Short: "Print the most recent logged reading",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st, err := a.store(ctx)
			if err != nil {
				return err
			}

			log, err := st.LatestLog(ctx)
			if errors.Is(err, store.ErrNotFound) {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "no logs recorded")
				return err
			}
			if err != nil {
				return err
			}

			snap := vitals.NormalizeLog(log.Key, &log.Reading, a.now(), nil)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(snap)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "key:          %s\n", log.Key)
			fmt.Fprintf(w, "heart rate:   %d bpm\n", snap.HeartRate)
			fmt.Fprintf(w, "SpO2:         %d%%\n", snap.SpO2)
			fmt.Fprintf(w, "bp warning:   %s\n", snap.BPWarning)
			_, err = fmt.Fprintf(w, "fall warning: %s\n", snap.FallWarning)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the snapshot as JSON")
	return cmd
}

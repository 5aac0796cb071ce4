package cli

import (
	"os"

	"github.com/spf13/cobra"
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var (
		configPath string
		verbose    bool
	)

	rootCmd := &cobra.Command{
		Use:           "vitalwatch",
		Short:         "vitalwatch operator CLI: export history, inspect readings, ask the first-aid helper",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if configPath != "" {
				if err := os.Setenv("VITALWATCH_CONFIG", configPath); err != nil {
					return err
				}
			}
			return a.wire(verbose)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			a.close()
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (overrides VITALWATCH_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")

	rootCmd.AddCommand(
		newExportCmd(a),
		newLatestCmd(a),
		newChatCmd(),
		newArchiveCmd(a),
	)

	return rootCmd
}

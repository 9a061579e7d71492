package cmd

import (
	"github.com/spf13/cobra"

	"github.com/G-Research/jobbench/internal/jobbench"
	"github.com/G-Research/jobbench/internal/jobbench/configuration"
)

// Monitor the jobs of a saved batch.
func monitorCmd(app *jobbench.App) *cobra.Command {
	flagKeys := map[string]string{
		"results": "resultsFile",
	}
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Poll the jobs of a saved batch until they have all succeeded or failed.",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, app, flagKeys)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			config := configuration.MonitorConfig{Watch: configuration.DefaultWatchConfig()}
			if err := loadConfig(&config); err != nil {
				return err
			}
			_, err := app.Monitor(signalContext(), config)
			return err
		},
	}
	cmd.Flags().String("results", "", "Results file written by submit")
	addWatchFlags(cmd, flagKeys)
	addMetricsFlags(cmd, flagKeys)
	return cmd
}

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/G-Research/jobbench/internal/jobbench"
	"github.com/G-Research/jobbench/internal/jobbench/configuration"
)

// Compute submit-time statistics over a directory of results files.
func analyzeCmd(app *jobbench.App) *cobra.Command {
	flagKeys := map[string]string{
		"charts": "charts",
	}
	cmd := &cobra.Command{
		Use:   "analyze [results directory]",
		Short: "Analyze saved batches and write a performance report.",
		Long: `Analyze saved batches and write a performance report.

Every *.json results file in the directory (default: the current directory) is loaded;
files that can't be parsed are skipped with a warning. The report is written to
performance-report.md in the same directory.`,
		Args: cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, app, flagKeys)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			config := configuration.AnalyzeConfig{ResultsDir: "."}
			if err := loadConfig(&config); err != nil {
				return err
			}
			if len(args) > 0 {
				config.ResultsDir = args[0]
			}
			_, err := app.Analyze(config)
			return err
		},
	}
	cmd.Flags().Bool("charts", false, "Also write per-batch series data for plotting")
	return cmd
}

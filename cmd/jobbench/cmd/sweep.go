package cmd

import (
	"github.com/spf13/cobra"

	"github.com/G-Research/jobbench/internal/jobbench"
	"github.com/G-Research/jobbench/internal/jobbench/configuration"
)

const defaultSweepOutputDir = "sweep-results"

// Run a load-test plan.
func sweepCmd(app *jobbench.App) *cobra.Command {
	defaults := configuration.DefaultSubmitConfig()
	flagKeys := map[string]string{
		"output-dir":  "outputDir",
		"max-workers": "maxWorkers",
		"name-prefix": "namePrefix",
		"monitor":     "monitor",
		"charts":      "charts",
	}
	cmd := &cobra.Command{
		Use:   "sweep <plan.yaml>",
		Short: "Run a sequence of batches from a plan file, then analyze them.",
		Long: `Run a sequence of batches from a plan file, then analyze them.

Example plan:
name: scaling
jobQueue: countdown-queue
jobDefinition: countdown-job:3
maxConcurrency: 10
pause: 1m
parameters:
  countdownSeconds: 30
runs:
  - jobs: 10
  - jobs: 50
  - jobs: 100
    maxConcurrency: 20`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, app, flagKeys)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			config := configuration.SweepConfig{
				OutputDir:  defaultSweepOutputDir,
				MaxWorkers: defaults.MaxWorkers,
				NamePrefix: defaults.NamePrefix,
				Watch:      configuration.DefaultWatchConfig(),
			}
			if err := loadConfig(&config); err != nil {
				return err
			}
			config.PlanFile = args[0]
			_, err := app.Sweep(signalContext(), config)
			return err
		},
	}
	cmd.Flags().String("output-dir", defaultSweepOutputDir, "Directory for the results files and report")
	cmd.Flags().Int("max-workers", defaults.MaxWorkers, "Maximum number of submissions in flight, for runs that don't set one")
	cmd.Flags().String("name-prefix", defaults.NamePrefix, "Prefix of the job names")
	cmd.Flags().Bool("monitor", false, "Monitor the jobs of each run until they finish before starting the next")
	cmd.Flags().Bool("charts", false, "Also write per-batch series data for plotting")
	addWatchFlags(cmd, flagKeys)
	addMetricsFlags(cmd, flagKeys)
	return cmd
}

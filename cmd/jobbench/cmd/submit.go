package cmd

import (
	"github.com/spf13/cobra"

	"github.com/G-Research/jobbench/internal/jobbench"
	"github.com/G-Research/jobbench/internal/jobbench/configuration"
)

func addWatchFlags(cmd *cobra.Command, flagKeys map[string]string) {
	defaults := configuration.DefaultWatchConfig()
	cmd.Flags().Duration("interval", defaults.Interval, "Time between status polls")
	cmd.Flags().String("completion-log", "", "Append one JSON line per finished job to this file")
	flagKeys["interval"] = "watch.interval"
	flagKeys["completion-log"] = "watch.completionLog"
}

func addMetricsFlags(cmd *cobra.Command, flagKeys map[string]string) {
	cmd.Flags().String("metrics-push-url", "", "Push metrics to this Prometheus Pushgateway at the end of the run")
	flagKeys["metrics-push-url"] = "metrics.pushUrl"
}

// Submit one batch of jobs and save the submission outcomes.
func submitCmd(app *jobbench.App) *cobra.Command {
	defaults := configuration.DefaultSubmitConfig()
	flagKeys := map[string]string{
		"job-queue":        "jobQueue",
		"job-definition":   "jobDefinition",
		"num-jobs":         "numJobs",
		"max-workers":      "maxWorkers",
		"name-prefix":      "namePrefix",
		"countdown":        "parameters.countdownSeconds",
		"extra-parameters": "parameters.extraParameters",
		"output":           "output",
		"output-dir":       "outputDir",
		"monitor":          "monitor",
	}
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a batch of jobs concurrently and record how long each submission took.",
		Long: `Submit a batch of jobs concurrently and record how long each submission took.

The outcome of every submission is saved to a JSON results file. With --monitor, the
submitted jobs are then polled until they have all succeeded or failed.`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, app, flagKeys)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			config := configuration.DefaultSubmitConfig()
			if err := loadConfig(&config); err != nil {
				return err
			}
			_, err := app.Submit(signalContext(), config)
			return err
		},
	}
	cmd.Flags().String("job-queue", "", "Job queue to submit to")
	cmd.Flags().String("job-definition", "", "Job definition to submit")
	cmd.Flags().Int("num-jobs", defaults.NumJobs, "Number of jobs to submit")
	cmd.Flags().Int("max-workers", defaults.MaxWorkers, "Maximum number of submissions in flight")
	cmd.Flags().String("name-prefix", defaults.NamePrefix, "Prefix of the job names")
	cmd.Flags().Int("countdown", defaults.Parameters.CountdownSeconds, "countdownSeconds parameter passed to every job")
	cmd.Flags().String("extra-parameters", "", "Extra job parameters, e.g., 'mode=fast,size=2'")
	cmd.Flags().String("output", "", "Results file (default is batch-test-results-<unix time>.json in --output-dir)")
	cmd.Flags().String("output-dir", defaults.OutputDir, "Directory for the results file")
	cmd.Flags().Bool("monitor", false, "Monitor the submitted jobs until they finish")
	addWatchFlags(cmd, flagKeys)
	addMetricsFlags(cmd, flagKeys)
	return cmd
}

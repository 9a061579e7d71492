package cmd

import (
	"github.com/spf13/cobra"

	"github.com/G-Research/jobbench/internal/jobbench"
	"github.com/G-Research/jobbench/internal/jobbench/configuration"
)

// Launch one task through the task-launch gateway and wait for it to finish.
func harnessCmd(app *jobbench.App) *cobra.Command {
	defaults := configuration.DefaultHarnessConfig()
	flagKeys := map[string]string{
		"execute-url":     "executeUrl",
		"status-url":      "statusUrl",
		"exe-args":        "exeArgs",
		"cluster-name":    "clusterName",
		"no-wait":         "noWait",
		"max-wait":        "maxWait",
		"interval":        "interval",
		"status-attempts": "statusAttempts",
		"junit":           "junitFile",
	}
	cmd := &cobra.Command{
		Use:   "harness",
		Short: "Launch a task through the task-launch gateway and wait a bounded time for it to stop.",
		Long: `Launch a task through the task-launch gateway and wait a bounded time for it to stop.

The task passes if it stops with exit code 0 within --max-wait. The command exits
non-zero otherwise, or if the launch fails.`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, app, flagKeys)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			config := configuration.DefaultHarnessConfig()
			if err := loadConfig(&config); err != nil {
				return err
			}
			_, err := app.Harness(signalContext(), config)
			return err
		},
	}
	cmd.Flags().String("execute-url", "", "URL of the gateway's launch endpoint")
	cmd.Flags().String("status-url", "", "URL of the gateway's status endpoint")
	cmd.Flags().StringSlice("exe-args", defaults.ExeArgs, "Arguments passed to the executable")
	cmd.Flags().String("cluster-name", "", "ECS cluster (default is the gateway's)")
	cmd.Flags().Bool("no-wait", false, "Return as soon as the task is launched")
	cmd.Flags().Duration("max-wait", defaults.MaxWait, "Maximum time to wait for the task to stop")
	cmd.Flags().Duration("interval", defaults.Interval, "Time between status polls")
	cmd.Flags().Uint("status-attempts", defaults.StatusAttempts, "Attempts per status query before the poll counts as failed")
	cmd.Flags().String("junit", "", "Write a JUnit XML report to this file")
	return cmd
}

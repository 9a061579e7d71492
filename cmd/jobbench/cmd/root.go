package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/G-Research/jobbench/internal/common"
	"github.com/G-Research/jobbench/internal/jobbench"
	"github.com/G-Research/jobbench/pkg/client"
)

// RootCmd is the root Cobra command that gets called from the main func.
// All other sub-commands should be registered here.
func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobbench",
		Short: "jobbench load-tests a batch job service by submitting jobs concurrently and measuring how it copes.",
		Long: `jobbench load-tests a batch job service by submitting jobs concurrently and measuring how it copes.

Persistent config can be saved in a config file so it doesn't have to be specified every command.

Example structure:
service: batch
region: us-west-2
jobQueue: countdown-queue
jobDefinition: countdown-job:3
parameters:
  countdownSeconds: 30
watch:
  interval: 10s

The location of this file can be passed in using the --config argument.
If not provided, $HOME/.jobbench.yaml is used. Any key can also be set with a
JOBBENCH_ prefixed environment variable, e.g., JOBBENCH_JOBQUEUE.`,
		SilenceUsage: true,
	}

	var cfgFile string
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.jobbench.yaml)")
	cmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn or error")
	viper.BindPFlag("logLevel", cmd.PersistentFlags().Lookup("log-level"))
	client.AddServiceConnectionCommandlineArgs(cmd)

	cobra.OnInitialize(func() {
		configErr = client.LoadCommandlineArgsFromConfigFile(cfgFile)
	})

	cmd.AddCommand(
		submitCmd(jobbench.New()),
		monitorCmd(jobbench.New()),
		analyzeCmd(jobbench.New()),
		sweepCmd(jobbench.New()),
		harnessCmd(jobbench.New()),
		versionCmd(jobbench.New()),
	)

	return cmd
}

// configErr is set if the config file couldn't be loaded, and returned by initParams.
var configErr error

func initParams(cmd *cobra.Command, app *jobbench.App, flagKeys map[string]string) error {
	if configErr != nil {
		return configErr
	}
	if err := common.SetLogLevel(viper.GetString("logLevel")); err != nil {
		return err
	}
	if err := bindFlags(cmd, flagKeys); err != nil {
		return err
	}
	details, err := client.ExtractCommandlineServiceConnectionDetails()
	if err != nil {
		return err
	}
	app.Params.ServiceConnectionDetails = details
	return nil
}

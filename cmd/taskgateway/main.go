package main

import (
	"os"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/G-Research/jobbench/internal/common"
	"github.com/G-Research/jobbench/internal/common/app"
	"github.com/G-Research/jobbench/internal/common/health"
	"github.com/G-Research/jobbench/internal/common/jobbencherrors"
	"github.com/G-Research/jobbench/internal/common/logging"
	"github.com/G-Research/jobbench/internal/gateway"
)

func main() {
	common.ConfigureLogging()
	if err := rootCmd().Execute(); err != nil {
		logging.WithStacktrace(log.NewEntry(log.StandardLogger()), err).Error("task gateway failed")
		os.Exit(jobbencherrors.ExitCodeFromError(err))
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "taskgateway",
		Short: "taskgateway launches the countdown executable as ECS tasks over HTTP.",
		Long: `taskgateway launches the countdown executable as ECS tasks over HTTP.

Endpoints:
  POST /execute  {"exe_args": ["30"]}
  POST /status   {"task_arn": "..."}
  GET  /healthz

Defaults are read from the config file and from the ECS_CLUSTER_NAME, TASK_DEFINITION_ARN,
SUBNET_IDS and SECURITY_GROUP_IDS environment variables. Any other key can be set with a
TASKGATEWAY_ prefixed environment variable, e.g., TASKGATEWAY_LISTENADDRESS.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}
			logLevel, err := cmd.Flags().GetString("log-level")
			if err != nil {
				return err
			}
			if err := common.SetLogLevel(logLevel); err != nil {
				return err
			}
			return run(configPath)
		},
	}
	cmd.Flags().String("config", "", "config file")
	cmd.Flags().String("log-level", "info", "log level: debug, info, warn or error")
	return cmd
}

func run(configPath string) error {
	configuration, err := gateway.LoadConfiguration(viper.New(), configPath)
	if err != nil {
		return err
	}
	ctx := app.CreateContextWithShutdown()

	awsConfig, err := config.LoadDefaultConfig(ctx, config.WithRegion(configuration.Region))
	if err != nil {
		return errors.Wrap(err, "could not load AWS configuration")
	}
	service := gateway.NewTaskService(ecs.NewFromConfig(awsConfig), configuration)
	checker := health.NewMultiChecker(
		health.CheckerFunc(func() error {
			if awsConfig.Credentials == nil {
				return errors.New("no AWS credentials configured")
			}
			_, err := awsConfig.Credentials.Retrieve(ctx)
			return errors.Wrap(err, "could not retrieve AWS credentials")
		}),
		health.CheckerFunc(func() error {
			return errors.Wrap(ctx.Err(), "shutting down")
		}),
	)

	log.Infof("Launching tasks in cluster %s", configuration.ClusterName)
	return gateway.Serve(ctx, configuration.ListenAddress, gateway.NewRouter(service, checker), configuration.ShutdownTimeout)
}

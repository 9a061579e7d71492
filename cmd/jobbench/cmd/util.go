package cmd

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/G-Research/jobbench/internal/common/app"
	commonconfig "github.com/G-Research/jobbench/internal/common/config"
)

// bindFlags binds each named flag of cmd to a viper key. Binding happens when the command runs
// rather than when it's created, since several commands bind flags to the same keys.
func bindFlags(cmd *cobra.Command, flagKeys map[string]string) error {
	for name, key := range flagKeys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			return fmt.Errorf("no flag named %s", name)
		}
		if err := viper.BindPFlag(key, flag); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

// loadConfig decodes the merged flags, config file and environment into config, which holds the
// defaults on entry.
func loadConfig(config interface{}) error {
	return errors.WithStack(viper.Unmarshal(config, commonconfig.CustomHooks...))
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() context.Context {
	return app.CreateContextWithShutdown()
}

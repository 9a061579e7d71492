package client

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	commonconfig "github.com/G-Research/jobbench/internal/common/config"
)

const EnvPrefix = "JOBBENCH"

func AddServiceConnectionCommandlineArgs(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().String("service", ServiceBatch, "job service to submit to: batch or simulated")
	viper.BindPFlag("service", rootCmd.PersistentFlags().Lookup("service"))
	rootCmd.PersistentFlags().String("region", DefaultRegion, "AWS region of the job service")
	viper.BindPFlag("region", rootCmd.PersistentFlags().Lookup("region"))

	// The simulated service has no flags; registering defaults lets environment variables set it.
	viper.SetDefault("simulated.submitLatency", "0s")
	viper.SetDefault("simulated.submitFailureRate", 0.0)
	viper.SetDefault("simulated.statusDwell", "0s")
	viper.SetDefault("simulated.jobFailureRate", 0.0)
	viper.SetDefault("simulated.seed", 0)
}

// LoadCommandlineArgsFromConfigFile merges, in order, jobbench-defaults.yaml next to the executable
// and either cfgFile or $HOME/.jobbench.yaml into the global viper instance.
func LoadCommandlineArgsFromConfigFile(cfgFile string) error {
	exePath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("[LoadCommandlineArgsFromConfigFile] error finding executable path: %s", err)
	} else {
		exeDir := filepath.Dir(exePath)
		viper.SetConfigFile(exeDir + "/jobbench-defaults.yaml")
		err := viper.ReadInConfig()
		if err != nil {
			switch err.(type) {
			case viper.ConfigFileNotFoundError:
			case *os.PathError:
				// No default config is fine
			default:
				return fmt.Errorf("[LoadCommandlineArgsFromConfigFile] error reading config file %s: %s", viper.ConfigFileUsed(), err)
			}
		}
	}

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			return fmt.Errorf("[LoadCommandlineArgsFromConfigFile] error getting user home directory: %s", err)
		}

		viper.AddConfigPath(home)
		viper.SetConfigName(".jobbench")
	}

	// Environment variables such as JOBBENCH_JOBQUEUE or JOBBENCH_SIMULATED_SUBMITLATENCY override
	// config file values.
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	err = viper.MergeInConfig()

	if err != nil {
		switch err.(type) {
		case viper.ConfigFileNotFoundError:
			// This only occurs when looking for the default .jobbench file and it is not present
			// This is not an error as users don't have to specify it, so do nothing
		default:
			return fmt.Errorf("[LoadCommandlineArgsFromConfigFile] error reading config file %s: %s", viper.ConfigFileUsed(), err)
		}
	}
	return nil
}

func ExtractCommandlineServiceConnectionDetails() (*ServiceConnectionDetails, error) {
	details := &ServiceConnectionDetails{}
	if err := viper.Unmarshal(details, commonconfig.CustomHooks...); err != nil {
		return nil, err
	}
	return details, nil
}

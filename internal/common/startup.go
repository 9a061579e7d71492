package common

import (
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	commonconfig "github.com/G-Research/jobbench/internal/common/config"
)

// LoadConfig reads the optional config file at path into config, applying the custom decode hooks.
// Keys can be overridden with environment variables prefixed with envPrefix, e.g., JOBBENCH_JOBQUEUE.
func LoadConfig(v *viper.Viper, config interface{}, path string, envPrefix string) error {
	// Every key needs a default for AutomaticEnv to apply to keys missing from the config file.
	defaults := map[string]interface{}{}
	if err := mapstructure.Decode(config, &defaults); err != nil {
		return errors.WithStack(err)
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	if envPrefix != "" {
		v.SetEnvPrefix(envPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
		v.AutomaticEnv()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "error reading config file %s", path)
		}
		log.Infof("Using config file %s", v.ConfigFileUsed())
	}
	if err := v.Unmarshal(config, commonconfig.CustomHooks...); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// ConfigureCommandLineLogging sets up logging for the command-line tools.
func ConfigureCommandLineLogging() {
	log.SetFormatter(&log.TextFormatter{ForceColors: true, FullTimestamp: true})
	log.SetOutput(os.Stdout)
}

// ConfigureLogging sets up logging for long-running servers.
func ConfigureLogging() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true, DisableColors: true})
	log.SetOutput(os.Stdout)
}

// SetLogLevel parses level and applies it to the global logger.
func SetLogLevel(level string) error {
	if level == "" {
		return nil
	}
	parsed, err := log.ParseLevel(level)
	if err != nil {
		return errors.WithStack(err)
	}
	log.SetLevel(parsed)
	return nil
}

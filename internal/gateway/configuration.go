package gateway

import (
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/G-Research/jobbench/internal/common"
	commonconfig "github.com/G-Research/jobbench/internal/common/config"
)

const EnvPrefix = "TASKGATEWAY"

// Configuration of the task-launch gateway. Request fields override the cluster, task definition,
// subnets and security groups.
type Configuration struct {
	ListenAddress     string `validate:"required"`
	Region            string `validate:"required"`
	ClusterName       string `validate:"required"`
	TaskDefinitionArn string
	SubnetIds         []string
	SecurityGroupIds  []string
	ContainerName     string `validate:"required"`
	ExecutablePath    string `validate:"required"`
	AssignPublicIp    bool
	ShutdownTimeout   time.Duration `validate:"gt=0"`
}

// Environment variables read in addition to the TASKGATEWAY_ prefixed ones.
var environmentKeys = map[string]string{
	"clusterName":       "ECS_CLUSTER_NAME",
	"taskDefinitionArn": "TASK_DEFINITION_ARN",
	"subnetIds":         "SUBNET_IDS",
	"securityGroupIds":  "SECURITY_GROUP_IDS",
}

func DefaultConfiguration() Configuration {
	return Configuration{
		ListenAddress:   ":8080",
		Region:          "us-west-2",
		ClusterName:     "windows-countdown-cluster",
		ContainerName:   "windows-countdown-container",
		ExecutablePath:  `C:\app\countdown.exe`,
		AssignPublicIp:  true,
		ShutdownTimeout: 10 * time.Second,
	}
}

// LoadConfiguration reads the optional config file at path and the environment on top of the
// defaults, then validates the result.
func LoadConfiguration(v *viper.Viper, path string) (Configuration, error) {
	config := DefaultConfiguration()
	for key, env := range environmentKeys {
		if err := v.BindEnv(key, env); err != nil {
			return config, errors.WithStack(err)
		}
	}
	if err := common.LoadConfig(v, &config, path, EnvPrefix); err != nil {
		return config, err
	}
	if err := commonconfig.Validate(config); err != nil {
		return config, err
	}
	return config, nil
}

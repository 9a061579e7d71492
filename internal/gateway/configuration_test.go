package gateway

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/G-Research/jobbench/internal/common/jobbencherrors"
)

func TestLoadConfiguration_Defaults(t *testing.T) {
	config, err := LoadConfiguration(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfiguration(), config)
}

func TestLoadConfiguration_Environment(t *testing.T) {
	t.Setenv("ECS_CLUSTER_NAME", "test-cluster")
	t.Setenv("TASK_DEFINITION_ARN", "arn:aws:ecs:us-west-2:123456789012:task-definition/windows-countdown:3")
	t.Setenv("SUBNET_IDS", "subnet-1,subnet-2")
	t.Setenv("SECURITY_GROUP_IDS", "sg-1")
	t.Setenv("TASKGATEWAY_LISTENADDRESS", ":9090")

	config, err := LoadConfiguration(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "test-cluster", config.ClusterName)
	assert.Equal(t, "arn:aws:ecs:us-west-2:123456789012:task-definition/windows-countdown:3", config.TaskDefinitionArn)
	assert.Equal(t, []string{"subnet-1", "subnet-2"}, config.SubnetIds)
	assert.Equal(t, []string{"sg-1"}, config.SecurityGroupIds)
	assert.Equal(t, ":9090", config.ListenAddress)
}

func TestLoadConfiguration_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskgateway.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
containerName: ""
shutdownTimeout: 30s
subnetIds:
  - subnet-1
`), 0o644))

	config, err := LoadConfiguration(viper.New(), path)
	assert.Equal(t, jobbencherrors.ExitConfiguration, jobbencherrors.ExitCodeFromError(err))
	assert.Equal(t, []string{"subnet-1"}, config.SubnetIds)
}

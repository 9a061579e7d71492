package gateway

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	"github.com/aws/aws-sdk-go-v2/service/ecs/types"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/G-Research/jobbench/internal/common/jobbencherrors"
	"github.com/G-Research/jobbench/pkg/client/domain"
)

const defaultExeArg = "10"

// ECSAPI is the subset of the ECS client used by TaskService.
type ECSAPI interface {
	RunTask(ctx context.Context, params *ecs.RunTaskInput, optFns ...func(*ecs.Options)) (*ecs.RunTaskOutput, error)
	DescribeTasks(ctx context.Context, params *ecs.DescribeTasksInput, optFns ...func(*ecs.Options)) (*ecs.DescribeTasksOutput, error)
}

// TaskService launches the countdown executable as an ECS task and reports task status.
type TaskService struct {
	client ECSAPI
	config Configuration
}

func NewTaskService(client ECSAPI, config Configuration) *TaskService {
	return &TaskService{client: client, config: config}
}

// Launch runs one task. Missing request fields are filled in from the configuration; if they are
// still missing an *ErrInvalidArgument is returned.
func (s *TaskService) Launch(ctx context.Context, request *domain.LaunchTaskRequest) (*domain.LaunchTaskResponse, error) {
	exeArgs := request.ExeArgs
	if len(exeArgs) == 0 {
		exeArgs = []string{defaultExeArg}
	}
	clusterName := firstNonEmpty(request.ClusterName, s.config.ClusterName)
	taskDefinition := firstNonEmpty(request.TaskDefinition, s.config.TaskDefinitionArn)
	subnetIds := nonEmpty(request.SubnetIds, s.config.SubnetIds)
	securityGroupIds := nonEmpty(request.SecurityGroupIds, s.config.SecurityGroupIds)

	if taskDefinition == "" {
		return nil, &jobbencherrors.ErrInvalidArgument{Name: "task_definition", Message: "Task definition ARN is required"}
	}
	if len(subnetIds) == 0 {
		return nil, &jobbencherrors.ErrInvalidArgument{Name: "subnet_ids", Message: "Subnet IDs are required"}
	}
	if len(securityGroupIds) == 0 {
		return nil, &jobbencherrors.ErrInvalidArgument{Name: "security_group_ids", Message: "Security Group IDs are required"}
	}

	assignPublicIp := types.AssignPublicIpDisabled
	if s.config.AssignPublicIp {
		assignPublicIp = types.AssignPublicIpEnabled
	}
	output, err := s.client.RunTask(ctx, &ecs.RunTaskInput{
		Cluster:        aws.String(clusterName),
		TaskDefinition: aws.String(taskDefinition),
		Count:          aws.Int32(1),
		LaunchType:     types.LaunchTypeEc2,
		ClientToken:    aws.String(uuid.NewString()),
		NetworkConfiguration: &types.NetworkConfiguration{
			AwsvpcConfiguration: &types.AwsVpcConfiguration{
				Subnets:        subnetIds,
				SecurityGroups: securityGroupIds,
				AssignPublicIp: assignPublicIp,
			},
		},
		Overrides: &types.TaskOverride{
			ContainerOverrides: []types.ContainerOverride{{
				Name:    aws.String(s.config.ContainerName),
				Command: append([]string{s.config.ExecutablePath}, exeArgs...),
			}},
		},
		Tags: []types.Tag{
			{Key: aws.String("LaunchedBy"), Value: aws.String("TaskGateway")},
			{Key: aws.String("Purpose"), Value: aws.String("WindowsExeExecution")},
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to run task")
	}
	if len(output.Failures) > 0 {
		failure := output.Failures[0]
		return nil, errors.Errorf("failed to run task: %s %s", aws.ToString(failure.Reason), aws.ToString(failure.Detail))
	}
	if len(output.Tasks) == 0 {
		return nil, errors.New("failed to run task: no task was started")
	}

	taskArn := aws.ToString(output.Tasks[0].TaskArn)
	log.WithField("taskArn", taskArn).Infof("Started task in cluster %s with arguments %v", clusterName, exeArgs)
	return &domain.LaunchTaskResponse{
		Message: "ECS task started successfully",
		TaskArn: taskArn,
		TaskId:  TaskId(taskArn),
		ExeArgs: exeArgs,
	}, nil
}

// Describe returns the status of one task.
func (s *TaskService) Describe(ctx context.Context, request *domain.TaskStatusRequest) (*domain.TaskStatus, error) {
	if request.TaskArn == "" {
		return nil, &jobbencherrors.ErrInvalidArgument{Name: "task_arn", Message: "task_arn is required"}
	}
	output, err := s.client.DescribeTasks(ctx, &ecs.DescribeTasksInput{
		Cluster: aws.String(firstNonEmpty(request.ClusterName, s.config.ClusterName)),
		Tasks:   []string{request.TaskArn},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to describe task")
	}
	if len(output.Tasks) == 0 {
		return nil, &jobbencherrors.ErrNotFound{Type: "task", Value: request.TaskArn}
	}
	return taskStatus(request.TaskArn, output.Tasks[0]), nil
}

func taskStatus(taskArn string, task types.Task) *domain.TaskStatus {
	status := &domain.TaskStatus{
		TaskArn:       taskArn,
		LastStatus:    aws.ToString(task.LastStatus),
		DesiredStatus: aws.ToString(task.DesiredStatus),
		CreatedAt:     task.CreatedAt,
		StartedAt:     task.StartedAt,
		StoppedAt:     task.StoppedAt,
		StopCode:      string(task.StopCode),
		StoppedReason: aws.ToString(task.StoppedReason),
		Containers:    make([]*domain.ContainerStatus, 0, len(task.Containers)),
	}
	for _, container := range task.Containers {
		status.Containers = append(status.Containers, &domain.ContainerStatus{
			Name:       aws.ToString(container.Name),
			LastStatus: aws.ToString(container.LastStatus),
			ExitCode:   container.ExitCode,
			Reason:     aws.ToString(container.Reason),
		})
	}
	return status
}

// TaskId returns the last path segment of a task ARN.
func TaskId(taskArn string) string {
	return taskArn[strings.LastIndex(taskArn, "/")+1:]
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

func nonEmpty(preferred []string, fallback []string) []string {
	result := compact(preferred)
	if len(result) == 0 {
		result = compact(fallback)
	}
	return result
}

func compact(values []string) []string {
	var result []string
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			result = append(result, value)
		}
	}
	return result
}

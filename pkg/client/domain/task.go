package domain

import "time"

// Task statuses reported by the task-launch gateway.
const (
	TaskStatusProvisioning = "PROVISIONING"
	TaskStatusPending      = "PENDING"
	TaskStatusRunning      = "RUNNING"
	TaskStatusStopped      = "STOPPED"
)

// LaunchTaskRequest asks the gateway to run the countdown executable once.
// Empty fields fall back to the gateway's configuration.
type LaunchTaskRequest struct {
	ExeArgs          []string `json:"exe_args"`
	ClusterName      string   `json:"cluster_name,omitempty"`
	TaskDefinition   string   `json:"task_definition,omitempty"`
	SubnetIds        []string `json:"subnet_ids,omitempty"`
	SecurityGroupIds []string `json:"security_group_ids,omitempty"`
}

type LaunchTaskResponse struct {
	Message string   `json:"message"`
	TaskArn string   `json:"taskArn"`
	TaskId  string   `json:"taskId"`
	ExeArgs []string `json:"exe_args"`
}

type TaskStatusRequest struct {
	TaskArn     string `json:"task_arn"`
	ClusterName string `json:"cluster_name,omitempty"`
}

type TaskStatusResponse struct {
	TaskArn string      `json:"taskArn"`
	Status  *TaskStatus `json:"status"`
}

type TaskStatus struct {
	TaskArn       string             `json:"taskArn"`
	LastStatus    string             `json:"lastStatus"`
	DesiredStatus string             `json:"desiredStatus"`
	CreatedAt     *time.Time         `json:"createdAt,omitempty"`
	StartedAt     *time.Time         `json:"startedAt,omitempty"`
	StoppedAt     *time.Time         `json:"stoppedAt,omitempty"`
	StopCode      string             `json:"stopCode,omitempty"`
	StoppedReason string             `json:"stoppedReason,omitempty"`
	Containers    []*ContainerStatus `json:"containers"`
}

type ContainerStatus struct {
	Name       string `json:"name"`
	LastStatus string `json:"lastStatus"`
	ExitCode   *int32 `json:"exitCode,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// ErrorResponse is returned by the gateway on failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *TaskStatus) IsStopped() bool {
	return s.LastStatus == TaskStatusStopped
}

// ExitCode returns the exit code of the first container, if it has one.
func (s *TaskStatus) ExitCode() (int32, bool) {
	if len(s.Containers) == 0 || s.Containers[0].ExitCode == nil {
		return 0, false
	}
	return *s.Containers[0].ExitCode, true
}

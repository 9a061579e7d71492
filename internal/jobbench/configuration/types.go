package configuration

import (
	"time"

	"github.com/G-Research/jobbench/pkg/client/domain"
)

// SubmitConfig controls a single load-test batch.
type SubmitConfig struct {
	JobQueue      string `validate:"required"`
	JobDefinition string `validate:"required"`
	// Number of jobs in the batch.
	NumJobs int `validate:"gte=1"`
	// Upper bound on in-flight submit calls.
	MaxWorkers int `validate:"gte=1"`
	NamePrefix string
	Parameters domain.JobParameters
	// Path of the results file. If empty, a timestamped file is created in OutputDir.
	Output    string
	OutputDir string
	// Watch the submitted jobs until they all reach a terminal status.
	Monitor bool
	Watch   WatchConfig
	Metrics MetricsConfig
}

// WatchConfig controls the status monitor.
type WatchConfig struct {
	Interval time.Duration `validate:"gt=0"`
	// Optional JSON-lines file with one record per job that reached a terminal status.
	CompletionLog string
}

// MonitorConfig re-monitors the successful jobs of a saved batch.
type MonitorConfig struct {
	ResultsFile string `validate:"required"`
	Watch       WatchConfig
	Metrics     MetricsConfig
}

// AnalyzeConfig controls the statistical analysis of a results directory.
type AnalyzeConfig struct {
	ResultsDir string `validate:"required"`
	// Also write per-batch series data for plotting.
	Charts bool
}

// SweepConfig runs every batch of a load-test plan, then analyzes the results.
type SweepConfig struct {
	PlanFile  string `validate:"required"`
	OutputDir string `validate:"required"`
	// Concurrency used for runs that don't specify one.
	MaxWorkers int `validate:"gte=1"`
	NamePrefix string
	Monitor    bool
	Watch      WatchConfig
	Charts     bool
	Metrics    MetricsConfig
}

// HarnessConfig controls a single launch through the task-launch gateway.
type HarnessConfig struct {
	ExecuteUrl  string `validate:"required,url"`
	StatusUrl   string `validate:"required,url"`
	ExeArgs     []string
	ClusterName string
	// Return as soon as the task has been launched.
	NoWait         bool
	MaxWait        time.Duration `validate:"gt=0"`
	Interval       time.Duration `validate:"gt=0"`
	StatusAttempts uint          `validate:"gte=1"`
	JUnitFile      string
}

type MetricsConfig struct {
	// Pushgateway URL. Metrics aren't pushed if empty.
	PushUrl string `validate:"omitempty,url"`
}

func DefaultWatchConfig() WatchConfig {
	return WatchConfig{Interval: 10 * time.Second}
}

func DefaultSubmitConfig() SubmitConfig {
	return SubmitConfig{
		NumJobs:    5,
		MaxWorkers: 10,
		NamePrefix: "concurrent-test",
		Parameters: domain.DefaultJobParameters(),
		OutputDir:  ".",
		Watch:      DefaultWatchConfig(),
	}
}

func DefaultHarnessConfig() HarnessConfig {
	return HarnessConfig{
		ExeArgs:        []string{"10"},
		MaxWait:        300 * time.Second,
		Interval:       10 * time.Second,
		StatusAttempts: 3,
	}
}

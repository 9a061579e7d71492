package jobwatcher

import (
	"encoding/json"
	"io"
	"time"

	"github.com/pkg/errors"

	"github.com/G-Research/jobbench/pkg/client/domain"
)

type completionRecord struct {
	JobId        string           `json:"jobId"`
	JobName      string           `json:"jobName"`
	Status       domain.JobStatus `json:"status"`
	StatusReason string           `json:"statusReason,omitempty"`
	CompletedAt  time.Time        `json:"completedAt"`
}

// CompletionLog writes one JSON line per job reaching a terminal status.
type CompletionLog struct {
	encoder *json.Encoder
}

func NewCompletionLog(w io.Writer) *CompletionLog {
	return &CompletionLog{encoder: json.NewEncoder(w)}
}

func (l *CompletionLog) Record(info *JobInfo) error {
	err := l.encoder.Encode(completionRecord{
		JobId:        info.JobId,
		JobName:      info.JobName,
		Status:       info.Status,
		StatusReason: info.StatusReason,
		CompletedAt:  info.LastUpdate,
	})
	return errors.WithStack(err)
}

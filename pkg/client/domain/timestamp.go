package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Records written by the original launcher carry ISO 8601 timestamps without a zone,
// e.g., 2024-03-01T12:00:00.123456. They're read as local time.
const zonelessTimestampLayout = "2006-01-02T15:04:05.999999"

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(zonelessTimestampLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: expected RFC 3339 or %s", s, zonelessTimestampLayout)
	}
	return t, nil
}

func (o *JobSubmissionOutcome) UnmarshalJSON(data []byte) error {
	type outcome JobSubmissionOutcome
	aux := struct {
		*outcome
		SubmissionTime string `json:"submissionTime"`
	}{outcome: (*outcome)(o)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t, err := parseTimestamp(aux.SubmissionTime)
	if err != nil {
		return fmt.Errorf("job %s: submissionTime: %w", o.JobName, err)
	}
	o.SubmissionTime = t
	return nil
}

func (b *BatchResult) UnmarshalJSON(data []byte) error {
	type batchResult BatchResult
	aux := struct {
		*batchResult
		Timestamp string `json:"timestamp"`
	}{batchResult: (*batchResult)(b)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t, err := parseTimestamp(aux.Timestamp)
	if err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	b.Timestamp = t
	return nil
}

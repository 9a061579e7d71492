package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	tests := map[string]struct {
		input    string
		expected time.Time
		wantErr  bool
	}{
		"rfc3339": {
			input:    "2024-03-01T12:00:00Z",
			expected: testTime,
		},
		"rfc3339 with offset and fraction": {
			input:    "2024-03-01T13:00:00.5+01:00",
			expected: testTime.Add(500 * time.Millisecond),
		},
		"zoneless with microseconds": {
			input:    "2024-03-01T12:00:00.123456",
			expected: time.Date(2024, 3, 1, 12, 0, 0, 123456000, time.Local),
		},
		"zoneless without fraction": {
			input:    "2024-03-01T12:00:00",
			expected: time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local),
		},
		"empty": {
			input:    "",
			expected: time.Time{},
		},
		"garbage": {
			input:   "yesterday",
			wantErr: true,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			actual, err := parseTimestamp(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tc.expected.Equal(actual), "expected %s, got %s", tc.expected, actual)
		})
	}
}

func TestBatchResult_UnmarshalZonelessTimestamps(t *testing.T) {
	data := []byte(`{
  "timestamp": "2024-03-01T12:00:05.000001",
  "jobQueue": "q",
  "jobDefinition": "d",
  "totalJobs": 1,
  "successfulJobs": 1,
  "failedJobs": 0,
  "jobs": [{"jobId": "1", "jobName": "t-job001-1", "submissionTime": "2024-03-01T12:00:00.25", "submitDuration": 0.1, "status": "SUBMITTED"}]
}`)
	batch := &BatchResult{}
	require.NoError(t, json.Unmarshal(data, batch))
	assert.True(t, time.Date(2024, 3, 1, 12, 0, 5, 1000, time.Local).Equal(batch.Timestamp))
	assert.Equal(t, "q", batch.JobQueue)
	require.Len(t, batch.Jobs, 1)
	assert.True(t, time.Date(2024, 3, 1, 12, 0, 0, 250000000, time.Local).Equal(batch.Jobs[0].SubmissionTime))
	assert.Equal(t, "1", batch.Jobs[0].JobId)
	assert.NoError(t, batch.Validate())
}

func TestBatchResult_MarshalWritesRFC3339(t *testing.T) {
	data, err := json.Marshal(NewBatchResult("", testTime, "q", "d", []*JobSubmissionOutcome{submitted(1, 0.1)}))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"timestamp":"2024-03-01T12:00:00Z"`)
	assert.Contains(t, string(data), `"submissionTime":"2024-03-01T12:00:00Z"`)
}

func TestJobSubmissionOutcome_UnmarshalInvalidTimestamp(t *testing.T) {
	outcome := &JobSubmissionOutcome{}
	err := json.Unmarshal([]byte(`{"jobName": "t-job001-1", "submissionTime": "soon"}`), outcome)
	assert.Error(t, err)
}

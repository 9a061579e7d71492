package resultstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/G-Research/jobbench/internal/common/jobbencherrors"
	"github.com/G-Research/jobbench/pkg/client/domain"
)

var testTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func testBatch() *domain.BatchResult {
	outcomes := []*domain.JobSubmissionOutcome{
		{
			JobId:            "7f1b0c2e-0001",
			JobName:          "concurrent-test-job002-1709294400",
			SubmissionTime:   testTime.Add(123456789 * time.Nanosecond),
			SubmitDuration:   0.2718281828459045,
			CountdownSeconds: 30,
			Status:           domain.StatusSubmitted,
		},
		{
			JobName:          "concurrent-test-job001-1709294400",
			SubmissionTime:   testTime.Add(time.Millisecond),
			SubmitDuration:   1.0000000000000002,
			CountdownSeconds: 30,
			Status:           domain.StatusFailedToSubmit,
			Error:            "TooManyRequestsException: rate exceeded",
		},
	}
	batch := domain.NewBatchResult("01hqz3d8rq", testTime, "windows-queue", "countdown:3", outcomes)
	batch.MaxConcurrency = 10
	batch.ElapsedSeconds = 1.3
	return batch
}

func TestSaveThenLoadAll_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	original := testBatch()
	require.NoError(t, Save(original, filepath.Join(dir, DefaultFileName(original))))

	loaded, err := LoadAll(dir)
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.NumWarnings())
	require.Len(t, loaded.Batches, 1)
	assert.Equal(t, "batch-test-results-1709294400", loaded.Batches[0].Label)
	if diff := cmp.Diff(original, loaded.Batches[0].Result); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSave_Format(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, Save(testBatch(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "\n  \"timestamp\": \"2024-03-01T12:00:00Z\",\n")
	assert.Contains(t, content, "\"jobQueue\": \"windows-queue\"")
	assert.Contains(t, content, "\"jobDefinition\": \"countdown:3\"")
	assert.Contains(t, content, "\"totalJobs\": 2")
	assert.Contains(t, content, "\"status\": \"FAILED_TO_SUBMIT\"")
}

func TestSave_NeverOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, Save(testBatch(), path))
	assert.Error(t, Save(testBatch(), path))
}

func TestSave_RejectsInvalidBatch(t *testing.T) {
	batch := testBatch()
	batch.FailedJobs = 0
	path := filepath.Join(t.TempDir(), "results.json")
	assert.Error(t, Save(batch, path))
	assert.NoFileExists(t, path)
}

func TestLoadAll_SkipsMalformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Save(testBatch(), filepath.Join(dir, "b-good.json")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a-malformed.json"), []byte(`{"timestamp": "not`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "performance-report.md"), []byte("# report"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.json"), 0o755))

	loaded, err := LoadAll(dir)
	require.NoError(t, err)
	require.Len(t, loaded.Batches, 1)
	assert.Equal(t, "b-good", loaded.Batches[0].Label)
	require.Equal(t, 1, loaded.NumWarnings())

	var parseErr *jobbencherrors.ErrRecordParse
	require.True(t, errors.As(loaded.Warnings.Errors[0], &parseErr))
	assert.Equal(t, filepath.Join(dir, "a-malformed.json"), parseErr.Path)
}

func TestLoadAll_SkipsRecordsBreakingCounts(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.json"), []byte(`{}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "counts.json"), []byte(`{
  "timestamp": "2024-03-01T12:00:00Z",
  "jobQueue": "q",
  "jobDefinition": "d",
  "totalJobs": 2,
  "successfulJobs": 2,
  "failedJobs": 0,
  "jobs": [{"jobId": "1", "jobName": "a-job001-1", "submissionTime": "2024-03-01T12:00:00Z", "submitDuration": 0.1, "status": "SUBMITTED"}]
}`), 0o644))

	loaded, err := LoadAll(dir)
	require.NoError(t, err)
	assert.Empty(t, loaded.Batches)
	assert.Equal(t, 2, loaded.NumWarnings())
}

func TestLoadAll_LauncherRecordWithZonelessTimestamps(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "batch-test-results-1709294400.json"), []byte(`{
  "timestamp": "2024-03-01T12:00:03.456789",
  "jobQueue": "windows-queue",
  "jobDefinition": "countdown:3",
  "totalJobs": 2,
  "successfulJobs": 1,
  "failedJobs": 1,
  "jobs": [
    {
      "jobId": "7f1b0c2e-0001",
      "jobName": "concurrent-test-job001-1709294400",
      "submissionTime": "2024-03-01T12:00:00.123456",
      "submitDuration": 0.25,
      "countdownSeconds": 30,
      "status": "SUBMITTED"
    },
    {
      "jobName": "concurrent-test-job002-1709294400",
      "error": "TooManyRequestsException: rate exceeded",
      "submissionTime": "2024-03-01T12:00:01",
      "status": "FAILED_TO_SUBMIT"
    }
  ]
}`), 0o644))

	loaded, err := LoadAll(dir)
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.NumWarnings())
	require.Len(t, loaded.Batches, 1)

	batch := loaded.Batches[0].Result
	assert.True(t, time.Date(2024, 3, 1, 12, 0, 3, 456789000, time.Local).Equal(batch.Timestamp))
	assert.Equal(t, 1, batch.SuccessfulJobs)
	assert.Equal(t, []float64{0.25}, batch.SubmitDurations())
	require.Len(t, batch.Jobs, 2)
	assert.True(t, time.Date(2024, 3, 1, 12, 0, 0, 123456000, time.Local).Equal(batch.Jobs[0].SubmissionTime))
	assert.Equal(t, domain.StatusFailedToSubmit, batch.Jobs[1].Status)
	assert.Zero(t, batch.Jobs[1].SubmitDuration)
	assert.True(t, time.Date(2024, 3, 1, 12, 0, 1, 0, time.Local).Equal(batch.Jobs[1].SubmissionTime))
}

func TestLoadAll_SortedByFileName(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"c.json", "a.json", "b.json"} {
		require.NoError(t, Save(testBatch(), filepath.Join(dir, name)))
	}
	loaded, err := LoadAll(dir)
	require.NoError(t, err)
	var labels []string
	for _, batch := range loaded.Batches {
		labels = append(labels, batch.Label)
	}
	assert.Equal(t, []string{"a", "b", "c"}, labels)
}

func TestLoadAll_MissingDirectory(t *testing.T) {
	_, err := LoadAll(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/G-Research/jobbench/pkg/client/domain"
)

func TestRecordSubmission(t *testing.T) {
	m := NewDefault()
	m.RecordSubmission(200*time.Millisecond, true)
	m.RecordSubmission(300*time.Millisecond, true)
	m.RecordSubmission(time.Second, false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.submissions.WithLabelValues(outcomeSubmitted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.submissions.WithLabelValues(outcomeFailed)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.submitDuration))
}

func TestRecordPollAndStatus(t *testing.T) {
	m := NewDefault()
	m.RecordPoll(nil)
	m.RecordPoll(assert.AnError)
	m.RecordStatusSummary(map[domain.JobStatus]int{domain.Running: 3, domain.Succeeded: 2})
	m.RecordTerminal(domain.Succeeded)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.pollCycles))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.pollErrors))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.jobsByStatus.WithLabelValues("RUNNING")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.jobsByStatus.WithLabelValues("PENDING")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.terminalJobs.WithLabelValues("SUCCEEDED")))
}

func TestPush(t *testing.T) {
	var path, body string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	m := NewDefault()
	m.RecordBatch(3 * time.Second)
	require.NoError(t, m.Push(context.Background(), server.URL, "01hq"))

	assert.Equal(t, "/metrics/job/jobbench/run_id/01hq", path)
	assert.NotEmpty(t, body)
}

func TestPush_Failure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	assert.Error(t, NewDefault().Push(context.Background(), server.URL, "run"))
}

package benchmark

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/G-Research/jobbench/internal/jobbench/resultstore"
	"github.com/G-Research/jobbench/pkg/client/domain"
)

var testTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func loadedBatch(label string, durations []float64, failed int) *resultstore.LoadedBatch {
	var outcomes []*domain.JobSubmissionOutcome
	for i, duration := range durations {
		name := domain.JobName(label, i+1, testTime)
		outcomes = append(outcomes, &domain.JobSubmissionOutcome{
			JobId: "id-" + name, JobName: name, SubmissionTime: testTime, SubmitDuration: duration, Status: domain.StatusSubmitted,
		})
	}
	for i := 0; i < failed; i++ {
		name := domain.JobName(label, len(durations)+i+1, testTime)
		outcomes = append(outcomes, &domain.JobSubmissionOutcome{
			JobName: name, SubmissionTime: testTime, SubmitDuration: 5, Status: domain.StatusFailedToSubmit, Error: "throttled",
		})
	}
	return &resultstore.LoadedBatch{
		Label:  label,
		Path:   label + ".json",
		Result: domain.NewBatchResult("", testTime, "queue", "definition", outcomes),
	}
}

func repeat(value float64, n int) []float64 {
	result := make([]float64, n)
	for i := range result {
		result[i] = value
	}
	return result
}

func TestAnalyze_DegradedTrend(t *testing.T) {
	analysis := Analyze([]*resultstore.LoadedBatch{
		loadedBatch("A", repeat(0.1, 5), 0),
		loadedBatch("B", repeat(0.3, 50), 0),
	})

	a, ok := analysis.Get("A")
	require.True(t, ok)
	b, ok := analysis.Get("B")
	require.True(t, ok)
	assert.InDelta(t, 0.1, a.AvgSubmitTime, 1e-12)
	assert.InDelta(t, 0.3, b.AvgSubmitTime, 1e-12)
	assert.Equal(t, 0.0, a.StdSubmitTime)

	trend := analysis.Trend()
	require.NotNil(t, trend)
	assert.Same(t, a, trend.Smallest)
	assert.Same(t, b, trend.Largest)
	assert.InDelta(t, 3.0, trend.Ratio, 1e-9)
	assert.Equal(t, Degraded, trend.Classification)
}

func TestAnalyze_ExcludesBatchesWithoutSuccesses(t *testing.T) {
	analysis := Analyze([]*resultstore.LoadedBatch{
		loadedBatch("ok", []float64{0.2, 0.4}, 2),
		loadedBatch("all-failed", nil, 3),
	})

	require.Len(t, analysis.Batches, 1)
	_, ok := analysis.Get("all-failed")
	assert.False(t, ok)
	assert.Equal(t, []string{"all-failed"}, analysis.Excluded)

	batch := analysis.Batches[0]
	assert.Equal(t, 4, batch.TotalJobs)
	assert.Equal(t, 2, batch.SuccessfulJobs)
	assert.Equal(t, 2, batch.FailedJobs)
	assert.InDelta(t, 50.0, batch.SuccessRate, 1e-12)
	assert.InDelta(t, 0.3, batch.AvgSubmitTime, 1e-12)
	assert.Equal(t, 0.2, batch.MinSubmitTime)
	assert.Equal(t, 0.4, batch.MaxSubmitTime)
	assert.Nil(t, analysis.Trend())
}

func TestClassify(t *testing.T) {
	tests := []struct {
		ratio    float64
		expected TrendClassification
	}{
		{0.5, Nominal},
		{1.0, Nominal},
		{1.2, Nominal},
		{1.2000001, Borderline},
		{1.5, Borderline},
		{1.5000001, Degraded},
		{10, Degraded},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprint(tc.ratio), func(t *testing.T) {
			assert.Equal(t, tc.expected, Classify(tc.ratio))
		})
	}
}

func TestTrend_TiesGoToFirstOccurrence(t *testing.T) {
	analysis := Analyze([]*resultstore.LoadedBatch{
		loadedBatch("small-1", repeat(0.1, 5), 0),
		loadedBatch("large-1", repeat(0.13, 20), 0),
		loadedBatch("small-2", repeat(0.5, 5), 0),
		loadedBatch("large-2", repeat(9, 20), 0),
	})
	trend := analysis.Trend()
	require.NotNil(t, trend)
	assert.Equal(t, "small-1", trend.Smallest.Label)
	assert.Equal(t, "large-1", trend.Largest.Label)
	assert.Equal(t, Borderline, trend.Classification)
}

func TestTrend_ZeroAverage(t *testing.T) {
	analysis := Analyze([]*resultstore.LoadedBatch{
		loadedBatch("instant", repeat(0, 5), 0),
		loadedBatch("slow", repeat(0.3, 10), 0),
	})
	trend := analysis.Trend()
	require.NotNil(t, trend)
	assert.True(t, trend.Undefined)
	assert.Contains(t, trend.Description(), "instant")
}

func TestWriteReport(t *testing.T) {
	analysis := Analyze([]*resultstore.LoadedBatch{
		loadedBatch("A", repeat(0.1, 5), 0),
		loadedBatch("B", repeat(0.3, 50), 0),
		loadedBatch("C", nil, 1),
	})
	var out bytes.Buffer
	require.NoError(t, analysis.WriteReport(&out, testTime))
	report := out.String()

	summary := strings.Index(report, "## Summary")
	details := strings.Index(report, "## Batch Details")
	trend := strings.Index(report, "## Performance Trend")
	require.True(t, summary >= 0 && details > summary && trend > details, report)
	assert.Less(t, strings.Index(report, "### A"), strings.Index(report, "### B"))
	assert.Contains(t, report, "Generated: 2024-03-01T12:00:00Z")
	assert.Contains(t, report, "| Batch ")
	assert.Contains(t, report, "Batch C was excluded")
	assert.Contains(t, report, "- Ratio: 3.00x")
	assert.Contains(t, report, "**degraded**")
}

func TestWriteReport_NoTrendForSingleBatch(t *testing.T) {
	analysis := Analyze([]*resultstore.LoadedBatch{loadedBatch("A", repeat(0.1, 5), 0)})
	var out bytes.Buffer
	require.NoError(t, analysis.WriteReport(&out, testTime))
	assert.NotContains(t, out.String(), "## Performance Trend")
	assert.Contains(t, out.String(), "### A")
}

func TestSaveReportAndCharts(t *testing.T) {
	dir := t.TempDir()
	analysis := Analyze([]*resultstore.LoadedBatch{
		loadedBatch("A", repeat(0.1, 5), 0),
		loadedBatch("B", repeat(0.2, 10), 0),
	})
	path, err := analysis.SaveReport(dir, testTime)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ReportFileName), path)
	assert.FileExists(t, path)

	RenderCharts(CSVSeriesRenderer{}, analysis, dir)
	data, err := os.ReadFile(filepath.Join(dir, ChartDataFileName))
	require.NoError(t, err)
	assert.Equal(t,
		"batch,totalJobs,avgSubmitTime,successRate,throughput\nA,5,0.100000,100.00,50.0000\nB,10,0.200000,100.00,50.0000\n",
		string(data))
}

func TestCSVSeriesRenderer_ReportsWriteErrors(t *testing.T) {
	analysis := Analyze([]*resultstore.LoadedBatch{loadedBatch("A", repeat(0.1, 5), 0)})
	err := CSVSeriesRenderer{}.Render(analysis, filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	dir := t.TempDir()
	require.NoError(t, CSVSeriesRenderer{}.Render(analysis, dir))
	data, err := os.ReadFile(filepath.Join(dir, ChartDataFileName))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), "A,5,0.100000,100.00,50.0000\n"))
}

type failingRenderer struct{}

func (failingRenderer) Render(*Analysis, string) error {
	return fmt.Errorf("no display")
}

func TestRenderCharts_FailureIsNotFatal(t *testing.T) {
	analysis := Analyze([]*resultstore.LoadedBatch{loadedBatch("A", repeat(0.1, 5), 0)})
	RenderCharts(failingRenderer{}, analysis, t.TempDir())
	RenderCharts(nil, analysis, t.TempDir())
}

func TestPrint(t *testing.T) {
	analysis := Analyze([]*resultstore.LoadedBatch{
		loadedBatch("A", repeat(0.1, 5), 0),
		loadedBatch("B", repeat(0.3, 50), 0),
	})
	var out bytes.Buffer
	analysis.Print(&out)
	assert.Contains(t, out.String(), "Analysed 2 batches")
	assert.Contains(t, out.String(), "Trend: Submit time grows significantly")
}

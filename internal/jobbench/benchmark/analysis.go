package benchmark

import (
	log "github.com/sirupsen/logrus"

	"github.com/G-Research/jobbench/internal/jobbench/resultstore"
)

// BatchAnalysis holds the statistics of one batch, computed from the submit durations of its
// successful jobs.
type BatchAnalysis struct {
	Label            string  `json:"label"`
	TotalJobs        int     `json:"totalJobs"`
	SuccessfulJobs   int     `json:"successfulJobs"`
	FailedJobs       int     `json:"failedJobs"`
	SuccessRate      float64 `json:"successRate"`
	AvgSubmitTime    float64 `json:"avgSubmitTime"`
	MedianSubmitTime float64 `json:"medianSubmitTime"`
	MaxSubmitTime    float64 `json:"maxSubmitTime"`
	MinSubmitTime    float64 `json:"minSubmitTime"`
	StdSubmitTime    float64 `json:"stdSubmitTime"`
}

// Throughput is the number of jobs submitted per second of average submit time.
func (a *BatchAnalysis) Throughput() float64 {
	if a.AvgSubmitTime == 0 {
		return 0
	}
	return float64(a.TotalJobs) / a.AvgSubmitTime
}

// Analysis holds the analysed batches in input order.
type Analysis struct {
	Batches []*BatchAnalysis
	// Labels of batches left out because none of their jobs were submitted.
	Excluded []string
	byLabel  map[string]*BatchAnalysis
}

func (a *Analysis) Get(label string) (*BatchAnalysis, bool) {
	analysis, ok := a.byLabel[label]
	return analysis, ok
}

// Trend compares the smallest and largest analysed batches; nil with fewer than two batches.
func (a *Analysis) Trend() *Trend {
	return classifyTrend(a.Batches)
}

// Analyze computes statistics for each batch. Batches without a single successful job are excluded,
// never given default values.
func Analyze(batches []*resultstore.LoadedBatch) *Analysis {
	analysis := &Analysis{byLabel: make(map[string]*BatchAnalysis, len(batches))}
	for _, batch := range batches {
		durations := batch.Result.SubmitDurations()
		if len(durations) == 0 {
			log.WithField("file", batch.Path).Warnf("Excluding batch %s from analysis: no jobs were submitted successfully", batch.Label)
			analysis.Excluded = append(analysis.Excluded, batch.Label)
			continue
		}
		stats := statistics(durations)
		result := batch.Result
		batchAnalysis := &BatchAnalysis{
			Label:            batch.Label,
			TotalJobs:        result.TotalJobs,
			SuccessfulJobs:   len(durations),
			FailedJobs:       result.FailedJobs,
			SuccessRate:      float64(len(durations)) / float64(result.TotalJobs) * 100,
			AvgSubmitTime:    stats.Average,
			MedianSubmitTime: stats.Median,
			MaxSubmitTime:    stats.Max,
			MinSubmitTime:    stats.Min,
			StdSubmitTime:    stats.StandardDeviation,
		}
		analysis.Batches = append(analysis.Batches, batchAnalysis)
		analysis.byLabel[batch.Label] = batchAnalysis
	}
	return analysis
}

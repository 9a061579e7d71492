package benchmark

import "fmt"

type TrendClassification string

const (
	Nominal    TrendClassification = "nominal"
	Borderline TrendClassification = "borderline"
	Degraded   TrendClassification = "degraded"
)

const (
	degradedRatio   = 1.5
	borderlineRatio = 1.2
)

// Trend is a two-point comparison of the average submit time of the smallest and largest batches.
type Trend struct {
	Smallest       *BatchAnalysis
	Largest        *BatchAnalysis
	Ratio          float64
	Classification TrendClassification
	// Set instead of Ratio when the smallest batch has a zero average.
	Undefined bool
}

func (t *Trend) Description() string {
	if t.Undefined {
		return fmt.Sprintf("Cannot compare batches: batch %s has an average submit time of zero.", t.Smallest.Label)
	}
	switch t.Classification {
	case Degraded:
		return fmt.Sprintf("Submit time grows significantly with batch size (%.2fx); the service degrades under load.", t.Ratio)
	case Borderline:
		return fmt.Sprintf("Submit time grows moderately with batch size (%.2fx); monitor this under heavier load.", t.Ratio)
	default:
		return fmt.Sprintf("Submit time stays stable as batch size grows (%.2fx).", t.Ratio)
	}
}

// Classify maps a ratio of average submit times onto a classification.
func Classify(ratio float64) TrendClassification {
	switch {
	case ratio > degradedRatio:
		return Degraded
	case ratio > borderlineRatio:
		return Borderline
	default:
		return Nominal
	}
}

// classifyTrend picks the batches with the fewest and most jobs, the first one winning ties.
func classifyTrend(batches []*BatchAnalysis) *Trend {
	if len(batches) < 2 {
		return nil
	}
	smallest, largest := batches[0], batches[0]
	for _, batch := range batches[1:] {
		if batch.TotalJobs < smallest.TotalJobs {
			smallest = batch
		}
		if batch.TotalJobs > largest.TotalJobs {
			largest = batch
		}
	}
	trend := &Trend{Smallest: smallest, Largest: largest}
	if smallest.AvgSubmitTime == 0 {
		trend.Undefined = true
		return trend
	}
	trend.Ratio = largest.AvgSubmitTime / smallest.AvgSubmitTime
	trend.Classification = Classify(trend.Ratio)
	return trend
}

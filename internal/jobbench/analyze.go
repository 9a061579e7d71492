package jobbench

import (
	log "github.com/sirupsen/logrus"

	"github.com/G-Research/jobbench/internal/jobbench/benchmark"
	"github.com/G-Research/jobbench/internal/jobbench/configuration"
	"github.com/G-Research/jobbench/internal/jobbench/resultstore"
)

// Analyze computes submit-time statistics for every batch in the results directory, prints a
// summary and writes the markdown report into the same directory.
func (a *App) Analyze(config configuration.AnalyzeConfig) (*benchmark.Analysis, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	loaded, err := resultstore.LoadAll(config.ResultsDir)
	if err != nil {
		return nil, err
	}
	if loaded.NumWarnings() > 0 {
		log.Warnf("Skipped %d unreadable result files", loaded.NumWarnings())
	}

	analysis := benchmark.Analyze(loaded.Batches)
	analysis.Print(a.Out)

	if _, err := analysis.SaveReport(config.ResultsDir, a.Clock.Now()); err != nil {
		return analysis, err
	}

	if config.Charts {
		benchmark.RenderCharts(benchmark.CSVSeriesRenderer{}, analysis, config.ResultsDir)
	}
	return analysis, nil
}

package benchmark

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const ChartDataFileName = "performance-series.csv"

// ChartRenderer draws the analysis. Rendering is optional: failures are logged by RenderCharts and
// never fail the analysis.
type ChartRenderer interface {
	Render(analysis *Analysis, dir string) error
}

// RenderCharts runs renderer if there is one.
func RenderCharts(renderer ChartRenderer, analysis *Analysis, dir string) {
	if renderer == nil {
		log.Debug("No chart renderer configured, skipping charts")
		return
	}
	if len(analysis.Batches) == 0 {
		log.Info("Nothing to chart")
		return
	}
	if err := renderer.Render(analysis, dir); err != nil {
		log.WithError(err).Warn("Could not render charts, continuing without them")
	}
}

// CSVSeriesRenderer writes the series behind the four standard panels (jobs against average time,
// jobs against success rate, per-batch average time, throughput) to a CSV file for plotting elsewhere.
type CSVSeriesRenderer struct{}

func (CSVSeriesRenderer) Render(analysis *Analysis, dir string) error {
	path := filepath.Join(dir, ChartDataFileName)
	file, err := os.Create(path)
	if err != nil {
		return errors.WithStack(err)
	}

	w := csv.NewWriter(file)
	rows := [][]string{{"batch", "totalJobs", "avgSubmitTime", "successRate", "throughput"}}
	for _, batch := range analysis.Batches {
		rows = append(rows, []string{
			batch.Label,
			fmt.Sprint(batch.TotalJobs),
			fmt.Sprintf("%.6f", batch.AvgSubmitTime),
			fmt.Sprintf("%.2f", batch.SuccessRate),
			fmt.Sprintf("%.4f", batch.Throughput()),
		})
	}
	err = w.WriteAll(rows)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return errors.Wrapf(err, "could not write chart data %s", path)
	}
	log.WithField("file", path).Info("Saved chart data")
	return nil
}

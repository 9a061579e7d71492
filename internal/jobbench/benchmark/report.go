package benchmark

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const ReportFileName = "performance-report.md"

var summaryHeader = []string{
	"Batch", "Total Jobs", "Successful", "Failed", "Success Rate",
	"Avg Time (s)", "Median (s)", "Min (s)", "Max (s)", "Std Dev (s)",
}

// WriteReport renders the analysis as markdown: a summary table, a detail block per batch and, when
// at least two batches were analysed, the performance trend.
func (a *Analysis) WriteReport(out io.Writer, generatedAt time.Time) error {
	w := &errWriter{w: out}
	w.printf("# Batch Submission Performance Report\n\n")
	w.printf("Generated: %s\n\n", generatedAt.Format(time.RFC3339))

	w.printf("## Summary\n\n")
	if len(a.Batches) == 0 {
		w.printf("No batch had any successfully submitted jobs.\n\n")
	} else {
		table := tablewriter.NewWriter(w)
		table.SetHeader(summaryHeader)
		table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
		table.SetCenterSeparator("|")
		table.SetAutoFormatHeaders(false)
		table.SetAutoWrapText(false)
		for _, batch := range a.Batches {
			table.Append([]string{
				batch.Label,
				fmt.Sprint(batch.TotalJobs),
				fmt.Sprint(batch.SuccessfulJobs),
				fmt.Sprint(batch.FailedJobs),
				fmt.Sprintf("%.1f%%", batch.SuccessRate),
				fmt.Sprintf("%.3f", batch.AvgSubmitTime),
				fmt.Sprintf("%.3f", batch.MedianSubmitTime),
				fmt.Sprintf("%.3f", batch.MinSubmitTime),
				fmt.Sprintf("%.3f", batch.MaxSubmitTime),
				fmt.Sprintf("%.3f", batch.StdSubmitTime),
			})
		}
		table.Render()
		w.printf("\n")
	}
	for _, label := range a.Excluded {
		w.printf("Batch %s was excluded: no jobs were submitted successfully.\n\n", label)
	}

	w.printf("## Batch Details\n\n")
	for _, batch := range a.Batches {
		w.printf("### %s\n\n", batch.Label)
		w.printf("- Total jobs: %d\n", batch.TotalJobs)
		w.printf("- Successful submissions: %d\n", batch.SuccessfulJobs)
		w.printf("- Failed submissions: %d\n", batch.FailedJobs)
		w.printf("- Success rate: %.1f%%\n", batch.SuccessRate)
		w.printf("- Average submit time: %.3fs\n", batch.AvgSubmitTime)
		w.printf("- Median submit time: %.3fs\n", batch.MedianSubmitTime)
		w.printf("- Submit time range: %.3fs to %.3fs\n", batch.MinSubmitTime, batch.MaxSubmitTime)
		w.printf("- Standard deviation: %.3fs\n", batch.StdSubmitTime)
		w.printf("- Throughput: %.2f jobs/s\n\n", batch.Throughput())
	}

	if trend := a.Trend(); trend != nil {
		w.printf("## Performance Trend\n\n")
		w.printf("- Smallest batch: %s (%d jobs), average submit time %.3fs\n",
			trend.Smallest.Label, trend.Smallest.TotalJobs, trend.Smallest.AvgSubmitTime)
		w.printf("- Largest batch: %s (%d jobs), average submit time %.3fs\n",
			trend.Largest.Label, trend.Largest.TotalJobs, trend.Largest.AvgSubmitTime)
		if !trend.Undefined {
			w.printf("- Ratio: %.2fx\n", trend.Ratio)
			w.printf("- Classification: **%s**\n", trend.Classification)
		}
		w.printf("\n%s\n", trend.Description())
	}
	return w.err
}

// SaveReport writes the report to ReportFileName in dir and returns its path.
func (a *Analysis) SaveReport(dir string, generatedAt time.Time) (string, error) {
	path := filepath.Join(dir, ReportFileName)
	file, err := os.Create(path)
	if err != nil {
		return "", errors.WithStack(err)
	}
	err = a.WriteReport(file, generatedAt)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", errors.Wrapf(err, "could not write report %s", path)
	}
	log.WithField("file", path).Info("Saved performance report")
	return path, nil
}

// errWriter remembers the first write error so that rendering code doesn't have to check each one.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

func (e *errWriter) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(e, format, args...)
}

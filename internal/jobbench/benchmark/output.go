package benchmark

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

// Print writes a short console summary of the analysis.
func (a *Analysis) Print(out io.Writer) {
	_, _ = fmt.Fprintf(out, "\nAnalysed %d batches", len(a.Batches))
	if len(a.Excluded) > 0 {
		_, _ = fmt.Fprintf(out, " (%d excluded)", len(a.Excluded))
	}
	_, _ = fmt.Fprintln(out)
	if len(a.Batches) > 0 {
		table := tablewriter.NewWriter(out)
		table.SetHeader([]string{"Batch", "Jobs", "Success", "Avg (s)", "Median (s)", "Std Dev (s)"})
		for _, batch := range a.Batches {
			table.Append([]string{
				batch.Label,
				fmt.Sprint(batch.TotalJobs),
				fmt.Sprintf("%.1f%%", batch.SuccessRate),
				fmt.Sprintf("%.3f", batch.AvgSubmitTime),
				fmt.Sprintf("%.3f", batch.MedianSubmitTime),
				fmt.Sprintf("%.3f", batch.StdSubmitTime),
			})
		}
		table.Render()
	}
	if trend := a.Trend(); trend != nil {
		_, _ = fmt.Fprintf(out, "Trend: %s\n", trend.Description())
	}
}

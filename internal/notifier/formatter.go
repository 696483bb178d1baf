package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"IndexHarvester/internal/model"
)

// maxListedFailures caps the failure lines in one message.
const maxListedFailures = 10

// FormatRunReport formats a pipeline run summary as a Telegram HTML message.
func FormatRunReport(r *model.RunReport, runErr error) string {
	var b strings.Builder

	if runErr != nil {
		b.WriteString(fmt.Sprintf("❌ <b>IndexHarvester run failed</b> | %s\n\n", r.StartedAt.Format("2006-01-02 15:04")))
		b.WriteString(html.EscapeString(runErr.Error()))
		b.WriteString("\n")
	} else {
		b.WriteString(fmt.Sprintf("📈 <b>IndexHarvester</b> | %s\n\n", r.StartedAt.Format("2006-01-02 15:04")))
		b.WriteString(fmt.Sprintf("Tickers: %d/%d fetched\n", len(r.Fetched), r.Listed))
		b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
		b.WriteString(fmt.Sprintf("Output: %s (%s)\n", html.EscapeString(r.OutputPath), humanize.Bytes(uint64(r.OutputSize))))
	}
	b.WriteString(fmt.Sprintf("Duration: %s\n", r.Duration().Round(time.Second)))

	if len(r.Failures) > 0 {
		b.WriteString(fmt.Sprintf("\n⚠️ <b>Failed (%d):</b>\n", len(r.Failures)))
		for i, f := range r.Failures {
			if i == maxListedFailures {
				b.WriteString(fmt.Sprintf("  … and %d more\n", len(r.Failures)-maxListedFailures))
				break
			}
			b.WriteString(fmt.Sprintf("  %s: %s\n", f.Ticker, html.EscapeString(f.Err.Error())))
		}
	}
	return b.String()
}

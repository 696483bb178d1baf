// Package pipeline runs list, fetch, align and write as one sequential job.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"IndexHarvester/internal/aligner"
	"IndexHarvester/internal/collector"
	"IndexHarvester/internal/model"
	"IndexHarvester/internal/writer"
)

// ErrNothingFetched is returned when every ticker failed; no file is written.
var ErrNothingFetched = errors.New("no ticker could be fetched")

// TickerSource lists the tickers to download.
type TickerSource interface {
	List(ctx context.Context) ([]model.Ticker, error)
}

// Pipeline wires the ticker source, the collector and the output writer.
type Pipeline struct {
	Source     TickerSource
	Collector  *collector.Collector
	Writer     writer.Writer
	OutputPath string
}

// New creates a Pipeline writing to outputPath.
func New(source TickerSource, col *collector.Collector, w writer.Writer, outputPath string) *Pipeline {
	return &Pipeline{Source: source, Collector: col, Writer: w, OutputPath: outputPath}
}

// Run executes one full harvest. A listing failure aborts the run; per-ticker
// failures only show up in the report.
func (p *Pipeline) Run(ctx context.Context) (*model.RunReport, error) {
	report := &model.RunReport{StartedAt: time.Now(), OutputPath: p.OutputPath}
	defer func() { report.FinishedAt = time.Now() }()

	tickers, err := p.Source.List(ctx)
	if err != nil {
		return report, fmt.Errorf("list tickers: %w", err)
	}
	report.Listed = len(tickers)

	series, failures := p.Collector.CollectAll(ctx, tickers)
	report.Failures = failures
	for _, s := range series {
		report.Fetched = append(report.Fetched, s.Ticker)
	}
	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("collect: %w", err)
	}
	if len(series) == 0 {
		return report, ErrNothingFetched
	}

	table := aligner.Align(series)
	report.Rows = len(table.Rows)
	if err := p.Writer.Write(p.OutputPath, table); err != nil {
		return report, fmt.Errorf("write %s: %w", p.OutputPath, err)
	}
	if info, err := os.Stat(p.OutputPath); err == nil {
		report.OutputSize = info.Size()
	}

	log.Printf("[INFO] saved %d rows x %d tickers to %s (%s, %s)",
		report.Rows, len(table.Tickers), p.OutputPath, p.Writer.Format(), humanize.Bytes(uint64(report.OutputSize)))
	if len(failures) > 0 {
		log.Printf("[WARN] %d of %d tickers failed", len(failures), len(tickers))
	}
	return report, nil
}

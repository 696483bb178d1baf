package model

import "time"

// Failure records a ticker whose series could not be fetched.
type Failure struct {
	Ticker Ticker
	Err    error
}

// RunReport summarizes one pipeline run.
type RunReport struct {
	Listed     int
	Fetched    []Ticker
	Failures   []Failure
	Rows       int
	OutputPath string
	OutputSize int64
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration returns how long the run took.
func (r *RunReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

package model

import "time"

// CollectionSummary captures metrics for a single collection within a run.
type CollectionSummary struct {
	Collection string
	Read       int64
	Written    int64
	Skipped    int64
	Duration   time.Duration
}

// RunSummary captures metrics from a whole operation run.
type RunSummary struct {
	RunID         string
	Operation     string
	Database      string
	Collections   []CollectionSummary
	DurationTotal time.Duration
}

// TotalRead sums documents read across all collections.
func (s *RunSummary) TotalRead() int64 {
	var n int64
	for _, c := range s.Collections {
		n += c.Read
	}
	return n
}

// TotalWritten sums documents written across all collections.
func (s *RunSummary) TotalWritten() int64 {
	var n int64
	for _, c := range s.Collections {
		n += c.Written
	}
	return n
}

// TotalSkipped sums documents skipped across all collections.
func (s *RunSummary) TotalSkipped() int64 {
	var n int64
	for _, c := range s.Collections {
		n += c.Skipped
	}
	return n
}

package duckdb

import "time"

// SampleRow is one persisted sample.
type SampleRow struct {
	Series     int // series position index within the session
	Name       string
	Time       float64 // seconds, as parsed
	Value      float64
	ReceivedAt time.Time
}

// SampleWriter persists batches of samples. Satisfied by *Store; tests use
// fakes.
type SampleWriter interface {
	InsertSamples(rows []SampleRow) error
}

package model

import "time"

// Shared defaults used by the binary and the ingestion pipeline.
const (
	// DefaultSampleBuffer is the per-series history capacity.
	DefaultSampleBuffer = 16384
	// ConstrainedSampleBuffer is the per-series capacity for constrained
	// targets (small boards, CI containers) selected via config.
	ConstrainedSampleBuffer = 2048

	// DefaultMonitorBuffer is the raw-line echo capacity.
	DefaultMonitorBuffer = 512
	// ConstrainedMonitorBuffer is the echo capacity for constrained targets.
	ConstrainedMonitorBuffer = 128

	// DefaultReadChunk is how many bytes one device read requests.
	DefaultReadChunk = 32

	DefaultValueSeparator = ','
	DefaultTimeUnit       = TimeUnitSeconds

	DefaultBaudrate       = 115200
	DefaultConnectTimeout = 5 * time.Second

	// DefaultUpdateInterval is how often the display drains a snapshot.
	DefaultUpdateInterval = 250 * time.Millisecond
)

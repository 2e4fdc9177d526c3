package persistence

import "time"

// BenchmarkReport captures per-stage timing for an `index --benchmark` run,
// generalized from the teacher's test-only benchmark harness into a
// runtime-reportable struct (SPEC_FULL.md §4.5.2).
type BenchmarkReport struct {
	ExtractDuration time.Duration `json:"extract_duration_ns"`
	MergeDuration   time.Duration `json:"merge_duration_ns"`
	PersistDuration time.Duration `json:"persist_duration_ns"`
	NodeCount       int           `json:"node_count"`
	EdgeCount       int           `json:"edge_count"`
	BytesWritten    int64         `json:"bytes_written"`
}

// Total is the sum of every timed stage.
func (r BenchmarkReport) Total() time.Duration {
	return r.ExtractDuration + r.MergeDuration + r.PersistDuration
}

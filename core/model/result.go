package model

import "time"

// Status describes the outcome of an allocation run.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusPartial    Status = "partial"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// AllocationResult is the immutable outcome of one allocation run. It is
// built once by the aggregator and never mutated afterwards; the history
// store persists a lossy projection of it.
type AllocationResult struct {
	RequestID   string
	Status      Status
	Timestamp   time.Time
	Allocations map[string][]string // driver name -> vehicle IDs, insertion order kept per driver
	Unallocated []string            // operational vehicles left unassigned
	Warnings    []string
	Errors      []string
	Metadata    Metadata
	Detailed    []Assignment // per-assignment detail, capped by the history layer
}

// Metadata carries the computed metrics of a run.
type Metadata struct {
	TotalRoutes      int
	AllocatedCount   int
	UnallocatedCount int
	AllocationRate   float64 // 0..1
	TotalDrivers     int
	ActiveDrivers    int
	DuplicateCount   int
	ProcessingTime   time.Duration
}

// RunMetrics is the tagged variant the history store accepts: exactly one of
// the two fields is set. Legacy callers persisted a flat metrics object while
// current callers pass structured metadata; the store normalizes both into
// one entry shape at the ingestion boundary.
type RunMetrics struct {
	Legacy     *LegacyMetrics
	Structured *Metadata
}

// LegacyMetrics mirrors the flat metrics object written by the previous
// generation of the tool. Rates are already on the 0-100 scale.
type LegacyMetrics struct {
	Routes      int
	Allocated   int
	Unallocated int
	Rate        float64
	Drivers     int
}

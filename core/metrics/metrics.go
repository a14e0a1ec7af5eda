package metrics

import (
	"time"

	"github.com/TheRVAAccountant/resource-allocator/core/model"
)

// RunEvent captures one completed allocation run for observability purposes.
type RunEvent struct {
	RequestID          string
	Engine             string
	Status             model.Status
	AllocatedCount     int
	UnallocatedCount   int
	DuplicateConflicts int
	Duration           time.Duration
	Time               time.Time
}

// Sink records allocation runs.
type Sink interface {
	RecordRun(ev RunEvent) error
}

// NopSink implements Sink with no-op methods.
type NopSink struct{}

func (NopSink) RecordRun(RunEvent) error { return nil }

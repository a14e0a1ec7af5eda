package history

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/TheRVAAccountant/resource-allocator/core/model"
)

// computeStats aggregates the entries within the window. An empty window
// yields the zero Stats value rather than an error.
func computeStats(entries []Entry, now time.Time, days int) Stats {
	var cutoff time.Time
	if days > 0 {
		cutoff = now.AddDate(0, 0, -days)
	}

	var s Stats
	rates := make([]float64, 0, len(entries))
	durations := make([]float64, 0, len(entries))
	for _, e := range entries {
		if !cutoff.IsZero() && e.Timestamp.Before(cutoff) {
			continue
		}
		s.TotalRuns++
		switch e.Status {
		case string(model.StatusCompleted):
			s.Completed++
		case string(model.StatusPartial):
			s.Partial++
		case string(model.StatusFailed):
			s.Failed++
		}
		s.TotalAllocated += e.AllocatedCount
		s.TotalUnallocated += e.UnallocatedCount
		s.DuplicateConflicts += e.DuplicateConflicts.Count
		rates = append(rates, e.AllocationRate)
		durations = append(durations, e.ProcessingSeconds)
	}
	if s.TotalRuns == 0 {
		return s
	}
	s.AvgAllocationRate = round2(stat.Mean(rates, nil))
	s.AvgProcessingSec = round2(stat.Mean(durations, nil))
	return s
}

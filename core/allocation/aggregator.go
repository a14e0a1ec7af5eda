package allocation

import (
	"time"

	"github.com/TheRVAAccountant/resource-allocator/core/model"
)

// AggregateInput carries everything the aggregator folds into a result.
type AggregateInput struct {
	RequestID   string
	Timestamp   time.Time
	TotalRoutes int // eligible routes fed to the matcher
	Assignments []model.Assignment
	Unallocated []string // operational vehicles left in the pools
	Warnings    []string
	Errors      []string
	// RosterDrivers is the driver count from a secondary roster source.
	// Zero means unavailable; the aggregator then counts assignment drivers.
	RosterDrivers  int
	ProcessingTime time.Duration
}

// Aggregate builds the immutable AllocationResult for a run. The allocation
// rate is assigned/(assigned+unassigned) and 0 when that denominator is 0.
// Status is completed when no operational vehicle is left unallocated and
// partial otherwise; the unallocated list does not say whether a vehicle was
// left over because no route needed its type or because routes ran out, and
// the status keeps that ambiguity.
func Aggregate(in AggregateInput) *model.AllocationResult {
	allocations := make(map[string][]string)
	duplicates := 0
	for _, a := range in.Assignments {
		driver := a.DriverName
		if driver == "" {
			driver = model.DriverUnknown
		}
		allocations[driver] = append(allocations[driver], a.VehicleID)
		if a.Duplicate {
			duplicates++
		}
	}

	assigned := len(in.Assignments)
	unassigned := len(in.Unallocated)
	rate := 0.0
	if assigned+unassigned > 0 {
		rate = float64(assigned) / float64(assigned+unassigned)
	}

	totalDrivers := in.RosterDrivers
	if totalDrivers == 0 {
		totalDrivers = len(allocations)
	}
	active := 0
	for _, vehicles := range allocations {
		if len(vehicles) > 0 {
			active++
		}
	}

	status := model.StatusCompleted
	if unassigned > 0 {
		status = model.StatusPartial
	}
	if len(in.Errors) > 0 {
		status = model.StatusFailed
	}

	unallocated := make([]string, len(in.Unallocated))
	copy(unallocated, in.Unallocated)
	detailed := make([]model.Assignment, len(in.Assignments))
	copy(detailed, in.Assignments)

	return &model.AllocationResult{
		RequestID:   in.RequestID,
		Status:      status,
		Timestamp:   in.Timestamp,
		Allocations: allocations,
		Unallocated: unallocated,
		Warnings:    append([]string(nil), in.Warnings...),
		Errors:      append([]string(nil), in.Errors...),
		Detailed:    detailed,
		Metadata: model.Metadata{
			TotalRoutes:      in.TotalRoutes,
			AllocatedCount:   assigned,
			UnallocatedCount: unassigned,
			AllocationRate:   rate,
			TotalDrivers:     totalDrivers,
			ActiveDrivers:    active,
			DuplicateCount:   duplicates,
			ProcessingTime:   in.ProcessingTime,
		},
	}
}

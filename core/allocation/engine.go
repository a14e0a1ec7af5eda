package allocation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/TheRVAAccountant/resource-allocator/core/history"
	"github.com/TheRVAAccountant/resource-allocator/core/logger"
	"github.com/TheRVAAccountant/resource-allocator/core/metrics"
	"github.com/TheRVAAccountant/resource-allocator/core/model"
	"github.com/TheRVAAccountant/resource-allocator/internal/eventbus"
)

// Input is one run's worth of loaded tables. Routes keep file order; the
// matcher depends on it.
type Input struct {
	Routes   []model.Route
	Vehicles []model.Vehicle
	Brands   map[string]string // vehicle ID -> free-text brand/rental descriptor
	Drivers  map[string]string // route code -> driver name
	Files    map[string]string // provenance paths recorded with history
	// RosterDrivers is the driver headcount from a secondary roster, 0 when
	// unavailable.
	RosterDrivers int
}

// Engine runs the allocation pipeline: group vehicles, match routes in file
// order, flag duplicates, resolve drivers, aggregate, persist history. One
// run is synchronous and single-writer; the engine holds no locks and must
// not be shared across concurrent runs.
type Engine struct {
	name     string
	provider string
	typeMap  model.ServiceTypeMap
	store    history.Store
	sink     metrics.Sink
	bus      *eventbus.Bus
	log      logger.Logger
	now      func() time.Time
	newID    func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithHistory sets the history store runs are persisted to.
func WithHistory(store history.Store) Option {
	return func(e *Engine) { e.store = store }
}

// WithMetrics sets the metrics sink.
func WithMetrics(sink metrics.Sink) Option {
	return func(e *Engine) { e.sink = sink }
}

// WithEventBus sets the bus run lifecycle events are published on.
func WithEventBus(bus *eventbus.Bus) Option {
	return func(e *Engine) { e.bus = bus }
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine builds an Engine for the given dispatch provider and
// service-type mapping. All collaborators are injected; there is no ambient
// global state.
func NewEngine(name, provider string, typeMap model.ServiceTypeMap, opts ...Option) (*Engine, error) {
	if name == "" {
		return nil, fmt.Errorf("engine name is required")
	}
	if provider == "" {
		return nil, fmt.Errorf("dispatch provider is required")
	}
	e := &Engine{
		name:     name,
		provider: provider,
		typeMap:  typeMap,
		sink:     metrics.NopSink{},
		log:      logger.Nop{},
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Run executes one allocation over the loaded tables and returns the
// immutable result. Configuration problems surface as errors before any
// allocation state is touched; data-quality problems degrade with warnings.
// History persistence failures are logged and never propagated.
func (e *Engine) Run(ctx context.Context, in Input) (*model.AllocationResult, error) {
	if len(in.Routes) == 0 {
		return nil, fmt.Errorf("no routes loaded")
	}
	if len(in.Vehicles) == 0 {
		return nil, fmt.Errorf("no vehicles loaded")
	}

	start := e.now()
	requestID := e.newID()
	e.log.Infof("run %s: %d routes, %d vehicles", requestID, len(in.Routes), len(in.Vehicles))
	e.publish(eventbus.RunStarted{RequestID: requestID, Files: in.Files, Time: start})

	var warnings []string

	eligible := make([]model.Route, 0, len(in.Routes))
	for _, r := range in.Routes {
		if r.EligibleFor(e.provider) {
			eligible = append(eligible, r)
		}
	}
	e.log.Debugf("run %s: %d of %d routes eligible for %s", requestID, len(eligible), len(in.Routes), e.provider)

	if len(in.Brands) == 0 {
		warnings = append(warnings, "brand lookup empty: all vehicles treated as rental")
		e.log.Warnf("run %s: brand lookup empty", requestID)
	}
	pools := GroupVehicles(in.Vehicles, in.Brands)

	matcher := NewMatcher(e.typeMap, e.log)
	assignments := matcher.Match(eligible, pools)

	validation := ValidateDuplicates(assignments)
	if validation.DuplicateCount > 0 {
		warnings = append(warnings, validation.Summary)
		e.log.Warnf("run %s: %s", requestID, validation.Summary)
	}

	resolved := ResolveDrivers(validation.Assignments, in.Drivers, start)

	unallocated := make([]string, 0)
	for _, pool := range pools {
		unallocated = append(unallocated, pool.Remaining()...)
	}
	sort.Strings(unallocated)

	result := Aggregate(AggregateInput{
		RequestID:      requestID,
		Timestamp:      start,
		TotalRoutes:    len(eligible),
		Assignments:    resolved,
		Unallocated:    unallocated,
		Warnings:       warnings,
		RosterDrivers:  in.RosterDrivers,
		ProcessingTime: e.now().Sub(start),
	})

	if err := e.sink.RecordRun(metrics.RunEvent{
		RequestID:          requestID,
		Engine:             e.name,
		Status:             result.Status,
		AllocatedCount:     result.Metadata.AllocatedCount,
		UnallocatedCount:   result.Metadata.UnallocatedCount,
		DuplicateConflicts: validation.DuplicateCount,
		Duration:           result.Metadata.ProcessingTime,
		Time:               start,
	}); err != nil {
		e.log.Warnf("run %s: metrics sink: %v", requestID, err)
	}

	e.saveHistory(ctx, result, in.Files, validation.DuplicateCount)

	e.publish(eventbus.RunCompleted{
		RequestID:          requestID,
		Status:             result.Status,
		AllocatedCount:     result.Metadata.AllocatedCount,
		UnallocatedCount:   result.Metadata.UnallocatedCount,
		DuplicateConflicts: validation.DuplicateCount,
		Time:               e.now(),
	})
	e.log.Infof("run %s: %s, %d assigned, %d unallocated",
		requestID, result.Status, result.Metadata.AllocatedCount, result.Metadata.UnallocatedCount)
	return result, nil
}

// saveHistory persists the run summary. Failures are logged, never returned:
// losing history must not fail an otherwise successful allocation.
func (e *Engine) saveHistory(ctx context.Context, result *model.AllocationResult, files map[string]string, duplicates int) {
	if e.store == nil {
		return
	}
	meta := result.Metadata
	err := e.store.Save(ctx, history.SaveRequest{
		Result:             result,
		Metrics:            model.RunMetrics{Structured: &meta},
		Engine:             e.name,
		Files:              files,
		DuplicateConflicts: duplicates,
	})
	if err != nil {
		e.log.Errorf("run %s: history save failed: %v", result.RequestID, err)
	}
}

func (e *Engine) publish(ev eventbus.Event) {
	if e.bus != nil {
		e.bus.Publish(ev)
	}
}

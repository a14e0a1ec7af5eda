package allocation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/TheRVAAccountant/resource-allocator/core/history"
	"github.com/TheRVAAccountant/resource-allocator/core/metrics"
	"github.com/TheRVAAccountant/resource-allocator/core/model"
	"github.com/TheRVAAccountant/resource-allocator/internal/eventbus"
)

type fakeStore struct {
	saves []history.SaveRequest
	err   error
}

func (f *fakeStore) Save(_ context.Context, req history.SaveRequest) error {
	if f.err != nil {
		return f.err
	}
	f.saves = append(f.saves, req)
	return nil
}

func (f *fakeStore) Get(context.Context, int, history.Filter) ([]history.Entry, error) {
	return nil, nil
}
func (f *fakeStore) Statistics(context.Context, int) (history.Stats, error) {
	return history.Stats{}, nil
}
func (f *fakeStore) ClearOld(context.Context) (int, error) { return 0, nil }
func (f *fakeStore) ClearAll(context.Context) error        { return nil }
func (f *fakeStore) Close() error                          { return nil }

type fakeSink struct {
	events []metrics.RunEvent
}

func (f *fakeSink) RecordRun(ev metrics.RunEvent) error {
	f.events = append(f.events, ev)
	return nil
}

func engineInput() Input {
	return Input{
		Routes: []model.Route{
			{Code: "CX1", ServiceType: "Standard Parcel - Large Van", Provider: "BWAY"},
			{Code: "CX2", ServiceType: "Standard Parcel - Large Van", Provider: "BWAY"},
			{Code: "CX3", ServiceType: "Standard Parcel - Extra Large Van - US", Provider: "BWAY"},
			{Code: "CX4", ServiceType: "Standard Parcel - Large Van", Provider: "OTHER"},
		},
		Vehicles: []model.Vehicle{
			{ID: "V1", Type: model.TypeLarge, Operational: true},
			{ID: "V2", Type: model.TypeLarge, Operational: true},
			{ID: "V3", Type: model.TypeExtraLarge, Operational: true},
		},
		Brands:  map[string]string{"V1": "Branded"},
		Drivers: map[string]string{"CX1": "Alice", "CX2": "Bob", "CX3": "Carol"},
		Files:   map[string]string{"routes": "routes.csv"},
	}
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := NewEngine("test-engine", "BWAY", testTypeMap(), opts...)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	return e
}

func TestEngineRunFullPipeline(t *testing.T) {
	store := &fakeStore{}
	sink := &fakeSink{}
	e := newTestEngine(t, WithHistory(store), WithMetrics(sink))

	res, err := e.Run(context.Background(), engineInput())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Status != model.StatusCompleted {
		t.Errorf("expected completed got %s", res.Status)
	}
	if res.Metadata.AllocatedCount != 3 {
		t.Errorf("expected 3 assigned got %d", res.Metadata.AllocatedCount)
	}
	if res.Metadata.TotalRoutes != 3 {
		t.Errorf("non-BWAY route must not count, got %d", res.Metadata.TotalRoutes)
	}
	if got := res.Allocations["Alice"]; len(got) != 1 || got[0] != "V1" {
		t.Errorf("Alice should have the branded van: %v", got)
	}
	if len(store.saves) != 1 {
		t.Fatalf("expected 1 history save got %d", len(store.saves))
	}
	if store.saves[0].Result.RequestID != res.RequestID {
		t.Errorf("history saved wrong run")
	}
	if len(sink.events) != 1 || sink.events[0].AllocatedCount != 3 {
		t.Errorf("metrics event wrong: %+v", sink.events)
	}
}

func TestEngineRunEmptyInputs(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.Run(context.Background(), Input{Vehicles: []model.Vehicle{{ID: "V1"}}}); err == nil {
		t.Fatalf("expected error for missing routes")
	}
	if _, err := e.Run(context.Background(), Input{Routes: []model.Route{{Code: "CX1"}}}); err == nil {
		t.Fatalf("expected error for missing vehicles")
	}
}

func TestEngineHistoryFailureDoesNotFailRun(t *testing.T) {
	store := &fakeStore{err: errors.New("disk full")}
	e := newTestEngine(t, WithHistory(store))

	res, err := e.Run(context.Background(), engineInput())
	if err != nil {
		t.Fatalf("history failure must not abort the run: %v", err)
	}
	if res == nil || res.Status != model.StatusCompleted {
		t.Fatalf("expected completed result, got %+v", res)
	}
}

func TestEngineUnallocatedVehiclesMakePartial(t *testing.T) {
	in := engineInput()
	in.Vehicles = append(in.Vehicles, model.Vehicle{ID: "V9", Type: model.TypeStepVan, Operational: true})
	e := newTestEngine(t)

	res, err := e.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Status != model.StatusPartial {
		t.Errorf("expected partial got %s", res.Status)
	}
	if len(res.Unallocated) != 1 || res.Unallocated[0] != "V9" {
		t.Errorf("unallocated wrong: %v", res.Unallocated)
	}
}

func TestEnginePublishesRunEvents(t *testing.T) {
	bus := eventbus.New()
	sub := bus.Subscribe()
	e := newTestEngine(t, WithEventBus(bus))

	if _, err := e.Run(context.Background(), engineInput()); err != nil {
		t.Fatalf("run: %v", err)
	}

	started := false
	completed := false
	timeout := time.After(time.Second)
	for !started || !completed {
		select {
		case ev := <-sub:
			switch ev.(type) {
			case eventbus.RunStarted:
				started = true
			case eventbus.RunCompleted:
				completed = true
			}
		case <-timeout:
			t.Fatalf("missing events: started=%v completed=%v", started, completed)
		}
	}
	bus.Close()
}

func TestNewEngineValidation(t *testing.T) {
	if _, err := NewEngine("", "BWAY", testTypeMap()); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if _, err := NewEngine("x", "", testTypeMap()); err == nil {
		t.Fatalf("expected error for empty provider")
	}
}

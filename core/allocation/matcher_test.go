package allocation

import (
	"testing"

	"github.com/TheRVAAccountant/resource-allocator/core/model"
)

func testTypeMap() model.ServiceTypeMap {
	return model.NewServiceTypeMap(map[string]model.VehicleType{
		"Standard Parcel - Large Van":            model.TypeLarge,
		"Standard Parcel - Extra Large Van - US": model.TypeExtraLarge,
		"Standard Parcel Step Van - US":          model.TypeStepVan,
	}, "Nursery Route Level")
}

// Mirrors the canonical three-route scenario: branded vehicles go out first,
// the rental is the fallback, nothing is left over.
func TestMatchBrandedPriorityScenario(t *testing.T) {
	routes := []model.Route{
		{Code: "CX1", ServiceType: "Standard Parcel - Large Van", Provider: "BWAY"},
		{Code: "CX2", ServiceType: "Standard Parcel - Large Van", Provider: "BWAY"},
		{Code: "CX3", ServiceType: "Standard Parcel - Extra Large Van - US", Provider: "BWAY"},
	}
	roster := []model.Vehicle{
		{ID: "V1", Type: model.TypeLarge, Operational: true},
		{ID: "V2", Type: model.TypeLarge, Operational: true},
		{ID: "V3", Type: model.TypeExtraLarge, Operational: true},
	}
	pools := GroupVehicles(roster, map[string]string{"V1": "Branded"})

	m := NewMatcher(testTypeMap(), nil)
	got := m.Match(routes, pools)

	want := map[string]string{"CX1": "V1", "CX2": "V2", "CX3": "V3"}
	if len(got) != 3 {
		t.Fatalf("expected 3 assignments got %d", len(got))
	}
	for _, a := range got {
		if want[a.RouteCode] != a.VehicleID {
			t.Errorf("%s: got %s want %s", a.RouteCode, a.VehicleID, want[a.RouteCode])
		}
	}
	for _, p := range pools {
		if p.Len() != 0 {
			t.Errorf("expected exhausted pools, %d left", p.Len())
		}
	}
}

func TestMatchNeverAssignsVehicleTwice(t *testing.T) {
	routes := make([]model.Route, 0, 20)
	for i := 0; i < 20; i++ {
		routes = append(routes, model.Route{
			Code:        routeCode(i),
			ServiceType: "Standard Parcel - Large Van",
		})
	}
	roster := []model.Vehicle{
		{ID: "V1", Type: model.TypeLarge, Operational: true},
		{ID: "V2", Type: model.TypeLarge, Operational: true},
		{ID: "V3", Type: model.TypeLarge, Operational: true},
	}
	pools := GroupVehicles(roster, nil)

	m := NewMatcher(testTypeMap(), nil)
	got := m.Match(routes, pools)

	if len(got) != 3 {
		t.Fatalf("expected 3 assignments got %d", len(got))
	}
	seen := make(map[string]bool)
	for _, a := range got {
		if seen[a.VehicleID] {
			t.Fatalf("vehicle %s assigned twice", a.VehicleID)
		}
		seen[a.VehicleID] = true
	}
}

func TestMatchAllBrandedBeforeAnyRental(t *testing.T) {
	routes := make([]model.Route, 0, 6)
	for i := 0; i < 6; i++ {
		routes = append(routes, model.Route{
			Code:        routeCode(i),
			ServiceType: "Standard Parcel - Large Van",
		})
	}
	roster := []model.Vehicle{
		{ID: "R1", Type: model.TypeLarge, Operational: true},
		{ID: "B1", Type: model.TypeLarge, Operational: true},
		{ID: "R2", Type: model.TypeLarge, Operational: true},
		{ID: "B2", Type: model.TypeLarge, Operational: true},
	}
	brands := map[string]string{"B1": "branded", "B2": "branded", "R1": "rental", "R2": "rental"}
	pools := GroupVehicles(roster, brands)

	m := NewMatcher(testTypeMap(), nil)
	got := m.Match(routes, pools)
	if len(got) != 4 {
		t.Fatalf("expected 4 assignments got %d", len(got))
	}
	order := []string{"B1", "B2", "R1", "R2"}
	for i, a := range got {
		if a.VehicleID != order[i] {
			t.Fatalf("position %d: got %s want %s", i, a.VehicleID, order[i])
		}
	}
}

func TestMatchPreservesRouteOrder(t *testing.T) {
	routes := []model.Route{
		{Code: "CX5", ServiceType: "Standard Parcel - Large Van"},
		{Code: "CX2", ServiceType: "Standard Parcel - Extra Large Van - US"},
		{Code: "CX9", ServiceType: "Standard Parcel - Large Van"},
	}
	roster := []model.Vehicle{
		{ID: "V1", Type: model.TypeLarge, Operational: true},
		{ID: "V2", Type: model.TypeLarge, Operational: true},
		{ID: "V3", Type: model.TypeExtraLarge, Operational: true},
	}
	pools := GroupVehicles(roster, nil)

	m := NewMatcher(testTypeMap(), nil)
	got := m.Match(routes, pools)
	wantOrder := []string{"CX5", "CX2", "CX9"}
	if len(got) != 3 {
		t.Fatalf("expected 3 got %d", len(got))
	}
	for i, a := range got {
		if a.RouteCode != wantOrder[i] {
			t.Fatalf("position %d: got %s want %s", i, a.RouteCode, wantOrder[i])
		}
	}
}

func TestMatchSkipsUnmappedServiceType(t *testing.T) {
	routes := []model.Route{
		{Code: "CX1", ServiceType: "Mystery Route"},
		{Code: "CX2", ServiceType: "Standard Parcel - Large Van"},
	}
	roster := []model.Vehicle{{ID: "V1", Type: model.TypeLarge, Operational: true}}
	pools := GroupVehicles(roster, nil)

	m := NewMatcher(testTypeMap(), nil)
	got := m.Match(routes, pools)
	if len(got) != 1 || got[0].RouteCode != "CX2" {
		t.Fatalf("expected only CX2, got %+v", got)
	}
}

func TestMatchSkipsWhenPoolExhausted(t *testing.T) {
	routes := []model.Route{
		{Code: "CX1", ServiceType: "Standard Parcel - Large Van"},
		{Code: "CX2", ServiceType: "Standard Parcel - Large Van"},
	}
	roster := []model.Vehicle{{ID: "V1", Type: model.TypeLarge, Operational: true}}
	pools := GroupVehicles(roster, nil)

	m := NewMatcher(testTypeMap(), nil)
	got := m.Match(routes, pools)
	if len(got) != 1 || got[0].RouteCode != "CX1" {
		t.Fatalf("expected only CX1, got %+v", got)
	}
}

func TestMatchNurseryMarkerMapsToLarge(t *testing.T) {
	routes := []model.Route{
		{Code: "CX1", ServiceType: "Nursery Route Level 7"},
	}
	roster := []model.Vehicle{{ID: "V1", Type: model.TypeLarge, Operational: true}}
	pools := GroupVehicles(roster, nil)

	m := NewMatcher(testTypeMap(), nil)
	got := m.Match(routes, pools)
	if len(got) != 1 || got[0].VehicleType != model.TypeLarge {
		t.Fatalf("nursery route should use a large van, got %+v", got)
	}
}

func routeCode(i int) string {
	return "CX" + string(rune('A'+i))
}

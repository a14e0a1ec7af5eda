package allocation

import (
	"strings"
	"testing"

	"github.com/TheRVAAccountant/resource-allocator/core/model"
)

func TestValidateDuplicatesFlagsEveryMember(t *testing.T) {
	assignments := []model.Assignment{
		{RouteCode: "CX1", VehicleID: "V1"},
		{RouteCode: "CX2", VehicleID: "V2"},
		{RouteCode: "CX3", VehicleID: "V1"},
		{RouteCode: "CX4", VehicleID: "V1"},
	}
	res := ValidateDuplicates(assignments)

	if res.DuplicateCount != 3 {
		t.Fatalf("expected duplicate count 3 got %d", res.DuplicateCount)
	}
	flagged := 0
	for _, a := range res.Assignments {
		if a.VehicleID == "V1" {
			if !a.Duplicate {
				t.Errorf("%s: expected duplicate flag", a.RouteCode)
			}
			if !strings.Contains(a.DuplicateWarning, "V1") {
				t.Errorf("%s: warning should name the vehicle: %q", a.RouteCode, a.DuplicateWarning)
			}
			flagged++
		} else if a.Duplicate {
			t.Errorf("%s: should not be flagged", a.RouteCode)
		}
	}
	if flagged != 3 {
		t.Fatalf("expected 3 flagged got %d", flagged)
	}
	if res.Summary == "" {
		t.Fatalf("expected non-empty summary")
	}
}

func TestValidateDuplicatesWarningNamesOtherRoutes(t *testing.T) {
	assignments := []model.Assignment{
		{RouteCode: "CX1", VehicleID: "V1"},
		{RouteCode: "CX2", VehicleID: "V1"},
	}
	res := ValidateDuplicates(assignments)
	if !strings.Contains(res.Assignments[0].DuplicateWarning, "CX2") {
		t.Errorf("CX1 warning should name CX2: %q", res.Assignments[0].DuplicateWarning)
	}
	if !strings.Contains(res.Assignments[1].DuplicateWarning, "CX1") {
		t.Errorf("CX2 warning should name CX1: %q", res.Assignments[1].DuplicateWarning)
	}
}

func TestValidateDuplicatesCleanList(t *testing.T) {
	assignments := []model.Assignment{
		{RouteCode: "CX1", VehicleID: "V1"},
		{RouteCode: "CX2", VehicleID: "V2"},
	}
	res := ValidateDuplicates(assignments)
	if res.DuplicateCount != 0 || res.Summary != "" {
		t.Fatalf("clean list should report nothing: %+v", res)
	}
}

func TestValidateDuplicatesNilAndEmpty(t *testing.T) {
	for _, in := range [][]model.Assignment{nil, {}} {
		res := ValidateDuplicates(in)
		if res.DuplicateCount != 0 {
			t.Fatalf("expected 0 got %d", res.DuplicateCount)
		}
		if res.Assignments == nil || len(res.Assignments) != 0 {
			t.Fatalf("expected empty non-nil list, got %#v", res.Assignments)
		}
	}
}

func TestValidateDuplicatesDoesNotMutateInput(t *testing.T) {
	assignments := []model.Assignment{
		{RouteCode: "CX1", VehicleID: "V1"},
		{RouteCode: "CX2", VehicleID: "V1"},
	}
	_ = ValidateDuplicates(assignments)
	for _, a := range assignments {
		if a.Duplicate || a.DuplicateWarning != "" {
			t.Fatalf("input was mutated: %+v", a)
		}
	}
}

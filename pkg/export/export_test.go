package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/TheRVAAccountant/resource-allocator/core/model"
)

func TestWriteAssignmentsCSV(t *testing.T) {
	assignments := []model.Assignment{
		{
			RouteCode:   "CX1",
			VehicleID:   "V1",
			VehicleType: model.TypeLarge,
			Tier:        model.TierBranded,
			DriverName:  "Alice Ward",
			UniqueKey:   "2026-03-14|CX1|Alice Ward|V1",
		},
	}
	var buf bytes.Buffer
	if err := WriteAssignmentsCSV(&buf, assignments); err != nil {
		t.Fatalf("write: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header + 1 row, got %d", len(records))
	}
	if records[1][0] != "CX1" || records[1][1] != "V1" || records[1][6] != "Alice Ward" {
		t.Errorf("row wrong: %v", records[1])
	}
}

func TestWriteResultJSON(t *testing.T) {
	result := &model.AllocationResult{
		RequestID: "req-1",
		Status:    model.StatusCompleted,
		Allocations: map[string][]string{
			"Alice Ward": {"V1"},
		},
	}
	var buf bytes.Buffer
	if err := WriteResultJSON(&buf, result); err != nil {
		t.Fatalf("write: %v", err)
	}
	var back model.AllocationResult
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("read back: %v", err)
	}
	if back.RequestID != "req-1" || back.Status != model.StatusCompleted {
		t.Errorf("round trip wrong: %+v", back)
	}
}

func TestWriteUnallocatedCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteUnallocatedCSV(&buf, []string{"V7", "V9"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(records) != 3 || records[1][0] != "V7" {
		t.Errorf("records wrong: %v", records)
	}
}

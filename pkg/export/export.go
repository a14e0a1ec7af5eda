package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/TheRVAAccountant/resource-allocator/core/model"
)

// WriteResultJSON writes the full allocation result to w in JSON format.
func WriteResultJSON(w io.Writer, result *model.AllocationResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// WriteAssignmentsCSV writes the per-route assignment report to w.
func WriteAssignmentsCSV(w io.Writer, assignments []model.Assignment) error {
	cw := csv.NewWriter(w)
	header := []string{"route_code", "vehicle_id", "vehicle_type", "tier", "wave", "staging_area", "driver_name", "unique_key", "duplicate", "warning"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, a := range assignments {
		rec := []string{
			a.RouteCode,
			a.VehicleID,
			string(a.VehicleType),
			string(a.Tier),
			a.Wave,
			a.StagingArea,
			a.DriverName,
			a.UniqueKey,
			strconv.FormatBool(a.Duplicate),
			a.DuplicateWarning,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteUnallocatedCSV writes the leftover-vehicle report to w.
func WriteUnallocatedCSV(w io.Writer, vehicleIDs []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"vehicle_id"}); err != nil {
		return err
	}
	for _, id := range vehicleIDs {
		if err := cw.Write([]string{id}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Package tabular loads the four input tables from CSV files. It is the
// thin ingestion seam in front of the allocation engine: headers are matched
// by normalized name, missing required columns fail before any allocation
// logic runs, and missing optional columns degrade with a warning.
package tabular

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/TheRVAAccountant/resource-allocator/core/logger"
	"github.com/TheRVAAccountant/resource-allocator/core/model"
)

// Loader reads the allocation input tables.
type Loader struct {
	log logger.Logger
}

// NewLoader returns a Loader. A nil logger falls back to a no-op.
func NewLoader(log logger.Logger) *Loader {
	if log == nil {
		log = logger.Nop{}
	}
	return &Loader{log: log}
}

// table is one parsed CSV file with normalized header lookup.
type table struct {
	path    string
	columns map[string]int
	rows    [][]string
}

func readTable(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: empty file", path)
	}
	cols := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		cols[normalizeHeader(h)] = i
	}
	return &table{path: path, columns: cols, rows: records[1:]}, nil
}

// normalizeHeader lowercases and strips everything but letters and digits,
// so "Route Code", "route_code" and "RouteCode" all match.
func normalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// require returns the index of the first matching alias or an error naming
// the column. These errors stop the run before allocation starts.
func (t *table) require(name string, aliases ...string) (int, error) {
	if idx, ok := t.find(aliases...); ok {
		return idx, nil
	}
	return 0, fmt.Errorf("%s: missing required column %q", t.path, name)
}

func (t *table) find(aliases ...string) (int, bool) {
	for _, a := range aliases {
		if idx, ok := t.columns[normalizeHeader(a)]; ok {
			return idx, true
		}
	}
	return 0, false
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// Routes loads the day's route sheet in file order.
func (l *Loader) Routes(path string) ([]model.Route, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	code, err := t.require("route code", "route code", "route")
	if err != nil {
		return nil, err
	}
	service, err := t.require("service type", "service type")
	if err != nil {
		return nil, err
	}
	provider, err := t.require("dispatch provider", "dsp", "provider", "dispatch provider")
	if err != nil {
		return nil, err
	}
	wave, haveWave := t.find("wave", "wave time")
	staging, haveStaging := t.find("staging location", "staging area")
	if !haveWave {
		l.log.Warnf("%s: no wave column, leaving wave blank", path)
		wave = -1
	}
	if !haveStaging {
		l.log.Warnf("%s: no staging location column, leaving it blank", path)
		staging = -1
	}

	routes := make([]model.Route, 0, len(t.rows))
	for _, row := range t.rows {
		r := model.Route{
			Code:        cell(row, code),
			ServiceType: cell(row, service),
			Provider:    cell(row, provider),
			Wave:        cell(row, wave),
			StagingArea: cell(row, staging),
		}
		if r.Code == "" {
			continue
		}
		routes = append(routes, r)
	}
	return routes, nil
}

// Vehicles loads the daily vehicle log in roster order.
func (l *Loader) Vehicles(path string) ([]model.Vehicle, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	id, err := t.require("vehicle id", "van id", "vehicle id", "vehicle")
	if err != nil {
		return nil, err
	}
	vtype, err := t.require("type", "type", "vehicle type")
	if err != nil {
		return nil, err
	}
	opnal, err := t.require("operational flag", "opnal y n", "operational", "opnal")
	if err != nil {
		return nil, err
	}

	vehicles := make([]model.Vehicle, 0, len(t.rows))
	for _, row := range t.rows {
		v := model.Vehicle{
			ID:          cell(row, id),
			Type:        model.VehicleType(cell(row, vtype)),
			Operational: model.ParseOperational(cell(row, opnal)),
			Tier:        model.TierRental,
		}
		if v.ID == "" {
			continue
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, nil
}

// Brands loads the vehicle brand/rental lookup. The file is optional at the
// call site; an empty path yields an empty map.
func (l *Loader) Brands(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	id, err := t.require("vehicle id", "van id", "vehicle id", "vehicle")
	if err != nil {
		return nil, err
	}
	desc, err := t.require("brand descriptor", "branded or rental", "brand", "ownership")
	if err != nil {
		return nil, err
	}

	brands := make(map[string]string, len(t.rows))
	for _, row := range t.rows {
		vid := cell(row, id)
		if vid == "" {
			continue
		}
		brands[vid] = cell(row, desc)
	}
	return brands, nil
}

// Drivers loads the route-to-driver lookup.
func (l *Loader) Drivers(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	code, err := t.require("route code", "route code", "route")
	if err != nil {
		return nil, err
	}
	name, err := t.require("driver name", "driver name", "driver", "associate name")
	if err != nil {
		return nil, err
	}

	drivers := make(map[string]string, len(t.rows))
	for _, row := range t.rows {
		rc := cell(row, code)
		if rc == "" {
			continue
		}
		drivers[rc] = cell(row, name)
	}
	return drivers, nil
}

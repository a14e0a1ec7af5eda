package model

import (
	"fmt"
	"strings"
	"time"
)

// DriverUnknown is attached to assignments whose route has no entry in the
// route-to-driver lookup.
const DriverUnknown = "N/A"

// Assignment binds one route to one vehicle. Driver name and duplicate
// annotations are filled in by later pipeline stages; after aggregation the
// value is treated as immutable.
type Assignment struct {
	RouteCode        string
	VehicleID        string
	VehicleType      VehicleType
	Tier             BrandTier
	Wave             string
	StagingArea      string
	DriverName       string // empty until resolved, DriverUnknown when no match
	UniqueKey        string // date|route|driver|vehicle, synthesized at resolution
	Duplicate        bool
	DuplicateWarning string // names the conflicting route codes
}

// BuildUniqueKey synthesizes the traceability key for an assignment. It is
// not a primary key; collisions only matter for human inspection.
func BuildUniqueKey(date time.Time, route, driver, vehicle string) string {
	return strings.Join([]string{
		date.Format("2006-01-02"),
		route,
		driver,
		vehicle,
	}, "|")
}

// String returns a short human-readable form used in logs.
func (a Assignment) String() string {
	return fmt.Sprintf("%s -> %s (%s)", a.RouteCode, a.VehicleID, a.VehicleType)
}

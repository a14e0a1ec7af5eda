package allocation

import (
	"strings"
	"time"

	"github.com/TheRVAAccountant/resource-allocator/core/model"
)

// ResolveDrivers joins assignments against the route-to-driver lookup and
// synthesizes each assignment's unique key. Route codes are matched after
// trimming whitespace; routes absent from the lookup get the DriverUnknown
// sentinel. Returns a new slice; neither input is mutated.
func ResolveDrivers(assignments []model.Assignment, drivers map[string]string, date time.Time) []model.Assignment {
	trimmed := make(map[string]string, len(drivers))
	for code, name := range drivers {
		trimmed[strings.TrimSpace(code)] = strings.TrimSpace(name)
	}

	out := make([]model.Assignment, len(assignments))
	copy(out, assignments)
	for i := range out {
		name, ok := trimmed[strings.TrimSpace(out[i].RouteCode)]
		if !ok || name == "" {
			name = model.DriverUnknown
		}
		out[i].DriverName = name
		out[i].UniqueKey = model.BuildUniqueKey(date, out[i].RouteCode, name, out[i].VehicleID)
	}
	return out
}

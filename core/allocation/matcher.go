package allocation

import (
	"github.com/TheRVAAccountant/resource-allocator/core/logger"
	"github.com/TheRVAAccountant/resource-allocator/core/model"
)

// Matcher assigns vehicles to routes first-come-first-served. Routes are
// consumed in file order; each route pops the next vehicle of its required
// type, branded tier before rental, with no backtracking across routes.
//
// The matcher is the sole consumer of the pools it is given: Match drains
// them in place and must only run once per pool instance.
type Matcher struct {
	typeMap model.ServiceTypeMap
	log     logger.Logger
}

// NewMatcher returns a Matcher using the given service-type mapping.
func NewMatcher(typeMap model.ServiceTypeMap, log logger.Logger) *Matcher {
	if log == nil {
		log = logger.Nop{}
	}
	return &Matcher{typeMap: typeMap, log: log}
}

// Match produces one assignment per route that has both a mapped required
// type and an available vehicle of that type. Routes that fail either
// condition are skipped, not errored: they are simply absent from the output.
// Output order follows input route order.
func (m *Matcher) Match(routes []model.Route, pools map[model.VehicleType]*Pool) []model.Assignment {
	assignments := make([]model.Assignment, 0, len(routes))
	for _, r := range routes {
		vt, ok := m.typeMap.Resolve(r.ServiceType)
		if !ok {
			m.log.Warnf("route %s: unmapped service type %q, skipping", r.Code, r.ServiceType)
			continue
		}
		pool, ok := pools[vt]
		if !ok || pool.Len() == 0 {
			m.log.Debugf("route %s: no %s vehicles left", r.Code, vt)
			continue
		}
		v, _ := pool.Pop()
		assignments = append(assignments, model.Assignment{
			RouteCode:   r.Code,
			VehicleID:   v.ID,
			VehicleType: vt,
			Tier:        v.Tier,
			Wave:        r.Wave,
			StagingArea: r.StagingArea,
		})
	}
	return assignments
}

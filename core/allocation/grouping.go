package allocation

import (
	"github.com/TheRVAAccountant/resource-allocator/core/model"
)

// Pool holds the vehicles available for one required type, split into a
// branded tier and a rental tier. Roster order is preserved within each tier.
type Pool struct {
	Branded []model.Vehicle
	Rental  []model.Vehicle
}

// Pop removes and returns the next vehicle, branded tier first. The second
// return value is false when the pool is exhausted.
func (p *Pool) Pop() (model.Vehicle, bool) {
	if len(p.Branded) > 0 {
		v := p.Branded[0]
		p.Branded = p.Branded[1:]
		return v, true
	}
	if len(p.Rental) > 0 {
		v := p.Rental[0]
		p.Rental = p.Rental[1:]
		return v, true
	}
	return model.Vehicle{}, false
}

// Len returns the number of vehicles remaining in the pool.
func (p *Pool) Len() int { return len(p.Branded) + len(p.Rental) }

// Remaining returns the IDs of all vehicles still in the pool, branded first.
func (p *Pool) Remaining() []string {
	ids := make([]string, 0, p.Len())
	for _, v := range p.Branded {
		ids = append(ids, v.ID)
	}
	for _, v := range p.Rental {
		ids = append(ids, v.ID)
	}
	return ids
}

// GroupVehicles partitions the operational vehicles of the roster into
// per-type pools. Brand tier is resolved through the brand/rental lookup
// keyed by vehicle ID; vehicles absent from the lookup are rental. The
// function is pure: it copies vehicles and never mutates its inputs.
func GroupVehicles(roster []model.Vehicle, brands map[string]string) map[model.VehicleType]*Pool {
	pools := make(map[model.VehicleType]*Pool)
	for _, v := range roster {
		if !v.Operational {
			continue
		}
		v.Tier = model.TierRental
		if desc, ok := brands[v.ID]; ok {
			v.Tier = model.ParseBrandTier(desc)
		}
		pool, ok := pools[v.Type]
		if !ok {
			pool = &Pool{}
			pools[v.Type] = pool
		}
		if v.Tier == model.TierBranded {
			pool.Branded = append(pool.Branded, v)
		} else {
			pool.Rental = append(pool.Rental, v)
		}
	}
	return pools
}

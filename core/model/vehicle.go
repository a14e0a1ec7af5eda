package model

import "strings"

// BrandTier partitions vehicles into branded and rental pools. Branded
// vehicles are assigned before rental vehicles of the same type.
type BrandTier string

const (
	TierBranded BrandTier = "branded"
	TierRental  BrandTier = "rental"
)

// Vehicle represents one van from the daily vehicle log.
type Vehicle struct {
	ID          string      // vehicle identifier, unique within a run
	Type        VehicleType // vehicle category
	Operational bool        // whether the vehicle is cleared to operate today
	Tier        BrandTier   // branded or rental, defaults to rental
}

// ParseOperational interprets the operational-flag column value. The sheet
// uses literal "Y"/"N"; comparison is case-insensitive.
func ParseOperational(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), "Y")
}

// ParseBrandTier normalizes a free-text brand/rental descriptor. Any value
// containing "brand" is branded, containing "rent" is rental, and anything
// else falls back to rental so unknown vehicles never get priority treatment.
func ParseBrandTier(descriptor string) BrandTier {
	d := strings.ToLower(strings.TrimSpace(descriptor))
	switch {
	case strings.Contains(d, "brand"):
		return TierBranded
	case strings.Contains(d, "rent"):
		return TierRental
	default:
		return TierRental
	}
}

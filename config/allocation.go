package config

import (
	"fmt"

	"github.com/TheRVAAccountant/resource-allocator/core/model"
)

// AllocationConfig holds the business rules of the matcher: the single
// honored dispatch provider and the service-type mapping.
type AllocationConfig struct {
	// EngineName is recorded with every history entry.
	EngineName string `json:"engine_name"`
	// Provider is the only dispatch-provider tag eligible for allocation.
	Provider string `json:"provider"`
	// ServiceTypes maps exact service-type labels to vehicle types.
	ServiceTypes map[string]string `json:"service_types"`
	// LargeMarker maps any service type containing it to the Large category,
	// whatever its suffix digit.
	LargeMarker string `json:"large_marker"`
}

// SetDefaults applies the legacy spreadsheet defaults.
func (c *AllocationConfig) SetDefaults() {
	if c.EngineName == "" {
		c.EngineName = "fleet-allocator"
	}
	if c.Provider == "" {
		c.Provider = "BWAY"
	}
	if len(c.ServiceTypes) == 0 {
		c.ServiceTypes = map[string]string{
			"Standard Parcel - Extra Large Van - US": string(model.TypeExtraLarge),
			"Standard Parcel - Large Van":            string(model.TypeLarge),
			"Standard Parcel Step Van - US":          string(model.TypeStepVan),
		}
	}
	if c.LargeMarker == "" {
		c.LargeMarker = "Nursery Route Level"
	}
}

// Validate checks mandatory fields.
func (c AllocationConfig) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	if len(c.ServiceTypes) == 0 {
		return fmt.Errorf("service type mapping is required")
	}
	for label, vt := range c.ServiceTypes {
		switch model.VehicleType(vt) {
		case model.TypeLarge, model.TypeExtraLarge, model.TypeStepVan:
		default:
			return fmt.Errorf("service type %q maps to unknown vehicle type %q", label, vt)
		}
	}
	return nil
}

// TypeMap builds the service-type mapping used by the matcher.
func (c AllocationConfig) TypeMap() model.ServiceTypeMap {
	exact := make(map[string]model.VehicleType, len(c.ServiceTypes))
	for label, vt := range c.ServiceTypes {
		exact[label] = model.VehicleType(vt)
	}
	return model.NewServiceTypeMap(exact, c.LargeMarker)
}

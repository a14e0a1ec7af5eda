package model

import "strings"

// Route represents one delivery route read from the day's route sheet.
type Route struct {
	Code        string // route code, unique within a run
	ServiceType string // free-text service type label, drives the required vehicle type
	Provider    string // dispatch provider tag; only the honored provider is allocated
	Wave        string // wave/time label
	StagingArea string // staging location label
}

// EligibleFor reports whether the route belongs to the given dispatch provider.
// Comparison trims whitespace and ignores case.
func (r Route) EligibleFor(provider string) bool {
	return strings.EqualFold(strings.TrimSpace(r.Provider), strings.TrimSpace(provider))
}

// VehicleType is the closed set of vehicle categories a route can require.
type VehicleType string

const (
	TypeLarge      VehicleType = "Large"
	TypeExtraLarge VehicleType = "Extra Large"
	TypeStepVan    VehicleType = "Step Van"
)

// ServiceTypeMap maps service-type labels to the vehicle type they require.
type ServiceTypeMap struct {
	exact  map[string]VehicleType
	marker string
}

// NewServiceTypeMap builds a mapping from exact service-type labels plus a
// marker substring. Any service type containing the marker maps to TypeLarge
// regardless of its suffix digit.
func NewServiceTypeMap(exact map[string]VehicleType, marker string) ServiceTypeMap {
	m := make(map[string]VehicleType, len(exact))
	for k, v := range exact {
		m[strings.TrimSpace(k)] = v
	}
	return ServiceTypeMap{exact: m, marker: marker}
}

// Resolve returns the required vehicle type for a service-type label.
// The boolean is false when the label is unmapped.
func (m ServiceTypeMap) Resolve(serviceType string) (VehicleType, bool) {
	st := strings.TrimSpace(serviceType)
	if m.marker != "" && strings.Contains(st, m.marker) {
		return TypeLarge, true
	}
	vt, ok := m.exact[st]
	return vt, ok
}

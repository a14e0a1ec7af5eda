package allocation

import (
	"fmt"
	"strings"

	"github.com/TheRVAAccountant/resource-allocator/core/model"
)

// ValidationResult reports duplicate vehicle assignments found in a list.
type ValidationResult struct {
	// Assignments is an annotated copy of the input; members of a duplicate
	// group carry the Duplicate flag and a warning naming the other routes.
	Assignments []model.Assignment
	// DuplicateCount is the number of assignments involved in a conflict,
	// not the number of conflicting vehicles.
	DuplicateCount int
	// Summary is a short human-readable description, empty when clean.
	Summary string
}

// ValidateDuplicates detects vehicles assigned to more than one route. The
// matcher pops vehicles so this should not occur in a normal run, but the
// validator is an independent safety net over externally supplied or merged
// assignment lists and must tolerate malformed input: a nil or empty list
// yields an empty result. The input slice is never mutated.
func ValidateDuplicates(assignments []model.Assignment) ValidationResult {
	if len(assignments) == 0 {
		return ValidationResult{Assignments: []model.Assignment{}}
	}

	byVehicle := make(map[string][]string, len(assignments))
	for _, a := range assignments {
		byVehicle[a.VehicleID] = append(byVehicle[a.VehicleID], a.RouteCode)
	}

	out := make([]model.Assignment, len(assignments))
	copy(out, assignments)

	count := 0
	conflicted := make([]string, 0)
	for i, a := range out {
		routes := byVehicle[a.VehicleID]
		if len(routes) <= 1 {
			continue
		}
		others := make([]string, 0, len(routes)-1)
		for _, rc := range routes {
			if rc != a.RouteCode {
				others = append(others, rc)
			}
		}
		out[i].Duplicate = true
		out[i].DuplicateWarning = fmt.Sprintf("vehicle %s also assigned to %s",
			a.VehicleID, strings.Join(others, ", "))
		count++
		conflicted = append(conflicted, a.VehicleID)
	}

	res := ValidationResult{Assignments: out, DuplicateCount: count}
	if count > 0 {
		res.Summary = fmt.Sprintf("%d assignments share %d vehicle(s): %s",
			count, distinct(conflicted), strings.Join(dedupe(conflicted), ", "))
	}
	return res
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func distinct(ids []string) int { return len(dedupe(ids)) }

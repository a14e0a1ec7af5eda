package history

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/TheRVAAccountant/resource-allocator/core/model"
)

// Entry is the persisted, lossy projection of one allocation run. The on-disk
// format has evolved over several generations of the tool, so reading is
// deliberately permissive while writing always produces the current shape.
type Entry struct {
	Timestamp          time.Time         `json:"timestamp"`
	Engine             string            `json:"engine"`
	RequestID          string            `json:"request_id"`
	Status             string            `json:"status"`
	TotalRoutes        int               `json:"total_routes"`
	AllocatedCount     int               `json:"allocated_count"`
	UnallocatedCount   int               `json:"unallocated_count"`
	AllocationRate     float64           `json:"allocation_rate"` // 0-100, rounded to 2 decimals
	Files              map[string]string `json:"files,omitempty"`
	DuplicateConflicts ConflictCount     `json:"duplicate_conflicts"`
	Error              string            `json:"error,omitempty"`
	TotalDrivers       int               `json:"total_drivers"`
	ActiveDrivers      int               `json:"active_drivers"`
	ProcessingSeconds  float64           `json:"processing_time_seconds"`
	Detailed           []DetailedResult  `json:"detailed_results,omitempty"`
}

// DetailedResult is the capped per-assignment detail kept with an entry.
type DetailedResult struct {
	Route     string `json:"route"`
	Vehicle   string `json:"vehicle"`
	Driver    string `json:"driver"`
	UniqueKey string `json:"unique_key,omitempty"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

// ConflictCount is the normalized duplicate-conflict field. Old files stored
// it as an int, a list of conflict descriptions, a {count, details} object,
// or a bare scalar; all of those decode into one (count, details) pair and
// encode back as a plain integer.
type ConflictCount struct {
	Count   int
	Details []string
}

// MarshalJSON writes the count as a plain integer, the current format.
func (c ConflictCount) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Count)
}

// UnmarshalJSON accepts any of the historical shapes.
func (c *ConflictCount) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.Count, c.Details = NormalizeDuplicates(raw)
	return nil
}

// NormalizeDuplicates converts any historical duplicate-conflict shape into a
// count plus optional details. Integers and floats are used as-is, lists
// count their elements, maps honor "count" and "details" keys, and any other
// scalar falls back to 1 when truthy and 0 when falsy or absent.
func NormalizeDuplicates(v any) (int, []string) {
	switch val := v.(type) {
	case nil:
		return 0, nil
	case bool:
		if val {
			return 1, nil
		}
		return 0, nil
	case float64:
		if val < 0 {
			return 0, nil
		}
		return int(val), nil
	case int:
		if val < 0 {
			return 0, nil
		}
		return val, nil
	case string:
		if val == "" {
			return 0, nil
		}
		return 1, []string{val}
	case []any:
		details := make([]string, 0, len(val))
		for _, item := range val {
			details = append(details, fmt.Sprint(item))
		}
		return len(val), details
	case map[string]any:
		count := 0
		var details []string
		if d, ok := val["details"].([]any); ok {
			details = make([]string, 0, len(d))
			for _, item := range d {
				details = append(details, fmt.Sprint(item))
			}
			count = len(d)
		}
		if cv, ok := val["count"]; ok {
			if n, _ := NormalizeDuplicates(cv); n > 0 || details == nil {
				count = n
			}
		}
		return count, details
	default:
		return 1, nil
	}
}

// SaveRequest carries one run into the store. Result may be nil and Metrics
// may carry either variant or neither; normalization defaults every numeric
// field to zero rather than failing.
type SaveRequest struct {
	Result             *model.AllocationResult
	Metrics            model.RunMetrics
	Engine             string
	Files              map[string]string
	DuplicateConflicts int
	Error              string
}

// NewEntry normalizes a save request into the current entry shape. Counts
// and rates are never negative or missing; the allocation rate is recomputed
// from the counts when the metrics did not carry one.
func NewEntry(req SaveRequest, now time.Time, maxDetailed int) Entry {
	e := Entry{
		Timestamp:          now,
		Engine:             req.Engine,
		Status:             string(model.StatusFailed),
		Files:              req.Files,
		DuplicateConflicts: ConflictCount{Count: req.DuplicateConflicts},
		Error:              req.Error,
	}

	if req.Result != nil {
		e.RequestID = req.Result.RequestID
		e.Status = string(req.Result.Status)
		if !req.Result.Timestamp.IsZero() {
			e.Timestamp = req.Result.Timestamp
		}
		if maxDetailed > 0 {
			detail := req.Result.Detailed
			if len(detail) > maxDetailed {
				detail = detail[:maxDetailed]
			}
			e.Detailed = make([]DetailedResult, 0, len(detail))
			for _, a := range detail {
				e.Detailed = append(e.Detailed, DetailedResult{
					Route:     a.RouteCode,
					Vehicle:   a.VehicleID,
					Driver:    a.DriverName,
					UniqueKey: a.UniqueKey,
					Duplicate: a.Duplicate,
				})
			}
		}
	}

	switch {
	case req.Metrics.Structured != nil:
		m := req.Metrics.Structured
		e.TotalRoutes = m.TotalRoutes
		e.AllocatedCount = m.AllocatedCount
		e.UnallocatedCount = m.UnallocatedCount
		e.AllocationRate = round2(m.AllocationRate * 100)
		e.TotalDrivers = m.TotalDrivers
		e.ActiveDrivers = m.ActiveDrivers
		e.ProcessingSeconds = m.ProcessingTime.Seconds()
		if e.DuplicateConflicts.Count == 0 {
			e.DuplicateConflicts.Count = m.DuplicateCount
		}
	case req.Metrics.Legacy != nil:
		m := req.Metrics.Legacy
		e.TotalRoutes = m.Routes
		e.AllocatedCount = m.Allocated
		e.UnallocatedCount = m.Unallocated
		e.AllocationRate = round2(m.Rate)
		e.TotalDrivers = m.Drivers
	}

	if e.AllocationRate == 0 && e.AllocatedCount+e.UnallocatedCount > 0 {
		e.AllocationRate = round2(100 * float64(e.AllocatedCount) / float64(e.AllocatedCount+e.UnallocatedCount))
	}
	return e
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// applyRetention drops entries older than retentionDays and truncates the
// newest-first list to maxEntries. Zero disables the respective rule.
func applyRetention(entries []Entry, now time.Time, retentionDays, maxEntries int) []Entry {
	if retentionDays > 0 {
		cutoff := now.AddDate(0, 0, -retentionDays)
		kept := entries[:0]
		for _, e := range entries {
			if !e.Timestamp.Before(cutoff) {
				kept = append(kept, e)
			}
		}
		entries = kept
	}
	if maxEntries > 0 && len(entries) > maxEntries {
		entries = entries[:maxEntries]
	}
	return entries
}

// sortNewestFirst orders entries by timestamp descending. Files written by
// the current tool are already ordered; merged or hand-edited files may not be.
func sortNewestFirst(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
}

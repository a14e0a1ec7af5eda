package history

import (
	"context"
	"fmt"
	"time"
)

// Config controls retention and detail capping for a history store.
type Config struct {
	// Backend selects the store type: "json" or "sqlite".
	Backend string `json:"backend"`
	// Path is the file location of the store.
	Path string `json:"path"`
	// RetentionDays drops entries older than this many days. 0 disables.
	RetentionDays int `json:"retention_days"`
	// MaxEntries caps the number of kept entries. 0 disables.
	MaxEntries int `json:"max_entries"`
	// AutoCleanup applies retention on every save.
	AutoCleanup bool `json:"auto_cleanup"`
	// MaxDetailedResults caps the per-assignment detail stored with an entry.
	MaxDetailedResults int `json:"max_detailed_results"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "json"
	}
	if c.Path == "" {
		c.Path = "allocation_history.json"
	}
	if c.RetentionDays == 0 {
		c.RetentionDays = 90
	}
	if c.MaxEntries == 0 {
		c.MaxEntries = 500
	}
	if c.MaxDetailedResults == 0 {
		c.MaxDetailedResults = 50
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Backend != "json" && c.Backend != "sqlite" {
		return fmt.Errorf("unknown backend %s", c.Backend)
	}
	if c.Path == "" {
		return fmt.Errorf("path is required")
	}
	return nil
}

// Filter narrows the entries returned by Get. Zero values match everything.
type Filter struct {
	Status         string
	Engine         string
	From           time.Time
	To             time.Time
	WithDuplicates bool
	WithErrors     bool
}

func (f Filter) matches(e Entry) bool {
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if f.Engine != "" && e.Engine != f.Engine {
		return false
	}
	if !f.From.IsZero() && e.Timestamp.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && e.Timestamp.After(f.To) {
		return false
	}
	if f.WithDuplicates && e.DuplicateConflicts.Count == 0 {
		return false
	}
	if f.WithErrors && e.Error == "" {
		return false
	}
	return true
}

// Stats aggregates entries within a time window.
type Stats struct {
	TotalRuns          int     `json:"total_runs"`
	Completed          int     `json:"completed"`
	Partial            int     `json:"partial"`
	Failed             int     `json:"failed"`
	TotalAllocated     int     `json:"total_allocated"`
	TotalUnallocated   int     `json:"total_unallocated"`
	DuplicateConflicts int     `json:"duplicate_conflicts"`
	AvgAllocationRate  float64 `json:"avg_allocation_rate"`
	AvgProcessingSec   float64 `json:"avg_processing_seconds"`
}

// Store is an append-only, retention-bounded ledger of allocation runs.
// Entries are never edited in place: they are created by Save and removed by
// retention or the explicit clear operations.
type Store interface {
	// Save appends a normalized entry at the head of the ledger, applying
	// retention when auto-cleanup is enabled.
	Save(ctx context.Context, req SaveRequest) error
	// Get returns up to limit entries matching the filter, newest first.
	// limit <= 0 means no limit.
	Get(ctx context.Context, limit int, f Filter) ([]Entry, error)
	// Statistics aggregates entries of the last N days. days <= 0 means all.
	Statistics(ctx context.Context, days int) (Stats, error)
	// ClearOld applies the retention rules now and reports how many entries
	// were dropped.
	ClearOld(ctx context.Context) (int, error)
	// ClearAll removes every entry.
	ClearAll(ctx context.Context) error
	Close() error
}

// NewStore builds the store selected by cfg.Backend.
func NewStore(cfg Config) (Store, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case "sqlite":
		return NewSQLiteStore(cfg)
	default:
		return NewFileStore(cfg)
	}
}

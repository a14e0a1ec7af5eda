package history

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"
)

// FileStore keeps the ledger as a single JSON array on disk, newest first.
// Every save is a full read-modify-write; concurrent writers race and the
// last writer wins, which is an accepted limitation for a desktop tool.
type FileStore struct {
	cfg Config
	mu  sync.Mutex
	now func() time.Time
}

// NewFileStore opens or creates the JSON file at cfg.Path.
func NewFileStore(cfg Config) (*FileStore, error) {
	f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	if cerr := f.Close(); cerr != nil {
		return nil, cerr
	}
	return &FileStore{cfg: cfg, now: time.Now}, nil
}

// load reads the full list. Corrupted or non-list content is treated as an
// empty history so the file self-heals on the next write.
func (s *FileStore) load() []Entry {
	data, err := os.ReadFile(s.cfg.Path)
	if err != nil || len(data) == 0 {
		return []Entry{}
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return []Entry{}
	}
	return entries
}

func (s *FileStore) write(entries []Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.cfg.Path, data, 0644)
}

// Save inserts the normalized entry at position 0 and writes the list back.
func (s *FileStore) Save(ctx context.Context, req SaveRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	entry := NewEntry(req, now, s.cfg.MaxDetailedResults)
	entries := append([]Entry{entry}, s.load()...)
	if s.cfg.AutoCleanup {
		entries = applyRetention(entries, now, s.cfg.RetentionDays, s.cfg.MaxEntries)
	}
	return s.write(entries)
}

// Get returns up to limit entries matching f, newest first.
func (s *FileStore) Get(ctx context.Context, limit int, f Filter) ([]Entry, error) {
	s.mu.Lock()
	entries := s.load()
	s.mu.Unlock()
	sortNewestFirst(entries)
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if !f.matches(e) {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Statistics aggregates entries of the last days days.
func (s *FileStore) Statistics(ctx context.Context, days int) (Stats, error) {
	s.mu.Lock()
	entries := s.load()
	s.mu.Unlock()
	return computeStats(entries, s.now(), days), nil
}

// ClearOld applies the retention rules immediately.
func (s *FileStore) ClearOld(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.load()
	sortNewestFirst(entries)
	kept := applyRetention(entries, s.now(), s.cfg.RetentionDays, s.cfg.MaxEntries)
	dropped := len(entries) - len(kept)
	if dropped == 0 {
		return 0, nil
	}
	return dropped, s.write(kept)
}

// ClearAll removes every entry.
func (s *FileStore) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write([]Entry{})
}

func (s *FileStore) Close() error { return nil }

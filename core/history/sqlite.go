package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists the ledger in a SQLite database. Each row keeps the
// full entry as JSON next to the columns used for filtering, so schema
// evolution stays confined to the entry codec.
type SQLiteStore struct {
	db  *sql.DB
	cfg Config
	now func() time.Time
}

// NewSQLiteStore opens or creates the database at cfg.Path and ensures schema.
func NewSQLiteStore(cfg Config) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS allocation_history (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        ts INTEGER,
        request_id TEXT,
        status TEXT,
        engine TEXT,
        duplicates INTEGER,
        error TEXT,
        entry TEXT
    );`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db, cfg: cfg, now: time.Now}, nil
}

// Save writes the normalized entry and applies retention when enabled.
func (s *SQLiteStore) Save(ctx context.Context, req SaveRequest) error {
	now := s.now()
	entry := NewEntry(req, now, s.cfg.MaxDetailedResults)
	b, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO allocation_history (ts, request_id, status, engine, duplicates, error, entry)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.Timestamp.Unix(), entry.RequestID, entry.Status, entry.Engine,
		entry.DuplicateConflicts.Count, entry.Error, string(b))
	if err != nil {
		return err
	}
	if s.cfg.AutoCleanup {
		_, err = s.prune(ctx, now)
	}
	return err
}

func (s *SQLiteStore) prune(ctx context.Context, now time.Time) (int, error) {
	dropped := 0
	if s.cfg.RetentionDays > 0 {
		cutoff := now.AddDate(0, 0, -s.cfg.RetentionDays).Unix()
		res, err := s.db.ExecContext(ctx, `DELETE FROM allocation_history WHERE ts < ?`, cutoff)
		if err != nil {
			return 0, err
		}
		if n, err := res.RowsAffected(); err == nil {
			dropped += int(n)
		}
	}
	if s.cfg.MaxEntries > 0 {
		res, err := s.db.ExecContext(ctx,
			`DELETE FROM allocation_history WHERE id NOT IN (
                SELECT id FROM allocation_history ORDER BY ts DESC, id DESC LIMIT ?)`,
			s.cfg.MaxEntries)
		if err != nil {
			return 0, err
		}
		if n, err := res.RowsAffected(); err == nil {
			dropped += int(n)
		}
	}
	return dropped, nil
}

// Get returns up to limit entries matching f, newest first. Rows whose JSON
// no longer decodes are skipped rather than failing the whole read.
func (s *SQLiteStore) Get(ctx context.Context, limit int, f Filter) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT entry FROM allocation_history ORDER BY ts DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []Entry
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var e Entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			continue
		}
		if !f.matches(e) {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	if out == nil {
		out = []Entry{}
	}
	return out, rows.Err()
}

// Statistics aggregates entries of the last days days.
func (s *SQLiteStore) Statistics(ctx context.Context, days int) (Stats, error) {
	entries, err := s.Get(ctx, 0, Filter{})
	if err != nil {
		return Stats{}, err
	}
	return computeStats(entries, s.now(), days), nil
}

// ClearOld applies the retention rules immediately.
func (s *SQLiteStore) ClearOld(ctx context.Context) (int, error) {
	return s.prune(ctx, s.now())
}

// ClearAll removes every entry.
func (s *SQLiteStore) ClearAll(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM allocation_history`)
	return err
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

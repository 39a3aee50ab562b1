// Package store provides a SQLite-backed cache of reconciled query records,
// keyed by file fingerprint.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/theirongolddev/pulse/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Entry is one cached file: its fingerprint and the records parsed from it.
type Entry struct {
	Fingerprint Fingerprint
	Records     []model.QueryRecord
}

// Cache provides SQLite-backed record caching.
type Cache struct {
	db *sql.DB
}

// DefaultDir returns the XDG-compliant cache directory.
func DefaultDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "pulse")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "pulse")
}

// DefaultPath returns the default cache database path.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "cache.db")
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	c := &Cache{db: db}
	if err := c.checkVersion(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("checking schema version: %w", err)
	}
	return c, nil
}

// checkVersion clears stale entries when the stored schema version differs.
func (c *Cache) checkVersion() error {
	want := strconv.Itoa(schemaVersion)

	var have string
	err := c.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&have)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if have == want {
		return nil
	}

	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM file_records"); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)`, want); err != nil {
		return err
	}
	return tx.Commit()
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Load reads every cached entry, keyed by fingerprint key. Rows whose
// payload no longer decodes are left out, which makes them cache misses.
func (c *Cache) Load() (map[string][]model.QueryRecord, error) {
	rows, err := c.db.Query("SELECT fingerprint, records FROM file_records")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string][]model.QueryRecord)
	for rows.Next() {
		var key, payload string
		if err := rows.Scan(&key, &payload); err != nil {
			return nil, err
		}
		var recs []model.QueryRecord
		if err := json.Unmarshal([]byte(payload), &recs); err != nil {
			continue
		}
		result[key] = recs
	}
	return result, rows.Err()
}

// Replace swaps the cache contents for exactly the given entries in a single
// transaction. Entries for files that changed or disappeared since the last
// run are dropped along the way.
func (c *Cache) Replace(entries []Entry) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM file_records"); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO file_records
		(fingerprint, file_path, record_count, records, parsed_at)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, e := range entries {
		recs := e.Records
		if recs == nil {
			recs = []model.QueryRecord{}
		}
		payload, err := json.Marshal(recs)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", e.Fingerprint.Path, err)
		}
		if _, err := stmt.Exec(e.Fingerprint.Key(), e.Fingerprint.Path, len(recs), string(payload), now); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Count returns the number of cached files.
func (c *Cache) Count() (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM file_records").Scan(&count)
	return count, err
}

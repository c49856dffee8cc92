package store

import (
	"database/sql"
	"fmt"
	"time"
)

const fetchedAtKey = "fetched_at"

// ReplaceCatalog swaps the persisted snapshot wholesale for a new
// catalog generation. The old rows and the new rows never coexist
// outside the transaction.
func (s *Store) ReplaceCatalog(casks []*Cask, fetchedAt time.Time) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"cask_names", "cask_bundle_ids", "casks"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	caskStmt, err := tx.Prepare(`
		INSERT INTO casks (token, description, homepage, deprecated, deprecation_reason)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare cask insert: %w", err)
	}
	defer caskStmt.Close()

	nameStmt, err := tx.Prepare(`INSERT OR IGNORE INTO cask_names (token, name) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare name insert: %w", err)
	}
	defer nameStmt.Close()

	bundleStmt, err := tx.Prepare(`INSERT OR IGNORE INTO cask_bundle_ids (token, bundle_id) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare bundle id insert: %w", err)
	}
	defer bundleStmt.Close()

	for _, c := range casks {
		if c.Token == "" {
			continue
		}
		if _, err := caskStmt.Exec(c.Token, c.Description, c.Homepage, c.Deprecated, c.DeprecationReason); err != nil {
			return fmt.Errorf("failed to insert cask %s: %w", c.Token, err)
		}
		for _, name := range c.Names {
			if name == "" {
				continue
			}
			if _, err := nameStmt.Exec(c.Token, name); err != nil {
				return fmt.Errorf("failed to insert name for %s: %w", c.Token, err)
			}
		}
		for _, id := range c.BundleIDs {
			if id == "" {
				continue
			}
			if _, err := bundleStmt.Exec(c.Token, id); err != nil {
				return fmt.Errorf("failed to insert bundle id for %s: %w", c.Token, err)
			}
		}
	}

	if _, err := tx.Exec(`
		INSERT OR REPLACE INTO catalog_meta (key, value) VALUES (?, ?)
	`, fetchedAtKey, fetchedAt.UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to record fetch time: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit catalog: %w", err)
	}
	return nil
}

// LoadCatalog returns the persisted snapshot and the time it was fetched.
// Returns sql.ErrNoRows via the wrapped error if no snapshot exists.
func (s *Store) LoadCatalog() ([]*Cask, time.Time, error) {
	fetchedAt, err := s.FetchedAt()
	if err != nil {
		return nil, time.Time{}, err
	}

	rows, err := s.db.Query(`
		SELECT token, description, homepage, deprecated, deprecation_reason
		FROM casks
		ORDER BY token
	`)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to query casks: %w", err)
	}
	defer rows.Close()

	byToken := make(map[string]*Cask)
	var casks []*Cask
	for rows.Next() {
		var c Cask
		var reason sql.NullString
		if err := rows.Scan(&c.Token, &c.Description, &c.Homepage, &c.Deprecated, &reason); err != nil {
			return nil, time.Time{}, fmt.Errorf("failed to scan cask row: %w", err)
		}
		c.DeprecationReason = reason.String
		byToken[c.Token] = &c
		casks = append(casks, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to iterate casks: %w", err)
	}

	if err := s.attach(byToken, "cask_names", "name", func(c *Cask, v string) {
		c.Names = append(c.Names, v)
	}); err != nil {
		return nil, time.Time{}, err
	}
	if err := s.attach(byToken, "cask_bundle_ids", "bundle_id", func(c *Cask, v string) {
		c.BundleIDs = append(c.BundleIDs, v)
	}); err != nil {
		return nil, time.Time{}, err
	}

	return casks, fetchedAt, nil
}

func (s *Store) attach(byToken map[string]*Cask, table, column string, add func(*Cask, string)) error {
	rows, err := s.db.Query(fmt.Sprintf("SELECT token, %s FROM %s ORDER BY rowid", column, table))
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var token, value string
		if err := rows.Scan(&token, &value); err != nil {
			return fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		if c, ok := byToken[token]; ok {
			add(c, value)
		}
	}
	return rows.Err()
}

// FetchedAt returns when the persisted snapshot was fetched.
func (s *Store) FetchedAt() (time.Time, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM catalog_meta WHERE key = ?`, fetchedAtKey).Scan(&value)
	if err == sql.ErrNoRows {
		return time.Time{}, fmt.Errorf("no catalog snapshot: %w", err)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read fetch time: %w", err)
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse fetch time: %w", err)
	}
	return t, nil
}

// MarkStale rewrites the snapshot's fetch time so that it appears at
// least maxAge old. The snapshot data itself is preserved; expired data
// is still usable as a degraded fallback.
func (s *Store) MarkStale(maxAge time.Duration) error {
	old := time.Now().Add(-maxAge - time.Hour).UTC().Format(time.RFC3339)
	_, err := s.db.Exec(`
		UPDATE catalog_meta SET value = ? WHERE key = ?
	`, old, fetchedAtKey)
	if err != nil {
		return fmt.Errorf("failed to mark catalog stale: %w", err)
	}
	return nil
}

// CountCasks returns the number of casks in the persisted snapshot.
func (s *Store) CountCasks() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM casks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count casks: %w", err)
	}
	return n, nil
}

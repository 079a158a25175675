package index

import (
	"database/sql"
	"fmt"
	"time"
)

// IndexedHashes returns the content hash recorded at index time for
// each of an owner's indexed dates. The engine compares these against
// the journal files to detect drift.
func (db *DB) IndexedHashes(owner string) (map[string]string, error) {
	rows, err := db.Query(`SELECT date, content_hash FROM entry_meta WHERE owner = ?`, owner)
	if err != nil {
		return nil, fmt.Errorf("indexed hashes: %w", err)
	}
	defer rows.Close()

	hashes := make(map[string]string)
	for rows.Next() {
		var date, hash string
		if err := rows.Scan(&date, &hash); err != nil {
			return nil, fmt.Errorf("scan indexed hash: %w", err)
		}
		hashes[date] = hash
	}
	return hashes, rows.Err()
}

// RebuildCheckpoint returns the last date a rebuild swapped for this
// owner, or "" if no rebuild is in progress.
func (db *DB) RebuildCheckpoint(owner string) (string, error) {
	var last string
	err := db.QueryRow(`SELECT last_date FROM rebuild_state WHERE owner = ?`, owner).Scan(&last)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("rebuild checkpoint: %w", err)
	}
	return last, nil
}

// SetRebuildCheckpoint records rebuild progress at entry granularity.
func (db *DB) SetRebuildCheckpoint(owner, lastDate string) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO rebuild_state (owner, last_date, started_at) VALUES (?, ?, ?)
		ON CONFLICT(owner) DO UPDATE SET last_date = ?
	`, owner, lastDate, now, lastDate)
	if err != nil {
		return fmt.Errorf("set rebuild checkpoint: %w", err)
	}
	return nil
}

// ClearRebuildCheckpoint marks a rebuild as finished.
func (db *DB) ClearRebuildCheckpoint(owner string) error {
	if _, err := db.Exec(`DELETE FROM rebuild_state WHERE owner = ?`, owner); err != nil {
		return fmt.Errorf("clear rebuild checkpoint: %w", err)
	}
	return nil
}

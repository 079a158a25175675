package index

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "entry_meta: per-entry index bookkeeping",
		SQL: `
CREATE TABLE entry_meta (
    owner        TEXT NOT NULL,
    date         TEXT NOT NULL,
    token_count  INTEGER NOT NULL DEFAULT 0,
    content_hash TEXT NOT NULL,
    indexed_at   INTEGER NOT NULL,
    PRIMARY KEY (owner, date)
);
`,
	},
	{
		Version:     2,
		Description: "entity and lexical postings",
		SQL: `
CREATE TABLE entity_postings (
    owner  TEXT NOT NULL,
    token  TEXT NOT NULL,
    date   TEXT NOT NULL,
    count  INTEGER NOT NULL DEFAULT 1,
    PRIMARY KEY (owner, token, date)
);

CREATE INDEX idx_entity_owner_date ON entity_postings(owner, date);

CREATE TABLE lexical_postings (
    owner  TEXT NOT NULL,
    token  TEXT NOT NULL,
    date   TEXT NOT NULL,
    tf     INTEGER NOT NULL,
    PRIMARY KEY (owner, token, date)
);

CREATE INDEX idx_lexical_owner_date ON lexical_postings(owner, date);
`,
	},
	{
		Version:     3,
		Description: "chunk_vectors: embedding vectors for semantic search",
		SQL: `
CREATE TABLE chunk_vectors (
    owner      TEXT NOT NULL,
    date       TEXT NOT NULL,
    chunk      INTEGER NOT NULL,
    byte_off   INTEGER NOT NULL DEFAULT 0,
    embedding  BLOB NOT NULL,
    model      TEXT NOT NULL,
    dimensions INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    PRIMARY KEY (owner, date, chunk)
);
`,
	},
	{
		Version:     4,
		Description: "maintenance state: semantic gaps and rebuild progress",
		SQL: `
CREATE TABLE semantic_gaps (
    owner     TEXT NOT NULL,
    date      TEXT NOT NULL,
    reason    TEXT NOT NULL,
    failed_at INTEGER NOT NULL,
    PRIMARY KEY (owner, date)
);

CREATE TABLE rebuild_state (
    owner      TEXT PRIMARY KEY,
    last_date  TEXT NOT NULL,
    started_at INTEGER NOT NULL
);
`,
	},
}

func (db *DB) migrate() error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}

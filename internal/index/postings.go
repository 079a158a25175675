package index

import (
	"fmt"
	"math"
	"time"
)

// EntryPostings is everything the entity and lexical indexes derive
// from one entry's text.
type EntryPostings struct {
	Entities    map[string]int // entity token -> occurrence count
	Lexical     map[string]int // content token -> term frequency
	TokenCount  int            // total tokens before stopword removal
	ContentHash string
}

// SwapPostings atomically replaces the entity and lexical postings for
// one (owner, date). The whole swap is a single transaction, so a
// concurrent reader sees either the old postings or the new ones,
// never a mix. Calling it twice with the same input is a no-op in
// effect.
func (db *DB) SwapPostings(owner, date string, p EntryPostings) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin swap: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM entity_postings WHERE owner = ? AND date = ?`, owner, date); err != nil {
		return fmt.Errorf("clear entity postings: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM lexical_postings WHERE owner = ? AND date = ?`, owner, date); err != nil {
		return fmt.Errorf("clear lexical postings: %w", err)
	}

	for token, count := range p.Entities {
		if _, err := tx.Exec(
			`INSERT INTO entity_postings (owner, token, date, count) VALUES (?, ?, ?, ?)`,
			owner, token, date, count,
		); err != nil {
			return fmt.Errorf("insert entity posting %q: %w", token, err)
		}
	}
	for token, tf := range p.Lexical {
		if _, err := tx.Exec(
			`INSERT INTO lexical_postings (owner, token, date, tf) VALUES (?, ?, ?, ?)`,
			owner, token, date, tf,
		); err != nil {
			return fmt.Errorf("insert lexical posting %q: %w", token, err)
		}
	}

	now := time.Now().UnixMilli()
	if _, err := tx.Exec(`
		INSERT INTO entry_meta (owner, date, token_count, content_hash, indexed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(owner, date) DO UPDATE SET token_count = ?, content_hash = ?, indexed_at = ?
	`, owner, date, p.TokenCount, p.ContentHash, now,
		p.TokenCount, p.ContentHash, now); err != nil {
		return fmt.Errorf("upsert entry meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit swap: %w", err)
	}
	return nil
}

// RemovePostings clears all derived data for one (owner, date).
func (db *DB) RemovePostings(owner, date string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin remove: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM entity_postings WHERE owner = ? AND date = ?`,
		`DELETE FROM lexical_postings WHERE owner = ? AND date = ?`,
		`DELETE FROM chunk_vectors WHERE owner = ? AND date = ?`,
		`DELETE FROM semantic_gaps WHERE owner = ? AND date = ?`,
		`DELETE FROM entry_meta WHERE owner = ? AND date = ?`,
	} {
		if _, err := tx.Exec(stmt, owner, date); err != nil {
			return fmt.Errorf("remove postings: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit remove: %w", err)
	}
	return nil
}

// EntityDates returns the dates whose entries mention an entity token,
// most recent first.
func (db *DB) EntityDates(owner, token string) ([]string, error) {
	rows, err := db.Query(`
		SELECT date FROM entity_postings
		WHERE owner = ? AND token = ?
		ORDER BY date DESC
	`, owner, token)
	if err != nil {
		return nil, fmt.Errorf("entity dates: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan entity date: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// EntityHits returns, per date in [from, to], how many of the query
// tokens matched that date's entity set. Empty bounds mean unbounded.
func (db *DB) EntityHits(owner string, tokens []string, from, to string) (map[string]int, error) {
	hits := make(map[string]int)
	if len(tokens) == 0 {
		return hits, nil
	}

	for _, token := range tokens {
		rows, err := db.Query(`
			SELECT date FROM entity_postings
			WHERE owner = ? AND token = ?
			  AND (? = '' OR date >= ?) AND (? = '' OR date <= ?)
		`, owner, token, from, from, to, to)
		if err != nil {
			return nil, fmt.Errorf("entity hits for %q: %w", token, err)
		}
		for rows.Next() {
			var d string
			if err := rows.Scan(&d); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan entity hit: %w", err)
			}
			hits[d]++
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return hits, nil
}

// LexicalScores returns a tf-based relevance score per date for the
// query tokens, restricted to [from, to]. The raw term-frequency sum is
// divided by log(1 + entry token count) so long entries don't dominate.
func (db *DB) LexicalScores(owner string, tokens []string, from, to string) (map[string]float64, error) {
	scores := make(map[string]float64)
	if len(tokens) == 0 {
		return scores, nil
	}

	tfSum := make(map[string]int)
	for _, token := range tokens {
		rows, err := db.Query(`
			SELECT date, tf FROM lexical_postings
			WHERE owner = ? AND token = ?
			  AND (? = '' OR date >= ?) AND (? = '' OR date <= ?)
		`, owner, token, from, from, to, to)
		if err != nil {
			return nil, fmt.Errorf("lexical postings for %q: %w", token, err)
		}
		for rows.Next() {
			var d string
			var tf int
			if err := rows.Scan(&d, &tf); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan lexical posting: %w", err)
			}
			tfSum[d] += tf
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}

	for date, sum := range tfSum {
		length, err := db.tokenCount(owner, date)
		if err != nil {
			return nil, err
		}
		scores[date] = lengthNormalized(sum, length)
	}
	return scores, nil
}

// lengthNormalized divides a raw tf sum by log(1 + entry length).
func lengthNormalized(tfSum, entryTokens int) float64 {
	if tfSum <= 0 {
		return 0
	}
	denom := math.Log(1 + float64(entryTokens))
	if denom < 1 {
		denom = 1
	}
	return float64(tfSum) / denom
}

func (db *DB) tokenCount(owner, date string) (int, error) {
	var n int
	err := db.QueryRow(
		`SELECT token_count FROM entry_meta WHERE owner = ? AND date = ?`,
		owner, date,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("token count %s: %w", date, err)
	}
	return n, nil
}

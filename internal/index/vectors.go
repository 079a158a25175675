package index

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/cristal-orion/Reminor/internal/nlp"
)

// ChunkVector is one stored embedding: a chunk of one entry plus its
// vector and an offset back into the source text.
type ChunkVector struct {
	Date      string
	Chunk     int
	ByteOff   int
	Embedding []float64
	Model     string
}

// ChunkMatch is a semantic query hit.
type ChunkMatch struct {
	Date       string
	Chunk      int
	ByteOff    int
	Similarity float64
}

// encodeEmbedding converts a []float64 to a binary BLOB (8 bytes per float64).
func encodeEmbedding(vec []float64) []byte {
	buf := make([]byte, len(vec)*8)
	for i, v := range vec {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

// decodeEmbedding converts a binary BLOB back to []float64.
func decodeEmbedding(buf []byte) []float64 {
	n := len(buf) / 8
	vec := make([]float64, n)
	for i := 0; i < n; i++ {
		vec[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
	}
	return vec
}

// SwapVectors atomically replaces all chunk vectors for one
// (owner, date) and clears any recorded semantic gap for it.
func (db *DB) SwapVectors(owner, date string, vectors []ChunkVector) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin vector swap: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM chunk_vectors WHERE owner = ? AND date = ?`, owner, date); err != nil {
		return fmt.Errorf("clear vectors: %w", err)
	}

	now := time.Now().UnixMilli()
	for _, v := range vectors {
		if _, err := tx.Exec(`
			INSERT INTO chunk_vectors (owner, date, chunk, byte_off, embedding, model, dimensions, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, owner, date, v.Chunk, v.ByteOff, encodeEmbedding(v.Embedding), v.Model, len(v.Embedding), now); err != nil {
			return fmt.Errorf("insert vector %s/%d: %w", date, v.Chunk, err)
		}
	}

	if _, err := tx.Exec(`DELETE FROM semantic_gaps WHERE owner = ? AND date = ?`, owner, date); err != nil {
		return fmt.Errorf("clear semantic gap: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit vector swap: %w", err)
	}
	return nil
}

// DropVectors removes the vectors for one date and records why, so the
// semantic index is explicitly incomplete rather than silently stale.
func (db *DB) DropVectors(owner, date, reason string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin vector drop: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM chunk_vectors WHERE owner = ? AND date = ?`, owner, date); err != nil {
		return fmt.Errorf("drop vectors: %w", err)
	}
	if _, err := tx.Exec(`
		INSERT INTO semantic_gaps (owner, date, reason, failed_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(owner, date) DO UPDATE SET reason = ?, failed_at = ?
	`, owner, date, reason, time.Now().UnixMilli(), reason, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("record semantic gap: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit vector drop: %w", err)
	}
	return nil
}

// SemanticGaps returns the dates whose semantic postings are missing
// because embedding failed, ascending.
func (db *DB) SemanticGaps(owner string) ([]string, error) {
	rows, err := db.Query(`SELECT date FROM semantic_gaps WHERE owner = ? ORDER BY date`, owner)
	if err != nil {
		return nil, fmt.Errorf("semantic gaps: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan semantic gap: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// QueryVectors scans an owner's stored vectors (optionally restricted
// to [from, to]) and returns chunks whose cosine similarity to the
// query vector is at least minSim, best first, at most k. Brute-force
// scan: a personal journal has thousands of entries, not millions.
func (db *DB) QueryVectors(owner string, query []float64, from, to string, k int, minSim float64) ([]ChunkMatch, error) {
	rows, err := db.Query(`
		SELECT date, chunk, byte_off, embedding FROM chunk_vectors
		WHERE owner = ?
		  AND (? = '' OR date >= ?) AND (? = '' OR date <= ?)
	`, owner, from, from, to, to)
	if err != nil {
		return nil, fmt.Errorf("query vectors: %w", err)
	}
	defer rows.Close()

	var matches []ChunkMatch
	for rows.Next() {
		var m ChunkMatch
		var blob []byte
		if err := rows.Scan(&m.Date, &m.Chunk, &m.ByteOff, &blob); err != nil {
			return nil, fmt.Errorf("scan vector: %w", err)
		}
		m.Similarity = nlp.CosineSimilarity(query, decodeEmbedding(blob))
		if m.Similarity >= minSim {
			matches = append(matches, m)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if k > 0 && len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

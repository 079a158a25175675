// Package engine ties the journal store and the derived indexes
// together: it keeps entity, lexical and semantic postings consistent
// with entry text as entries are written, edited or bulk-imported, and
// answers queries by fusing the three signals into one ranked list.
package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cristal-orion/Reminor/internal/config"
	"github.com/cristal-orion/Reminor/internal/index"
	"github.com/cristal-orion/Reminor/internal/journal"
	"github.com/cristal-orion/Reminor/internal/lang"
	"github.com/cristal-orion/Reminor/internal/nlp"
)

// Engine owns all derived index state. The journal store remains the
// single source of truth; everything the engine writes to the index
// database can be regenerated with Rebuild.
type Engine struct {
	Journal  *journal.Store
	DB       *index.DB
	Embedder nlp.Embedder        // nil = semantic channel disabled
	Entities nlp.EntityExtractor // defaults to the capitalization heuristic
	Language func(owner string) string

	cfg config.Config
	log zerolog.Logger
	now func() time.Time

	mu     sync.Mutex
	owners map[string]*sync.Mutex
	stopCh chan struct{}
}

// New creates an Engine. The embedder is optional and can be attached
// later with SetEmbedder; without one the semantic channel simply
// returns nothing.
func New(j *journal.Store, db *index.DB, cfg config.Config, logger zerolog.Logger) *Engine {
	e := &Engine{
		Journal:  j,
		DB:       db,
		Entities: &nlp.HeuristicExtractor{Lang: cfg.Language},
		cfg:      cfg,
		log:      logger,
		now:      time.Now,
		owners:   make(map[string]*sync.Mutex),
		stopCh:   make(chan struct{}),
	}
	e.Language = func(string) string { return lang.Normalize(cfg.Language) }
	return e
}

// SetEmbedder configures the embedding provider.
func (e *Engine) SetEmbedder(emb nlp.Embedder) {
	e.Embedder = emb
}

// ownerLock returns the per-owner mutex serializing writes and rebuilds
// for one owner. Reads never take it.
func (e *Engine) ownerLock(owner string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := e.owners[owner]
	if !ok {
		m = &sync.Mutex{}
		e.owners[owner] = m
	}
	return m
}

func (e *Engine) lang(owner string) string {
	if e.Language != nil {
		return lang.Normalize(e.Language(owner))
	}
	return lang.Normalize(e.cfg.Language)
}

// WriteEntry stores an entry and reindexes it. The journal write
// happens first; if indexing then fails the entry is still durable and
// a later rebuild converges.
func (e *Engine) WriteEntry(ctx context.Context, owner, date, text string) error {
	if owner == "" {
		return ErrEmptyOwner
	}
	if err := e.Journal.Put(owner, date, text); err != nil {
		return fmt.Errorf("store entry: %w", err)
	}
	return e.OnWrite(ctx, owner, date, text)
}

// GetEntry returns the stored text for a date.
func (e *Engine) GetEntry(owner, date string) (string, error) {
	if owner == "" {
		return "", ErrEmptyOwner
	}
	return e.Journal.Get(owner, date)
}

// OnWrite re-derives all postings for one date, replacing whatever was
// there. Idempotent: reindexing unchanged text produces identical
// postings. Serialized per owner against other writes and rebuilds.
func (e *Engine) OnWrite(ctx context.Context, owner, date, text string) error {
	if owner == "" {
		return ErrEmptyOwner
	}
	lock := e.ownerLock(owner)
	lock.Lock()
	defer lock.Unlock()
	return e.indexEntry(ctx, owner, date, text)
}

// indexEntry derives and swaps postings for one date. Caller holds the
// owner lock. Entity and lexical postings swap in one transaction;
// semantic vectors swap in their own, so an embedding failure leaves
// the other two signals fully indexed.
func (e *Engine) indexEntry(ctx context.Context, owner, date, text string) error {
	langTag := e.lang(owner)

	tokens, total := nlp.ContentTokens(text, langTag)

	entities := make(map[string]int)
	if e.Entities != nil {
		for _, ent := range e.Entities.Extract(text) {
			entities[ent]++
		}
	}

	postings := index.EntryPostings{
		Entities:    entities,
		Lexical:     nlp.TermFrequencies(tokens),
		TokenCount:  total,
		ContentHash: contentHash(text),
	}
	if err := e.DB.SwapPostings(owner, date, postings); err != nil {
		return fmt.Errorf("swap postings %s: %w", date, err)
	}

	e.indexSemantic(ctx, owner, date, text)
	return nil
}

// indexSemantic computes and stores chunk vectors for one date,
// reporting whether the swap landed. Any failure is recorded as a
// semantic gap and absorbed: the write as a whole still succeeds.
func (e *Engine) indexSemantic(ctx context.Context, owner, date, text string) bool {
	if e.Embedder == nil {
		return false
	}

	chunks := nlp.SplitChunks(text, e.cfg.Embedding.ChunkTokens)
	if len(chunks) == 0 {
		if err := e.DB.SwapVectors(owner, date, nil); err != nil {
			e.log.Warn().Err(err).Str("owner", owner).Str("date", date).Msg("clear vectors")
			return false
		}
		return true
	}

	timeout := time.Duration(e.cfg.Embedding.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	vectors := make([]index.ChunkVector, 0, len(chunks))
	for _, c := range chunks {
		embedCtx, cancel := context.WithTimeout(ctx, timeout)
		vec, err := e.Embedder.Embed(embedCtx, c.Text)
		cancel()
		if err != nil {
			e.log.Warn().Err(err).Str("owner", owner).Str("date", date).
				Msg("embedding failed, semantic postings absent for date")
			if gapErr := e.DB.DropVectors(owner, date, err.Error()); gapErr != nil {
				e.log.Error().Err(gapErr).Str("date", date).Msg("record semantic gap")
			}
			return false
		}
		vectors = append(vectors, index.ChunkVector{
			Date:      date,
			Chunk:     c.Index,
			ByteOff:   c.Offset,
			Embedding: vec,
			Model:     e.Embedder.Model(),
		})
	}

	if err := e.DB.SwapVectors(owner, date, vectors); err != nil {
		e.log.Error().Err(err).Str("owner", owner).Str("date", date).Msg("swap vectors")
		return false
	}
	return true
}

// Rebuild recomputes every index for an owner from the journal store.
// Progress checkpoints at entry granularity: an interrupted rebuild
// resumes after the last successfully swapped date instead of starting
// over. Cancellable via ctx.
func (e *Engine) Rebuild(ctx context.Context, owner string) (int, error) {
	if owner == "" {
		return 0, ErrEmptyOwner
	}
	lock := e.ownerLock(owner)
	lock.Lock()
	defer lock.Unlock()

	checkpoint, err := e.DB.RebuildCheckpoint(owner)
	if err != nil {
		return 0, err
	}

	entries, err := e.Journal.List(owner, "", "")
	if err != nil {
		return 0, fmt.Errorf("list entries: %w", err)
	}

	indexed := 0
	for _, entry := range entries {
		if entry.Date <= checkpoint {
			continue
		}
		if err := ctx.Err(); err != nil {
			e.log.Info().Str("owner", owner).Str("resume_after", checkpoint).
				Msg("rebuild interrupted, checkpoint saved")
			return indexed, err
		}
		if err := e.indexEntry(ctx, owner, entry.Date, entry.Text); err != nil {
			return indexed, fmt.Errorf("rebuild %s: %w", entry.Date, err)
		}
		checkpoint = entry.Date
		if err := e.DB.SetRebuildCheckpoint(owner, checkpoint); err != nil {
			return indexed, err
		}
		indexed++
	}

	if err := e.DB.ClearRebuildCheckpoint(owner); err != nil {
		return indexed, err
	}
	e.log.Info().Str("owner", owner).Int("entries", indexed).Msg("rebuild complete")
	return indexed, nil
}

// RetryGaps re-attempts embedding for dates whose semantic postings
// are missing. Useful once the embedding service comes back.
func (e *Engine) RetryGaps(ctx context.Context, owner string) (int, error) {
	if owner == "" {
		return 0, ErrEmptyOwner
	}
	if e.Embedder == nil {
		return 0, ErrCapabilityUnavailable
	}

	gaps, err := e.DB.SemanticGaps(owner)
	if err != nil {
		return 0, err
	}

	lock := e.ownerLock(owner)
	lock.Lock()
	defer lock.Unlock()

	healed := 0
	for _, date := range gaps {
		if err := ctx.Err(); err != nil {
			return healed, err
		}
		text, err := e.Journal.Get(owner, date)
		if err != nil {
			continue
		}
		if e.indexSemantic(ctx, owner, date, text) {
			healed++
		}
	}
	return healed, nil
}

// CheckDrift compares journal content hashes against what the indexes
// were built from and reindexes any drifted dates. Returns how many
// dates were repaired.
func (e *Engine) CheckDrift(ctx context.Context, owner string) (int, error) {
	if owner == "" {
		return 0, ErrEmptyOwner
	}

	indexed, err := e.DB.IndexedHashes(owner)
	if err != nil {
		return 0, err
	}
	entries, err := e.Journal.List(owner, "", "")
	if err != nil {
		return 0, err
	}

	lock := e.ownerLock(owner)
	lock.Lock()
	defer lock.Unlock()

	repaired := 0
	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		seen[entry.Date] = true
		if indexed[entry.Date] == contentHash(entry.Text) {
			continue
		}
		e.log.Warn().Str("owner", owner).Str("date", entry.Date).
			Msg("index drift detected, reindexing")
		if err := e.indexEntry(ctx, owner, entry.Date, entry.Text); err != nil {
			return repaired, fmt.Errorf("%w: repair %s: %v", ErrIndexCorruption, entry.Date, err)
		}
		repaired++
	}

	// Postings for dates with no journal file are stale leftovers.
	for date := range indexed {
		if seen[date] {
			continue
		}
		e.log.Warn().Str("owner", owner).Str("date", date).
			Msg("index drift detected, removing orphan postings")
		if err := e.DB.RemovePostings(owner, date); err != nil {
			return repaired, err
		}
		repaired++
	}
	return repaired, nil
}

// StartMaintenance runs a drift check and a semantic gap retry for the
// known owners on startup and then daily.
func (e *Engine) StartMaintenance(owners func() []string) {
	run := func() {
		for _, owner := range owners() {
			if n, err := e.CheckDrift(context.Background(), owner); err != nil {
				e.log.Warn().Err(err).Str("owner", owner).Msg("drift check")
			} else if n > 0 {
				e.log.Info().Str("owner", owner).Int("repaired", n).Msg("drift check repaired dates")
			}
			if e.Embedder == nil {
				continue
			}
			if n, err := e.RetryGaps(context.Background(), owner); err != nil {
				e.log.Warn().Err(err).Str("owner", owner).Msg("semantic gap retry")
			} else if n > 0 {
				e.log.Info().Str("owner", owner).Int("healed", n).Msg("semantic gaps healed")
			}
		}
	}
	run()

	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				run()
			case <-e.stopCh:
				return
			}
		}
	}()
}

// Stop shuts down the engine's background goroutines.
func (e *Engine) Stop() {
	close(e.stopCh)
}

func contentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:8])
}

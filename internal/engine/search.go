package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cristal-orion/Reminor/internal/daterange"
	"github.com/cristal-orion/Reminor/internal/journal"
	"github.com/cristal-orion/Reminor/internal/nlp"
)

// Result is one ranked hit from Search.
type Result struct {
	Date    string   `json:"date"`
	Score   float64  `json:"score"`
	Snippet string   `json:"snippet"`
	Signals []string `json:"signals"`
}

// signalSet collects the per-date raw scores gathered from one channel.
type signalSet struct {
	entity   map[string]int
	lexical  map[string]float64
	semantic map[string]float64
	chunkOff map[string]int
}

// Search runs the full retrieval pipeline: parse the query, dispatch
// the entity, semantic and lexical channels concurrently, fuse the
// normalized scores and rank. A channel that fails is dropped from the
// fusion; the search errors only when every channel failed.
func (e *Engine) Search(ctx context.Context, owner, query string, limit int) ([]Result, error) {
	if owner == "" {
		return nil, ErrEmptyOwner
	}
	if limit <= 0 {
		limit = 10
	}

	langTag := e.lang(owner)
	tokens := nlp.QueryTokens(query, langTag)

	var from, to string
	if r, ok := daterange.Resolve(query, e.now(), langTag); ok {
		from, to = r.Start, r.End
	}

	// A purely temporal query carries no searchable content.
	if len(tokens) == 0 {
		return []Result{}, nil
	}

	timeout := time.Duration(e.cfg.Retrieval.QueryTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	sig := signalSet{
		entity:   make(map[string]int),
		lexical:  make(map[string]float64),
		semantic: make(map[string]float64),
		chunkOff: make(map[string]int),
	}
	var entityErr, lexErr, semErr error

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hits, err := e.DB.EntityHits(owner, tokens, from, to)
		if err != nil {
			entityErr = err
			return nil
		}
		sig.entity = hits
		return nil
	})

	g.Go(func() error {
		scores, err := e.DB.LexicalScores(owner, tokens, from, to)
		if err != nil {
			lexErr = err
			return nil
		}
		sig.lexical = scores
		return nil
	})

	g.Go(func() error {
		if e.Embedder == nil {
			semErr = ErrCapabilityUnavailable
			return nil
		}
		vec, err := e.Embedder.Embed(gctx, query)
		if err != nil {
			semErr = err
			return nil
		}
		matches, err := e.DB.QueryVectors(owner, vec, from, to, limit*4, e.cfg.Retrieval.MinSimilarity)
		if err != nil {
			semErr = err
			return nil
		}
		for _, m := range matches {
			if m.Similarity > sig.semantic[m.Date] {
				sig.semantic[m.Date] = m.Similarity
				sig.chunkOff[m.Date] = m.ByteOff
			}
		}
		return nil
	})

	_ = g.Wait()

	if entityErr != nil {
		e.log.Warn().Err(entityErr).Msg("entity channel failed")
	}
	if lexErr != nil {
		e.log.Warn().Err(lexErr).Msg("lexical channel failed")
	}
	if semErr != nil {
		e.log.Debug().Err(semErr).Msg("semantic channel unavailable")
	}
	if entityErr != nil && lexErr != nil && semErr != nil {
		return nil, fmt.Errorf("all retrieval channels failed: %w", entityErr)
	}

	results := e.fuse(sig, limit)
	e.attachSnippets(owner, query, tokens, sig.chunkOff, results)
	return results, nil
}

// fuse combines the channels with the configured weights. An entity
// match is binary and contributes the full entity weight; the lexical
// and semantic scores are min-max normalized over the candidate set
// first. Dates tied on fused score rank newer first.
func (e *Engine) fuse(sig signalSet, limit int) []Result {
	dates := make(map[string]bool)
	for d := range sig.entity {
		dates[d] = true
	}
	for d := range sig.lexical {
		dates[d] = true
	}
	for d := range sig.semantic {
		dates[d] = true
	}
	if len(dates) == 0 {
		return []Result{}
	}

	lexNorm := normalizeFloats(sig.lexical)
	semNorm := normalizeFloats(sig.semantic)

	results := make([]Result, 0, len(dates))
	for d := range dates {
		var score float64
		var signals []string
		if _, ok := sig.entity[d]; ok {
			score += e.cfg.Retrieval.EntityWeight
			signals = append(signals, "entity")
		}
		if v, ok := semNorm[d]; ok {
			score += e.cfg.Retrieval.SemanticWeight * v
			signals = append(signals, "semantic")
		}
		if v, ok := lexNorm[d]; ok {
			score += e.cfg.Retrieval.LexicalWeight * v
			signals = append(signals, "lexical")
		}
		sort.Strings(signals)
		results = append(results, Result{Date: d, Score: score, Signals: signals})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Date > results[j].Date
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// normalizeFloats min-max scales scores to [0,1]. A single candidate,
// or candidates all sharing one value, normalize to 1.
func normalizeFloats(m map[string]float64) map[string]float64 {
	if len(m) == 0 {
		return nil
	}
	min, max := 0.0, 0.0
	first := true
	for _, v := range m {
		if first {
			min, max = v, v
			first = false
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if max == min {
			out[k] = 1
		} else {
			out[k] = (v - min) / (max - min)
		}
	}
	return out
}

// attachSnippets loads each result's entry and extracts a snippet
// around the best available anchor: the first query token occurrence,
// or the top semantic chunk's offset when no token matched literally,
// or the entry head.
func (e *Engine) attachSnippets(owner, query string, tokens []string, chunkOff map[string]int, results []Result) {
	for i := range results {
		text, err := e.Journal.Get(owner, results[i].Date)
		if err != nil {
			continue
		}
		anchor := tokenAnchor(text, tokens)
		if anchor < 0 {
			if off, ok := chunkOff[results[i].Date]; ok {
				anchor = off
			}
		}
		results[i].Snippet = snippet(text, anchor)
	}
}

// tokenAnchor finds the earliest query token occurrence and returns
// its byte offset in the original text, or -1. Matching happens on the
// folded text, whose byte offsets drift from the original whenever a
// multi-byte accented rune folds to ASCII, so each folded byte keeps a
// pointer back to the rune it came from.
func tokenAnchor(text string, tokens []string) int {
	var folded strings.Builder
	folded.Grow(len(text))
	backRef := make([]int, 0, len(text))
	for off, r := range text {
		n := folded.Len()
		folded.WriteRune(nlp.FoldRune(r))
		for ; n < folded.Len(); n++ {
			backRef = append(backRef, off)
		}
	}

	best := -1
	f := folded.String()
	for _, tok := range tokens {
		if idx := strings.Index(f, tok); idx >= 0 && (best < 0 || idx < best) {
			best = idx
		}
	}
	if best < 0 {
		return -1
	}
	return backRef[best]
}

// snippet cuts a window around the anchor: up to 100 bytes of leading
// context and 300 trailing, trimmed to rune boundaries, with ellipses
// marking truncation.
func snippet(text string, anchor int) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	if anchor < 0 || anchor >= len(text) {
		anchor = 0
	}

	start := anchor - 100
	if start < 0 {
		start = 0
	}
	end := anchor + 300
	if end > len(text) {
		end = len(text)
	}
	for start > 0 && !isRuneStart(text[start]) {
		start--
	}
	for end < len(text) && !isRuneStart(text[end]) {
		end++
	}

	out := strings.TrimSpace(text[start:end])
	if start > 0 {
		out = "..." + out
	}
	if end < len(text) {
		out = out + "..."
	}
	return out
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// recentEntries returns the newest entries for an owner, newest first.
func (e *Engine) recentEntries(owner string, n int) ([]journal.Entry, error) {
	entries, err := e.Journal.List(owner, "", "")
	if err != nil {
		return nil, err
	}
	// List is ascending; take the tail reversed.
	out := make([]journal.Entry, 0, n)
	for i := len(entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, entries[i])
	}
	return out, nil
}

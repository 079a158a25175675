package engine

import "errors"

// Engine errors. Single-signal failures (a dead embedder, a missed NER
// call) are absorbed and logged, never surfaced through these: a query
// fails only when it is malformed beyond recovery or every signal's
// storage is unreachable.
var (
	// ErrEmptyOwner indicates a request with no owner scope.
	ErrEmptyOwner = errors.New("engine: owner required")

	// ErrCapabilityUnavailable indicates a missing injected capability
	// where one is strictly required (e.g. rebuilding with no extractor).
	ErrCapabilityUnavailable = errors.New("engine: capability unavailable")

	// ErrIndexCorruption indicates detected drift between the journal
	// and a derived index. Surfaced to operators as a warning; repair
	// is automatic via reindex.
	ErrIndexCorruption = errors.New("engine: index drift detected")
)

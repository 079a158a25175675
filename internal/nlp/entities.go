package nlp

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cristal-orion/Reminor/internal/lang"
)

// EntityExtractor recognizes proper-noun-like tokens in entry text.
// Implementations range from the capitalization heuristic below to a
// full NER model; the engine only depends on this interface.
type EntityExtractor interface {
	Extract(text string) []string
}

// HeuristicExtractor extracts entities from capitalization cues, with
// no model dependency. A capitalized word that is not sentence-initial
// is almost always a name in journal prose; sentence-initial words
// count only when their folded form is not a stopword. Month names are
// excluded so "a Marzo" stays a date cue, not an entity.
type HeuristicExtractor struct {
	Lang string
}

// Extract returns the normalized entity tokens found in text. Runs of
// consecutive capitalized words additionally yield a folded multi-word
// key ("maria rossi") alongside the head token.
func (h *HeuristicExtractor) Extract(text string) []string {
	stop := lang.Stopwords(lang.Normalize(h.Lang))

	seen := make(map[string]bool)
	var out []string
	add := func(tok string) {
		if tok == "" || seen[tok] {
			return
		}
		seen[tok] = true
		out = append(out, tok)
	}

	sentenceStart := true
	var run []string // current run of capitalized words, folded

	flushRun := func() {
		if len(run) > 1 {
			add(strings.Join(run, " "))
		}
		run = run[:0]
	}

	for _, word := range strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r)
	}) {
		trimmed := strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		endsSentence := strings.ContainsAny(word, ".!?")

		if trimmed == "" {
			flushRun()
			if endsSentence {
				sentenceStart = true
			}
			continue
		}

		first, _ := utf8.DecodeRuneInString(trimmed)
		folded := Fold(trimmed)
		capitalized := unicode.IsUpper(first) && utf8.RuneCountInString(trimmed) >= 3

		ok := capitalized && !lang.IsMonthName(folded)
		if ok && sentenceStart {
			// Sentence-initial words are entities only when they are
			// not ordinary vocabulary.
			ok = !stop[folded]
		}

		if ok {
			add(folded)
			run = append(run, folded)
		} else {
			flushRun()
		}

		if endsSentence {
			flushRun()
			sentenceStart = true
		} else {
			sentenceStart = false
		}
	}
	flushRun()

	return out
}

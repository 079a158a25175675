// Package nlp provides the language processing primitives the journal
// engine relies on: tokenization, entity extraction, and the pluggable
// embedding capability. Extraction and embedding are interfaces so the
// engine keeps working (degraded) when a model is unavailable.
package nlp

import (
	"strings"
	"unicode"

	"github.com/cristal-orion/Reminor/internal/lang"
)

// Fold lowercases a string and strips the diacritics common in Romance
// languages, so "perché" and "perche" index identically.
func Fold(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		b.WriteRune(FoldRune(r))
	}
	return b.String()
}

// FoldRune lowercases a single rune and strips its diacritic, if any.
func FoldRune(r rune) rune {
	r = unicode.ToLower(r)
	if folded, ok := diacritics[r]; ok {
		return folded
	}
	return r
}

var diacritics = map[rune]rune{
	'à': 'a', 'á': 'a', 'â': 'a', 'ã': 'a', 'ä': 'a', 'å': 'a',
	'è': 'e', 'é': 'e', 'ê': 'e', 'ë': 'e',
	'ì': 'i', 'í': 'i', 'î': 'i', 'ï': 'i',
	'ò': 'o', 'ó': 'o', 'ô': 'o', 'õ': 'o', 'ö': 'o',
	'ù': 'u', 'ú': 'u', 'û': 'u', 'ü': 'u',
	'ç': 'c', 'ñ': 'n', 'ý': 'y',
}

// Tokenize splits text on anything that is not a letter or digit,
// folding each token. Single-character tokens are dropped.
func Tokenize(text string) []string {
	var tokens []string
	var current strings.Builder
	for _, r := range Fold(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			current.WriteRune(r)
			continue
		}
		if current.Len() > 1 {
			tokens = append(tokens, current.String())
		}
		current.Reset()
	}
	if current.Len() > 1 {
		tokens = append(tokens, current.String())
	}
	return tokens
}

// ContentTokens tokenizes entry text for lexical indexing: stopwords
// for the given language are removed, but the total pre-removal count
// is returned too, for entry length normalization.
func ContentTokens(text, langTag string) (tokens []string, total int) {
	stop := lang.Stopwords(langTag)
	all := Tokenize(text)
	for _, t := range all {
		if !stop[t] {
			tokens = append(tokens, t)
		}
	}
	return tokens, len(all)
}

// QueryTokens extracts the significant tokens from a query: folded,
// stopwords removed, at least three characters (shorter words match
// too many articles and clitics).
func QueryTokens(query, langTag string) []string {
	stop := lang.Stopwords(langTag)
	var out []string
	for _, t := range Tokenize(query) {
		if len(t) >= 3 && !stop[t] {
			out = append(out, t)
		}
	}
	return out
}

// TermFrequencies counts occurrences per token.
func TermFrequencies(tokens []string) map[string]int {
	tf := make(map[string]int, len(tokens))
	for _, t := range tokens {
		tf[t]++
	}
	return tf
}

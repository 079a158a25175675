package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/cristal-orion/Reminor/internal/daterange"
	"github.com/cristal-orion/Reminor/internal/nlp"
)

// ContextForChat assembles journal memory as prompt-ready text for a
// conversational message. Each recalled entry becomes a block headed
// by its date and relevance, blocks joined by a separator so a
// downstream model can tell entries apart. The result fits within
// maxChars.
func (e *Engine) ContextForChat(ctx context.Context, owner, message string, maxChars int) (string, error) {
	if owner == "" {
		return "", ErrEmptyOwner
	}
	if maxChars <= 0 {
		maxChars = 4000
	}

	langTag := e.lang(owner)
	tokens := nlp.QueryTokens(message, langTag)
	r, hasRange := daterange.Resolve(message, e.now(), langTag)

	var blocks []string

	switch {
	case hasRange && len(tokens) == 0:
		// Purely temporal: load the resolved range directly.
		entries, err := e.Journal.List(owner, r.Start, r.End)
		if err != nil {
			return "", err
		}
		for i := len(entries) - 1; i >= 0; i-- {
			blocks = append(blocks, fmt.Sprintf("[%s]\n%s", entries[i].Date, strings.TrimSpace(entries[i].Text)))
		}

	case len(tokens) == 0:
		// Nothing searchable: fall back to the most recent entries.
		entries, err := e.recentEntries(owner, 3)
		if err != nil {
			return "", err
		}
		for _, entry := range entries {
			blocks = append(blocks, fmt.Sprintf("[%s]\n%s", entry.Date, strings.TrimSpace(entry.Text)))
		}

	default:
		results, err := e.Search(ctx, owner, message, 5)
		if err != nil {
			return "", err
		}
		for _, res := range results {
			text, err := e.Journal.Get(owner, res.Date)
			if err != nil {
				continue
			}
			blocks = append(blocks, fmt.Sprintf("[%s] (rilevanza %.2f)\n%s",
				res.Date, res.Score, strings.TrimSpace(text)))
		}
	}

	return joinBudgeted(blocks, maxChars), nil
}

// joinBudgeted joins blocks with a separator, truncating the last
// block that would overflow the budget and dropping the rest.
func joinBudgeted(blocks []string, maxChars int) string {
	const sep = "\n---\n"

	var b strings.Builder
	for i, block := range blocks {
		add := len(block)
		if i > 0 {
			add += len(sep)
		}
		if b.Len()+add > maxChars {
			remaining := maxChars - b.Len()
			if i > 0 {
				remaining -= len(sep)
			}
			if remaining > 80 {
				if i > 0 {
					b.WriteString(sep)
				}
				cut := block[:remaining-3] // leave room for the ellipsis
				for len(cut) > 0 && !isRuneStart(cut[len(cut)-1]) {
					cut = cut[:len(cut)-1]
				}
				if len(cut) > 0 && cut[len(cut)-1] >= 0xC0 {
					cut = cut[:len(cut)-1]
				}
				b.WriteString(strings.TrimSpace(cut))
				b.WriteString("...")
			}
			break
		}
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(block)
	}
	return b.String()
}

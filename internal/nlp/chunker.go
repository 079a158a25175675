package nlp

import "strings"

// Chunk is a passage of one entry sized to fit an embedding model's
// effective input window. Offset points back to the source text.
type Chunk struct {
	Text   string
	Index  int
	Offset int // byte offset of the chunk's first paragraph in the entry
}

// SplitChunks packs consecutive paragraphs into chunks of at most
// maxTokens (estimated at ~4 bytes per token). Short entries produce a
// single chunk; paragraph boundaries are never split.
func SplitChunks(text string, maxTokens int) []Chunk {
	if maxTokens <= 0 {
		maxTokens = 400
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}

	type paragraph struct {
		text   string
		offset int
	}
	var paras []paragraph
	offset := 0
	for _, part := range strings.Split(text, "\n\n") {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			pad := strings.Index(part, trimmed)
			paras = append(paras, paragraph{trimmed, offset + pad})
		}
		offset += len(part) + 2
	}
	if len(paras) == 0 {
		return nil
	}

	var chunks []Chunk
	var current strings.Builder
	currentTokens := 0
	currentOffset := paras[0].offset

	flush := func() {
		if current.Len() == 0 {
			return
		}
		chunks = append(chunks, Chunk{
			Text:   current.String(),
			Index:  len(chunks),
			Offset: currentOffset,
		})
		current.Reset()
		currentTokens = 0
	}

	for _, p := range paras {
		tokens := EstimateTokens(p.text)
		if currentTokens > 0 && currentTokens+tokens > maxTokens {
			flush()
			currentOffset = p.offset
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(p.text)
		currentTokens += tokens
	}
	flush()

	return chunks
}

// EstimateTokens approximates the token count of text at four bytes
// per token, the usual ratio for Latin-script prose.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}

package engine

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cristal-orion/Reminor/internal/journal"
)

// ImportResult reports the outcome for one file in a bulk import.
type ImportResult struct {
	File   string `json:"file"`
	Date   string `json:"date,omitempty"`
	Status string `json:"status"` // imported, skipped, failed
	Reason string `json:"reason,omitempty"`
}

// ImportEntries walks a directory of text files, derives each file's
// date from its name, and writes and indexes every valid entry. Files
// without a recognizable date, or shorter than 10 characters of
// content, are skipped and reported rather than failing the import.
func (e *Engine) ImportEntries(ctx context.Context, owner, dir string) ([]ImportResult, error) {
	if owner == "" {
		return nil, ErrEmptyOwner
	}

	names, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, de := range names {
		if de.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(de.Name()))
		if ext != ".txt" && ext != ".md" {
			continue
		}
		files = append(files, de.Name())
	}
	sort.Strings(files)

	results := make([]ImportResult, 0, len(files))
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		date, ok := journal.ParseFilenameDate(name)
		if !ok {
			results = append(results, ImportResult{
				File: name, Status: "skipped", Reason: "no date in filename",
			})
			continue
		}

		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			results = append(results, ImportResult{
				File: name, Date: date, Status: "failed", Reason: err.Error(),
			})
			continue
		}
		text := strings.TrimSpace(string(raw))
		if len(text) < 10 {
			results = append(results, ImportResult{
				File: name, Date: date, Status: "skipped", Reason: "content too short",
			})
			continue
		}

		if err := e.WriteEntry(ctx, owner, date, text); err != nil {
			results = append(results, ImportResult{
				File: name, Date: date, Status: "failed", Reason: err.Error(),
			})
			continue
		}
		results = append(results, ImportResult{File: name, Date: date, Status: "imported"})
	}

	imported := 0
	for _, r := range results {
		if r.Status == "imported" {
			imported++
		}
	}
	e.log.Info().Str("owner", owner).Int("imported", imported).
		Int("total", len(results)).Msg("import complete")
	return results, nil
}

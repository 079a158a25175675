package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestImportEntries(t *testing.T) {
	e := newTestEngine(t)
	dir := t.TempDir()

	writeFile(t, dir, "2024-01-15.txt", "Oggi sono andata al mare con Maria.")
	writeFile(t, dir, "diario_16-01-2024.txt", "In montagna con Luca per tutto il giorno.")
	writeFile(t, dir, "appunti.txt", "Nessuna data nel nome di questo file.")
	writeFile(t, dir, "2024-01-17.txt", "corto")
	writeFile(t, dir, "foto.jpg", "binario")

	results, err := e.ImportEntries(context.Background(), "anna", dir)
	if err != nil {
		t.Fatalf("ImportEntries: %v", err)
	}

	byFile := make(map[string]ImportResult)
	for _, r := range results {
		byFile[r.File] = r
	}

	if r := byFile["2024-01-15.txt"]; r.Status != "imported" || r.Date != "2024-01-15" {
		t.Errorf("iso file = %+v", r)
	}
	if r := byFile["diario_16-01-2024.txt"]; r.Status != "imported" || r.Date != "2024-01-16" {
		t.Errorf("dmy file = %+v", r)
	}
	if r := byFile["appunti.txt"]; r.Status != "skipped" {
		t.Errorf("dateless file = %+v, want skipped", r)
	}
	if r := byFile["2024-01-17.txt"]; r.Status != "skipped" {
		t.Errorf("short file = %+v, want skipped", r)
	}
	if _, ok := byFile["foto.jpg"]; ok {
		t.Error("non-text file was considered")
	}

	// Imported entries are stored and searchable.
	text, err := e.GetEntry("anna", "2024-01-15")
	if err != nil || text == "" {
		t.Errorf("imported entry not stored: %v", err)
	}
	found, err := e.Search(context.Background(), "anna", "Maria", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(found) != 1 || found[0].Date != "2024-01-15" {
		t.Errorf("imported entry not indexed: %+v", found)
	}
}

func TestImportEntriesMissingDir(t *testing.T) {
	e := newTestEngine(t)

	if _, err := e.ImportEntries(context.Background(), "anna", "/nonexistent/path"); err == nil {
		t.Error("missing directory accepted")
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultWeights(t *testing.T) {
	cfg := Default()

	if cfg.Retrieval.EntityWeight <= cfg.Retrieval.SemanticWeight {
		t.Error("entity weight should exceed semantic weight")
	}
	if cfg.Retrieval.SemanticWeight <= cfg.Retrieval.LexicalWeight {
		t.Error("semantic weight should exceed lexical weight")
	}
	if cfg.Retrieval.MinSimilarity != 0.2 {
		t.Errorf("min similarity = %f, want 0.2", cfg.Retrieval.MinSimilarity)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("server:\n  port: 9999\nlanguage: en\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Language != "en" {
		t.Errorf("language = %q, want en", cfg.Language)
	}
	// Untouched sections keep their defaults.
	if cfg.Retrieval.EntityWeight != 1.0 {
		t.Errorf("entity weight = %f, want default", cfg.Retrieval.EntityWeight)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("missing file accepted")
	}
}

func TestListenAddr(t *testing.T) {
	cfg := Default()
	if got := cfg.ListenAddr(); got != "127.0.0.1:37850" {
		t.Errorf("ListenAddr = %q", got)
	}
}

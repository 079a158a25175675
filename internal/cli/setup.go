package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/cristal-orion/Reminor/internal/config"
	"github.com/cristal-orion/Reminor/internal/engine"
	"github.com/cristal-orion/Reminor/internal/index"
	"github.com/cristal-orion/Reminor/internal/journal"
	"github.com/cristal-orion/Reminor/internal/nlp"
)

// app bundles everything a command needs after setup.
type app struct {
	cfg     config.Config
	log     zerolog.Logger
	journal *journal.Store
	db      *index.DB
	engine  *engine.Engine
}

// newApp loads .env and config, opens the journal store and index
// database, and wires the engine. Commands that only read config can
// still use app.cfg; Close releases the database.
func newApp() (*app, error) {
	_ = godotenv.Load()

	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return nil, err
		}
	}
	if lang := os.Getenv("REMINOR_LANGUAGE"); lang != "" {
		cfg.Language = lang
	}
	if dir := os.Getenv("REMINOR_DATA_DIR"); dir != "" {
		cfg.Storage.DataDir = dir
	}

	dataDir := cfg.Storage.DataDir
	if dataDir == "" {
		var err error
		dataDir, err = journal.DefaultDataDir()
		if err != nil {
			return nil, fmt.Errorf("resolve data dir: %w", err)
		}
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	cfg.Storage.DataDir = dataDir

	indexPath := cfg.Storage.IndexPath
	if indexPath == "" {
		indexPath = index.DefaultPath(dataDir)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger()
	if os.Getenv("REMINOR_DEBUG") == "" {
		logger = logger.Level(zerolog.InfoLevel)
	}

	db, err := index.Open(indexPath)
	if err != nil {
		return nil, fmt.Errorf("open index database: %w", err)
	}

	store := journal.New(dataDir)
	eng := engine.New(store, db, cfg, logger)

	return &app{
		cfg:     cfg,
		log:     logger,
		journal: store,
		db:      db,
		engine:  eng,
	}, nil
}

// attachEmbedder probes Ollama and falls back to a local TF-IDF
// embedder built from the owner corpus. Returns a label for logging.
func (a *app) attachEmbedder() string {
	if nlp.ProbeOllama(a.cfg.Embedding.OllamaURL, a.cfg.Embedding.Model) {
		a.engine.SetEmbedder(nlp.NewOllamaEmbedder(a.cfg.Embedding.OllamaURL, a.cfg.Embedding.Model, 768))
		return "ollama (" + a.cfg.Embedding.Model + ")"
	}

	docs := a.corpusDocs()
	a.engine.SetEmbedder(nlp.NewTFIDFEmbedder(docs, 512))
	return "tfidf (fallback)"
}

// corpusDocs gathers every entry text across owners for TF-IDF
// vocabulary building.
func (a *app) corpusDocs() []string {
	var docs []string
	owners, err := a.journal.Owners()
	if err != nil {
		return nil
	}
	for _, owner := range owners {
		entries, err := a.journal.List(owner, "", "")
		if err != nil {
			continue
		}
		for _, e := range entries {
			docs = append(docs, e.Text)
		}
	}
	return docs
}

func (a *app) Close() {
	a.db.Close()
}

// ownerFlag resolves the owner for CLI commands.
func ownerOrDefault(owner string) string {
	if owner != "" {
		return owner
	}
	if o := os.Getenv("REMINOR_OWNER"); o != "" {
		return o
	}
	return "default"
}

// resolveImportDir makes a relative import path absolute for clearer
// log output.
func resolveImportDir(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

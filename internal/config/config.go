package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all reminor configuration. Fusion weights, thresholds and
// chunk sizes live here rather than in package-level state so multiple
// engines (tests, tenants) never share tuning.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Language  string          `yaml:"language"` // default language tag: "it", "en"
}

type ServerConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

type StorageConfig struct {
	DataDir   string `yaml:"data_dir"`   // per-owner journal dirs live under here
	IndexPath string `yaml:"index_path"` // sqlite file; derived data only, safe to delete
}

type EmbeddingConfig struct {
	OllamaURL      string `yaml:"ollama_url"`
	Model          string `yaml:"model"`
	ChunkTokens    int    `yaml:"chunk_tokens"`    // max tokens per entry chunk
	TimeoutSeconds int    `yaml:"timeout_seconds"` // per embed call
}

type RetrievalConfig struct {
	EntityWeight        float64 `yaml:"entity_weight"`
	SemanticWeight      float64 `yaml:"semantic_weight"`
	LexicalWeight       float64 `yaml:"lexical_weight"`
	MinSimilarity       float64 `yaml:"min_similarity"` // cosine floor for semantic hits
	QueryTimeoutSeconds int     `yaml:"query_timeout_seconds"`
}

// Default returns a Config with sensible defaults. Entity exact-match
// outweighs semantic, which outweighs lexical.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37850,
		},
		Storage: StorageConfig{
			DataDir:   "", // resolved at runtime via journal.DefaultDataDir()
			IndexPath: "",
		},
		Embedding: EmbeddingConfig{
			OllamaURL:      "http://localhost:11434",
			Model:          "nomic-embed-text",
			ChunkTokens:    400,
			TimeoutSeconds: 30,
		},
		Retrieval: RetrievalConfig{
			EntityWeight:        1.0,
			SemanticWeight:      0.75,
			LexicalWeight:       0.5,
			MinSimilarity:       0.2,
			QueryTimeoutSeconds: 15,
		},
		Language: "it",
	}
}

// Load reads a YAML config file, overlaying values onto Default().
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

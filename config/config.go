package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// CollectionName is the fixed name of the persisted vector collection.
const CollectionName = "sage_docs"

// Config holds all configuration for the assistant.
type Config struct {
	DataDir   string          `yaml:"data_dir"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Retrieve  RetrieveConfig  `yaml:"retrieve"`
	Models    ModelsConfig    `yaml:"models"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Backend   BackendConfig   `yaml:"backend"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// IngestConfig holds document ingestion configuration.
type IngestConfig struct {
	DocumentsDir string   `yaml:"documents_dir"`
	Includes     []string `yaml:"includes"`
	Excludes     []string `yaml:"excludes"`
	ChunkSize    int      `yaml:"chunk_size"`
	ChunkOverlap int      `yaml:"chunk_overlap"`
}

// RetrieveConfig holds retrieval configuration.
type RetrieveConfig struct {
	TopK     int     `yaml:"top_k"`
	MinScore float64 `yaml:"min_score"` // similarity floor; results below are dropped
}

// ModelEntry describes one approved generation model.
type ModelEntry struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// ModelsConfig is the registry of approved generation models. Keys are short
// aliases; Default names the alias used when a caller does not pick a model.
// Allowed is the hard safety allow-list of fully-qualified model names.
type ModelsConfig struct {
	Registry map[string]ModelEntry `yaml:"registry"`
	Default  string                `yaml:"default"`
	Allowed  []string              `yaml:"allowed"`
}

// EmbeddingConfig holds embedding configuration. Changing the model
// invalidates the index and requires a full re-ingestion.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"` // "openai" or "mock"
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
	Dimension int    `yaml:"dimension"`
	BatchSize int    `yaml:"batch_size"`
}

// BackendConfig holds text-completion backend configuration.
type BackendConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// ServerConfig holds HTTP server configuration. RequestTimeoutSecs is the
// outer deadline per request and must exceed Backend.TimeoutSecs.
type ServerConfig struct {
	Addr               string `yaml:"addr"`
	RatePerMinute      int    `yaml:"rate_per_minute"`
	RateBurst          int    `yaml:"rate_burst"`
	MaxBodyBytes       int64  `yaml:"max_body_bytes"`
	RequestTimeoutSecs int    `yaml:"request_timeout_secs"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DataDir: "data",
		Ingest: IngestConfig{
			DocumentsDir: "data/raw",
			Includes:     []string{"**/*.pdf", "**/*.txt", "**/*.md"},
			Excludes:     []string{"**/.*/**"},
			ChunkSize:    500,
			ChunkOverlap: 100,
		},
		Retrieve: RetrieveConfig{
			TopK:     10,
			MinScore: 0.2,
		},
		Models: ModelsConfig{
			Registry: map[string]ModelEntry{
				"llama": {
					Name:        "llama3.1:8b",
					Description: "LLaMA 3.1 8B Quantized (default, fastest)",
				},
				"deepseek": {
					Name:        "deepseek-coder:6.7b",
					Description: "DeepSeek Coder 6.7B Quantized (fallback)",
				},
			},
			Default: "llama",
			Allowed: []string{"llama3.1:8b", "deepseek-coder:6.7b"},
		},
		Embedding: EmbeddingConfig{
			Provider:  "openai",
			Model:     "all-minilm",
			BaseURL:   "http://localhost:11434/v1",
			APIKeyEnv: "",
			Dimension: 384,
			BatchSize: 100,
		},
		Backend: BackendConfig{
			BaseURL:     "http://localhost:11434/v1",
			APIKeyEnv:   "",
			TimeoutSecs: 60,
		},
		Server: ServerConfig{
			Addr:               ":8080",
			RatePerMinute:      30,
			RateBurst:          10,
			MaxBodyBytes:       1 << 20,
			RequestTimeoutSecs: 90,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults when
// the file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for sage.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "sage.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}
	return DefaultConfig(), nil
}

// Validate checks the model registry for configuration bugs. These are
// fail-fast errors, not runtime conditions.
func (c *Config) Validate() error {
	if len(c.Models.Registry) == 0 {
		return fmt.Errorf("models.registry must not be empty")
	}
	if _, ok := c.Models.Registry[c.Models.Default]; !ok {
		return fmt.Errorf("models.default %q is not a registry key", c.Models.Default)
	}

	allowed := make(map[string]struct{}, len(c.Models.Allowed))
	for _, name := range c.Models.Allowed {
		allowed[name] = struct{}{}
	}
	for key, entry := range c.Models.Registry {
		if entry.Name == "" {
			return fmt.Errorf("models.registry[%s] has an empty name", key)
		}
		if _, ok := allowed[entry.Name]; !ok {
			return fmt.Errorf("models.registry[%s] names %q, which is not allow-listed", key, entry.Name)
		}
	}

	if c.Ingest.ChunkSize <= c.Ingest.ChunkOverlap {
		return fmt.Errorf("ingest.chunk_size (%d) must exceed ingest.chunk_overlap (%d)",
			c.Ingest.ChunkSize, c.Ingest.ChunkOverlap)
	}
	if c.Server.RequestTimeoutSecs <= c.Backend.TimeoutSecs {
		return fmt.Errorf("server.request_timeout_secs (%d) must exceed backend.timeout_secs (%d)",
			c.Server.RequestTimeoutSecs, c.Backend.TimeoutSecs)
	}
	return nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// VectorDBPath returns the path to the vector database file.
func (c *Config) VectorDBPath() string {
	return filepath.Join(c.DataDir, "vector_db", "sage.db")
}

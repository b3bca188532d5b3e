package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Ingest.ChunkSize != 500 {
		t.Errorf("expected ChunkSize=500, got %d", cfg.Ingest.ChunkSize)
	}
	if cfg.Ingest.ChunkOverlap != 100 {
		t.Errorf("expected ChunkOverlap=100, got %d", cfg.Ingest.ChunkOverlap)
	}
	if cfg.Retrieve.TopK != 10 {
		t.Errorf("expected TopK=10, got %d", cfg.Retrieve.TopK)
	}
	if cfg.Retrieve.MinScore != 0.2 {
		t.Errorf("expected MinScore=0.2, got %f", cfg.Retrieve.MinScore)
	}
	if cfg.Models.Default != "llama" {
		t.Errorf("expected default model key 'llama', got %q", cfg.Models.Default)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/sage.yaml")
	if err != nil {
		t.Errorf("expected no error for non-existent file, got %v", err)
	}
	if cfg == nil {
		t.Error("expected default config, got nil")
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "sage.yaml")

	content := `
ingest:
  chunk_size: 300
  chunk_overlap: 50
retrieve:
  top_k: 5
  min_score: 0.3
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Ingest.ChunkSize != 300 {
		t.Errorf("expected ChunkSize=300, got %d", cfg.Ingest.ChunkSize)
	}
	if cfg.Retrieve.TopK != 5 {
		t.Errorf("expected TopK=5, got %d", cfg.Retrieve.TopK)
	}
	// Untouched sections keep their defaults.
	if cfg.Models.Default != "llama" {
		t.Errorf("expected default model key to survive partial config, got %q", cfg.Models.Default)
	}
}

func TestValidate_UnknownDefaultKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Models.Default = "mystery"

	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown default model key")
	}
}

func TestValidate_RegistryNameNotAllowed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Models.Registry["rogue"] = ModelEntry{Name: "rogue-model:70b"}

	if err := cfg.Validate(); err == nil {
		t.Error("expected error for registry entry outside the allow-list")
	}
}

func TestValidate_ChunkOverlapTooLarge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Ingest.ChunkSize = 100
	cfg.Ingest.ChunkOverlap = 100

	if err := cfg.Validate(); err == nil {
		t.Error("expected error when overlap >= size")
	}
}

func TestValidate_OuterTimeoutMustExceedInner(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.RequestTimeoutSecs = cfg.Backend.TimeoutSecs

	if err := cfg.Validate(); err == nil {
		t.Error("expected error when outer timeout does not exceed backend timeout")
	}
}

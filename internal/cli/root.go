package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"sage/config"
	"sage/internal/adapter/embedding"
	"sage/internal/adapter/llm"
	"sage/internal/adapter/store"
	"sage/internal/pipeline"
	"sage/internal/port"
	"sage/internal/retrieval"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "sage",
	Short: "SAGE - retrieval-augmented assistant for university documents",
	Long: `SAGE answers questions about university documents by retrieving
relevant passages from an ingested document index and generating grounded
answers with a local language model.

Example usage:
  sage ingest data/raw             # Ingest documents into the index
  sage ask -q "library hours?"     # Ask a single question
  sage chat                        # Interactive chat session
  sage serve                       # Start the HTTP API`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			wd, werr := os.Getwd()
			if werr != nil {
				return fmt.Errorf("get working directory: %w", werr)
			}
			cfg, err = config.LoadFromDir(wd)
		}
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		setupLogging(cfg.Logging.Level)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./sage.yaml)")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

// newEmbedder builds the configured embedding provider.
func newEmbedder() (port.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "openai", "":
		return embedding.NewOpenAIEmbedder(
			cfg.Embedding.APIKeyEnv,
			cfg.Embedding.Model,
			cfg.Embedding.BaseURL,
			cfg.Embedding.Dimension,
			cfg.Embedding.BatchSize,
		)
	case "mock":
		return embedding.NewMockEmbedder(cfg.Embedding.Dimension), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
	}
}

// newPipeline wires the full question-answering path for query-side
// commands. The collection is opened read-only; a missing index degrades
// to refusals rather than errors.
func newPipeline() (*pipeline.Pipeline, *store.BoltCollection, *llm.OpenAICompleter, error) {
	embedder, err := newEmbedder()
	if err != nil {
		return nil, nil, nil, err
	}

	coll := store.Open(cfg.VectorDBPath(), config.CollectionName)
	retriever := retrieval.NewRetriever(coll, embedder, cfg.Retrieve.TopK, cfg.Retrieve.MinScore)
	completer := llm.NewOpenAICompleter(cfg.Backend.APIKeyEnv, cfg.Backend.BaseURL)
	timeout := time.Duration(cfg.Backend.TimeoutSecs) * time.Second

	return pipeline.New(retriever, completer, cfg.Models, timeout), coll, completer, nil
}

package cli

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"sage/config"
	"sage/internal/adapter/chunker"
	"sage/internal/adapter/store"
	"sage/internal/ingest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [dir]",
	Short: "Ingest documents into the vector index",
	Long: `Ingest documents from the given directory (default from config) into
the vector index. PDF, text and markdown files are extracted, cleaned,
chunked and embedded. Re-ingesting a document replaces its previous chunks.

Examples:
  sage ingest               # Ingest the configured documents directory
  sage ingest data/raw      # Ingest a specific directory`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	dir := cfg.Ingest.DocumentsDir
	if len(args) > 0 {
		dir = args[0]
	}

	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("documents directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", dir)
	}

	embedder, err := newEmbedder()
	if err != nil {
		return err
	}

	coll, err := store.Create(cfg.VectorDBPath(), config.CollectionName)
	if err != nil {
		return fmt.Errorf("open vector collection: %w", err)
	}
	defer coll.Close()

	job := ingest.NewJob(
		coll,
		ingest.NewWalker(cfg.Ingest.Includes, cfg.Ingest.Excludes),
		chunker.NewWindowChunker(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap),
		embedder,
		cfg.Embedding.BatchSize,
	)

	fmt.Printf("Ingesting %s...\n", dir)

	var bar *progressbar.ProgressBar
	progress := func(processed, total int, currentFile string) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Ingesting[reset]"),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}
		bar.Set(processed)
	}

	result, err := job.Run(cmd.Context(), dir, progress)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("\nIngestion complete:\n")
	fmt.Printf("  Sources ingested: %d\n", result.SourcesIngested)
	fmt.Printf("  Sources skipped:  %d (no text)\n", result.SourcesSkipped)
	fmt.Printf("  Chunks created:   %d\n", result.ChunksCreated)

	if len(result.Errors) > 0 {
		fmt.Printf("\nWarnings:\n")
		for _, e := range result.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}

	fmt.Printf("\nIndex stored at: %s\n", cfg.VectorDBPath())
	return nil
}

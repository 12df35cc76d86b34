package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gvilla/kbase/internal/chunker"
	"github.com/gvilla/kbase/internal/embeddings"
	"github.com/gvilla/kbase/internal/loader"
	"github.com/gvilla/kbase/internal/progress"
	"github.com/gvilla/kbase/internal/vectordb"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Load documents, build the vector index, and persist it",
	Long:  `Reads every matching document from the knowledge directory, splits it into overlapping chunks, embeds the chunks, and writes the resulting index to disk.`,
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().String("dir", "", "knowledge directory (overrides config)")
	buildCmd.Flags().Bool("save", true, "persist the index after building")
	buildCmd.Flags().Bool("stats", false, "print collection statistics after loading")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	start := time.Now()
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
		cfg.KnowledgeDir = dir
	}
	save, _ := cmd.Flags().GetBool("save")
	showStats, _ := cmd.Flags().GetBool("stats")

	docs, err := loader.New(cfg.Include, log).LoadDirectory(cfg.KnowledgeDir)
	if err != nil {
		return fmt.Errorf("loading documents: %w", err)
	}
	if len(docs) == 0 {
		fmt.Printf("No documents found in %s. Add .txt or .md files and run `kbase build` again.\n", cfg.KnowledgeDir)
		return nil
	}
	fmt.Printf("Loaded %d document(s) from %s\n", len(docs), cfg.KnowledgeDir)

	if showStats {
		printStats(loader.Stats(docs))
	}

	splitter, err := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return fmt.Errorf("configuring chunker: %w", err)
	}
	chunks := splitter.Split(docs)
	fmt.Printf("Split into %d chunk(s) (size %d, overlap %d)\n", len(chunks), cfg.ChunkSize, cfg.ChunkOverlap)

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}

	reporter := progress.NewReporter()
	reporter.Start(len(chunks))
	embedder = embeddings.WithProgress(embedder, 0, func(done, total int) {
		reporter.Update(done, "")
	})

	index, err := vectordb.NewIndex(string(cfg.IndexBackend), embedder)
	if err != nil {
		return err
	}
	if err := index.Build(ctx, chunks); err != nil {
		reporter.Finish()
		return fmt.Errorf("building index: %w", err)
	}
	reporter.Finish()

	if save {
		if err := index.Persist(ctx, cfg.IndexDir); err != nil {
			return fmt.Errorf("persisting index: %w", err)
		}
	}

	fmt.Printf("Indexed %d chunk(s) in %s (backend=%s, dir=%s)\n",
		index.Count(), time.Since(start).Round(time.Millisecond), cfg.IndexBackend, cfg.IndexDir)
	return nil
}

func printStats(stats loader.CollectionStats) {
	fmt.Fprintf(os.Stderr, "Documents: %d\n", stats.TotalDocuments)
	fmt.Fprintf(os.Stderr, "Words:     %d (avg %d per document)\n", stats.TotalWords, stats.AvgWordsPerDoc)
	fmt.Fprintf(os.Stderr, "Authors:   %s\n", strings.Join(stats.Authors, ", "))
	fmt.Fprintf(os.Stderr, "Topics:    %s\n", strings.Join(stats.Topics, ", "))
}

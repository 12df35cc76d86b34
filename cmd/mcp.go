package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/gvilla/kbase/internal/mcp"
	"github.com/gvilla/kbase/internal/rag"
	"github.com/gvilla/kbase/internal/vectordb"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing knowledge base search and ask tools for AI agents.`,
	RunE:  runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}

	index, err := vectordb.NewIndex(string(cfg.IndexBackend), embedder)
	if err != nil {
		return err
	}
	if err := index.Load(ctx, cfg.IndexDir); err != nil {
		// The search tool reports an unindexed knowledge base itself.
		fmt.Fprintf(os.Stderr, "Warning: could not load index from %s: %v\n", cfg.IndexDir, err)
		fmt.Fprintf(os.Stderr, "Search results will be empty. Run `kbase build` first.\n")
	}

	// The ask tool degrades gracefully when no provider is available.
	var engine *rag.Engine
	if provider, err := createLLMProviderFromConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: no LLM provider available: %v\n", err)
	} else {
		engine = rag.New(index, provider, cfg.Model, cfg.MaxTokens, cfg.Temperature)
	}

	mcpserver.Version = Version

	fmt.Fprintf(os.Stderr, "kbase MCP server started on stdio (chunks=%d)\n", index.Count())

	srv := mcpserver.NewServer(index, engine, cfg.TopK)
	return srv.Serve()
}

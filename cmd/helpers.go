package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/gvilla/kbase/internal/config"
	"github.com/gvilla/kbase/internal/db"
	"github.com/gvilla/kbase/internal/embeddings"
	"github.com/gvilla/kbase/internal/history"
	"github.com/gvilla/kbase/internal/llm"
	"github.com/gvilla/kbase/internal/rag"
	"github.com/gvilla/kbase/internal/vectordb"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `kbase init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// createEmbedderFromConfig creates an embeddings.Embedder based on config.
// Shared by the build, ask, demo, chat, serve, and mcp commands.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	provider := cfg.EmbeddingProvider
	if provider == "" {
		provider = cfg.Provider
	}

	switch provider {
	case config.ProviderOpenAI:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for OpenAI embeddings")
		}
		return embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(cfg.EmbeddingModel)), nil
	case config.ProviderOllama:
		return embeddings.NewOllamaEmbedder(cfg.EmbeddingModel, cfg.EmbeddingDimensions, os.Getenv("OLLAMA_HOST")), nil
	default:
		// Providers without native embeddings fall back to OpenAI.
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required (used for embeddings when provider is %s)", provider)
		}
		return embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(cfg.EmbeddingModel)), nil
	}
}

// createLLMProviderFromConfig creates an LLM provider based on config settings.
func createLLMProviderFromConfig(cfg *config.Config) (llm.Provider, error) {
	return llm.NewProvider(string(cfg.Provider), cfg.Model)
}

// loadIndex creates the configured index backend and restores it from
// the index directory.
func loadIndex(ctx context.Context, cfg *config.Config, embedder embeddings.Embedder) (vectordb.Index, error) {
	index, err := vectordb.NewIndex(string(cfg.IndexBackend), embedder)
	if err != nil {
		return nil, err
	}
	if err := index.Load(ctx, cfg.IndexDir); err != nil {
		return nil, fmt.Errorf("loading index from %s: %w\nRun `kbase build` first to build the index", cfg.IndexDir, err)
	}
	return index, nil
}

// createEngine wires the index and LLM provider into a ready rag.Engine.
func createEngine(cfg *config.Config, index vectordb.Index) (*rag.Engine, error) {
	provider, err := createLLMProviderFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating LLM provider: %w", err)
	}
	return rag.New(index, provider, cfg.Model, cfg.MaxTokens, cfg.Temperature), nil
}

// openHistory opens the ask history store. A missing or unopenable
// database is not fatal; callers get nil and a warning is logged.
func openHistory(cfg *config.Config) *history.Store {
	if cfg.HistoryDB == "" {
		return nil
	}
	database, err := db.Open(cfg.HistoryDB)
	if err != nil {
		log.WithError(err).Warn("could not open history database; history disabled")
		return nil
	}
	return history.NewStore(database)
}

// printResult writes an answer with its citations to stdout.
func printResult(result *rag.Result) {
	fmt.Println(result.Answer)
	if len(result.Sources) > 0 {
		fmt.Println("\nSources:")
		for _, src := range result.Sources {
			fmt.Printf("  - %s by %s (%s)\n", src.File, src.Author, src.Topic)
		}
	}
}

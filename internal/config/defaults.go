package config

// DefaultDemoQuestions are run by `kbase demo` when the config does
// not define its own set.
var DefaultDemoQuestions = []string{
	"What topics does this knowledge base cover?",
	"Who are the authors of these documents?",
	"Summarize the most recent document.",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		KnowledgeDir: "knowledge_base",
		IndexDir:     ".kbase/index",
		IndexBackend: BackendFlat,

		Provider:    ProviderOpenAI,
		Model:       "gpt-4o-mini",
		MaxTokens:   1500,
		Temperature: 0.7,

		EmbeddingProvider:   ProviderOpenAI,
		EmbeddingModel:      "text-embedding-3-small",
		EmbeddingDimensions: 1536,

		ChunkSize:    500,
		ChunkOverlap: 50,
		TopK:         3,

		Include:       []string{"*.txt", "*.md"},
		HistoryDB:     ".kbase/history.db",
		DemoQuestions: DefaultDemoQuestions,
	}
}

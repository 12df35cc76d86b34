package config

// ProviderType identifies an LLM or embedding provider.
type ProviderType string

const (
	ProviderOpenAI    ProviderType = "openai"
	ProviderAnthropic ProviderType = "anthropic"
	ProviderOllama    ProviderType = "ollama"
)

// IndexBackend selects the vector index implementation.
type IndexBackend string

const (
	BackendFlat    IndexBackend = "flat"
	BackendChromem IndexBackend = "chromem"
)

// Config is the top-level kbase configuration, corresponding to .kbase.yml.
type Config struct {
	KnowledgeDir string       `yaml:"knowledge_dir" koanf:"knowledge_dir"`
	IndexDir     string       `yaml:"index_dir" koanf:"index_dir"`
	IndexBackend IndexBackend `yaml:"index_backend" koanf:"index_backend"`

	Provider  ProviderType `yaml:"provider" koanf:"provider"`
	Model     string       `yaml:"model" koanf:"model"`
	MaxTokens int          `yaml:"max_tokens" koanf:"max_tokens"`
	// Temperature is passed through to the generation provider unchanged.
	Temperature float64 `yaml:"temperature" koanf:"temperature"`

	EmbeddingProvider   ProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel      string       `yaml:"embedding_model" koanf:"embedding_model"`
	EmbeddingDimensions int          `yaml:"embedding_dimensions" koanf:"embedding_dimensions"`

	ChunkSize    int `yaml:"chunk_size" koanf:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap" koanf:"chunk_overlap"`
	TopK         int `yaml:"top_k" koanf:"top_k"`

	Include       []string `yaml:"include" koanf:"include"`
	HistoryDB     string   `yaml:"history_db" koanf:"history_db"`
	DemoQuestions []string `yaml:"demo_questions" koanf:"demo_questions"`
}

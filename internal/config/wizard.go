package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to kbase! Let's configure your knowledge base.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Knowledge directory.
	dirPrompt := promptui.Prompt{
		Label:   "Directory containing your documents",
		Default: cfg.KnowledgeDir,
	}
	knowledgeDir, err := dirPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("knowledge directory: %w", err)
	}
	cfg.KnowledgeDir = knowledgeDir

	// 2. Provider selection.
	providerPrompt := promptui.Select{
		Label: "Select LLM provider",
		Items: []string{"openai", "anthropic", "ollama"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.Provider = ProviderType(providerStr)
	cfg.Model = defaultModelFor(cfg.Provider)

	// 3. Index backend.
	backendPrompt := promptui.Select{
		Label: "Select index backend",
		Items: []string{
			"flat    — in-process exact search, deterministic ordering",
			"chromem — embedded chromem-go vector database",
		},
	}
	backendIdx, _, err := backendPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("backend selection: %w", err)
	}
	backends := []IndexBackend{BackendFlat, BackendChromem}
	cfg.IndexBackend = backends[backendIdx]

	// 4. Chunking.
	sizePrompt := promptui.Prompt{
		Label:    "Chunk size (characters)",
		Default:  strconv.Itoa(cfg.ChunkSize),
		Validate: validatePositiveInt,
	}
	sizeStr, err := sizePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("chunk size: %w", err)
	}
	cfg.ChunkSize, _ = strconv.Atoi(sizeStr)

	// 5. Include patterns.
	includePrompt := promptui.Prompt{
		Label:   "Include patterns (comma-separated globs)",
		Default: strings.Join(cfg.Include, ","),
	}
	includeStr, err := includePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("include patterns: %w", err)
	}
	cfg.Include = splitAndTrim(includeStr)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}
	fmt.Printf("\nConfiguration written to %s\n", path)

	apiKeyVar := APIKeyEnvVar(cfg.Provider)
	if apiKeyVar != "" {
		fmt.Printf("Remember to set %s before running `kbase build`.\n", apiKeyVar)
	}

	return cfg, nil
}

func defaultModelFor(provider ProviderType) string {
	switch provider {
	case ProviderAnthropic:
		return "claude-3-5-haiku-latest"
	case ProviderOllama:
		return "llama3.2"
	default:
		return "gpt-4o-mini"
	}
}

func validatePositiveInt(input string) error {
	n, err := strconv.Atoi(input)
	if err != nil || n <= 0 {
		return fmt.Errorf("must be a positive integer")
	}
	return nil
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

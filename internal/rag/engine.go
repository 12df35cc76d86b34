package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/gvilla/kbase/internal/llm"
	"github.com/gvilla/kbase/internal/vectordb"
)

// DefaultTopK is the number of chunks retrieved when the caller does
// not specify one.
const DefaultTopK = 3

// Fixed user-facing answers for the two non-exceptional failure modes.
const (
	NotReadyAnswer = "Knowledge base not initialized. Load documents and build an index first."
	NoMatchAnswer  = "No relevant information found in the knowledge base for this question."
)

// Source is a deduplicated citation identifying where answer content
// came from.
type Source struct {
	File   string `json:"file"`
	Author string `json:"author"`
	Topic  string `json:"topic"`
}

// Result is the outcome of a single question. Sources are deduplicated;
// NumChunksUsed counts every retrieved chunk, duplicates included.
type Result struct {
	Question      string   `json:"question"`
	Answer        string   `json:"answer"`
	Sources       []Source `json:"sources"`
	NumChunksUsed int      `json:"num_chunks_used"`
}

// Engine answers questions by retrieving relevant chunks from the
// vector index and handing them, with citations, to the generation
// provider. All collaborators are injected at construction.
type Engine struct {
	index       vectordb.Index
	provider    llm.Provider
	model       string
	maxTokens   int
	temperature float64
}

// New creates an Engine. The index may be nil; Ask then reports the
// system as not ready instead of failing.
func New(index vectordb.Index, provider llm.Provider, model string, maxTokens int, temperature float64) *Engine {
	return &Engine{
		index:       index,
		provider:    provider,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

// SetIndex replaces the engine's index. Callers must not swap the index
// while an Ask is in flight; build or load the new index first, then
// publish it here.
func (e *Engine) SetIndex(index vectordb.Index) {
	e.index = index
}

// Ask answers one question using the top k retrieved chunks. Provider
// and index failures propagate to the caller; the not-ready and
// no-results conditions are normal outcomes carried in the answer text.
func (e *Engine) Ask(ctx context.Context, question string, k int) (*Result, error) {
	if k <= 0 {
		k = DefaultTopK
	}

	if e.index == nil {
		return &Result{
			Question: question,
			Answer:   NotReadyAnswer,
			Sources:  []Source{},
		}, nil
	}

	retrieved, err := e.index.Search(ctx, question, k)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	if len(retrieved) == 0 {
		return &Result{
			Question: question,
			Answer:   NoMatchAnswer,
			Sources:  []Source{},
		}, nil
	}

	// The prompt context keeps every retrieved chunk in rank order,
	// near-duplicates from the same file included; only the citation
	// list below is deduplicated.
	contextText := buildContext(retrieved)

	resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
		Model: e.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: buildQuestionPrompt(contextText, question)},
		},
		MaxTokens:   e.maxTokens,
		Temperature: e.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	return &Result{
		Question:      question,
		Answer:        strings.TrimSpace(resp.Content),
		Sources:       dedupeSources(retrieved),
		NumChunksUsed: len(retrieved),
	}, nil
}

// Ready reports whether an index is attached and non-empty.
func (e *Engine) Ready() bool {
	return e.index != nil && e.index.Count() > 0
}

// buildContext formats the retrieved chunks as labeled blocks in search
// rank order, joined by blank lines.
func buildContext(retrieved []vectordb.SearchResult) string {
	blocks := make([]string, len(retrieved))
	for i, r := range retrieved {
		blocks[i] = fmt.Sprintf("Source %d: %s by %s\n%s",
			i+1,
			metaValue(r.Chunk.Metadata, "source"),
			metaValue(r.Chunk.Metadata, "author"),
			r.Chunk.Content,
		)
	}
	return strings.Join(blocks, "\n\n")
}

// dedupeSources builds the citation list in first-occurrence order,
// collapsing chunks that share file, author and topic.
func dedupeSources(retrieved []vectordb.SearchResult) []Source {
	seen := make(map[Source]bool, len(retrieved))
	sources := make([]Source, 0, len(retrieved))

	for _, r := range retrieved {
		s := Source{
			File:   metaValue(r.Chunk.Metadata, "source"),
			Author: metaValue(r.Chunk.Metadata, "author"),
			Topic:  metaValue(r.Chunk.Metadata, "topic"),
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		sources = append(sources, s)
	}
	return sources
}

func metaValue(m map[string]string, key string) string {
	if v, ok := m[key]; ok && v != "" {
		return v
	}
	return "Unknown"
}

package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gvilla/kbase/internal/chunker"
	"github.com/gvilla/kbase/internal/llm"
	"github.com/gvilla/kbase/internal/vectordb"
)

// stubIndex returns canned search results.
type stubIndex struct {
	results []vectordb.SearchResult
	err     error
	queries []string
}

func (s *stubIndex) Build(context.Context, []chunker.Chunk) error { return nil }
func (s *stubIndex) Persist(context.Context, string) error        { return nil }
func (s *stubIndex) Load(context.Context, string) error           { return nil }
func (s *stubIndex) Count() int                                   { return len(s.results) }

func (s *stubIndex) Search(_ context.Context, query string, k int) ([]vectordb.SearchResult, error) {
	s.queries = append(s.queries, query)
	if s.err != nil {
		return nil, s.err
	}
	if k > len(s.results) {
		k = len(s.results)
	}
	return s.results[:k], nil
}

// stubProvider records requests and returns a fixed answer.
type stubProvider struct {
	answer   string
	err      error
	requests []llm.CompletionRequest
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.requests = append(p.requests, req)
	if p.err != nil {
		return nil, p.err
	}
	return &llm.CompletionResponse{Content: p.answer}, nil
}

func resultFor(content, file, author, topic string) vectordb.SearchResult {
	return vectordb.SearchResult{
		Chunk: chunker.Chunk{
			Content: content,
			Metadata: map[string]string{
				"source": file,
				"author": author,
				"topic":  topic,
			},
		},
	}
}

func TestAsk_NotReady(t *testing.T) {
	provider := &stubProvider{answer: "should never be generated"}
	engine := New(nil, provider, "model", 100, 0)

	result, err := engine.Ask(context.Background(), "anything?", 3)
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if result.Answer != NotReadyAnswer {
		t.Errorf("Answer = %q, want not-ready message", result.Answer)
	}
	if len(result.Sources) != 0 || result.NumChunksUsed != 0 {
		t.Errorf("result = %+v, want no sources or chunks", result)
	}
	if len(provider.requests) != 0 {
		t.Errorf("provider called %d times, want 0", len(provider.requests))
	}
}

func TestAsk_NoResults(t *testing.T) {
	index := &stubIndex{}
	provider := &stubProvider{answer: "should never be generated"}
	engine := New(index, provider, "model", 100, 0)

	result, err := engine.Ask(context.Background(), "anything?", 3)
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if result.Answer != NoMatchAnswer {
		t.Errorf("Answer = %q, want no-match message", result.Answer)
	}
	if len(provider.requests) != 0 {
		t.Errorf("provider called %d times on zero results, want 0", len(provider.requests))
	}
}

func TestAsk_SearchErrorPropagates(t *testing.T) {
	wantErr := errors.New("index exploded")
	index := &stubIndex{err: wantErr}
	provider := &stubProvider{}
	engine := New(index, provider, "model", 100, 0)

	_, err := engine.Ask(context.Background(), "anything?", 3)
	if !errors.Is(err, wantErr) {
		t.Errorf("Ask = %v, want wrapped search error", err)
	}
	if len(provider.requests) != 0 {
		t.Errorf("provider called after search failure")
	}
}

func TestAsk_ProviderErrorPropagates(t *testing.T) {
	index := &stubIndex{results: []vectordb.SearchResult{
		resultFor("chunk", "a.txt", "A", "T"),
	}}
	wantErr := errors.New("provider down")
	engine := New(index, &stubProvider{err: wantErr}, "model", 100, 0)

	_, err := engine.Ask(context.Background(), "anything?", 3)
	if !errors.Is(err, wantErr) {
		t.Errorf("Ask = %v, want wrapped provider error", err)
	}
}

func TestAsk_DedupesSourcesKeepsChunkCount(t *testing.T) {
	index := &stubIndex{results: []vectordb.SearchResult{
		resultFor("first chunk", "notes.txt", "Jane", "Go"),
		resultFor("second chunk", "notes.txt", "Jane", "Go"),
		resultFor("third chunk", "other.txt", "Bob", "Python"),
	}}
	provider := &stubProvider{answer: "the answer"}
	engine := New(index, provider, "model", 100, 0)

	result, err := engine.Ask(context.Background(), "question?", 3)
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}

	if result.NumChunksUsed != 3 {
		t.Errorf("NumChunksUsed = %d, want 3 (raw chunk count)", result.NumChunksUsed)
	}
	if len(result.Sources) != 2 {
		t.Fatalf("Sources = %v, want 2 deduplicated entries", result.Sources)
	}
	if result.Sources[0].File != "notes.txt" || result.Sources[1].File != "other.txt" {
		t.Errorf("Sources = %v, want first-occurrence order", result.Sources)
	}
	if result.Answer != "the answer" {
		t.Errorf("Answer = %q", result.Answer)
	}
}

func TestAsk_PromptContainsAllChunks(t *testing.T) {
	index := &stubIndex{results: []vectordb.SearchResult{
		resultFor("alpha content", "a.txt", "A", "T"),
		resultFor("beta content", "b.txt", "B", "T"),
	}}
	provider := &stubProvider{answer: "ok"}
	engine := New(index, provider, "model", 100, 0)

	if _, err := engine.Ask(context.Background(), "the question?", 2); err != nil {
		t.Fatalf("Ask: %v", err)
	}

	if len(provider.requests) != 1 {
		t.Fatalf("provider called %d times, want 1", len(provider.requests))
	}
	req := provider.requests[0]

	if len(req.Messages) != 2 || req.Messages[0].Role != llm.RoleSystem || req.Messages[1].Role != llm.RoleUser {
		t.Fatalf("messages = %+v, want system then user", req.Messages)
	}

	user := req.Messages[1].Content
	for _, want := range []string{
		"Source 1: a.txt by A",
		"alpha content",
		"Source 2: b.txt by B",
		"beta content",
		"the question?",
	} {
		if !strings.Contains(user, want) {
			t.Errorf("user prompt missing %q", want)
		}
	}
}

func TestAsk_MissingMetadataFallsBackToUnknown(t *testing.T) {
	index := &stubIndex{results: []vectordb.SearchResult{
		{Chunk: chunker.Chunk{Content: "orphan chunk", Metadata: map[string]string{}}},
	}}
	provider := &stubProvider{answer: "ok"}
	engine := New(index, provider, "model", 100, 0)

	result, err := engine.Ask(context.Background(), "q?", 1)
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	want := Source{File: "Unknown", Author: "Unknown", Topic: "Unknown"}
	if len(result.Sources) != 1 || result.Sources[0] != want {
		t.Errorf("Sources = %v, want %v", result.Sources, want)
	}
}

func TestAsk_DefaultK(t *testing.T) {
	index := &stubIndex{results: []vectordb.SearchResult{
		resultFor("c1", "a.txt", "A", "T"),
		resultFor("c2", "b.txt", "B", "T"),
		resultFor("c3", "c.txt", "C", "T"),
	}}
	provider := &stubProvider{answer: "ok"}
	engine := New(index, provider, "model", 100, 0)

	result, err := engine.Ask(context.Background(), "q?", 0)
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if result.NumChunksUsed != DefaultTopK {
		t.Errorf("NumChunksUsed = %d, want default %d", result.NumChunksUsed, DefaultTopK)
	}
}

func TestReady(t *testing.T) {
	provider := &stubProvider{}

	if engine := New(nil, provider, "m", 10, 0); engine.Ready() {
		t.Error("Ready() with nil index, want false")
	}
	if engine := New(&stubIndex{}, provider, "m", 10, 0); engine.Ready() {
		t.Error("Ready() with empty index, want false")
	}

	engine := New(&stubIndex{results: []vectordb.SearchResult{resultFor("c", "f", "a", "t")}}, provider, "m", 10, 0)
	if !engine.Ready() {
		t.Error("Ready() with populated index, want true")
	}

	engine.SetIndex(nil)
	if engine.Ready() {
		t.Error("Ready() after SetIndex(nil), want false")
	}
}

package vectordb

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestChromemIndex_BuildEmpty(t *testing.T) {
	ix, err := NewChromemIndex(newMockEmbedder(32))
	if err != nil {
		t.Fatalf("NewChromemIndex: %v", err)
	}

	if err := ix.Build(context.Background(), nil); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("Build(nil) = %v, want ErrEmptyInput", err)
	}
}

func TestChromemIndex_BuildAndSearch(t *testing.T) {
	ctx := context.Background()
	ix, err := NewChromemIndex(newMockEmbedder(32))
	if err != nil {
		t.Fatalf("NewChromemIndex: %v", err)
	}

	if err := ix.Build(ctx, testChunks()); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if ix.Count() != 3 {
		t.Errorf("Count = %d, want 3", ix.Count())
	}

	results, err := ix.Search(ctx, "Go is a statically typed compiled language", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Chunk.Metadata["source"] != "go.txt" {
		t.Errorf("top result = %q, want go.txt", results[0].Chunk.Metadata["source"])
	}
	if results[0].Distance > results[1].Distance {
		t.Errorf("results not in ascending distance order: %f > %f", results[0].Distance, results[1].Distance)
	}
}

func TestChromemIndex_SearchEmptyIndex(t *testing.T) {
	ix, err := NewChromemIndex(newMockEmbedder(32))
	if err != nil {
		t.Fatalf("NewChromemIndex: %v", err)
	}

	results, err := ix.Search(context.Background(), "anything", 5)
	if err != nil {
		t.Errorf("Search on empty index: %v, want nil error", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results from empty index, want 0", len(results))
	}
}

func TestChromemIndex_SearchKClamped(t *testing.T) {
	ctx := context.Background()
	ix, err := NewChromemIndex(newMockEmbedder(32))
	if err != nil {
		t.Fatalf("NewChromemIndex: %v", err)
	}
	if err := ix.Build(ctx, testChunks()); err != nil {
		t.Fatalf("Build: %v", err)
	}

	results, err := ix.Search(ctx, "anything", 50)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("got %d results, want all 3", len(results))
	}
}

func TestChromemIndex_PersistAndLoad(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	ix, err := NewChromemIndex(newMockEmbedder(32))
	if err != nil {
		t.Fatalf("NewChromemIndex: %v", err)
	}
	if err := ix.Build(ctx, testChunks()); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := ix.Persist(ctx, dir); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	restored, err := NewChromemIndex(newMockEmbedder(32))
	if err != nil {
		t.Fatalf("NewChromemIndex: %v", err)
	}
	if err := restored.Load(ctx, dir); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if restored.Count() != 3 {
		t.Errorf("restored Count = %d, want 3", restored.Count())
	}

	results, err := restored.Search(ctx, "Go is a statically typed compiled language", 1)
	if err != nil {
		t.Fatalf("Search restored: %v", err)
	}
	if len(results) != 1 || results[0].Chunk.Metadata["source"] != "go.txt" {
		t.Errorf("restored search = %v, want go.txt on top", results)
	}
}

func TestChromemIndex_LoadMissing(t *testing.T) {
	ix, err := NewChromemIndex(newMockEmbedder(32))
	if err != nil {
		t.Fatalf("NewChromemIndex: %v", err)
	}

	if err := ix.Load(context.Background(), t.TempDir()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load from empty dir = %v, want ErrNotFound", err)
	}
}

func TestChromemIndex_LoadCorruptBlob(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	ix, err := NewChromemIndex(newMockEmbedder(32))
	if err != nil {
		t.Fatalf("NewChromemIndex: %v", err)
	}
	if err := ix.Build(ctx, testChunks()); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := ix.Persist(ctx, dir); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "chromem.gob.gz"), []byte("not gzip"), 0o644); err != nil {
		t.Fatalf("corrupting blob: %v", err)
	}

	fresh, err := NewChromemIndex(newMockEmbedder(32))
	if err != nil {
		t.Fatalf("NewChromemIndex: %v", err)
	}
	if err := fresh.Load(ctx, dir); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Load corrupt blob = %v, want ErrCorrupt", err)
	}
	if fresh.Count() != 0 {
		t.Errorf("failed load left %d entries behind, want 0", fresh.Count())
	}
}

func TestChromemIndex_LoadDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	ix, err := NewChromemIndex(newMockEmbedder(32))
	if err != nil {
		t.Fatalf("NewChromemIndex: %v", err)
	}
	if err := ix.Build(ctx, testChunks()); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := ix.Persist(ctx, dir); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	other, err := NewChromemIndex(newMockEmbedder(64))
	if err != nil {
		t.Fatalf("NewChromemIndex: %v", err)
	}
	if err := other.Load(ctx, dir); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Load with mismatched embedder = %v, want ErrCorrupt", err)
	}
}

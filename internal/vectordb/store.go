package vectordb

import (
	"context"
	"errors"
	"fmt"

	"github.com/gvilla/kbase/internal/chunker"
	"github.com/gvilla/kbase/internal/embeddings"
)

// Sentinel errors for index lifecycle failures.
var (
	// ErrEmptyInput is returned when building an index from zero chunks.
	ErrEmptyInput = errors.New("cannot build index from empty chunk list")

	// ErrNotFound is returned when a persisted index is missing.
	ErrNotFound = errors.New("persisted index not found")

	// ErrCorrupt is returned when a persisted index is unreadable or
	// inconsistent with the configured embedder.
	ErrCorrupt = errors.New("persisted index is corrupt")
)

// SearchResult pairs a retrieved chunk with its distance to the query.
// Smaller distances mean higher similarity.
type SearchResult struct {
	Chunk    chunker.Chunk
	Distance float32
}

// Index stores (embedding, chunk) pairs and supports nearest-neighbor
// search over them. An index is built once from a full chunk set and is
// read-only on the query path; replacing it means building or loading a
// new instance, never mutating one under live queries.
type Index interface {
	// Build embeds every chunk (order-preserving) and constructs the
	// searchable index. Zero chunks yield ErrEmptyInput.
	Build(ctx context.Context, chunks []chunker.Chunk) error

	// Search embeds the query and returns the min(k, Count()) nearest
	// chunks ordered by ascending distance. Searching an empty index
	// returns an empty result without error.
	Search(ctx context.Context, query string, k int) ([]SearchResult, error)

	// Persist writes the index blob and its metadata to dir.
	Persist(ctx context.Context, dir string) error

	// Load restores a previously persisted index from dir. It fails
	// with ErrNotFound or ErrCorrupt without partially constructing a
	// usable index.
	Load(ctx context.Context, dir string) error

	// Count returns the number of indexed chunks.
	Count() int
}

// NewIndex creates an empty index of the given backend ("flat" or
// "chromem") bound to the given embedder.
func NewIndex(backend string, embedder embeddings.Embedder) (Index, error) {
	switch backend {
	case "", "flat":
		return NewFlatIndex(embedder), nil
	case "chromem":
		return NewChromemIndex(embedder)
	default:
		return nil, fmt.Errorf("unknown index backend: %s", backend)
	}
}

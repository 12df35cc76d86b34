package vectordb

import (
	"context"
	"encoding/gob"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gvilla/kbase/internal/chunker"
	"github.com/gvilla/kbase/internal/embeddings"
)

// FlatIndex is a brute-force cosine-distance index. Every search scans
// all stored vectors, which is exact and plenty fast for a personal
// document collection. Ties are broken by insertion order.
type FlatIndex struct {
	embedder embeddings.Embedder

	dim        int
	vectors    [][]float32
	chunks     []chunker.Chunk
	embedderID string
}

// NewFlatIndex creates an empty flat index bound to the given embedder.
func NewFlatIndex(embedder embeddings.Embedder) *FlatIndex {
	return &FlatIndex{embedder: embedder}
}

func (ix *FlatIndex) Count() int {
	return len(ix.chunks)
}

// Build embeds all chunks in one order-preserving pass and publishes
// the resulting vectors atomically at the end, so a failed build leaves
// the previous state untouched.
func (ix *FlatIndex) Build(ctx context.Context, chunks []chunker.Chunk) error {
	if len(chunks) == 0 {
		return ErrEmptyInput
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vectors, err := ix.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding %d chunks: %w", len(chunks), err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	dim := ix.embedder.Dimensions()
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("chunk %d: embedding dimension %d, expected %d", i, len(v), dim)
		}
	}

	stored := make([]chunker.Chunk, len(chunks))
	copy(stored, chunks)

	ix.dim = dim
	ix.vectors = vectors
	ix.chunks = stored
	ix.embedderID = ix.embedder.Name()
	return nil
}

// Search returns the min(k, Count()) chunks nearest to the query,
// ordered by ascending cosine distance. Repeated identical queries
// against an unchanged index return identical orderings.
func (ix *FlatIndex) Search(ctx context.Context, query string, k int) ([]SearchResult, error) {
	if len(ix.chunks) == 0 {
		return nil, nil
	}
	if k <= 0 {
		return nil, fmt.Errorf("result count must be positive, got %d", k)
	}

	qvecs, err := ix.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(qvecs) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for one query", len(qvecs))
	}
	qv := qvecs[0]
	if len(qv) != ix.dim {
		return nil, fmt.Errorf("query embedding dimension %d does not match index dimension %d", len(qv), ix.dim)
	}

	distances := make([]float32, len(ix.vectors))
	for i, v := range ix.vectors {
		distances[i] = cosineDistance(qv, v)
	}

	order := make([]int, len(distances))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return distances[order[a]] < distances[order[b]]
	})

	if k > len(order) {
		k = len(order)
	}
	results := make([]SearchResult, k)
	for i := 0; i < k; i++ {
		j := order[i]
		results[i] = SearchResult{Chunk: ix.chunks[j], Distance: distances[j]}
	}
	return results, nil
}

// flatSnapshot is the gob-serialized form of the index. Vectors are
// stored as-is, so a restore is bit-exact.
type flatSnapshot struct {
	Dimension int
	Vectors   [][]float32
	Chunks    []chunker.Chunk
}

func (ix *FlatIndex) Persist(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, flatFile))
	if err != nil {
		return fmt.Errorf("creating index file: %w", err)
	}
	defer f.Close()

	snapshot := flatSnapshot{
		Dimension: ix.dim,
		Vectors:   ix.vectors,
		Chunks:    ix.chunks,
	}
	if err := gob.NewEncoder(f).Encode(snapshot); err != nil {
		return fmt.Errorf("encoding index: %w", err)
	}

	return writeMeta(dir, indexMeta{
		Backend:   "flat",
		Metric:    metricCosine,
		Dimension: ix.dim,
		Count:     len(ix.chunks),
		Embedder:  ix.embedderID,
		CreatedAt: time.Now().UTC(),
	})
}

// Load restores a persisted flat index. All validation happens before
// any field is assigned, so a failed load never leaves a partially
// usable index behind.
func (ix *FlatIndex) Load(ctx context.Context, dir string) error {
	meta, err := readMeta(dir)
	if err != nil {
		return err
	}

	f, err := os.Open(filepath.Join(dir, flatFile))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: missing %s in %s", ErrNotFound, flatFile, dir)
		}
		return fmt.Errorf("opening index file: %w", err)
	}
	defer f.Close()

	var snapshot flatSnapshot
	if err := gob.NewDecoder(f).Decode(&snapshot); err != nil {
		return fmt.Errorf("%w: decoding %s: %v", ErrCorrupt, flatFile, err)
	}

	if snapshot.Dimension != meta.Dimension {
		return fmt.Errorf("%w: index dimension %d disagrees with metadata %d", ErrCorrupt, snapshot.Dimension, meta.Dimension)
	}
	if len(snapshot.Vectors) != len(snapshot.Chunks) || len(snapshot.Chunks) != meta.Count {
		return fmt.Errorf("%w: entry counts disagree (vectors %d, chunks %d, metadata %d)",
			ErrCorrupt, len(snapshot.Vectors), len(snapshot.Chunks), meta.Count)
	}
	for i, v := range snapshot.Vectors {
		if len(v) != snapshot.Dimension {
			return fmt.Errorf("%w: vector %d has dimension %d, expected %d", ErrCorrupt, i, len(v), snapshot.Dimension)
		}
	}
	if want := ix.embedder.Dimensions(); want != snapshot.Dimension {
		return fmt.Errorf("%w: index dimension %d does not match embedder %q (%d)",
			ErrCorrupt, snapshot.Dimension, ix.embedder.Name(), want)
	}

	ix.dim = snapshot.Dimension
	ix.vectors = snapshot.Vectors
	ix.chunks = snapshot.Chunks
	ix.embedderID = meta.Embedder
	return nil
}

// cosineDistance is 1 minus the cosine similarity of a and b. A zero
// vector has no direction; its distance to anything is defined as 1.
func cosineDistance(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return float32(1 - dot/(math.Sqrt(na)*math.Sqrt(nb)))
}

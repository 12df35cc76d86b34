package vectordb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	chromem "github.com/philippgille/chromem-go"

	"github.com/gvilla/kbase/internal/chunker"
	"github.com/gvilla/kbase/internal/embeddings"
)

const collectionName = "knowledge_base"

// ChromemIndex implements Index on top of chromem-go. Embeddings are
// precomputed through the injected embedder so build order and vector
// values stay under our control; chromem handles storage, search and
// the compressed persistence format.
type ChromemIndex struct {
	embedder  embeddings.Embedder
	embedFunc chromem.EmbeddingFunc

	db         *chromem.DB
	collection *chromem.Collection
	dim        int
}

// NewChromemIndex creates an empty chromem-backed index.
func NewChromemIndex(embedder embeddings.Embedder) (*ChromemIndex, error) {
	db := chromem.NewDB()
	ef := embeddings.ToChromemFunc(embedder)

	col, err := db.GetOrCreateCollection(collectionName, nil, ef)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &ChromemIndex{
		embedder:   embedder,
		embedFunc:  ef,
		db:         db,
		collection: col,
	}, nil
}

func (ix *ChromemIndex) Count() int {
	return ix.collection.Count()
}

func (ix *ChromemIndex) Build(ctx context.Context, chunks []chunker.Chunk) error {
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
	docs := make([]chromem.Document, len(chunks))
	for i, c := range chunks {
		if len(vectors[i]) != dim {
			return fmt.Errorf("chunk %d: embedding dimension %d, expected %d", i, len(vectors[i]), dim)
		}
		docs[i] = chromem.Document{
			ID:        fmt.Sprintf("chunk-%06d", i),
			Content:   c.Content,
			Metadata:  c.Metadata,
			Embedding: vectors[i],
		}
	}

	if err := ix.collection.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("adding documents to collection: %w", err)
	}
	ix.dim = dim
	return nil
}

func (ix *ChromemIndex) Search(ctx context.Context, query string, k int) ([]SearchResult, error) {
	count := ix.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if k <= 0 {
		return nil, fmt.Errorf("result count must be positive, got %d", k)
	}
	// chromem-go requires nResults <= collection size.
	if k > count {
		k = count
	}

	qvecs, err := ix.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(qvecs) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for one query", len(qvecs))
	}
	if ix.dim > 0 && len(qvecs[0]) != ix.dim {
		return nil, fmt.Errorf("query embedding dimension %d does not match index dimension %d", len(qvecs[0]), ix.dim)
	}

	results, err := ix.collection.QueryEmbedding(ctx, qvecs[0], k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	out := make([]SearchResult, len(results))
	for i, r := range results {
		out[i] = SearchResult{
			Chunk: chunker.Chunk{
				Content:  r.Content,
				Metadata: r.Metadata,
			},
			Distance: 1 - r.Similarity,
		}
	}
	return out, nil
}

func (ix *ChromemIndex) Persist(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	if err := ix.db.ExportToFile(filepath.Join(dir, chromemFile), true, ""); err != nil {
		return fmt.Errorf("exporting collection: %w", err)
	}

	return writeMeta(dir, indexMeta{
		Backend:   "chromem",
		Metric:    metricCosine,
		Dimension: ix.dim,
		Count:     ix.collection.Count(),
		Embedder:  ix.embedder.Name(),
		CreatedAt: time.Now().UTC(),
	})
}

func (ix *ChromemIndex) Load(ctx context.Context, dir string) error {
	meta, err := readMeta(dir)
	if err != nil {
		return err
	}
	if want := ix.embedder.Dimensions(); want != meta.Dimension {
		return fmt.Errorf("%w: index dimension %d does not match embedder %q (%d)",
			ErrCorrupt, meta.Dimension, ix.embedder.Name(), want)
	}

	path := filepath.Join(dir, chromemFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("%w: missing %s in %s", ErrNotFound, chromemFile, dir)
	}

	// Import into a fresh DB so a corrupt blob cannot clobber current state.
	db := chromem.NewDB()
	if err := db.ImportFromFile(path, ""); err != nil {
		return fmt.Errorf("%w: importing %s: %v", ErrCorrupt, chromemFile, err)
	}

	col := db.GetCollection(collectionName, ix.embedFunc)
	if col == nil {
		return fmt.Errorf("%w: collection %q not found after import", ErrCorrupt, collectionName)
	}
	if col.Count() != meta.Count {
		return fmt.Errorf("%w: collection holds %d entries, metadata says %d", ErrCorrupt, col.Count(), meta.Count)
	}

	ix.db = db
	ix.collection = col
	ix.dim = meta.Dimension
	return nil
}

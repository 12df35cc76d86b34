package vectordb

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/gvilla/kbase/internal/chunker"
)

// mockEmbedder returns deterministic embeddings based on text content.
// It produces a simple hash-based vector for reproducible tests.
type mockEmbedder struct {
	dims  int
	calls int
}

func newMockEmbedder(dims int) *mockEmbedder {
	return &mockEmbedder{dims: dims}
}

func (m *mockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	m.calls++
	results := make([][]float32, len(texts))
	for i, text := range texts {
		results[i] = m.deterministicVector(text)
	}
	return results, nil
}

func (m *mockEmbedder) Dimensions() int { return m.dims }
func (m *mockEmbedder) Name() string    { return "mock" }

// deterministicVector produces a normalized vector from text. Similar
// texts produce similar vectors because shared characters contribute to
// the same positions.
func (m *mockEmbedder) deterministicVector(text string) []float32 {
	vec := make([]float32, m.dims)
	for i, ch := range text {
		idx := (int(ch) + i) % m.dims
		vec[idx] += 1.0
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v * v)
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec
}

func testChunks() []chunker.Chunk {
	return []chunker.Chunk{
		{Content: "Go is a statically typed compiled language", Metadata: map[string]string{"source": "go.txt", "author": "A"}},
		{Content: "Python is a dynamically typed interpreted language", Metadata: map[string]string{"source": "python.txt", "author": "B"}},
		{Content: "Bread is baked from flour, water, and yeast", Metadata: map[string]string{"source": "baking.txt", "author": "C"}},
	}
}

func TestFlatIndex_BuildEmpty(t *testing.T) {
	ix := NewFlatIndex(newMockEmbedder(32))

	err := ix.Build(context.Background(), nil)
	if !errors.Is(err, ErrEmptyInput) {
		t.Errorf("Build(nil) = %v, want ErrEmptyInput", err)
	}
}

func TestFlatIndex_BuildAndSearch(t *testing.T) {
	ctx := context.Background()
	ix := NewFlatIndex(newMockEmbedder(32))

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

	// Exact content match embeds to the identical vector, so it must
	// rank first with distance ~0.
	if results[0].Chunk.Metadata["source"] != "go.txt" {
		t.Errorf("top result = %q, want go.txt", results[0].Chunk.Metadata["source"])
	}
	if results[0].Distance > 1e-5 {
		t.Errorf("top distance = %f, want ~0", results[0].Distance)
	}
	if results[0].Distance > results[1].Distance {
		t.Errorf("results not in ascending distance order: %f > %f", results[0].Distance, results[1].Distance)
	}
}

func TestFlatIndex_SearchKLargerThanCount(t *testing.T) {
	ctx := context.Background()
	ix := NewFlatIndex(newMockEmbedder(32))
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

func TestFlatIndex_SearchEmptyIndex(t *testing.T) {
	ix := NewFlatIndex(newMockEmbedder(32))

	results, err := ix.Search(context.Background(), "anything", 5)
	if err != nil {
		t.Errorf("Search on empty index: %v, want nil error", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results from empty index, want 0", len(results))
	}
}

func TestFlatIndex_SearchInvalidK(t *testing.T) {
	ctx := context.Background()
	ix := NewFlatIndex(newMockEmbedder(32))
	if err := ix.Build(ctx, testChunks()); err != nil {
		t.Fatalf("Build: %v", err)
	}

	if _, err := ix.Search(ctx, "anything", 0); err == nil {
		t.Error("Search with k=0 should fail")
	}
}

func TestFlatIndex_SearchDeterministic(t *testing.T) {
	ctx := context.Background()
	ix := NewFlatIndex(newMockEmbedder(32))

	// Duplicate contents embed identically; ties must resolve by
	// insertion order, every time.
	chunks := []chunker.Chunk{
		{Content: "identical text", Metadata: map[string]string{"source": "first.txt"}},
		{Content: "identical text", Metadata: map[string]string{"source": "second.txt"}},
		{Content: "identical text", Metadata: map[string]string{"source": "third.txt"}},
	}
	if err := ix.Build(ctx, chunks); err != nil {
		t.Fatalf("Build: %v", err)
	}

	var previous []string
	for run := 0; run < 5; run++ {
		results, err := ix.Search(ctx, "identical text", 3)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		order := make([]string, len(results))
		for i, r := range results {
			order[i] = r.Chunk.Metadata["source"]
		}
		if previous != nil && !reflect.DeepEqual(order, previous) {
			t.Fatalf("run %d order %v differs from %v", run, order, previous)
		}
		previous = order
	}
	if want := []string{"first.txt", "second.txt", "third.txt"}; !reflect.DeepEqual(previous, want) {
		t.Errorf("tie order = %v, want insertion order %v", previous, want)
	}
}

func TestFlatIndex_PersistAndLoad(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	ix := NewFlatIndex(newMockEmbedder(32))
	if err := ix.Build(ctx, testChunks()); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := ix.Persist(ctx, dir); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	restored := NewFlatIndex(newMockEmbedder(32))
	if err := restored.Load(ctx, dir); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if restored.Count() != ix.Count() {
		t.Errorf("restored Count = %d, want %d", restored.Count(), ix.Count())
	}

	// The restored index must answer queries identically.
	query := "statically typed compiled"
	want, err := ix.Search(ctx, query, 3)
	if err != nil {
		t.Fatalf("Search original: %v", err)
	}
	got, err := restored.Search(ctx, query, 3)
	if err != nil {
		t.Fatalf("Search restored: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("restored results differ:\ngot  %v\nwant %v", got, want)
	}
}

func TestFlatIndex_LoadMissing(t *testing.T) {
	ix := NewFlatIndex(newMockEmbedder(32))

	err := ix.Load(context.Background(), t.TempDir())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Load from empty dir = %v, want ErrNotFound", err)
	}
}

func TestFlatIndex_LoadCorruptBlob(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	ix := NewFlatIndex(newMockEmbedder(32))
	if err := ix.Build(ctx, testChunks()); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := ix.Persist(ctx, dir); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "index.gob"), []byte("not a gob stream"), 0o644); err != nil {
		t.Fatalf("corrupting blob: %v", err)
	}

	fresh := NewFlatIndex(newMockEmbedder(32))
	err := fresh.Load(ctx, dir)
	if !errors.Is(err, ErrCorrupt) {
		t.Errorf("Load corrupt blob = %v, want ErrCorrupt", err)
	}
	if fresh.Count() != 0 {
		t.Errorf("failed load left %d chunks behind, want 0", fresh.Count())
	}
}

func TestFlatIndex_LoadCorruptMeta(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	ix := NewFlatIndex(newMockEmbedder(32))
	if err := ix.Build(ctx, testChunks()); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := ix.Persist(ctx, dir); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "meta.json"), []byte("{broken"), 0o644); err != nil {
		t.Fatalf("corrupting meta: %v", err)
	}

	err := NewFlatIndex(newMockEmbedder(32)).Load(ctx, dir)
	if !errors.Is(err, ErrCorrupt) {
		t.Errorf("Load with corrupt meta = %v, want ErrCorrupt", err)
	}
}

func TestFlatIndex_LoadDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	ix := NewFlatIndex(newMockEmbedder(32))
	if err := ix.Build(ctx, testChunks()); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := ix.Persist(ctx, dir); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	// An embedder with a different dimensionality cannot serve this index.
	err := NewFlatIndex(newMockEmbedder(64)).Load(ctx, dir)
	if !errors.Is(err, ErrCorrupt) {
		t.Errorf("Load with mismatched embedder = %v, want ErrCorrupt", err)
	}
}

func TestNewIndex_Backends(t *testing.T) {
	embedder := newMockEmbedder(16)

	if ix, err := NewIndex("", embedder); err != nil {
		t.Errorf("NewIndex(\"\"): %v", err)
	} else if _, ok := ix.(*FlatIndex); !ok {
		t.Errorf("NewIndex(\"\") = %T, want *FlatIndex", ix)
	}

	if _, err := NewIndex("flat", embedder); err != nil {
		t.Errorf("NewIndex(flat): %v", err)
	}
	if _, err := NewIndex("chromem", embedder); err != nil {
		t.Errorf("NewIndex(chromem): %v", err)
	}
	if _, err := NewIndex("bogus", embedder); err == nil {
		t.Error("NewIndex(bogus) should fail")
	}
}

func TestCosineDistance(t *testing.T) {
	a := []float32{1, 0, 0}
	b := []float32{0, 1, 0}
	zero := []float32{0, 0, 0}

	if d := cosineDistance(a, a); d > 1e-6 {
		t.Errorf("distance to self = %f, want 0", d)
	}
	if d := cosineDistance(a, b); math.Abs(float64(d)-1) > 1e-6 {
		t.Errorf("orthogonal distance = %f, want 1", d)
	}
	if d := cosineDistance(a, zero); d != 1 {
		t.Errorf("zero-vector distance = %f, want 1", d)
	}
}

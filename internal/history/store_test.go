package history

import (
	"context"
	"testing"

	"github.com/gvilla/kbase/internal/db"
	"github.com/gvilla/kbase/internal/rag"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestRecordAndRecent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	result := &rag.Result{
		Question: "What is Go?",
		Answer:   "A programming language.",
		Sources: []rag.Source{
			{File: "go.txt", Author: "Jane", Topic: "Languages"},
		},
		NumChunksUsed: 2,
	}

	id, err := store.Record(ctx, result)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if id == "" {
		t.Error("Record returned empty id")
	}

	entries, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}

	e := entries[0]
	if e.ID != id || e.Question != result.Question || e.Answer != result.Answer {
		t.Errorf("entry = %+v, want recorded result", e)
	}
	if len(e.Sources) != 1 || e.Sources[0].File != "go.txt" {
		t.Errorf("Sources = %v, want go.txt citation", e.Sources)
	}
	if e.NumChunksUsed != 2 {
		t.Errorf("NumChunksUsed = %d, want 2", e.NumChunksUsed)
	}
	if e.AskedAt.IsZero() {
		t.Error("AskedAt not populated")
	}
}

func TestRecent_Limit(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for i := 0; i < 5; i++ {
		if _, err := store.Record(ctx, &rag.Result{Question: "q", Answer: "a", Sources: []rag.Source{}}); err != nil {
			t.Fatalf("Record %d: %v", i, err)
		}
	}

	entries, err := store.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("got %d entries, want limit 3", len(entries))
	}

	n, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 5 {
		t.Errorf("Count = %d, want 5", n)
	}
}

func TestRecent_Empty(t *testing.T) {
	store := newTestStore(t)

	entries, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries from empty store, want 0", len(entries))
	}
}

func TestRecord_EmptySources(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if _, err := store.Record(ctx, &rag.Result{Question: "q", Answer: "a"}); err != nil {
		t.Fatalf("Record with nil sources: %v", err)
	}

	entries, err := store.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if len(entries[0].Sources) != 0 {
		t.Errorf("Sources = %v, want empty", entries[0].Sources)
	}
}

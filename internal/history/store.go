package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gvilla/kbase/internal/db"
	"github.com/gvilla/kbase/internal/rag"
)

// Entry is one recorded question/answer exchange.
type Entry struct {
	ID            string       `json:"id"`
	AskedAt       time.Time    `json:"asked_at"`
	Question      string       `json:"question"`
	Answer        string       `json:"answer"`
	Sources       []rag.Source `json:"sources"`
	NumChunksUsed int          `json:"num_chunks_used"`
}

// Store persists ask history in SQLite.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Record inserts one ask result. A UUID is generated for the entry.
func (s *Store) Record(ctx context.Context, result *rag.Result) (string, error) {
	id := uuid.New().String()

	sources, err := json.Marshal(result.Sources)
	if err != nil {
		return "", fmt.Errorf("marshalling sources: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO asks (id, question, answer, sources, num_chunks_used)
		VALUES (?, ?, ?, ?, ?)`,
		id, result.Question, result.Answer, string(sources), result.NumChunksUsed,
	)
	if err != nil {
		return "", fmt.Errorf("inserting ask entry: %w", err)
	}
	return id, nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, asked_at, question, answer, sources, num_chunks_used
		FROM asks
		ORDER BY asked_at DESC, id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying ask history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var sources string
		if err := rows.Scan(&e.ID, &e.AskedAt, &e.Question, &e.Answer, &sources, &e.NumChunksUsed); err != nil {
			return nil, fmt.Errorf("scanning ask entry: %w", err)
		}
		if err := json.Unmarshal([]byte(sources), &e.Sources); err != nil {
			return nil, fmt.Errorf("unmarshalling sources for %s: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the number of recorded asks.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM asks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting ask entries: %w", err)
	}
	return n, nil
}

package vectordb

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	metaFile    = "meta.json"
	flatFile    = "index.gob"
	chromemFile = "chromem.gob.gz"

	metricCosine = "cosine"
)

// indexMeta is the metadata blob persisted alongside the index blob.
// Dimensionality is recorded so a load with a mismatched embedder fails
// instead of silently producing nonsense distances.
type indexMeta struct {
	Backend   string    `json:"backend"`
	Metric    string    `json:"metric"`
	Dimension int       `json:"dimension"`
	Count     int       `json:"count"`
	Embedder  string    `json:"embedder"`
	CreatedAt time.Time `json:"created_at"`
}

func writeMeta(dir string, meta indexMeta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling index metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, metaFile), data, 0644); err != nil {
		return fmt.Errorf("writing index metadata: %w", err)
	}
	return nil
}

func readMeta(dir string) (indexMeta, error) {
	var meta indexMeta

	data, err := os.ReadFile(filepath.Join(dir, metaFile))
	if err != nil {
		if os.IsNotExist(err) {
			return meta, fmt.Errorf("%w: missing %s in %s", ErrNotFound, metaFile, dir)
		}
		return meta, fmt.Errorf("reading index metadata: %w", err)
	}

	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, fmt.Errorf("%w: unreadable %s: %v", ErrCorrupt, metaFile, err)
	}
	if meta.Dimension <= 0 || meta.Count < 0 {
		return meta, fmt.Errorf("%w: implausible metadata (dimension %d, count %d)", ErrCorrupt, meta.Dimension, meta.Count)
	}
	return meta, nil
}

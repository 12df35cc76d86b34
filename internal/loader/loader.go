package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sirupsen/logrus"
)

// Loader reads knowledge-base documents from a directory.
type Loader struct {
	include []string
	log     *logrus.Logger
}

// New creates a Loader that accepts files matching any of the given
// glob patterns (e.g. "*.txt", "*.md").
func New(include []string, log *logrus.Logger) *Loader {
	if len(include) == 0 {
		include = []string{"*.txt"}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Loader{include: include, log: log}
}

// LoadDirectory loads every matching document under dir.
//
// A missing directory yields an empty slice, not an error. A file that
// cannot be read is logged and skipped so one bad document does not
// abort the whole load. After header parsing, "source" and "filepath"
// are set on every document, overriding header fields of the same name.
func (l *Loader) LoadDirectory(dir string) ([]Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			l.log.Warnf("knowledge directory %q not found", dir)
			return nil, nil
		}
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if l.matches(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var documents []Document
	for _, name := range names {
		path := filepath.Join(dir, name)

		raw, err := os.ReadFile(path)
		if err != nil {
			l.log.WithError(err).Warnf("skipping %s", name)
			continue
		}

		metadata, body := ParseMetadata(string(raw))
		if strings.EqualFold(filepath.Ext(name), ".md") {
			body = StripMarkdown(body)
		}

		metadata["source"] = name
		metadata["filepath"] = path

		documents = append(documents, Document{
			Content:  body,
			Metadata: metadata,
		})
	}

	l.log.Debugf("loaded %d documents from %s", len(documents), dir)
	return documents, nil
}

func (l *Loader) matches(name string) bool {
	for _, pattern := range l.include {
		ok, err := doublestar.Match(pattern, name)
		if err != nil {
			l.log.Warnf("invalid include pattern %q: %v", pattern, err)
			continue
		}
		if ok {
			return true
		}
	}
	return false
}

package loader

import (
	"sort"
	"strings"
)

// CollectionStats summarizes a loaded document set.
type CollectionStats struct {
	TotalDocuments int
	TotalWords     int
	AvgWordsPerDoc int
	Authors        []string
	Topics         []string
}

// Stats computes summary statistics over the given documents.
func Stats(documents []Document) CollectionStats {
	if len(documents) == 0 {
		return CollectionStats{}
	}

	authors := map[string]bool{}
	topics := map[string]bool{}
	totalWords := 0

	for _, doc := range documents {
		authors[doc.Author()] = true
		topics[doc.Topic()] = true
		totalWords += len(strings.Fields(doc.Content))
	}

	return CollectionStats{
		TotalDocuments: len(documents),
		TotalWords:     totalWords,
		AvgWordsPerDoc: totalWords / len(documents),
		Authors:        sortedKeys(authors),
		Topics:         sortedKeys(topics),
	}
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

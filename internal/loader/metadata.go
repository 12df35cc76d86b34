package loader

import "strings"

const headerDelimiter = "---"

// ParseMetadata splits document content into a metadata mapping and the
// remaining body.
//
// Documents may start with a YAML-like header block:
//
//	---
//	Author: Name
//	Date: 2024-01-15
//	Topic: Topic Name
//	---
//	Body text...
//
// Keys are lowercased and values trimmed; a header line without a colon
// is skipped. Splitting happens at the first colon only, so colons
// inside values survive. Content without a complete header (fewer than
// two delimiters) is returned verbatim with empty metadata.
func ParseMetadata(content string) (map[string]string, string) {
	metadata := map[string]string{}

	if !strings.HasPrefix(content, headerDelimiter) {
		return metadata, content
	}

	parts := strings.SplitN(content, headerDelimiter, 3)
	if len(parts) < 3 {
		return metadata, content
	}

	header := strings.TrimSpace(parts[1])
	for _, line := range strings.Split(header, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		metadata[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}

	return metadata, strings.TrimSpace(parts[2])
}

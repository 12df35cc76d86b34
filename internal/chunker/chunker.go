package chunker

import (
	"fmt"
	"strings"

	"github.com/gvilla/kbase/internal/loader"
)

// Chunk is a bounded-length slice of a document's body, carrying a copy
// of the parent document's metadata so provenance stays traceable.
type Chunk struct {
	Content  string
	Metadata map[string]string
}

// separators is the ordered preference of split points. Earlier entries
// keep larger semantic units intact; the empty string is the
// last-resort fixed-width cut.
var separators = []string{"\n\n", "\n", ". ", " ", ""}

// Chunker splits documents into overlapping segments of bounded size.
type Chunker struct {
	size    int
	overlap int
}

// New creates a Chunker. Overlap must be smaller than size.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("overlap %d must be in [0, %d)", overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Split chunks every document, preserving document order and copying
// each document's metadata onto its chunks. An empty document list
// yields an empty chunk list; a document shorter than the chunk size
// yields exactly one chunk with its full content.
func (c *Chunker) Split(documents []loader.Document) []Chunk {
	var chunks []Chunk
	for _, doc := range documents {
		pieces := c.splitText(doc.Content, separators)
		if len(pieces) == 0 {
			pieces = []string{doc.Content}
		}
		for _, piece := range pieces {
			chunks = append(chunks, Chunk{
				Content:  piece,
				Metadata: copyMetadata(doc.Metadata),
			})
		}
	}
	return chunks
}

// splitText recursively splits text using the preferred separator that
// actually occurs in it, falling back to the next one for any segment
// that still exceeds the chunk size.
func (c *Chunker) splitText(text string, seps []string) []string {
	if len(text) <= c.size {
		return []string{text}
	}

	sep, rest := seps[0], seps[1:]
	if sep == "" {
		return c.hardSplit(text)
	}
	if !strings.Contains(text, sep) {
		return c.splitText(text, rest)
	}

	return c.merge(strings.SplitAfter(text, sep), rest)
}

// merge packs separator-delimited parts into chunks of at most size
// bytes, carrying up to overlap bytes of the previous chunk's tail into
// the next one. Parts that alone exceed the size are re-split with the
// next-preferred separators.
func (c *Chunker) merge(parts []string, rest []string) []string {
	var out []string
	var buf strings.Builder

	flush := func() {
		chunk := strings.TrimSpace(buf.String())
		if chunk != "" {
			out = append(out, chunk)
		}
	}

	for _, part := range parts {
		if part == "" {
			continue
		}

		if len(part) > c.size {
			flush()
			buf.Reset()
			out = append(out, c.splitText(part, rest)...)
			continue
		}

		if buf.Len() > 0 && buf.Len()+len(part) > c.size {
			previous := buf.String()
			flush()
			buf.Reset()
			buf.WriteString(c.overlapTail(previous, len(part)))
		}
		buf.WriteString(part)
	}
	flush()

	return out
}

// overlapTail returns the tail of the previous chunk to prepend to the
// next one, clipped so the next chunk cannot exceed the size bound.
func (c *Chunker) overlapTail(previous string, nextLen int) string {
	n := c.overlap
	if max := c.size - nextLen; n > max {
		n = max
	}
	if n <= 0 || len(previous) <= n {
		if n <= 0 {
			return ""
		}
		return previous
	}
	return previous[len(previous)-n:]
}

// hardSplit cuts text at fixed offsets. Used only when no separator
// below the size bound exists, e.g. one giant unbroken word.
func (c *Chunker) hardSplit(text string) []string {
	step := c.size - c.overlap
	var out []string
	for start := 0; start < len(text); start += step {
		end := start + c.size
		if end >= len(text) {
			out = append(out, text[start:])
			break
		}
		out = append(out, text[start:end])
	}
	return out
}

func copyMetadata(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

package loader

// Document is a loaded knowledge-base document: its body text plus the
// metadata parsed from its header and added by the loader.
//
// Metadata keys are lowercase. The loader always populates "source"
// (file name) and "filepath" (full path); header-declared keys such as
// author, date, topic and summary are optional.
type Document struct {
	Content  string
	Metadata map[string]string
}

// Author returns the document author, or "Unknown" if not declared.
func (d Document) Author() string {
	return metaOrUnknown(d.Metadata, "author")
}

// Topic returns the document topic, or "Unknown" if not declared.
func (d Document) Topic() string {
	return metaOrUnknown(d.Metadata, "topic")
}

func metaOrUnknown(m map[string]string, key string) string {
	if v, ok := m[key]; ok && v != "" {
		return v
	}
	return "Unknown"
}

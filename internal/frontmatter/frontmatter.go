// Package frontmatter detects and decodes a leading YAML front-matter
// block. The decoration pipeline treats the block as an opaque fence;
// this package extracts the metadata the bridge reports.
package frontmatter

import (
	"fmt"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"
)

// Metadata is the decoded front-matter content. Unknown keys land in
// Extra.
type Metadata struct {
	Title string         `yaml:"title"`
	Tags  []string       `yaml:"tags"`
	Extra map[string]any `yaml:",inline"`
}

// Equal compares two metadata values including the inline map.
func (m Metadata) Equal(other Metadata) bool {
	return m.Title == other.Title &&
		reflect.DeepEqual(m.Tags, other.Tags) &&
		reflect.DeepEqual(m.Extra, other.Extra)
}

// Span returns the byte range of a leading front-matter block including
// its delimiters and trailing newline. The block must start on the
// first line with exactly "---" and close with "---" or "...".
func Span(src string) (from, to int, ok bool) {
	if !strings.HasPrefix(src, "---\n") && src != "---" {
		return 0, 0, false
	}
	offset := 4
	for offset <= len(src) {
		lineEnd := strings.IndexByte(src[offset:], '\n')
		var line string
		if lineEnd < 0 {
			line = src[offset:]
			lineEnd = len(src) - offset
		} else {
			line = src[offset : offset+lineEnd]
		}
		if line == "---" || line == "..." {
			end := offset + lineEnd
			if end < len(src) {
				end++ // include the newline
			}
			return 0, end, true
		}
		offset += lineEnd + 1
	}
	return 0, 0, false
}

// Parse decodes the front matter and returns it with the document body
// (source with the block stripped). A document without front matter
// returns a zero Metadata and the full source.
func Parse(src string) (Metadata, string, error) {
	from, to, ok := Span(src)
	if !ok {
		return Metadata{}, src, nil
	}
	block := src[from:to]
	block = strings.TrimPrefix(block, "---\n")
	if i := strings.LastIndex(block, "\n---"); i >= 0 {
		block = block[:i]
	} else if i := strings.LastIndex(block, "\n..."); i >= 0 {
		block = block[:i]
	}

	var meta Metadata
	if err := yaml.Unmarshal([]byte(block), &meta); err != nil {
		return Metadata{}, src[to:], fmt.Errorf("decode front matter: %w", err)
	}
	return meta, src[to:], nil
}

// Package export renders documents to HTML for the read-only preview
// surface.
package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/net/html"

	"github.com/notelab/livemark/internal/frontmatter"
)

// converter is a shared goldmark instance with the GFM extensions the
// editor understands (tables, task lists, strikethrough, autolinks).
var converter = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// Fragment converts markdown to an HTML fragment. Front matter is
// stripped first; it is metadata, not content.
func Fragment(md string) (string, error) {
	_, body, err := frontmatter.Parse(md)
	if err != nil {
		// Undecodable front matter still renders the body.
		body = md
		if _, to, ok := frontmatter.Span(md); ok {
			body = md[to:]
		}
	}
	var buf bytes.Buffer
	if err := converter.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}

// Page wraps the fragment in a minimal standalone document, using the
// front-matter title when present.
func Page(md string) (string, error) {
	meta, _, _ := frontmatter.Parse(md)
	fragment, err := Fragment(md)
	if err != nil {
		return "", err
	}
	title := meta.Title
	if title == "" {
		title = "Document"
	}

	var sb strings.Builder
	sb.WriteString("<!doctype html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&sb, "<title>%s</title>\n", html.EscapeString(title))
	sb.WriteString("</head>\n<body>\n")
	sb.WriteString(fragment)
	sb.WriteString("</body>\n</html>\n")
	return sb.String(), nil
}

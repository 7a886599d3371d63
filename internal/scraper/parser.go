// internal/scraper/parser.go
package scraper

import (
	"bytes"
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

// ParseHTML decodes body to UTF-8 using contentType and any <meta charset>
// hint, then parses it. Cached pages have no content type; the bytes are
// sniffed instead.
func ParseHTML(body []byte, contentType string) (*goquery.Document, error) {
	enc, _, _ := charset.DetermineEncoding(body, contentType)
	reader := transform.NewReader(bytes.NewReader(body), enc.NewDecoder())

	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// NodeText is the single way markup is turned into plain text: the text of
// every descendant text node, trimmed at both ends. Inner line breaks are
// kept because some callers split on them.
func NodeText(s *goquery.Selection) string {
	if s == nil || s.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(s.Text())
}

// MarkdownRenderer renders markup blocks as readable markdown text.
type MarkdownRenderer struct {
	converter *md.Converter
}

// NewMarkdownRenderer creates a renderer resolving relative links against siteRoot.
func NewMarkdownRenderer(siteRoot string) *MarkdownRenderer {
	return &MarkdownRenderer{
		converter: md.NewConverter(siteRoot, true, nil),
	}
}

// Render converts the selection (including its own element) to markdown.
func (r *MarkdownRenderer) Render(s *goquery.Selection) string {
	if s == nil || s.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(r.converter.Convert(s))
}

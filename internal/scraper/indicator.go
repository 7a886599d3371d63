// internal/scraper/indicator.go
package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/valpere/hscicharvest/internal/cache"
	"github.com/valpere/hscicharvest/internal/utils"
	"github.com/valpere/hscicharvest/pkg/types"
)

// ErrNoContent is returned when an indicator page carries no metadata.
var ErrNoContent = errors.New("no content found")

// IDPlaceholder is replaced by the zero-padded indicator id in URL templates.
const IDPlaceholder = "{id}"

const (
	metadataSelector = "#metadata"
	downloadsLabel   = "download(s)"
	keywordsLabel    = "keyword(s)"

	// reservedFieldPrefix renames metadata labels that clash with record fields
	reservedFieldPrefix = "metadata_"
)

// IndicatorExtractor reads the metadata table of an indicator page.
type IndicatorExtractor struct {
	siteRoot    string
	urlTemplate string
	pages       *PageSource
	logger      utils.Logger
}

// NewIndicatorExtractor creates a new indicator extractor. Links inside the
// metadata are resolved against siteRoot; pages are addressed by urlTemplate.
func NewIndicatorExtractor(siteRoot, urlTemplate string, pages *PageSource, logger utils.Logger) *IndicatorExtractor {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &IndicatorExtractor{
		siteRoot:    strings.TrimRight(siteRoot, "/"),
		urlTemplate: urlTemplate,
		pages:       pages,
		logger:      logger,
	}
}

// PageURL returns the documentation page address for id.
func (e *IndicatorExtractor) PageURL(id types.ItemID) string {
	return strings.ReplaceAll(e.urlTemplate, IDPlaceholder, fmt.Sprintf("%05d", int(id)))
}

// Extract loads and parses the page for id.
func (e *IndicatorExtractor) Extract(ctx context.Context, id types.ItemID) (*types.Indicator, error) {
	e.logger.Infof("Indicator ID: %d", id)

	source := e.PageURL(id)
	body, contentType, err := e.pages.Load(ctx, cache.PageKey(id), source)
	if err != nil {
		return nil, err
	}

	doc, err := ParseHTML(body, contentType)
	if err != nil {
		return nil, fmt.Errorf("indicator %d: %w", id, err)
	}
	return e.extractDocument(doc, id, source)
}

func (e *IndicatorExtractor) extractDocument(doc *goquery.Document, id types.ItemID, source string) (*types.Indicator, error) {
	metadata := doc.Find(metadataSelector).First()
	if metadata.Length() == 0 {
		return nil, fmt.Errorf("indicator %d: %w", id, ErrNoContent)
	}

	var texts []string
	metadata.Contents().Each(func(i int, s *goquery.Selection) {
		if text := NodeText(s); text != "" {
			texts = append(texts, text)
		}
	})
	if len(texts) == 0 {
		return nil, fmt.Errorf("indicator %d: %w", id, ErrNoContent)
	}

	indicator := types.NewIndicator(id, source)
	for x := 0; x+1 < len(texts); x += 2 {
		key, err := metadataLabel.Apply(texts[x])
		if err != nil {
			return nil, fmt.Errorf("indicator %d: %w", id, err)
		}
		if key == downloadsLabel {
			break
		}
		if types.ReservedIndicatorField(key) {
			renamed := reservedFieldPrefix + key
			e.logger.WithField("id", int(id)).Warnf("metadata label %q clashes with a record field, stored as %q", key, renamed)
			key = renamed
		}
		if key == keywordsLabel {
			indicator.Fields.Set(key, splitLines(texts[x+1]))
			continue
		}
		indicator.Fields.Set(key, texts[x+1])
	}

	var err error
	metadata.Find("a").EachWithBreak(func(i int, s *goquery.Selection) bool {
		href, ok := s.Attr("href")
		if !ok {
			return true
		}
		link := href
		if !strings.Contains(href, "://") {
			link = e.siteRoot + href
		}
		filetype := Filetype(link)
		description := NodeText(s)
		if filetype != "" {
			if description, err = StripFiletype("." + filetype).Apply(description); err != nil {
				return false
			}
		}
		indicator.Sources = append(indicator.Sources, types.SourceFile{
			URL:         link,
			Description: description,
			Filetype:    filetype,
		})
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("indicator %d: sources: %w", id, err)
	}

	return indicator, nil
}

// splitLines breaks a value on line endings, dropping blank entries.
func splitLines(value string) []string {
	tags := []string{}
	for _, line := range strings.FieldsFunc(value, func(r rune) bool { return r == '\n' || r == '\r' }) {
		if tag := strings.TrimSpace(line); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

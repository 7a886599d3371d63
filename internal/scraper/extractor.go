// internal/scraper/extractor.go
package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/valpere/hscicharvest/internal/cache"
	"github.com/valpere/hscicharvest/internal/utils"
	"github.com/valpere/hscicharvest/pkg/types"
)

// ErrMissingField is returned when a mandatory element is absent from a detail page.
var ErrMissingField = errors.New("missing mandatory field")

const (
	titleSelector     = "#headingtext"
	productSelector   = "#productview"
	pubDateSelector   = "div.pubdate"
	summarySelector   = "div.summary"
	keyFactsSelector  = "div.notevalue"
	dateRangeSelector = "div.daterange"
	coverageSelector  = "div.coverage"
	resourceSelector  = "div.resourcelink"

	pubDatePrefix   = "Publication date: "
	dateRangePrefix = "Date Range: "
)

// DatasetExtractor turns a dataset's detail page into an ItemRecord.
type DatasetExtractor struct {
	siteRoot string
	pages    *PageSource
	markdown *MarkdownRenderer
	logger   utils.Logger
}

// NewDatasetExtractor creates a new extractor for detail pages under siteRoot
func NewDatasetExtractor(siteRoot string, pages *PageSource, logger utils.Logger) *DatasetExtractor {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	siteRoot = strings.TrimRight(siteRoot, "/")
	return &DatasetExtractor{
		siteRoot: siteRoot,
		pages:    pages,
		markdown: NewMarkdownRenderer(siteRoot),
		logger:   logger,
	}
}

// DetailURL returns the address of the detail page for id.
func (e *DatasetExtractor) DetailURL(id types.ItemID) string {
	return e.siteRoot + "/searchcatalogue?productid=" + strconv.Itoa(int(id))
}

// Extract loads the detail page for id (from cache when present) and merges
// its fields into a copy of stub. The stub itself is never modified.
func (e *DatasetExtractor) Extract(ctx context.Context, id types.ItemID, stub types.ItemStub) (*types.ItemRecord, error) {
	source := e.DetailURL(id)
	body, contentType, err := e.pages.Load(ctx, cache.PageKey(id), source)
	if err != nil {
		return nil, err
	}

	doc, err := ParseHTML(body, contentType)
	if err != nil {
		return nil, fmt.Errorf("dataset %d: %w", id, err)
	}
	return e.extractDocument(doc, id, source, stub)
}

func (e *DatasetExtractor) extractDocument(doc *goquery.Document, id types.ItemID, source string, stub types.ItemStub) (*types.ItemRecord, error) {
	heading := doc.Find(titleSelector).First()
	if heading.Length() == 0 {
		return nil, fmt.Errorf("dataset %d: %w: title", id, ErrMissingField)
	}
	title := NodeText(heading)
	e.logger.Info(title)

	product := doc.Find(productSelector).First()
	if product.Length() == 0 {
		return nil, fmt.Errorf("dataset %d: %w: product view", id, ErrMissingField)
	}

	pubDate := product.Find(pubDateSelector).First()
	if pubDate.Length() == 0 {
		return nil, fmt.Errorf("dataset %d: %w: publication date", id, ErrMissingField)
	}

	published, err := StripLabel(pubDatePrefix).Apply(NodeText(pubDate))
	if err != nil {
		return nil, fmt.Errorf("dataset %d: publication date: %w", id, err)
	}
	sources, err := e.sourceFiles(product)
	if err != nil {
		return nil, fmt.Errorf("dataset %d: sources: %w", id, err)
	}

	record := &types.ItemRecord{
		ItemStub:        stub.Clone(),
		Source:          source,
		Title:           title,
		ID:              id,
		PublicationDate: published,
		Sources:         sources,
	}

	if summary := product.Find(summarySelector).First(); summary.Length() > 0 {
		record.Summary = e.markdown.Render(summary)
	}
	if keyFacts := product.Find(keyFactsSelector).First(); keyFacts.Length() > 0 {
		record.KeyFacts = e.markdown.Render(keyFacts)
	}
	if dateRange := product.Find(dateRangeSelector).First(); dateRange.Length() > 0 {
		if record.DateRange, err = StripLabel(dateRangePrefix).Apply(NodeText(dateRange)); err != nil {
			return nil, fmt.Errorf("dataset %d: date range: %w", id, err)
		}
	}
	product.Find(coverageSelector).Each(func(i int, s *goquery.Selection) {
		record.GeographicalCoverage = append(record.GeographicalCoverage, NodeText(s))
	})

	return record, nil
}

func (e *DatasetExtractor) sourceFiles(product *goquery.Selection) ([]types.SourceFile, error) {
	files := []types.SourceFile{}
	var err error
	product.Find(resourceSelector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		anchor := s.Find("a").First()
		href, ok := anchor.Attr("href")
		if !ok {
			return true
		}
		if strings.HasPrefix(href, "./") {
			href = e.siteRoot + href[1:]
		}
		filetype := Filetype(href)
		var description string
		if description, err = StripFiletype(" [." + filetype + "]").Apply(NodeText(anchor)); err != nil {
			return false
		}
		files = append(files, types.SourceFile{
			URL:         href,
			Description: description,
			Filetype:    filetype,
		})
		return true
	})
	return files, err
}

// Filetype returns the extension of the resource a link points at, without
// the leading dot. The path decides; a link whose path has no extension
// falls back to a file name at the end of its query string
// (download?file=report.xls).
func Filetype(link string) string {
	if u, err := url.Parse(link); err == nil {
		if ext := path.Ext(u.Path); ext != "" {
			return ext[1:]
		}
		if ext := path.Ext(u.RawQuery); len(ext) > 1 && !strings.ContainsAny(ext, "&=;") {
			return ext[1:]
		}
		return ""
	}
	if i := strings.LastIndex(link, "."); i >= 0 {
		return link[i+1:]
	}
	return ""
}

// internal/scraper/pagination.go
package scraper

import (
	"context"
	"fmt"
	"strconv"

	"github.com/PuerkitoBio/goquery"

	"github.com/valpere/hscicharvest/internal/utils"
	"github.com/valpere/hscicharvest/pkg/types"
)

const (
	// DefaultPageSize is the number of results requested per search page.
	DefaultPageSize = 100

	itemSelector     = "a.HSCICProducts"
	lastPageSelector = "#paging a.last"
)

// Paginator walks every page of a search result listing and collects item ids.
type Paginator struct {
	fetcher  Fetcher
	logger   utils.Logger
	pageSize int
}

// NewPaginator creates a new paginator; pageSize <= 0 selects DefaultPageSize.
func NewPaginator(fetcher Fetcher, logger utils.Logger, pageSize int) *Paginator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Paginator{
		fetcher:  fetcher,
		logger:   logger,
		pageSize: pageSize,
	}
}

// Crawl returns the ids found on every page of the listing at startURL, in
// page order and without deduplication. A failed first page yields no ids; a
// failed later page is skipped. The only error is an unusable startURL.
func (p *Paginator) Crawl(ctx context.Context, startURL string) ([]types.ItemID, error) {
	p.logger.Infof("Getting paginated results for %s", startURL)

	firstURL, err := p.pageURL(startURL, 1)
	if err != nil {
		return nil, err
	}

	ids := []types.ItemID{}
	doc, ok := p.fetchPage(ctx, firstURL)
	if !ok {
		return ids, nil
	}
	ids = append(ids, p.itemIDs(doc)...)

	lastPage := p.lastPage(doc)
	p.logger.Infof("Number of pages is %d", lastPage)

	for page := 2; page <= lastPage; page++ {
		if err := ctx.Err(); err != nil {
			return ids, nil
		}
		pageURL, err := p.pageURL(startURL, page)
		if err != nil {
			return ids, nil
		}
		doc, ok := p.fetchPage(ctx, pageURL)
		if !ok {
			continue
		}
		ids = append(ids, p.itemIDs(doc)...)
	}

	p.logger.Infof("Number of items found: %d", len(ids))
	return ids, nil
}

func (p *Paginator) pageURL(startURL string, page int) (string, error) {
	u, err := WithQuery(startURL, map[string]string{
		"size": strconv.Itoa(p.pageSize),
		"page": strconv.Itoa(page),
	})
	if err != nil {
		return "", fmt.Errorf("failed to build page %d URL: %w", page, err)
	}
	return u, nil
}

func (p *Paginator) fetchPage(ctx context.Context, pageURL string) (*goquery.Document, bool) {
	resp, err := p.fetcher.Get(ctx, pageURL)
	if err != nil {
		p.logger.WithField("url", pageURL).Errorf("skipping page: %v", err)
		return nil, false
	}
	if resp.Failed() {
		p.logger.WithField("url", pageURL).Warnf("skipping page with status %d", resp.StatusCode)
		return nil, false
	}
	doc, err := ParseHTML(resp.Body, resp.ContentType)
	if err != nil {
		p.logger.WithField("url", pageURL).Errorf("skipping page: %v", err)
		return nil, false
	}
	return doc, true
}

func (p *Paginator) itemIDs(doc *goquery.Document) []types.ItemID {
	var ids []types.ItemID
	doc.Find(itemSelector).Each(func(i int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		id, err := ItemIDFromURL(href)
		if err != nil {
			p.logger.Warnf("ignoring item link: %v", err)
			return
		}
		ids = append(ids, id)
	})
	return ids
}

// lastPage reads the paging control; a missing or unreadable marker means a
// single page.
func (p *Paginator) lastPage(doc *goquery.Document) int {
	anchor := doc.Find(lastPageSelector).First()
	if anchor.Length() == 0 {
		return 1
	}
	n, err := strconv.Atoi(NodeText(anchor))
	if err != nil || n < 1 {
		p.logger.Warnf("unreadable last page marker %q", NodeText(anchor))
		return 1
	}
	return n
}

// internal/taxonomy/aggregator.go
package taxonomy

import (
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/valpere/hscicharvest/internal/cache"
	"github.com/valpere/hscicharvest/internal/monitoring"
	"github.com/valpere/hscicharvest/internal/scraper"
	"github.com/valpere/hscicharvest/internal/utils"
	"github.com/valpere/hscicharvest/pkg/types"
)

// IndexCache stores completed label indexes.
type IndexCache interface {
	Has(key string) bool
	ReadJSON(key string, v interface{}) error
	WriteJSON(key string, v interface{}) error
}

// Crawler lists the item ids of a paginated search.
type Crawler interface {
	Crawl(ctx context.Context, startURL string) ([]types.ItemID, error)
}

// Aggregator builds the label index of a taxonomy kind, preferring a cached copy.
type Aggregator struct {
	fetcher scraper.Fetcher
	crawler Crawler
	store   IndexCache
	logger  utils.Logger
	metrics *monitoring.Metrics
}

// NewAggregator creates a new aggregator
func NewAggregator(fetcher scraper.Fetcher, crawler Crawler, store IndexCache, logger utils.Logger, metrics *monitoring.Metrics) *Aggregator {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Aggregator{
		fetcher: fetcher,
		crawler: crawler,
		store:   store,
		logger:  logger,
		metrics: metrics,
	}
}

// Aggregate returns the complete label index for def. A cached index is
// returned as stored without any request. Otherwise labels are discovered
// from the seed pages, each label with no items is crawled once and the
// finished index is cached. An error is returned only when ctx is done, in
// which case nothing is cached.
func (a *Aggregator) Aggregate(ctx context.Context, def Definition) (*LabelIndex, error) {
	logger := a.logger.WithField("kind", string(def.Kind))
	key := cache.IndexKey(def.CacheName)

	if a.store.Has(key) {
		index := NewLabelIndex()
		err := a.store.ReadJSON(key, index)
		if err == nil {
			a.metrics.CacheHit("index")
			logger.Infof("Using cached records from %s", key)
			return index, nil
		}
		logger.Warnf("discarding unreadable cached index: %v", err)
	}
	a.metrics.CacheMiss("index")

	index := a.discover(ctx, def, logger)

	err := index.Each(func(label string, ids []types.ItemID) error {
		if len(ids) > 0 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		searchURL, err := def.SearchURL(label)
		if err != nil {
			logger.Errorf("skipping label %q: %v", label, err)
			return nil
		}
		found, err := a.crawler.Crawl(ctx, searchURL)
		if err != nil {
			logger.Errorf("skipping label %q: %v", label, err)
			return nil
		}
		index.Set(label, found)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("aggregating %s: %w", def.Kind, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("aggregating %s: %w", def.Kind, err)
	}

	if err := a.store.WriteJSON(key, index); err != nil {
		a.metrics.CacheWriteError()
		logger.Errorf("failed to cache index: %v", err)
	} else {
		logger.Infof("Saved complete %s to %s", def.Kind, key)
	}
	return index, nil
}

// discover collects the label headings from every seed page.
func (a *Aggregator) discover(ctx context.Context, def Definition, logger utils.Logger) *LabelIndex {
	index := NewLabelIndex()
	for _, seed := range def.SeedURLs {
		if ctx.Err() != nil {
			break
		}
		resp, err := a.fetcher.Get(ctx, seed)
		if err != nil {
			logger.WithField("url", seed).Errorf("skipping seed page: %v", err)
			continue
		}
		if resp.Failed() {
			logger.WithField("url", seed).Warnf("skipping seed page with status %d", resp.StatusCode)
			continue
		}
		doc, err := scraper.ParseHTML(resp.Body, resp.ContentType)
		if err != nil {
			logger.WithField("url", seed).Errorf("skipping seed page: %v", err)
			continue
		}
		for _, label := range labelHeadings(doc, def.LabelPath) {
			index.Discover(label)
		}
	}
	logger.Infof("Discovered %d labels", index.Len())
	return index
}

func labelHeadings(doc *goquery.Document, path []string) []string {
	if len(path) == 0 {
		return nil
	}
	scope := doc.Selection
	for _, step := range path[:len(path)-1] {
		scope = scope.Find(step).First()
		if scope.Length() == 0 {
			return nil
		}
	}

	var labels []string
	scope.Find(path[len(path)-1]).Each(func(i int, s *goquery.Selection) {
		if label := scraper.NodeText(s); label != "" {
			labels = append(labels, label)
		}
	})
	return labels
}

// internal/scraper/pagesource.go
package scraper

import (
	"context"
	"fmt"

	"github.com/valpere/hscicharvest/internal/monitoring"
	"github.com/valpere/hscicharvest/internal/utils"
)

// PageCache is the subset of the on-disk store used for raw pages.
type PageCache interface {
	Has(key string) bool
	Read(key string) ([]byte, error)
	Write(key string, data []byte) error
}

// PageSource serves raw pages from the cache, fetching and storing them on a miss.
type PageSource struct {
	fetcher Fetcher
	cache   PageCache
	logger  utils.Logger
	metrics *monitoring.Metrics
}

// NewPageSource creates a new page source
func NewPageSource(fetcher Fetcher, cache PageCache, logger utils.Logger, metrics *monitoring.Metrics) *PageSource {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &PageSource{
		fetcher: fetcher,
		cache:   cache,
		logger:  logger,
		metrics: metrics,
	}
}

// Load returns the page stored under key, fetching pageURL if it is not cached.
// The returned content type is empty for cached pages. A successful fetch is
// written back; a failed write is logged and the page is still returned.
func (s *PageSource) Load(ctx context.Context, key, pageURL string) ([]byte, string, error) {
	if s.cache.Has(key) {
		data, err := s.cache.Read(key)
		switch {
		case err != nil:
			s.logger.WithField("key", key).Warnf("unreadable cache entry, refetching: %v", err)
		case len(data) == 0:
			s.logger.WithField("key", key).Warnf("empty cache entry, refetching")
		default:
			s.metrics.CacheHit("page")
			s.logger.WithField("url", pageURL).Infof("Using cached records from %s", key)
			return data, "", nil
		}
	}
	s.metrics.CacheMiss("page")

	resp, err := s.fetcher.Get(ctx, pageURL)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s: %v", ErrPageUnavailable, pageURL, err)
	}
	if resp.Failed() {
		return nil, "", fmt.Errorf("%w: %w", ErrPageUnavailable, &StatusError{URL: pageURL, StatusCode: resp.StatusCode})
	}

	if err := s.cache.Write(key, resp.Body); err != nil {
		s.metrics.CacheWriteError()
		s.logger.WithField("key", key).Errorf("failed to cache page: %v", err)
	}
	return resp.Body, resp.ContentType, nil
}

// internal/pipeline/indicators.go
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/valpere/hscicharvest/internal/cache"
	"github.com/valpere/hscicharvest/internal/config"
	"github.com/valpere/hscicharvest/internal/monitoring"
	"github.com/valpere/hscicharvest/internal/output"
	"github.com/valpere/hscicharvest/internal/scraper"
	"github.com/valpere/hscicharvest/internal/utils"
	"github.com/valpere/hscicharvest/pkg/types"
)

// IndicatorRun harvests a contiguous range of indicator ids.
type IndicatorRun struct {
	Store     *cache.Store
	Extractor IndicatorExtractor
	FirstID   types.ItemID
	LastID    types.ItemID
	Output    RecordWriter
	Logger    utils.Logger
	Metrics   *monitoring.Metrics
}

// NewIndicatorRun wires an indicator run from configuration.
func NewIndicatorRun(cfg *config.Config, fetcher scraper.Fetcher, logger utils.Logger, metrics *monitoring.Metrics) (*IndicatorRun, error) {
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	ic := cfg.Indicators
	store := cache.NewStore(ic.CacheDir, logger)
	pages := scraper.NewPageSource(fetcher, store, logger, metrics)

	out, err := output.NewManager(&ic.Output, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create output manager: %w", err)
	}

	return &IndicatorRun{
		Store:     store,
		Extractor: scraper.NewIndicatorExtractor(ic.SiteRoot, ic.URLTemplate, pages, logger),
		FirstID:   types.ItemID(ic.FirstID),
		LastID:    types.ItemID(ic.LastID),
		Output:    out,
		Logger:    logger,
		Metrics:   metrics,
	}, nil
}

// Run extracts every indicator in [FirstID, LastID] and writes the records.
// Any per-item error, including a panic, is logged and the item skipped.
func (r *IndicatorRun) Run(ctx context.Context) (*RunSummary, error) {
	start := time.Now()
	logger := r.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	summary := &RunSummary{Run: RunIndicators}

	if err := r.Store.EnsureDir(); err != nil {
		return summary, fmt.Errorf("failed to prepare cache directory %s: %w", r.Store.Dir(), err)
	}

	records := []*types.Indicator{}
	for id := r.FirstID; id <= r.LastID; id++ {
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("extracting indicators: %w", err)
		}
		summary.ItemsSeen++

		indicator, err := protect(func() (*types.Indicator, error) {
			return r.Extractor.Extract(ctx, id)
		})
		if err != nil {
			summary.Failures++
			r.Metrics.ExtractionFailed(RunIndicators, failureReason(err))
			logger.WithField("id", int(id)).Errorf("skipping indicator: %v", err)
			continue
		}
		r.Metrics.RecordExtracted(RunIndicators)
		records = append(records, indicator)
	}

	results, err := r.Output.Write(records)
	if err != nil {
		return summary, err
	}
	summary.Outputs = results
	summary.RecordsWritten = len(records)
	summary.Duration = time.Since(start)

	logger.WithFields(map[string]interface{}{
		"items":    summary.ItemsSeen,
		"records":  summary.RecordsWritten,
		"failures": summary.Failures,
	}).Infof("Indicator run finished in %s", summary.Duration.Round(time.Millisecond))
	return summary, nil
}

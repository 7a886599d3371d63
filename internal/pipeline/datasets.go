// internal/pipeline/datasets.go
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
	"github.com/valpere/hscicharvest/internal/taxonomy"
	"github.com/valpere/hscicharvest/internal/utils"
	"github.com/valpere/hscicharvest/pkg/types"
)

// Aggregator builds the label index of one taxonomy kind.
type Aggregator interface {
	Aggregate(ctx context.Context, def taxonomy.Definition) (*taxonomy.LabelIndex, error)
}

// DatasetRun harvests every dataset reachable through the catalogue taxonomies.
type DatasetRun struct {
	Store       *cache.Store
	Aggregator  Aggregator
	Definitions []taxonomy.Definition
	Extractor   DatasetExtractor
	Output      RecordWriter
	Logger      utils.Logger
	Metrics     *monitoring.Metrics
}

// NewDatasetRun wires a dataset run from configuration.
func NewDatasetRun(cfg *config.Config, fetcher scraper.Fetcher, logger utils.Logger, metrics *monitoring.Metrics) (*DatasetRun, error) {
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	store := cache.NewStore(cfg.Datasets.CacheDir, logger)
	paginator := scraper.NewPaginator(fetcher, logger, cfg.PageSize)
	pages := scraper.NewPageSource(fetcher, store, logger, metrics)

	out, err := output.NewManager(&cfg.Datasets.Output, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create output manager: %w", err)
	}

	return &DatasetRun{
		Store:       store,
		Aggregator:  taxonomy.NewAggregator(fetcher, paginator, store, logger, metrics),
		Definitions: taxonomy.Definitions(cfg.SiteRoot),
		Extractor:   scraper.NewDatasetExtractor(cfg.SiteRoot, pages, logger),
		Output:      out,
		Logger:      logger,
		Metrics:     metrics,
	}, nil
}

// Run aggregates the taxonomies, merges them, extracts every item and writes
// the records. Items that cannot be extracted are logged and left out. The
// returned error is fatal: the cache directory is unusable, the context was
// cancelled (no output is written) or the JSON output could not be written.
func (r *DatasetRun) Run(ctx context.Context) (*RunSummary, error) {
	start := time.Now()
	logger := r.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	summary := &RunSummary{Run: RunDatasets}

	if err := r.Store.EnsureDir(); err != nil {
		return summary, fmt.Errorf("failed to prepare cache directory %s: %w", r.Store.Dir(), err)
	}

	indexes := make(map[types.Kind]*taxonomy.LabelIndex, len(r.Definitions))
	for _, def := range r.Definitions {
		index, err := r.Aggregator.Aggregate(ctx, def)
		if err != nil {
			return summary, err
		}
		indexes[def.Kind] = index
	}

	merged, err := taxonomy.Merge(indexes)
	if err != nil {
		return summary, err
	}
	summary.ItemsSeen = merged.Len()
	logger.Infof("Processing %d datasets", merged.Len())

	records := make([]*types.ItemRecord, 0, merged.Len())
	for _, id := range merged.IDs() {
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("extracting datasets: %w", err)
		}

		stub, _ := merged.Get(id)
		record, err := protect(func() (*types.ItemRecord, error) {
			return r.Extractor.Extract(ctx, id, *stub)
		})
		if err != nil {
			summary.Failures++
			r.Metrics.ExtractionFailed(RunDatasets, failureReason(err))
			logger.WithField("id", int(id)).Errorf("skipping dataset: %v", err)
			continue
		}
		r.Metrics.RecordExtracted(RunDatasets)
		records = append(records, record)
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
	}).Infof("Dataset run finished in %s", summary.Duration.Round(time.Millisecond))
	return summary, nil
}

// internal/pipeline/types.go

// Package pipeline drives a complete harvest: it wires the crawler, the
// extractors, the cache and the output together and runs them in order.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/valpere/hscicharvest/internal/output"
	"github.com/valpere/hscicharvest/internal/scraper"
	"github.com/valpere/hscicharvest/pkg/types"
)

// Run names used in logs and metrics
const (
	RunDatasets   = "datasets"
	RunIndicators = "indicators"
)

var errPanic = errors.New("extraction panicked")

// RunSummary reports what a run did.
type RunSummary struct {
	Run            string          `json:"run"`
	ItemsSeen      int             `json:"items_seen"`
	RecordsWritten int             `json:"records_written"`
	Failures       int             `json:"failures"`
	Duration       time.Duration   `json:"duration"`
	Outputs        []output.Result `json:"outputs"`
}

// RecordWriter persists the records of a run.
type RecordWriter interface {
	Write(records interface{}) ([]output.Result, error)
}

// DatasetExtractor produces the record of one dataset.
type DatasetExtractor interface {
	Extract(ctx context.Context, id types.ItemID, stub types.ItemStub) (*types.ItemRecord, error)
}

// IndicatorExtractor produces the record of one indicator.
type IndicatorExtractor interface {
	Extract(ctx context.Context, id types.ItemID) (*types.Indicator, error)
}

// protect runs fn, turning a panic into an error so one bad page cannot end a run.
func protect[T any](fn func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errPanic, r)
		}
	}()
	return fn()
}

// failureReason classifies a per-item error for metrics.
func failureReason(err error) string {
	switch {
	case errors.Is(err, scraper.ErrMissingField):
		return "missing_field"
	case errors.Is(err, scraper.ErrNoContent):
		return "no_content"
	case errors.Is(err, scraper.ErrPageUnavailable):
		return "page_unavailable"
	case errors.Is(err, errPanic):
		return "panic"
	default:
		return "other"
	}
}

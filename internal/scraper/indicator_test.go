// internal/scraper/indicator_test.go
package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/valpere/hscicharvest/internal/cache"
	"github.com/valpere/hscicharvest/internal/utils"
)

const indicatorPage = "<html><body><div id=\"metadata\">\n" +
	"  <h3>Title</h3>\n  <p>Mortality rate</p>\n" +
	"  <h3>Keyword(s)</h3>\n  <p>death\r\nrate\r\n\r\n</p>\n" +
	"  <h3>Download(s)</h3>\n  <p><a href=\"/files/P00003.pdf\">P00003.pdf</a></p>\n" +
	"  <h3>Ignored</h3>\n  <p>after downloads</p>\n" +
	"</div></body></html>"

func newTestIndicatorExtractor(t *testing.T, fetcher Fetcher) *IndicatorExtractor {
	t.Helper()
	store := cache.NewStore(t.TempDir(), nil)
	return NewIndicatorExtractor("https://indicators.test/", "https://indicators.test/velocity?study=P{id}",
		NewPageSource(fetcher, store, nil, nil), nil)
}

func TestIndicatorExtractor_PageURL(t *testing.T) {
	e := newTestIndicatorExtractor(t, newFakeFetcher())
	assert.Equal(t, "https://indicators.test/velocity?study=P00003", e.PageURL(3))
	assert.Equal(t, "https://indicators.test/velocity?study=P01698", e.PageURL(1698))
}

func TestIndicatorExtractor_Extract(t *testing.T) {
	fetcher := newFakeFetcher()
	e := newTestIndicatorExtractor(t, fetcher)
	fetcher.serve(e.PageURL(3), 200, indicatorPage)

	indicator, err := e.Extract(context.Background(), 3)
	require.NoError(t, err)

	data, err := json.Marshal(indicator)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 3,
		"source": "https://indicators.test/velocity?study=P00003",
		"title": "Mortality rate",
		"keyword(s)": ["death", "rate"],
		"sources": [
			{"url": "https://indicators.test/files/P00003.pdf", "description": "P00003", "filetype": "pdf"}
		]
	}`, string(data))

	keys := []string{}
	for pair := indicator.Fields.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	assert.Equal(t, []string{"title", "keyword(s)"}, keys)
}

func TestIndicatorExtractor_NoContent(t *testing.T) {
	tests := map[string]string{
		"missing metadata": `<html><body><p>nothing here</p></body></html>`,
		"empty metadata":   `<html><body><div id="metadata">   </div></body></html>`,
	}

	for name, html := range tests {
		t.Run(name, func(t *testing.T) {
			fetcher := newFakeFetcher()
			e := newTestIndicatorExtractor(t, fetcher)
			fetcher.serve(e.PageURL(5), 200, html)

			indicator, err := e.Extract(context.Background(), 5)
			assert.Nil(t, indicator)
			assert.True(t, errors.Is(err, ErrNoContent))
		})
	}
}

func TestIndicatorExtractor_OddTrailingLabelIgnored(t *testing.T) {
	fetcher := newFakeFetcher()
	e := newTestIndicatorExtractor(t, fetcher)
	fetcher.serve(e.PageURL(6), 200, `<div id="metadata"><b>Title</b><i>Six</i><b>Dangling</b></div>`)

	indicator, err := e.Extract(context.Background(), 6)
	require.NoError(t, err)

	value, ok := indicator.Fields.Get("title")
	require.True(t, ok)
	assert.Equal(t, "Six", value)
	assert.Equal(t, 1, indicator.Fields.Len())
}

func TestIndicatorExtractor_ReservedLabelRenamed(t *testing.T) {
	fetcher := newFakeFetcher()
	core, logs := observer.New(zap.WarnLevel)
	e := NewIndicatorExtractor("https://indicators.test", "https://indicators.test/velocity?study=P{id}",
		NewPageSource(fetcher, cache.NewStore(t.TempDir(), nil), nil, nil), utils.NewLoggerFromZap(zap.New(core)))
	fetcher.serve(e.PageURL(8), 200,
		`<div id="metadata"><b>Title</b><i>Eight</i><b>Source</b><i>Health survey</i></div>`)

	indicator, err := e.Extract(context.Background(), 8)
	require.NoError(t, err)

	value, ok := indicator.Fields.Get("metadata_source")
	require.True(t, ok)
	assert.Equal(t, "Health survey", value)

	data, err := json.Marshal(indicator)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 8,
		"source": "https://indicators.test/velocity?study=P00008",
		"title": "Eight",
		"metadata_source": "Health survey",
		"sources": []
	}`, string(data))

	assert.Equal(t, 1, logs.FilterMessageSnippet("clashes with a record field").Len())
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitLines("a\r\n  \r\nb\n"))
	assert.Equal(t, []string{}, splitLines("  "))
}

// internal/taxonomy/definition.go

// Package taxonomy discovers the labels of each catalogue taxonomy, crawls the
// items filed under every label and merges the per-label listings into one
// item index.
package taxonomy

import (
	"strings"

	"github.com/valpere/hscicharvest/internal/scraper"
	"github.com/valpere/hscicharvest/pkg/types"
)

const searchPath = "/searchcatalogue"

// Definition describes where the labels of one taxonomy kind are listed and
// how a label is turned into a search.
type Definition struct {
	Kind types.Kind
	// CacheName is the cache key stem of the completed index.
	CacheName string
	SeedURLs  []string
	// LabelPath is a chain of selectors; each step after the first is
	// searched inside the first match of the previous one, and every match
	// of the last step is a label heading.
	LabelPath   []string
	QueryParam  string
	LabelPrefix string

	searchBase string
}

// Definitions returns the three taxonomy kinds of the catalogue at siteRoot in merge order.
func Definitions(siteRoot string) []Definition {
	base := strings.TrimRight(siteRoot, "/") + searchPath

	keywordSeeds := make([]string, 0, 26)
	for letter := 'a'; letter <= 'z'; letter++ {
		keywordSeeds = append(keywordSeeds, base+"?kwd="+string(letter)+"&size=10&page=1")
	}

	return []Definition{
		{
			Kind:       types.KindKeyword,
			CacheName:  "keywords",
			SeedURLs:   keywordSeeds,
			LabelPath:  []string{"ol.keyword", "ol.children", "span.heading"},
			QueryParam: "kwd",
			searchBase: base,
		},
		{
			Kind:        types.KindTopic,
			CacheName:   "topics",
			SeedURLs:    []string{base},
			LabelPath:   []string{"ol.topic", "span.heading"},
			QueryParam:  "topics",
			LabelPrefix: "0/",
			searchBase:  base,
		},
		{
			Kind:        types.KindInformationType,
			CacheName:   "info_types",
			SeedURLs:    []string{base},
			LabelPath:   []string{"ol.informationtype", "span.heading"},
			QueryParam:  "infotype",
			LabelPrefix: "0/",
			searchBase:  base,
		},
	}
}

// SearchURL returns the first result page of the search for label.
func (d Definition) SearchURL(label string) (string, error) {
	return scraper.WithQuery(d.searchBase, map[string]string{
		d.QueryParam: d.LabelPrefix + label,
		"size":       "10",
		"page":       "1",
	})
}

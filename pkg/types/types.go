// pkg/types/types.go

// Package types holds the catalogue records shared by the harvester packages.
package types

import (
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ItemID identifies a dataset or indicator on the source website.
type ItemID int

// IsValid reports whether the id is usable as a cache and merge key.
func (id ItemID) IsValid() bool {
	return id >= 1
}

// Kind is one taxonomy axis items are categorised under.
type Kind string

const (
	KindKeyword         Kind = "keywords"
	KindTopic           Kind = "topics"
	KindInformationType Kind = "information_types"
)

// Kinds returns every taxonomy kind in merge order.
func Kinds() []Kind {
	return []Kind{KindKeyword, KindTopic, KindInformationType}
}

// IsValid checks if the kind is one of the known taxonomy kinds
func (k Kind) IsValid() bool {
	for _, valid := range Kinds() {
		if k == valid {
			return true
		}
	}
	return false
}

// ItemStub accumulates the labels an item was seen under before its detail page is read.
type ItemStub struct {
	Keywords         []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Topics           []string `json:"topics,omitempty" yaml:"topics,omitempty"`
	InformationTypes []string `json:"information_types,omitempty" yaml:"information_types,omitempty"`
}

// Add appends label to the sequence for kind, creating the sequence on first use.
func (s *ItemStub) Add(kind Kind, label string) error {
	switch kind {
	case KindKeyword:
		s.Keywords = append(s.Keywords, label)
	case KindTopic:
		s.Topics = append(s.Topics, label)
	case KindInformationType:
		s.InformationTypes = append(s.InformationTypes, label)
	default:
		return fmt.Errorf("unknown taxonomy kind %q", kind)
	}
	return nil
}

// Labels returns the labels recorded for kind.
func (s ItemStub) Labels(kind Kind) []string {
	switch kind {
	case KindKeyword:
		return s.Keywords
	case KindTopic:
		return s.Topics
	case KindInformationType:
		return s.InformationTypes
	default:
		return nil
	}
}

// Clone returns a deep copy of the stub.
func (s ItemStub) Clone() ItemStub {
	return ItemStub{
		Keywords:         cloneStrings(s.Keywords),
		Topics:           cloneStrings(s.Topics),
		InformationTypes: cloneStrings(s.InformationTypes),
	}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// SourceFile is one downloadable resource attached to an item.
type SourceFile struct {
	URL         string `json:"url" yaml:"url"`
	Description string `json:"description" yaml:"description"`
	Filetype    string `json:"filetype" yaml:"filetype"`
}

// ItemRecord is the final structured record for one dataset.
type ItemRecord struct {
	ItemStub `yaml:",inline"`

	Source               string       `json:"source" yaml:"source"`
	Title                string       `json:"title" yaml:"title"`
	ID                   ItemID       `json:"id" yaml:"id"`
	PublicationDate      string       `json:"publication_date" yaml:"publication_date"`
	Summary              string       `json:"summary,omitempty" yaml:"summary,omitempty"`
	KeyFacts             string       `json:"key_facts,omitempty" yaml:"key_facts,omitempty"`
	DateRange            string       `json:"date_range,omitempty" yaml:"date_range,omitempty"`
	GeographicalCoverage []string     `json:"geographical_coverage,omitempty" yaml:"geographical_coverage,omitempty"`
	Sources              []SourceFile `json:"sources" yaml:"sources"`
}

// Indicator is the record extracted from an indicator's metadata page.
// Fields keeps the page's label order; values are strings or, for
// keyword lists, []string.
type Indicator struct {
	ID      ItemID
	Source  string
	Fields  *orderedmap.OrderedMap[string, any]
	Sources []SourceFile
}

// NewIndicator creates an empty indicator record
func NewIndicator(id ItemID, source string) *Indicator {
	return &Indicator{
		ID:      id,
		Source:  source,
		Fields:  orderedmap.New[string, any](),
		Sources: []SourceFile{},
	}
}

// ReservedIndicatorField reports whether name is one of the record's own
// fields, which a metadata field of the same name cannot replace.
func ReservedIndicatorField(name string) bool {
	switch name {
	case "id", "source", "sources":
		return true
	}
	return false
}

// MarshalJSON flattens the metadata fields next to id, source and sources.
// Metadata fields with a reserved name are left out.
func (i Indicator) MarshalJSON() ([]byte, error) {
	out := orderedmap.New[string, any]()
	out.Set("id", i.ID)
	out.Set("source", i.Source)
	if i.Fields != nil {
		for pair := i.Fields.Oldest(); pair != nil; pair = pair.Next() {
			if ReservedIndicatorField(pair.Key) {
				continue
			}
			out.Set(pair.Key, pair.Value)
		}
	}
	sources := i.Sources
	if sources == nil {
		sources = []SourceFile{}
	}
	out.Set("sources", sources)
	return json.Marshal(out)
}

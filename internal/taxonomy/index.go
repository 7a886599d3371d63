// internal/taxonomy/index.go
package taxonomy

import (
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/valpere/hscicharvest/pkg/types"
)

// LabelIndex maps each label of one taxonomy kind to the items listed under
// it. Labels keep discovery order, or document order when loaded from JSON.
type LabelIndex struct {
	labels *orderedmap.OrderedMap[string, []types.ItemID]
}

// NewLabelIndex creates an empty index
func NewLabelIndex() *LabelIndex {
	return &LabelIndex{labels: orderedmap.New[string, []types.ItemID]()}
}

// Len returns the number of labels.
func (x *LabelIndex) Len() int {
	return x.labels.Len()
}

// Labels returns the labels in order.
func (x *LabelIndex) Labels() []string {
	out := make([]string, 0, x.labels.Len())
	for pair := x.labels.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// IDs returns the items listed under label.
func (x *LabelIndex) IDs(label string) ([]types.ItemID, bool) {
	return x.labels.Get(label)
}

// Set records ids for label, keeping the label's original position if it exists.
func (x *LabelIndex) Set(label string, ids []types.ItemID) {
	if ids == nil {
		ids = []types.ItemID{}
	}
	x.labels.Set(label, ids)
}

// Discover adds label with no items unless it is already present.
func (x *LabelIndex) Discover(label string) bool {
	if _, ok := x.labels.Get(label); ok {
		return false
	}
	x.labels.Set(label, []types.ItemID{})
	return true
}

// Each calls fn for every label in order, stopping at the first error.
func (x *LabelIndex) Each(fn func(label string, ids []types.ItemID) error) error {
	for pair := x.labels.Oldest(); pair != nil; pair = pair.Next() {
		if err := fn(pair.Key, pair.Value); err != nil {
			return err
		}
	}
	return nil
}

// MarshalJSON encodes the index as a JSON object in label order.
func (x *LabelIndex) MarshalJSON() ([]byte, error) {
	return json.Marshal(x.labels)
}

// UnmarshalJSON decodes a JSON object of label to id list, keeping key order.
func (x *LabelIndex) UnmarshalJSON(data []byte) error {
	labels := orderedmap.New[string, []types.ItemID]()
	if err := json.Unmarshal(data, labels); err != nil {
		return fmt.Errorf("failed to decode label index: %w", err)
	}
	for pair := labels.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value == nil {
			pair.Value = []types.ItemID{}
		}
	}
	x.labels = labels
	return nil
}

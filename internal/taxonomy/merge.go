// internal/taxonomy/merge.go
package taxonomy

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/valpere/hscicharvest/pkg/types"
)

// ItemIndex maps each item to the labels it was listed under, in order of
// first sighting.
type ItemIndex struct {
	items *orderedmap.OrderedMap[types.ItemID, *types.ItemStub]
}

// Len returns the number of distinct items.
func (x *ItemIndex) Len() int {
	return x.items.Len()
}

// Get returns the stub for id.
func (x *ItemIndex) Get(id types.ItemID) (*types.ItemStub, bool) {
	return x.items.Get(id)
}

// IDs returns the item ids in order of first sighting.
func (x *ItemIndex) IDs() []types.ItemID {
	out := make([]types.ItemID, 0, x.items.Len())
	for pair := x.items.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// Merge inverts the per-kind label indexes into one item index. Kinds are
// visited keywords, topics, information types; labels in index order; ids in
// crawl order. An item listed twice under a label gets the label twice.
func Merge(indexes map[types.Kind]*LabelIndex) (*ItemIndex, error) {
	for kind := range indexes {
		if !kind.IsValid() {
			return nil, fmt.Errorf("unknown taxonomy kind %q", kind)
		}
	}

	merged := &ItemIndex{items: orderedmap.New[types.ItemID, *types.ItemStub]()}
	for _, kind := range types.Kinds() {
		index := indexes[kind]
		if index == nil {
			continue
		}
		err := index.Each(func(label string, ids []types.ItemID) error {
			for _, id := range ids {
				stub, ok := merged.items.Get(id)
				if !ok {
					stub = &types.ItemStub{}
					merged.items.Set(id, stub)
				}
				if err := stub.Add(kind, label); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return merged, nil
}

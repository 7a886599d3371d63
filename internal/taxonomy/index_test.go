// internal/taxonomy/index_test.go
package taxonomy

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/hscicharvest/pkg/types"
)

func TestLabelIndex_KeepsDocumentOrder(t *testing.T) {
	index := NewLabelIndex()
	require.NoError(t, json.Unmarshal([]byte(`{"zeta":[3],"alpha":null,"mid":[1,2]}`), index))

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, index.Labels())
	ids, ok := index.IDs("alpha")
	require.True(t, ok)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)

	data, err := json.Marshal(index)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":[3],"alpha":[],"mid":[1,2]}`, string(data))
}

func TestLabelIndex_DiscoverKeepsExisting(t *testing.T) {
	index := NewLabelIndex()
	assert.True(t, index.Discover("A"))
	index.Set("A", []types.ItemID{1})
	assert.False(t, index.Discover("A"))

	ids, _ := index.IDs("A")
	assert.Equal(t, []types.ItemID{1}, ids)
	assert.Equal(t, 1, index.Len())
}

func TestLabelIndex_SetKeepsPosition(t *testing.T) {
	index := NewLabelIndex()
	index.Discover("first")
	index.Discover("second")
	index.Set("first", []types.ItemID{9})

	assert.Equal(t, []string{"first", "second"}, index.Labels())
}

func TestLabelIndex_UnmarshalRejectsBadDocument(t *testing.T) {
	index := NewLabelIndex()
	assert.Error(t, json.Unmarshal([]byte(`{"a":["x"]}`), index))
}

// pkg/types/types_test.go
package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemStub_Add(t *testing.T) {
	var stub ItemStub

	require.NoError(t, stub.Add(KindKeyword, "A"))
	require.NoError(t, stub.Add(KindKeyword, "B"))
	require.NoError(t, stub.Add(KindTopic, "X"))

	assert.Equal(t, []string{"A", "B"}, stub.Keywords)
	assert.Equal(t, []string{"X"}, stub.Topics)
	assert.Nil(t, stub.InformationTypes)
	assert.Equal(t, []string{"X"}, stub.Labels(KindTopic))
}

func TestItemStub_AddUnknownKind(t *testing.T) {
	var stub ItemStub
	err := stub.Add(Kind("colours"), "red")
	assert.Error(t, err)
	assert.Equal(t, ItemStub{}, stub)
}

func TestItemStub_CloneIsIndependent(t *testing.T) {
	stub := ItemStub{Keywords: []string{"A"}}
	clone := stub.Clone()
	require.NoError(t, clone.Add(KindKeyword, "B"))
	clone.Keywords[0] = "Z"

	assert.Equal(t, []string{"A"}, stub.Keywords)
	assert.Equal(t, []string{"Z", "B"}, clone.Keywords)
}

func TestKind_IsValid(t *testing.T) {
	for _, k := range Kinds() {
		assert.True(t, k.IsValid(), string(k))
	}
	assert.False(t, Kind("").IsValid())
}

func TestItemRecord_JSONFlattensStub(t *testing.T) {
	record := ItemRecord{
		ItemStub:        ItemStub{Keywords: []string{"A"}},
		Source:          "http://example.test/searchcatalogue?productid=7",
		Title:           "Title",
		ID:              7,
		PublicationDate: "01 January 2014",
		Sources:         []SourceFile{},
	}

	data, err := json.Marshal(record)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []any{"A"}, decoded["keywords"])
	assert.NotContains(t, decoded, "topics")
	assert.NotContains(t, decoded, "summary")
	assert.Equal(t, float64(7), decoded["id"])
	assert.Equal(t, []any{}, decoded["sources"])
}

func TestIndicator_MarshalJSONKeepsFieldOrder(t *testing.T) {
	ind := NewIndicator(3, "https://indicators.test/3")
	ind.Fields.Set("title", "Mortality")
	ind.Fields.Set("keyword(s)", []string{"death", "rate"})
	ind.Fields.Set("id", "shadowed")
	ind.Fields.Set("sources", "shadowed")

	data, err := json.Marshal(ind)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"id": 3,
		"source": "https://indicators.test/3",
		"title": "Mortality",
		"keyword(s)": ["death", "rate"],
		"sources": []
	}`, string(data))
	assert.Equal(t,
		`{"id":3,"source":"https://indicators.test/3","title":"Mortality","keyword(s)":["death","rate"],"sources":[]}`,
		string(data))
}

func TestReservedIndicatorField(t *testing.T) {
	for _, name := range []string{"id", "source", "sources"} {
		assert.True(t, ReservedIndicatorField(name), name)
	}
	assert.False(t, ReservedIndicatorField("title"))
	assert.False(t, ReservedIndicatorField("metadata_source"))
}

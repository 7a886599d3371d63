// internal/scraper/transform_test.go
package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformRule_Apply(t *testing.T) {
	tests := []struct {
		name  string
		rule  TransformRule
		input string
		want  string
	}{
		{"trim", TransformRule{Type: TransformTrim}, "  x  ", "x"},
		{"normalize spaces", TransformRule{Type: TransformNormalizeSpaces}, " a \n\t b ", "a b"},
		{"lowercase", TransformRule{Type: TransformLowercase}, "Keyword(s)", "keyword(s)"},
		{"remove", TransformRule{Type: TransformRemove, Old: " [.csv]"}, "File [.csv]", "File"},
		{"remove nothing", TransformRule{Type: TransformRemove}, "File", "File"},
		{"replace", TransformRule{Type: TransformReplace, Old: "&", New: "and"}, "A & E", "A and E"},
		{"regex", TransformRule{Type: TransformRegex, Pattern: `\s*\(.*\)$`}, "Rates (2014)", "Rates"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.rule.Apply(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTransformRule_ApplyErrors(t *testing.T) {
	_, err := TransformRule{Type: "uppercase"}.Apply("x")
	assert.Error(t, err)

	_, err = TransformRule{Type: TransformRegex, Pattern: "("}.Apply("x")
	assert.Error(t, err)

	_, err = TransformList{{Type: TransformTrim}, {Type: TransformReplace}}.Apply("x")
	assert.ErrorContains(t, err, "transform rule 1 failed")
}

func TestStripLabel(t *testing.T) {
	got, err := StripLabel(pubDatePrefix).Apply("  Publication date: 22 May 2014 ")
	require.NoError(t, err)
	assert.Equal(t, "22 May 2014", got)

	got, err = StripLabel(dateRangePrefix).Apply("Date Range: 2012 to 2013")
	require.NoError(t, err)
	assert.Equal(t, "2012 to 2013", got)
}

func TestStripFiletype(t *testing.T) {
	got, err := StripFiletype(" [.xls]").Apply("Annual tables [.xls]")
	require.NoError(t, err)
	assert.Equal(t, "Annual tables", got)

	got, err = StripFiletype(".pdf").Apply("P00003.pdf")
	require.NoError(t, err)
	assert.Equal(t, "P00003", got)
}

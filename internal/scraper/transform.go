// internal/scraper/transform.go
package scraper

import (
	"fmt"
	"regexp"
	"strings"
)

// Transform types
const (
	TransformTrim            = "trim"
	TransformNormalizeSpaces = "normalize_spaces"
	TransformLowercase       = "lowercase"
	TransformRemove          = "remove"
	TransformReplace         = "replace"
	TransformRegex           = "regex"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// TransformRule is one cleanup step applied to text read from a page.
type TransformRule struct {
	Type string

	// Old is the literal removed or replaced by remove and replace
	Old string
	New string

	// Pattern is the expression rewritten to New by regex
	Pattern string
}

// TransformList represents a list of transformation rules that can be applied sequentially
type TransformList []TransformRule

// Apply applies all transformation rules in sequence to the input string
func (tl TransformList) Apply(input string) (string, error) {
	result := input
	for i, rule := range tl {
		var err error
		result, err = rule.Apply(result)
		if err != nil {
			return "", fmt.Errorf("transform rule %d failed: %w", i, err)
		}
	}
	return result, nil
}

// Apply applies a single transformation rule to the input string
func (tr TransformRule) Apply(input string) (string, error) {
	switch tr.Type {
	case TransformTrim:
		return strings.TrimSpace(input), nil

	case TransformNormalizeSpaces:
		return whitespaceRun.ReplaceAllString(strings.TrimSpace(input), " "), nil

	case TransformLowercase:
		return strings.ToLower(input), nil

	case TransformRemove:
		if tr.Old == "" {
			return input, nil
		}
		return strings.ReplaceAll(input, tr.Old, ""), nil

	case TransformReplace:
		if tr.Old == "" {
			return "", fmt.Errorf("replace requires old text")
		}
		return strings.ReplaceAll(input, tr.Old, tr.New), nil

	case TransformRegex:
		if tr.Pattern == "" {
			return "", fmt.Errorf("regex pattern is required")
		}
		re, err := regexp.Compile(tr.Pattern)
		if err != nil {
			return "", fmt.Errorf("invalid regex pattern: %w", err)
		}
		return re.ReplaceAllString(input, tr.New), nil

	default:
		return "", fmt.Errorf("unknown transform type: %s", tr.Type)
	}
}

// StripLabel removes a field label such as "Publication date: " and trims the rest.
func StripLabel(label string) TransformList {
	return TransformList{
		{Type: TransformRemove, Old: label},
		{Type: TransformTrim},
	}
}

// StripFiletype removes the filetype marker a description carries, e.g.
// " [.csv]" on detail pages or ".xls" on indicator pages.
func StripFiletype(marker string) TransformList {
	return TransformList{
		{Type: TransformRemove, Old: marker},
		{Type: TransformTrim},
	}
}

// metadataLabel normalises an indicator metadata label into a field name.
var metadataLabel = TransformList{
	{Type: TransformTrim},
	{Type: TransformLowercase},
}

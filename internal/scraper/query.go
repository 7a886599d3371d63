// internal/scraper/query.go
package scraper

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/valpere/hscicharvest/pkg/types"
)

// QueryValue returns the decoded value of key in rawURL's query string.
// When a key is repeated the last occurrence wins.
func QueryValue(rawURL, key string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	values, err := url.ParseQuery(u.RawQuery)
	if err != nil && len(values) == 0 {
		return "", false
	}
	vs, ok := values[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[len(vs)-1], true
}

// ItemIDFromURL extracts the numeric productid query parameter from an item link.
func ItemIDFromURL(rawURL string) (types.ItemID, error) {
	value, ok := QueryValue(rawURL, "productid")
	if !ok {
		return 0, fmt.Errorf("no productid in %q", rawURL)
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid productid %q: %w", value, err)
	}
	id := types.ItemID(n)
	if !id.IsValid() {
		return 0, fmt.Errorf("invalid productid %d", n)
	}
	return id, nil
}

// WithQuery returns rawURL with the given query parameters replaced. Other
// parameters are kept (last value wins for repeated keys) and any fragment
// is dropped.
func WithQuery(rawURL string, set map[string]string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	values, _ := url.ParseQuery(u.RawQuery)
	for key, vs := range values {
		if len(vs) > 1 {
			values[key] = vs[len(vs)-1:]
		}
	}
	for key, value := range set {
		values.Set(key, value)
	}
	u.RawQuery = values.Encode()
	u.Fragment = ""
	return u.String(), nil
}

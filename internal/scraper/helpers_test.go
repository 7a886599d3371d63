// internal/scraper/helpers_test.go
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/valpere/hscicharvest/internal/utils"
)

// fakeFetcher serves canned responses keyed by exact URL and records every request.
type fakeFetcher struct {
	mu     sync.Mutex
	pages  map[string]*Response
	errors map[string]error
	calls  []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		pages:  make(map[string]*Response),
		errors: make(map[string]error),
	}
}

func (f *fakeFetcher) serve(url string, status int, body string) {
	f.pages[url] = &Response{
		URL:         url,
		StatusCode:  status,
		ContentType: "text/html; charset=utf-8",
		Body:        []byte(body),
	}
}

func (f *fakeFetcher) fail(url string, err error) {
	f.errors[url] = err
}

func (f *fakeFetcher) Get(ctx context.Context, url string) (*Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	if err, ok := f.errors[url]; ok {
		return nil, err
	}
	if resp, ok := f.pages[url]; ok {
		return resp, nil
	}
	return &Response{URL: url, StatusCode: http.StatusNotFound}, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// listingServer serves numbered search result pages. Pages listed in failing
// answer 500; page numbers beyond len(pages) answer 404.
func listingServer(t *testing.T, lastPage int, pages [][]int, failing map[string]bool) (*httptest.Server, *[]string) {
	t.Helper()
	var mu sync.Mutex
	var seen []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.URL.RawQuery)
		mu.Unlock()

		page := r.URL.Query().Get("page")
		if failing[page] {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		var n int
		if _, err := fmt.Sscanf(page, "%d", &n); err != nil || n < 1 || n > len(pages) {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<html><body><ul>")
		for _, id := range pages[n-1] {
			fmt.Fprintf(w, `<li><a class="HSCICProducts" href="/searchcatalogue?productid=%d&amp;topics=0%%2fSocial+care">Item %d</a></li>`, id, id)
		}
		fmt.Fprint(w, "</ul>")
		if lastPage > 0 {
			fmt.Fprintf(w, `<div id="paging"><a class="first" href="?page=1">1</a><a class="last" href="?page=%d">%d</a></div>`, lastPage, lastPage)
		}
		fmt.Fprint(w, "</body></html>")
	}))
	t.Cleanup(server.Close)
	return server, &seen
}

func testClient() *HTTPClient {
	return NewHTTPClient(ClientConfig{}, utils.NewNopLogger(), nil)
}

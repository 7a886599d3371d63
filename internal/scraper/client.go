// internal/scraper/client.go
package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/valpere/hscicharvest/internal/monitoring"
	"github.com/valpere/hscicharvest/internal/utils"
)

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "hscicharvest/1.0"

// ErrPageUnavailable is returned when a page could not be obtained from
// either the cache or the network.
var ErrPageUnavailable = errors.New("page unavailable")

// ErrStatus matches any *StatusError.
var ErrStatus = errors.New("unsuccessful status")

// Response is the result of a GET request. Status codes of 400 and above are
// reported through StatusCode rather than as an error.
type Response struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// Failed reports whether the status code indicates failure.
func (r *Response) Failed() bool {
	return r.StatusCode >= 400
}

// Fetcher performs a single GET request. Implementations never retry.
type Fetcher interface {
	Get(ctx context.Context, rawURL string) (*Response, error)
}

// StatusError describes a response whose status code indicates failure.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.StatusCode, e.URL)
}

// Is makes errors.Is(err, ErrStatus) hold for status errors.
func (e *StatusError) Is(target error) bool {
	return target == ErrStatus
}

// ClientConfig defines configuration options for the HTTP client
type ClientConfig struct {
	// Timeout of zero leaves the transport default in place.
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
}

// HTTPClient is the Fetcher used against the live site.
type HTTPClient struct {
	httpClient *http.Client
	userAgent  string
	headers    map[string]string
	logger     utils.Logger
	metrics    *monitoring.Metrics
}

// NewHTTPClient creates a new HTTP client with the specified configuration
func NewHTTPClient(config ClientConfig, logger utils.Logger, metrics *monitoring.Metrics) *HTTPClient {
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	return &HTTPClient{
		httpClient: &http.Client{
			Timeout: config.Timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgent: config.UserAgent,
		headers:   config.Headers,
		logger:    logger,
		metrics:   metrics,
	}
}

// Get performs one HTTP GET request and reads the whole body.
func (c *HTTPClient) Get(ctx context.Context, rawURL string) (*Response, error) {
	if _, err := url.Parse(rawURL); err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setRequestHeaders(req)

	c.logger.Infof("Requesting %s", rawURL)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRequestError()
		c.logger.WithField("url", rawURL).Errorf("request failed: %v", err)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	c.metrics.ObserveRequest(resp.StatusCode)
	c.logger.WithField("url", rawURL).Infof("%d", resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		URL:         rawURL,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// Close releases idle connections
func (c *HTTPClient) Close() error {
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
	return nil
}

func (c *HTTPClient) setRequestHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-GB,en;q=0.5")

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
}

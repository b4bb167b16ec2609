package adapter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"nicodb/internal/domain"
	"nicodb/internal/metrics"
)

// maxPageSize bounds how much of a program page is read into memory
const maxPageSize = 16 << 20

var streamingIDPattern = regexp.MustCompile(`lv(\d+)`)

// Page is the result of a program page request. Body is only read for 200 responses.
type Page struct {
	URL        string
	StatusCode int
	Body       string
}

// OK reports whether the page can be handed to the extractor
func (p *Page) OK() bool {
	return p.StatusCode == http.StatusOK
}

// NicoliveAdapter fetches program watch pages from the live platform
type NicoliveAdapter struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewNicoliveAdapter creates a new adapter. baseURL is the watch page prefix that
// the numeric program id is appended to.
func NewNicoliveAdapter(baseURL, userAgent string, timeout time.Duration) *NicoliveAdapter {
	return &NicoliveAdapter{
		baseURL:   baseURL,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// StreamingURL builds the watch page URL for a program id
func (n *NicoliveAdapter) StreamingURL(streamingID string) string {
	return BuildStreamingURL(n.baseURL, streamingID)
}

// BuildStreamingURL concatenates the base URL and the program id. The id is not validated.
func BuildStreamingURL(baseURL, streamingID string) string {
	return baseURL + streamingID
}

// DefaultHeaders returns the headers sent with every page request
func (n *NicoliveAdapter) DefaultHeaders() http.Header {
	h := make(http.Header)
	h.Set("User-Agent", n.userAgent)
	h.Set("Accept", "text/html,application/xhtml+xml")
	h.Set("Accept-Language", "ja,en;q=0.8")
	return h
}

// FetchPage requests a program page. Any status code is returned as a Page;
// only transport failures (DNS, timeout, reset) produce an error.
func (n *NicoliveAdapter) FetchPage(ctx context.Context, url string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &domain.FetchError{URL: url, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header = n.DefaultHeaders()

	started := time.Now()
	resp, err := n.httpClient.Do(req)
	if err != nil {
		metrics.RecordFetch(metrics.FetchTransportError, time.Since(started))
		return nil, &domain.FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	page := &Page{URL: url, StatusCode: resp.StatusCode}
	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxPageSize))
		metrics.RecordFetch(metrics.FetchHTTPError, time.Since(started))
		return page, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		metrics.RecordFetch(metrics.FetchTransportError, time.Since(started))
		return nil, &domain.FetchError{URL: url, Err: fmt.Errorf("failed to read response body: %w", err)}
	}
	metrics.RecordFetch(metrics.FetchOK, time.Since(started))

	page.Body = string(body)
	return page, nil
}

// ExtractStreamingID reads the numeric program id following "lv" in a URL
func ExtractStreamingID(url string) (int64, error) {
	match := streamingIDPattern.FindStringSubmatch(url)
	if match == nil {
		return 0, fmt.Errorf("%w: %s", domain.ErrMalformedURL, url)
	}

	id, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", domain.ErrMalformedURL, url, err)
	}
	return id, nil
}

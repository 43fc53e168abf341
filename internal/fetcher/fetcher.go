// =============================================================================
// Branch Dashboard - CSV Fetcher
// =============================================================================
//
// The fetcher downloads the CSV text of a published spreadsheet. One GET per
// call, no retries; the caller decides what a failure means for its view.
//
// =============================================================================

package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrFetch marks every failure to obtain CSV text.
var ErrFetch = errors.New("failed to load data")

// ErrNotConfigured is returned when a dataset has no endpoint yet.
var ErrNotConfigured = fmt.Errorf("%w: spreadsheet link not configured", ErrFetch)

// Fetcher retrieves CSV text from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// HTTPFetcher fetches over HTTP.
type HTTPFetcher struct {
	client *http.Client
}

// New creates an HTTPFetcher with the given timeout. Zero means no timeout.
func New(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{client: &http.Client{Timeout: timeout}}
}

// Fetch performs a GET on url and returns the body as text.
//
// RETURNS:
//   - The response body.
//   - An error wrapping ErrFetch on transport failure or a non-200 status.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if url == "" {
		return "", ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %v", ErrFetch, err)
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: unexpected status %d", ErrFetch, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read body: %v", ErrFetch, err)
	}

	return string(body), nil
}

// Message returns the text shown to users for a refresh error. Details stay
// in the logs.
func Message(err error) string {
	if errors.Is(err, ErrNotConfigured) {
		return "spreadsheet link not configured"
	}
	return ErrFetch.Error()
}

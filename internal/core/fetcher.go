package core

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/adam-gaia/checklints/internal/version"
)

// maxFetchSize caps a fetched checklist or template body (4 MB).
const maxFetchSize = 4 << 20

// defaultFetchTimeout bounds a single external resource download.
const defaultFetchTimeout = 30 * time.Second

// Fetcher downloads external checklists and templates
//
//go:generate mockgen -source=fetcher.go -destination=fetcher_mock_test.go -package=core
type Fetcher interface {
	// Fetch returns the full response body of a GET request to url
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher implements Fetcher over net/http
type HTTPFetcher struct {
	httpClient *http.Client
}

// NewHTTPFetcher creates a new HTTPFetcher. A nil client gets a 30s timeout.
func NewHTTPFetcher(httpClient *http.Client) *HTTPFetcher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultFetchTimeout}
	}
	return &HTTPFetcher{httpClient: httpClient}
}

// Fetch performs a GET request. Non-2xx responses are FetchErrors.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NewFetchError(url, 0, err)
	}
	req.Header.Set("User-Agent", "checklints/"+version.GetVersion())

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, NewFetchError(url, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, NewFetchError(url, resp.StatusCode, nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchSize+1))
	if err != nil {
		return nil, NewFetchError(url, 0, err)
	}
	if len(body) > maxFetchSize {
		return nil, NewFetchError(url, 0, fmt.Errorf("response exceeds %d byte limit", maxFetchSize))
	}
	return body, nil
}

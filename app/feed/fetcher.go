package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"rag-ingestor/app/retry"
)

// Fetcher retrieves feed documents and article pages over HTTP, retrying
// transport failures according to its policy.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	policy     retry.Policy
}

func NewFetcher(httpClient *http.Client, userAgent string, policy retry.Policy) *Fetcher {
	return &Fetcher{
		httpClient: httpClient,
		userAgent:  userAgent,
		policy:     policy,
	}
}

// Fetch retrieves raw bytes from url. Non-2xx responses and network failures
// surface as retryable transport errors.
func (f *Fetcher) Fetch(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	var data []byte
	err := f.policy.Do(ctx, "fetch", func() error {
		var err error
		data, err = f.get(ctx, url, timeout, false)
		return err
	})
	return data, err
}

// FetchHTML retrieves an article page, additionally requiring an HTML content
// type so non-article resources (PDFs, images) are rejected up front.
func (f *Fetcher) FetchHTML(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	var data []byte
	err := f.policy.Do(ctx, "fetch_html", func() error {
		var err error
		data, err = f.get(ctx, url, timeout, true)
		return err
	})
	return data, err
}

func (f *Fetcher) get(ctx context.Context, url string, timeout time.Duration, requireHTML bool) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &retry.TransportError{Op: "fetch", URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &retry.TransportError{Op: "fetch", URL: url, StatusCode: resp.StatusCode}
	}

	if requireHTML {
		contentType := resp.Header.Get("Content-Type")
		if !strings.Contains(strings.ToLower(contentType), "text/html") {
			return nil, fmt.Errorf("content type is not HTML: %s", contentType)
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &retry.TransportError{Op: "fetch", URL: url, Err: err}
	}

	return data, nil
}

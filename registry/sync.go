package registry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// Fetcher downloads a registry document published by a running site.
type Fetcher struct {
	client *retryablehttp.Client
}

// NewFetcher returns a Fetcher that retries transient failures up to
// retries times.
func NewFetcher(retries int, timeout time.Duration) *Fetcher {
	c := retryablehttp.NewClient()
	c.RetryMax = retries
	c.RetryWaitMin = 250 * time.Millisecond
	c.RetryWaitMax = 2 * time.Second
	c.HTTPClient.Timeout = timeout
	c.Logger = nil
	return &Fetcher{client: c}
}

// Fetch downloads and decodes the registry at url. The response must decode
// as a Document; anything else is an error so a broken remote never
// overwrites a good local copy.
func (f *Fetcher) Fetch(ctx context.Context, url string) (Document, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Document{}, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := f.client.Do(req)
	if err != nil {
		return Document{}, fmt.Errorf("registry: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Document{}, fmt.Errorf("registry: fetch %s: unexpected status %d", url, resp.StatusCode)
	}
	return Decode(resp.Body)
}

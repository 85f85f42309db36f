package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Client scrapes pages through the server's fetch proxy.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the proxy of the server at baseURL.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Fetch downloads target through the proxy and parses it. A proxy error
// status is returned as an error.
func (c *Client) Fetch(ctx context.Context, target string) (Product, error) {
	endpoint := c.baseURL + "/api/fetch-data?url=" + url.QueryEscape(target)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Product{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Product{}, fmt.Errorf("failed to call fetch proxy: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Product{}, fmt.Errorf("failed to read proxy response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return Product{}, fmt.Errorf("fetch proxy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return Parse(string(body)), nil
}

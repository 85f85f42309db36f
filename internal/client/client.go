// Package client is the Go client of a Karkkilista server.
//
// A Client holds one session (the signed-in identity and its token) and gives
// access to the owner directory, the item lists and the fetch proxy. Live
// reads are returned as feed subscriptions that reconnect on their own.
package client

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"connectrpc.com/connect"
	"github.com/cenkalti/backoff/v4"

	"github.com/mmynk/karkkilista/internal/api"
	"github.com/mmynk/karkkilista/internal/models"
	"github.com/mmynk/karkkilista/internal/scrape"
)

// Client talks to one server. Create it with New and release it with Close.
type Client struct {
	httpClient *http.Client
	auth       *api.AuthServiceClient
	lists      *api.ListServiceClient
	scraper    *scrape.Client
	newBackOff func() backoff.BackOff

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.RWMutex
	identity  *models.Identity
	token     string
	listeners map[int]func(*models.Identity)
	nextID    int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for every call.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithBackOff sets the reconnect policy of live subscriptions. The factory is
// called once per subscription.
func WithBackOff(f func() backoff.BackOff) Option {
	return func(cl *Client) { cl.newBackOff = f }
}

// DefaultBackOff retries forever, starting at half a second and capping the
// wait at 30 seconds.
func DefaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0
	return b
}

// New creates a client for the server at baseURL (for example
// http://localhost:8080).
func New(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(baseURL, "/")

	c := &Client{
		httpClient: http.DefaultClient,
		newBackOff: DefaultBackOff,
		listeners:  make(map[int]func(*models.Identity)),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())

	interceptors := connect.WithInterceptors(c.bearerInterceptor())
	c.auth = api.NewAuthServiceClient(c.httpClient, baseURL, interceptors)
	c.lists = api.NewListServiceClient(c.httpClient, baseURL, interceptors)
	c.scraper = scrape.NewClient(baseURL, c.httpClient)

	return c
}

// Close ends every live subscription started by the client. The session is
// left as it is; Close is safe to call more than once.
func (c *Client) Close() error {
	c.cancel()
	c.httpClient.CloseIdleConnections()
	return nil
}

// Scraper returns the fetch proxy client.
func (c *Client) Scraper() *scrape.Client {
	return c.scraper
}

// bearerInterceptor attaches the session token to outgoing unary calls.
func (c *Client) bearerInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if token := c.Token(); token != "" && req.Header().Get("Authorization") == "" {
				req.Header().Set("Authorization", "Bearer "+token)
			}
			return next(ctx, req)
		}
	}
}

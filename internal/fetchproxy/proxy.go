// Package fetchproxy serves GET /api/fetch-data, which fetches an external
// page on behalf of a browser client that cannot read it cross-origin.
package fetchproxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmynk/karkkilista/internal/metrics"
)

// Path is where the proxy is mounted.
const Path = "/api/fetch-data"

// DefaultMaxBytes caps the upstream body size.
const DefaultMaxBytes int64 = 5 << 20

// Error messages returned to the caller.
const (
	msgURLRequired   = "URL is required"
	msgFetchingError = "Error fetching data"
)

var errTooLarge = errors.New("response body too large")

// ErrorResponse is the JSON body of a failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Handler fetches the page named by the url query parameter and returns its
// body verbatim with status 200, whatever status the upstream answered with.
type Handler struct {
	client   *http.Client
	timeout  time.Duration
	maxBytes int64
}

// Option configures a Handler.
type Option func(*Handler)

// WithClient sets the HTTP client used for upstream requests.
func WithClient(c *http.Client) Option {
	return func(h *Handler) { h.client = c }
}

// WithTimeout bounds each upstream fetch. Zero means no timeout; the fetch
// still ends when the caller disconnects.
func WithTimeout(d time.Duration) Option {
	return func(h *Handler) { h.timeout = d }
}

// WithMaxBytes caps the upstream body size. Larger bodies fail the fetch.
func WithMaxBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxBytes = n
		}
	}
}

// New creates a proxy handler.
func New(opts ...Option) *Handler {
	h := &Handler{
		client:   http.DefaultClient,
		maxBytes: DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	if target == "" {
		metrics.FetchRequestsTotal.WithLabelValues(metrics.FetchOutcomeMissingURL).Inc()
		writeError(w, http.StatusBadRequest, msgURLRequired)
		return
	}

	body, err := h.fetch(r.Context(), target)
	if err != nil {
		slog.Warn("Fetch failed", "url", target, "error", err)
		metrics.FetchRequestsTotal.WithLabelValues(metrics.FetchOutcomeError).Inc()
		writeError(w, http.StatusInternalServerError, msgFetchingError)
		return
	}

	metrics.FetchRequestsTotal.WithLabelValues(metrics.FetchOutcomeOK).Inc()
	slog.Debug("Fetch completed", "url", target, "bytes", len(body))

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (h *Handler) fetch(ctx context.Context, target string) ([]byte, error) {
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > h.maxBytes {
		return nil, errTooLarge
	}

	return body, nil
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: msg})
}

package fetchproxy

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func proxyRequest(target string) *http.Request {
	if target == "" {
		return httptest.NewRequest(http.MethodGet, Path, nil)
	}
	return httptest.NewRequest(http.MethodGet, Path+"?url="+url.QueryEscape(target), nil)
}

func TestHandler_MissingURL(t *testing.T) {
	w := httptest.NewRecorder()
	New().ServeHTTP(w, proxyRequest(""))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"URL is required"}`, w.Body.String())
}

func TestHandler_ReturnsBody(t *testing.T) {
	page := `<html><body><h1 itemprop="name">Salmiakki</h1><span class="price">2,50€</span></body></html>`
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer upstream.Close()

	w := httptest.NewRecorder()
	New().ServeHTTP(w, proxyRequest(upstream.URL+"/tuote?id=1"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, page, w.Body.String())
}

func TestHandler_UpstreamStatusIgnored(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("not here"))
	}))
	defer upstream.Close()

	w := httptest.NewRecorder()
	New().ServeHTTP(w, proxyRequest(upstream.URL))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "not here", w.Body.String())
}

func TestHandler_FetchFailures(t *testing.T) {
	closed := httptest.NewServer(http.NotFoundHandler())
	closedURL := closed.URL
	closed.Close()

	big := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer big.Close()

	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer slow.Close()

	tests := []struct {
		name    string
		target  string
		handler *Handler
	}{
		{"malformed url", "::not a url", New()},
		{"relative url", "/just/a/path", New()},
		{"connection refused", closedURL, New()},
		{"body too large", big.URL, New(WithMaxBytes(16))},
		{"timeout", slow.URL, New(WithTimeout(50 * time.Millisecond))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.handler.ServeHTTP(w, proxyRequest(tt.target))

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.JSONEq(t, `{"error":"Error fetching data"}`, w.Body.String())
		})
	}
}

package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/karkkilista/internal/fetchproxy"
)

func setupRouter(t *testing.T) http.Handler {
	t.Helper()

	static := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(static, "index.html"), []byte("<html>karkkilista</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(static, "app.js"), []byte("console.log('hei')"), 0o644))

	rpc := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("rpc " + r.URL.Path))
	})

	router, err := newRouter(routerConfig{
		Connect:    map[string]http.Handler{"/test.v1.Service/": rpc},
		FetchProxy: fetchproxy.New(),
		StaticPath: static,
	})
	require.NoError(t, err)
	return router
}

func get(t *testing.T, h http.Handler, method, path string) (*httptest.ResponseRecorder, string) {
	t.Helper()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	body, err := io.ReadAll(w.Result().Body)
	require.NoError(t, err)
	return w, string(body)
}

func TestRouter(t *testing.T) {
	router := setupRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		code   int
		body   string
	}{
		{"directory route", http.MethodGet, "/", http.StatusOK, "<html>karkkilista</html>"},
		{"list route", http.MethodGet, "/list/abc123", http.StatusOK, "<html>karkkilista</html>"},
		{"static asset", http.MethodGet, "/app.js", http.StatusOK, "console.log('hei')"},
		{"unknown path falls back to index", http.MethodGet, "/nothing/here", http.StatusOK, "<html>karkkilista</html>"},
		{"health", http.MethodGet, "/healthz", http.StatusOK, `{"status":"ok"}`},
		{"fetch proxy", http.MethodGet, "/api/fetch-data", http.StatusBadRequest, "{\"error\":\"URL is required\"}\n"},
		{"connect handler", http.MethodPost, "/test.v1.Service/Call", http.StatusOK, "rpc /test.v1.Service/Call"},
		{"preflight", http.MethodOptions, "/test.v1.Service/Call", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := get(t, router, tt.method, tt.path)
			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, tt.body, body)
			assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestRouter_Metrics(t *testing.T) {
	router := setupRouter(t)

	get(t, router, http.MethodGet, "/healthz")
	w, body := get(t, router, http.MethodGet, "/metrics")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, body, "karkkilista_http_requests_total")
}

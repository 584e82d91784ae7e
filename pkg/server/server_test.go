package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/medreza/honcho-voucher-service/pkg/config"
	"github.com/medreza/honcho-voucher-service/pkg/repository"
	"github.com/medreza/honcho-voucher-service/pkg/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, config.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	cfg := config.NewTestConfig(dir)

	require.NoError(t, os.MkdirAll(filepath.Join(cfg.Server.FrontendDir, "js"), 0o755))
	files := map[string]string{
		"index.html":  "<h1>check</h1>",
		"admin.html":  "<h1>admin</h1>",
		"js/admin.js": "console.log('admin')",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(cfg.Server.FrontendDir, name), []byte(content), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "secret.txt"), []byte("secret"), 0o644))

	ctx := context.Background()
	repo, err := repository.Open(ctx, cfg.DB)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close(ctx) })

	srv := httptest.NewServer(NewRouter(cfg, service.NewVoucherService(repo)))
	t.Cleanup(srv.Close)
	return srv, cfg
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestStaticAssets(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		path       string
		wantStatus int
		wantBody   string
	}{
		{path: "/", wantStatus: http.StatusOK, wantBody: "<h1>check</h1>"},
		{path: "/admin", wantStatus: http.StatusOK, wantBody: "<h1>admin</h1>"},
		{path: "/js/admin.js", wantStatus: http.StatusOK, wantBody: "console.log('admin')"},
		{path: "/missing.css", wantStatus: http.StatusNotFound},
		{path: "/js", wantStatus: http.StatusNotFound},
		{path: "/..%2fsecret.txt", wantStatus: http.StatusNotFound},
		{path: "/health", wantStatus: http.StatusOK, wantBody: `{"status":"ok"}`},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			status, body := get(t, srv.URL+tt.path)
			assert.Equal(t, tt.wantStatus, status)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, body)
			}
			assert.NotContains(t, body, "secret")
		})
	}
}

func TestWrongMethodIsNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		method string
		path   string
	}{
		{method: http.MethodPost, path: "/all"},
		{method: http.MethodGet, path: "/add"},
		{method: http.MethodGet, path: "/upload"},
		{method: http.MethodPost, path: "/check/SUMMER10"},
		{method: http.MethodPost, path: "/"},
		{method: http.MethodPost, path: "/admin"},
		{method: http.MethodPost, path: "/js/admin.js"},
		{method: http.MethodDelete, path: "/missing.css"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, srv.URL+tt.path, nil)
			require.NoError(t, err)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		})
	}
}

func TestConcurrentUpsertsKeepOneRecord(t *testing.T) {
	srv, _ := newTestServer(t)
	code := fmt.Sprintf("RACE_%d", time.Now().UnixNano())
	requests := 30

	var wg sync.WaitGroup
	wg.Add(requests)
	for i := 0; i < requests; i++ {
		go func(duration int) {
			defer wg.Done()
			body, _ := json.Marshal(map[string]any{
				"code":       code,
				"start_date": "2024-01-01",
				"duration":   duration,
			})
			resp, err := http.Post(srv.URL+"/add", "application/json", bytes.NewBuffer(body))
			if err == nil {
				resp.Body.Close()
			}
		}(i)
	}
	wg.Wait()

	status, body := get(t, srv.URL+"/all")
	require.Equal(t, http.StatusOK, status)

	var rows [][]any
	require.NoError(t, json.Unmarshal([]byte(body), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, code, rows[0][0])
	assert.Equal(t, "2024-01-01", rows[0][1])

	// last write wins, so any submitted duration may survive
	duration, ok := rows[0][2].(float64)
	require.True(t, ok)
	assert.GreaterOrEqual(t, duration, 0.0)
	assert.Less(t, duration, float64(requests))
}

func TestRunStopsOnContextCancel(t *testing.T) {
	cfg := config.NewTestConfig(t.TempDir()).Server
	cfg.Port = "0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, cfg, http.NotFoundHandler())
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scanbatch-rest-api/internal/handler"
	"scanbatch-rest-api/internal/middleware"
	"scanbatch-rest-api/internal/model"
	"scanbatch-rest-api/internal/repository"
	"scanbatch-rest-api/internal/service"
)

func setupRouterTest(t *testing.T, loginKey string) *httptest.Server {
	t.Helper()

	repo := repository.NewMemoryScanRepository()
	svc := service.NewScanService(repo)

	r := New(Config{
		Handler:         handler.New(svc, "test"),
		ScanHandler:     handler.NewScanHandler(svc),
		AdminHandler:    handler.NewAdminHandler(svc, "none"),
		AdminMiddleware: middleware.NewAdminKeyMiddleware(loginKey),
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestRouter_CreateThenList(t *testing.T) {
	t.Parallel()

	srv := setupRouterTest(t, "")

	for _, body := range []string{
		`{"barcode":"A123","level":"First"}`,
		`{"barcode":"B456","level":"Second"}`,
	} {
		resp, err := http.Post(srv.URL+"/scan", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	}

	resp, err := http.Get(srv.URL + "/scans")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var scans []model.Scan
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&scans))
	require.Len(t, scans, 2)
	assert.Equal(t, "B456", scans[0].Barcode)
	assert.Equal(t, "Second", scans[0].Level)
	assert.Equal(t, "A123", scans[1].Barcode)
	assert.Equal(t, "First", scans[1].Level)
	assert.False(t, scans[0].ScannedAt.Before(scans[1].ScannedAt))
}

func TestRouter_CORSAllowsAnyOrigin(t *testing.T) {
	t.Parallel()

	srv := setupRouterTest(t, "")

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/scan", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://192.168.1.10:8081")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRouter_HealthEndpoints(t *testing.T) {
	t.Parallel()

	srv := setupRouterTest(t, "")

	for _, path := range []string{"/api/status", "/api/v1/health", "/api/v1/ready"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestRouter_AdminStatsRequiresKey(t *testing.T) {
	t.Parallel()

	srv := setupRouterTest(t, "secret")

	resp, err := http.Get(srv.URL + "/api/v1/admin/stats")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/admin/stats", nil)
	require.NoError(t, err)
	req.Header.Set(middleware.LoginKeyHeader, "secret")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, "none", stats["cache_type"])
	store, ok := stats["scan_store"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "memory", store["backend"])
}

func TestRouter_UnknownRoute(t *testing.T) {
	t.Parallel()

	srv := setupRouterTest(t, "")

	resp, err := http.Get(srv.URL + "/scan/123")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "NOT_FOUND", body["code"])
}

func TestRouter_WrongMethod(t *testing.T) {
	t.Parallel()

	srv := setupRouterTest(t, "")

	resp, err := http.Get(srv.URL + "/scan")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

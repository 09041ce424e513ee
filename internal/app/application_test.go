package app

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"floodmap.app/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const floodGeoJSON = `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{},"geometry":{"type":"Polygon","coordinates":[[[-0.4,39.3],[-0.35,39.3],[-0.35,39.35],[-0.4,39.3]]]}}]}`

func testArchive(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, body := range map[string]string{
		"p-1/VALENCIA_flood.geojson":     floodGeoJSON,
		"p-1/VALENCIA_footprint.geojson": floodGeoJSON,
	} {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func newFakeGFM(t *testing.T) *httptest.Server {
	t.Helper()
	archive := testArchive(t)
	mux := http.NewServeMux()
	var srv *httptest.Server

	authorized := func(w http.ResponseWriter, r *http.Request) bool {
		if r.Header.Get("Authorization") != "bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return false
		}
		return true
	}

	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"client_id": "u1", "access_token": "tok"})
	})
	mux.HandleFunc("/aoi/user/u1", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		_, _ = w.Write([]byte(`{"aois":[{"aoi_id":"3f9a1c7e-aaaa","aoi_name":"Valencia","geoJSON":{"type":"Polygon","coordinates":[[[-0.45,39.25],[-0.3,39.25],[-0.3,39.4],[-0.45,39.4],[-0.45,39.25]]]}}]}`))
	})
	mux.HandleFunc("/aoi/3f9a1c7e-aaaa/products", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		_, _ = w.Write([]byte(`{"products":[{"product_id":"p-1","product_time":"2024-10-29T05:00:00"}]}`))
	})
	mux.HandleFunc("/download/product/p-1", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"download_link": srv.URL + "/files/p-1.zip"})
	})
	mux.HandleFunc("/files/p-1.zip", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(archive)
	})

	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, baseURL string) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		Server: config.ServerConfig{Port: 8080},
		GFM: config.GFMConfig{
			Username:       "analyst@example.org",
			Password:       "secret",
			BaseURL:        baseURL,
			TimeoutSeconds: 5,
			MaxArchiveMB:   16,
		},
		Storage: config.StorageConfig{
			Backend:   config.StorageBackendFilesystem,
			Path:      dir,
			IndexFile: "index.csv",
		},
		Database: config.DatabaseConfig{Driver: "sqlite", SQLitePath: filepath.Join(dir, "floodmap.db")},
		Cache:    config.CacheConfig{Type: config.CacheTypeMemory, AreaTTLMinutes: 10},
		Sync:     config.SyncConfig{GroupGapSeconds: 60, DownloadWorkers: 2},
		Logging:  config.LoggingConfig{Level: "error"},
	}
}

func newTestApplication(t *testing.T, cfg *config.Config, client *http.Client) *Application {
	t.Helper()
	application, err := NewApplicationWithConfig(cfg, client)
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.deps.Cleanup() })
	return application
}

func serve(application *Application, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	application.GetRouter().ServeHTTP(w, req)
	return w
}

func TestApplication_DownloadRoundTrip(t *testing.T) {
	gfm := newFakeGFM(t)
	application := newTestApplication(t, testConfig(t, gfm.URL), gfm.Client())

	w := serve(application, http.MethodGet, "/api/areas", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"preview":"Valencia - 3f9a1c..."`)

	w = serve(application, http.MethodGet, "/api/areas/3f9a1c7e-aaaa/products?from=2024-10-28&to=2024-10-31", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"key":"2024-10-29T05:00:00Z"`)
	assert.Contains(t, w.Body.String(), `"downloaded":false`)

	body := `{"from":"2024-10-28","to":"2024-10-31","group_key":"2024-10-29T05:00:00Z"}`
	w = serve(application, http.MethodPost, "/api/areas/3f9a1c7e-aaaa/downloads", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"materialized":1`)

	w = serve(application, http.MethodPost, "/api/areas/3f9a1c7e-aaaa/downloads", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"skipped":1`)

	w = serve(application, http.MethodGet, "/api/products/p-1/geometry/flood", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"FeatureCollection"`)

	w = serve(application, http.MethodGet, "/api/catalog", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"materialized":1`)

	w = serve(application, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "floodmap_gfm_requests_total")
	assert.Contains(t, w.Body.String(), "floodmap_product_materializations_total")
}

func TestApplication_Health(t *testing.T) {
	gfm := newFakeGFM(t)
	application := newTestApplication(t, testConfig(t, gfm.URL), gfm.Client())

	w := serve(application, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"storage"`)
	assert.Contains(t, w.Body.String(), `"gfm"`)
}

func TestApplication_MissingCredentials(t *testing.T) {
	gfm := newFakeGFM(t)
	cfg := testConfig(t, gfm.URL)
	cfg.GFM.Username = ""
	application := newTestApplication(t, cfg, gfm.Client())

	w := serve(application, http.MethodGet, "/api/areas", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(application, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestApplication_UnknownCacheType(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.Cache.Type = config.CacheTypeUnknown

	_, err := NewApplicationWithConfig(cfg, nil)

	assert.Error(t, err)
}

func TestApplication_DatabaseBackend(t *testing.T) {
	gfm := newFakeGFM(t)
	cfg := testConfig(t, gfm.URL)
	cfg.Storage.Backend = config.StorageBackendDatabase
	application := newTestApplication(t, cfg, gfm.Client())

	body := `{"from":"2024-10-28","to":"2024-10-31","group_key":"2024-10-29T05:00:00Z"}`
	w := serve(application, http.MethodPost, "/api/areas/3f9a1c7e-aaaa/downloads", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"materialized":1`)

	w = serve(application, http.MethodGet, "/api/products/p-1/geometry/footprint", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

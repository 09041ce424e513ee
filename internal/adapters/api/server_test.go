package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"floodmap.app/internal/core/area"
	"floodmap.app/internal/core/product"
	"floodmap.app/internal/mocks"
	"floodmap.app/internal/ports"
	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAreaUseCase struct {
	mock.Mock
}

func (m *mockAreaUseCase) SortedAreas(ctx context.Context) ([]area.AOI, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]area.AOI), args.Error(1)
}

func (m *mockAreaUseCase) GetArea(ctx context.Context, id string) (*area.AOI, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*area.AOI), args.Error(1)
}

func (m *mockAreaUseCase) CreateArea(ctx context.Context, request area.CreateAreaRequest) (*area.AOI, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*area.AOI), args.Error(1)
}

func (m *mockAreaUseCase) DeleteArea(ctx context.Context, id, confirmation string) error {
	args := m.Called(ctx, id, confirmation)
	return args.Error(0)
}

type mockProductUseCase struct {
	mock.Mock
}

func (m *mockProductUseCase) AvailableProducts(ctx context.Context, aoiID string, dates product.DateRange) ([]product.GroupSummary, error) {
	args := m.Called(ctx, aoiID, dates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]product.GroupSummary), args.Error(1)
}

func (m *mockProductUseCase) DownloadGroupByKey(ctx context.Context, aoiID string, dates product.DateRange, key time.Time) (*product.DownloadResult, error) {
	args := m.Called(ctx, aoiID, dates, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.DownloadResult), args.Error(1)
}

func (m *mockProductUseCase) GetGeometry(ctx context.Context, productID string, kind ports.GeometryKind) (*geojson.FeatureCollection, error) {
	args := m.Called(ctx, productID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*geojson.FeatureCollection), args.Error(1)
}

func (m *mockProductUseCase) CatalogCoverage(ctx context.Context) (*product.CoverageReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.CoverageReport), args.Error(1)
}

type mockHealthChecker struct {
	statuses map[string]ports.HealthStatus
}

func (m *mockHealthChecker) CheckAll(ctx context.Context) map[string]ports.HealthStatus {
	return m.statuses
}

type testServer struct {
	areas    *mockAreaUseCase
	products *mockProductUseCase
	health   *mockHealthChecker
	router   *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	gin.SetMode(gin.TestMode)

	ts := &testServer{
		areas:    new(mockAreaUseCase),
		products: new(mockProductUseCase),
		health: &mockHealthChecker{statuses: map[string]ports.HealthStatus{
			"storage": {Component: "storage", Status: "healthy"},
		}},
	}
	server, err := NewHTTPServerAdapter(ServerOptions{
		Config:         ServerConfig{Port: 8080},
		AreaUseCase:    ts.areas,
		ProductUseCase: ts.products,
		HealthChecker:  ts.health,
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("floodmap_gfm_requests_total 0\n"))
		}),
		Logger: mocks.Logger{},
	})
	require.NoError(t, err)
	ts.router = server.GetRouter()

	t.Cleanup(func() {
		ts.areas.AssertExpectations(t)
		ts.products.AssertExpectations(t)
	})
	return ts
}

func (ts *testServer) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"floodmap.app/internal/ports"
	"floodmap.app/pkg/errors"
	"floodmap.app/pkg/geo"
	"github.com/paulmach/orb"
)

const (
	maxJSONResponseBytes = 32 << 20
	productQueryLayout   = "2006-01-02T15:04:05"
)

var productTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

type aoiPayload struct {
	AOIID   string          `json:"aoi_id"`
	AOIName string          `json:"aoi_name"`
	GeoJSON json.RawMessage `json:"geoJSON"`
}

type aoiListResponse struct {
	AOIs []aoiPayload `json:"aois"`
}

type polygonPayload struct {
	Type        string         `json:"type"`
	Coordinates [][][2]float64 `json:"coordinates"`
}

type createAOIRequest struct {
	AOIName     string         `json:"aoi_name"`
	Description string         `json:"description"`
	UserID      string         `json:"user_id"`
	GeoJSON     polygonPayload `json:"geoJSON"`
}

type productPayload struct {
	ProductID   string `json:"product_id"`
	ProductTime string `json:"product_time"`
}

type productListResponse struct {
	Products []productPayload `json:"products"`
}

type downloadLinkResponse struct {
	DownloadLink string `json:"download_link"`
}

// GFMClient implements ports.RemoteAoiClient against the GFM REST API.
//
// Every request is sent with the current bearer token. A 401 triggers one
// forced refresh and one more attempt; a second 401 is an AuthError.
// Transport failures, timeouts and 502/503/504 responses are transient;
// GET and DELETE requests are retried once on a transient failure.
type GFMClient struct {
	baseURL         string
	credentials     ports.CredentialStore
	client          HTTPClient
	maxArchiveBytes int64
	logger          ports.Logger
}

// GFMClientParams holds parameters for creating the GFM client
type GFMClientParams struct {
	BaseURL         string
	Credentials     ports.CredentialStore
	Client          HTTPClient
	MaxArchiveBytes int64
	Logger          ports.Logger
}

// NewGFMClient creates a new GFM API client
func NewGFMClient(params GFMClientParams) (*GFMClient, error) {
	if params.Credentials == nil {
		return nil, errors.NewConfigurationError("credential store is required", nil)
	}
	if params.Logger == nil {
		return nil, errors.NewConfigurationError("logger is required", nil)
	}
	if params.BaseURL == "" {
		return nil, errors.NewConfigurationError("GFM base URL is required", nil)
	}
	client := params.Client
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	maxArchive := params.MaxArchiveBytes
	if maxArchive <= 0 {
		maxArchive = 512 << 20
	}

	return &GFMClient{
		baseURL:         strings.TrimRight(params.BaseURL, "/"),
		credentials:     params.Credentials,
		client:          client,
		maxArchiveBytes: maxArchive,
		logger:          params.Logger,
	}, nil
}

// Login forces a new session
func (c *GFMClient) Login(ctx context.Context) (ports.Session, error) {
	return c.credentials.ForceRefresh(ctx)
}

func (c *GFMClient) ListAOIs(ctx context.Context) ([]ports.AOIData, error) {
	var resp aoiListResponse
	err := c.do(ctx, apiRequest{
		method: http.MethodGet,
		path: func(s ports.Session) string {
			return "/aoi/user/" + url.PathEscape(s.UserID)
		},
	}, &resp)
	if err != nil {
		return nil, err
	}

	aois := make([]ports.AOIData, 0, len(resp.AOIs))
	for _, a := range resp.AOIs {
		if a.AOIID == "" {
			c.logger.Warn("Skipping AOI without id", ports.F("name", a.AOIName))
			continue
		}
		aois = append(aois, ports.AOIData{ID: a.AOIID, Name: a.AOIName, Geometry: a.GeoJSON})
	}
	return aois, nil
}

func (c *GFMClient) CreateAOI(ctx context.Context, name string, polygon orb.Polygon) (*ports.AOIData, error) {
	coordinates := geo.PolygonCoordinates(polygon)

	var resp aoiPayload
	err := c.do(ctx, apiRequest{
		method: http.MethodPost,
		path:   func(ports.Session) string { return "/aoi/create" },
		body: func(s ports.Session) interface{} {
			return createAOIRequest{
				AOIName:     name,
				Description: name,
				UserID:      s.UserID,
				GeoJSON:     polygonPayload{Type: "Polygon", Coordinates: coordinates},
			}
		},
	}, &resp)
	if err != nil {
		return nil, err
	}

	geometry, err := json.Marshal(polygonPayload{Type: "Polygon", Coordinates: coordinates})
	if err != nil {
		return nil, errors.NewValidationError("failed to encode polygon: " + err.Error())
	}
	created := &ports.AOIData{ID: resp.AOIID, Name: resp.AOIName, Geometry: geometry}
	if created.Name == "" {
		created.Name = name
	}
	return created, nil
}

func (c *GFMClient) DeleteAOI(ctx context.Context, aoiID string) error {
	return c.do(ctx, apiRequest{
		method: http.MethodDelete,
		path:   func(ports.Session) string { return "/aoi/delete/id/" + url.PathEscape(aoiID) },
	}, nil)
}

// ListProducts lists the products of an AOI acquired between the start of
// from and the end of to.
func (c *GFMClient) ListProducts(ctx context.Context, aoiID string, from, to time.Time) ([]ports.ProductData, error) {
	query := url.Values{}
	query.Set("time", "range")
	query.Set("from", startOfDay(from).Format(productQueryLayout))
	query.Set("to", endOfDay(to).Format(productQueryLayout))

	var resp productListResponse
	err := c.do(ctx, apiRequest{
		method: http.MethodGet,
		path: func(ports.Session) string {
			return "/aoi/" + url.PathEscape(aoiID) + "/products?" + query.Encode()
		},
	}, &resp)
	if err != nil {
		return nil, err
	}

	products := make([]ports.ProductData, 0, len(resp.Products))
	for _, p := range resp.Products {
		ts, err := parseProductTime(p.ProductTime)
		if err != nil {
			return nil, errors.NewRemoteAPIError(
				fmt.Sprintf("product %s has an unreadable timestamp %q", p.ProductID, p.ProductTime), err)
		}
		products = append(products, ports.ProductData{ID: p.ProductID, AOIID: aoiID, Timestamp: ts})
	}
	return products, nil
}

func (c *GFMClient) GetDownloadLink(ctx context.Context, productID string) (string, error) {
	var resp downloadLinkResponse
	err := c.do(ctx, apiRequest{
		method: http.MethodGet,
		path:   func(ports.Session) string { return "/download/product/" + url.PathEscape(productID) },
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.DownloadLink == "" {
		return "", errors.NewRemoteAPIError("download link response for product "+productID+" is empty", nil)
	}
	return resp.DownloadLink, nil
}

// DownloadArchive fetches a pre-signed archive URL. The link carries its own
// authorization, so no bearer token is sent.
func (c *GFMClient) DownloadArchive(ctx context.Context, link string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		data, err := c.fetchArchive(ctx, link)
		if err == nil {
			return data, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !errors.IsTransientNetworkError(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *GFMClient) fetchArchive(ctx context.Context, link string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, errors.NewRemoteAPIError("invalid download link", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.NewTransientNetworkError("archive download failed", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("Failed to close archive response body", ports.F("error", closeErr))
		}
	}()

	switch {
	case isTransientStatus(resp.StatusCode):
		return nil, errors.NewTransientNetworkError(fmt.Sprintf("archive download returned status %d", resp.StatusCode), nil)
	case resp.StatusCode != http.StatusOK:
		return nil, errors.NewRemoteAPIError(fmt.Sprintf("archive download returned status %d", resp.StatusCode), nil)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxArchiveBytes+1))
	if err != nil {
		return nil, errors.NewTransientNetworkError("archive download interrupted", err)
	}
	if int64(len(data)) > c.maxArchiveBytes {
		return nil, errors.NewMalformedArchiveError(
			fmt.Sprintf("archive exceeds the %d byte limit", c.maxArchiveBytes), nil)
	}
	return data, nil
}

type apiRequest struct {
	method string
	path   func(ports.Session) string
	body   func(ports.Session) interface{}
}

func (r apiRequest) idempotent() bool {
	return r.method == http.MethodGet || r.method == http.MethodDelete
}

func (c *GFMClient) do(ctx context.Context, r apiRequest, out interface{}) error {
	refreshed := false
	retried := false

	session, err := c.credentials.Token(ctx)
	if err != nil {
		return err
	}

	for {
		status, payload, err := c.send(ctx, r, session)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if r.idempotent() && !retried {
				retried = true
				continue
			}
			return errors.NewTransientNetworkError(fmt.Sprintf("%s %s failed", r.method, r.path(session)), err)
		}

		switch {
		case status == http.StatusUnauthorized:
			if refreshed {
				return errors.NewAuthError("GFM rejected the refreshed token", nil)
			}
			refreshed = true
			c.logger.Debug("GFM token rejected, refreshing", ports.F("method", r.method))
			if session, err = c.credentials.ForceRefresh(ctx); err != nil {
				return err
			}
			continue
		case isTransientStatus(status):
			if r.idempotent() && !retried {
				retried = true
				continue
			}
			return errors.NewTransientNetworkError(
				fmt.Sprintf("%s %s returned status %d", r.method, r.path(session), status), nil)
		case status < 200 || status >= 300:
			return errors.NewRemoteAPIError(
				fmt.Sprintf("%s %s returned status %d: %s", r.method, r.path(session), status, snippet(payload)), nil)
		}

		if out == nil || len(bytes.TrimSpace(payload)) == 0 {
			return nil
		}
		if err := json.Unmarshal(payload, out); err != nil {
			return errors.NewRemoteAPIError(fmt.Sprintf("failed to decode %s %s response", r.method, r.path(session)), err)
		}
		return nil
	}
}

func (c *GFMClient) send(ctx context.Context, r apiRequest, session ports.Session) (int, []byte, error) {
	var body io.Reader
	if r.body != nil {
		encoded, err := json.Marshal(r.body(session))
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path(session), body)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "bearer "+session.Token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("Failed to close GFM response body", ports.F("error", closeErr))
		}
	}()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxJSONResponseBytes))
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, payload, nil
}

func parseProductTime(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range productTimeLayouts {
		ts, err := time.Parse(layout, value)
		if err == nil {
			return ts.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, time.UTC)
}

func snippet(payload []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(payload))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}

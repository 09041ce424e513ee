package ports

import (
	"context"
	"encoding/json"
	"time"

	"github.com/paulmach/orb"
)

// Session is an authenticated GFM session. Token is a bearer secret.
type Session struct {
	UserID   string
	Token    string
	IssuedAt time.Time
}

// CredentialStore holds the API credentials and the current session.
// ForceRefresh must be safe to call redundantly from concurrent callers.
type CredentialStore interface {
	Token(ctx context.Context) (Session, error)
	ForceRefresh(ctx context.Context) (Session, error)
}

// AOIData is an area of interest as reported by the remote API
type AOIData struct {
	ID       string
	Name     string
	Geometry json.RawMessage
}

// ProductData is a product listed for an AOI. Geometries are fetched separately.
type ProductData struct {
	ID        string
	AOIID     string
	Timestamp time.Time
}

// RemoteAoiClient is the authenticated client for the GFM AOI and product API.
// Implementations refresh the session once on an authentication rejection and
// retry the request exactly once more.
type RemoteAoiClient interface {
	Login(ctx context.Context) (Session, error)
	ListAOIs(ctx context.Context) ([]AOIData, error)
	CreateAOI(ctx context.Context, name string, polygon orb.Polygon) (*AOIData, error)
	DeleteAOI(ctx context.Context, aoiID string) error
	ListProducts(ctx context.Context, aoiID string, from, to time.Time) ([]ProductData, error)
	GetDownloadLink(ctx context.Context, productID string) (string, error)
	DownloadArchive(ctx context.Context, link string) ([]byte, error)
}

// AreaDirectory maps AOI ids to names using the current AOI listing
type AreaDirectory interface {
	AreaNames(ctx context.Context) (map[string]string, error)
}

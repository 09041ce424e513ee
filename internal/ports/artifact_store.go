package ports

import (
	"context"
	"time"
)

// GeometryKind names one of the two geometries stored per product
type GeometryKind string

const (
	GeometryFlood     GeometryKind = "flood"
	GeometryFootprint GeometryKind = "footprint"
)

// IsValid reports whether k is a known geometry kind
func (k GeometryKind) IsValid() bool {
	return k == GeometryFlood || k == GeometryFootprint
}

// IndexEntry is one row of the materialized product index
type IndexEntry struct {
	AOIID         string
	Timestamp     time.Time
	ProductID     string
	FloodPath     string
	FootprintPath string
}

// Artifact carries the extracted geometries of one product. Both geometries
// are GeoJSON FeatureCollections.
type Artifact struct {
	ProductID string
	AOIID     string
	Timestamp time.Time
	Flood     []byte
	Footprint []byte
}

// ArtifactStore persists product geometries together with the index.
//
// Put is atomic with respect to the index: either both geometries are stored
// and exactly one index row exists for the product, or nothing observable
// changed. Putting a product that is already indexed returns the existing entry.
type ArtifactStore interface {
	Has(ctx context.Context, productID string) (bool, error)
	Put(ctx context.Context, artifact Artifact) (*IndexEntry, error)
	Get(ctx context.Context, productID string, kind GeometryKind) ([]byte, error)
	IndexSnapshot(ctx context.Context) ([]IndexEntry, error)
}

// Package filesystem stores product geometries as GeoJSON files on local disk
// next to a CSV index of materialized products.
package filesystem

import (
	"context"
	"fmt"
	"path"
	"sync"

	"floodmap.app/internal/ports"
	apperrors "floodmap.app/pkg/errors"
)

// Store implements ports.ArtifactStore on a directory tree:
//
//	<base>/<aoi_id>/<product_id>/flood.geojson
//	<base>/<aoi_id>/<product_id>/footprint.geojson
//	<base>/<index file>
//
// The index is rewritten in full after every successful put. All index access
// within the process is serialized by a mutex.
type Store struct {
	blobs     *BlobStore
	indexFile string
	logger    ports.Logger
	mutex     sync.Mutex
}

// NewStore creates a filesystem artifact store rooted at cfg.Path
func NewStore(cfg ports.StorageConfig, logger ports.Logger) (*Store, error) {
	if cfg.Path == "" {
		return nil, apperrors.NewConfigurationError("storage path is required", nil)
	}
	indexFile := cfg.IndexFile
	if indexFile == "" {
		indexFile = "index.csv"
	}
	if !safeSegment(indexFile) {
		return nil, apperrors.NewConfigurationError(fmt.Sprintf("invalid index file name %q", indexFile), nil)
	}

	blobs, err := NewBlobStore(cfg.Path, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("Using filesystem artifact store",
		ports.F("path", cfg.Path),
		ports.F("index_file", indexFile))

	return &Store{
		blobs:     blobs,
		indexFile: indexFile,
		logger:    logger,
	}, nil
}

func (s *Store) Has(ctx context.Context, productID string) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	entries, err := s.readIndex()
	if err != nil {
		return false, err
	}
	return find(entries, productID) != nil, nil
}

// Put stores both geometries and appends the index row. If the index cannot
// be written the geometries are removed again.
func (s *Store) Put(ctx context.Context, artifact ports.Artifact) (*ports.IndexEntry, error) {
	if err := validateArtifact(artifact); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	entries, err := s.readIndex()
	if err != nil {
		return nil, err
	}
	if existing := find(entries, artifact.ProductID); existing != nil {
		entry := *existing
		return &entry, nil
	}

	dir := path.Join(artifact.AOIID, artifact.ProductID)
	entry := ports.IndexEntry{
		AOIID:         artifact.AOIID,
		Timestamp:     artifact.Timestamp.UTC(),
		ProductID:     artifact.ProductID,
		FloodPath:     path.Join(dir, "flood.geojson"),
		FootprintPath: path.Join(dir, "footprint.geojson"),
	}

	if err := s.blobs.Write(entry.FloodPath, artifact.Flood); err != nil {
		s.discard(dir)
		return nil, err
	}
	if err := s.blobs.Write(entry.FootprintPath, artifact.Footprint); err != nil {
		s.discard(dir)
		return nil, err
	}

	if err := s.writeIndex(append(entries, entry)); err != nil {
		s.discard(dir)
		return nil, err
	}

	s.logger.Debug("Artifact stored",
		ports.F("product_id", entry.ProductID),
		ports.F("aoi_id", entry.AOIID))
	return &entry, nil
}

func (s *Store) Get(ctx context.Context, productID string, kind ports.GeometryKind) ([]byte, error) {
	if !kind.IsValid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown geometry kind %q", kind))
	}

	s.mutex.Lock()
	entries, err := s.readIndex()
	s.mutex.Unlock()
	if err != nil {
		return nil, err
	}

	entry := find(entries, productID)
	if entry == nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("product %s is not materialized", productID))
	}

	location := entry.FloodPath
	if kind == ports.GeometryFootprint {
		location = entry.FootprintPath
	}
	data, err := s.blobs.Read(location)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return nil, apperrors.NewStorageError(
				fmt.Sprintf("indexed %s geometry of product %s is missing", kind, productID), err)
		}
		return nil, err
	}
	return data, nil
}

func (s *Store) IndexSnapshot(ctx context.Context) ([]ports.IndexEntry, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.readIndex()
}

// Ping verifies that the storage directory is reachable
func (s *Store) Ping(ctx context.Context) error {
	exists, err := s.blobs.Exists(".")
	if err != nil {
		return err
	}
	if !exists {
		return apperrors.NewStorageError(fmt.Sprintf("storage directory %s is missing", s.blobs.Location()), nil)
	}
	return nil
}

func (s *Store) readIndex() ([]ports.IndexEntry, error) {
	data, err := s.blobs.Read(s.indexFile)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	return decodeIndex(data)
}

func (s *Store) writeIndex(entries []ports.IndexEntry) error {
	data, err := encodeIndex(entries)
	if err != nil {
		return err
	}
	return s.blobs.Write(s.indexFile, data)
}

func (s *Store) discard(dir string) {
	if err := s.blobs.Delete(dir); err != nil {
		s.logger.Warn("Failed to remove partial artifact", ports.F("path", dir), ports.F("error", err))
	}
}

func find(entries []ports.IndexEntry, productID string) *ports.IndexEntry {
	for i := range entries {
		if entries[i].ProductID == productID {
			return &entries[i]
		}
	}
	return nil
}

func validateArtifact(a ports.Artifact) error {
	switch {
	case !safeSegment(a.ProductID):
		return apperrors.NewValidationError(fmt.Sprintf("invalid product id %q", a.ProductID))
	case !safeSegment(a.AOIID):
		return apperrors.NewValidationError(fmt.Sprintf("invalid aoi id %q", a.AOIID))
	case a.Timestamp.IsZero():
		return apperrors.NewValidationError("artifact timestamp is required")
	case len(a.Flood) == 0 || len(a.Footprint) == 0:
		return apperrors.NewValidationError("both geometries are required")
	}
	return nil
}

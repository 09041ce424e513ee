package database

import (
	"context"
	stderrors "errors"
	"fmt"

	"floodmap.app/internal/ports"
	"floodmap.app/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Store implements ports.ArtifactStore using GORM. Both geometries and the
// index row of a product are written in one transaction.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Has(ctx context.Context, productID string) (bool, error) {
	var count int64
	result := s.db.WithContext(ctx).Model(&ProductIndexModel{}).Where("product_id = ?", productID).Count(&count)
	if result.Error != nil {
		return false, errors.NewStorageError("failed to look up product", result.Error)
	}
	return count > 0, nil
}

func (s *Store) Put(ctx context.Context, artifact ports.Artifact) (*ports.IndexEntry, error) {
	if artifact.ProductID == "" || artifact.AOIID == "" {
		return nil, errors.NewValidationError("product and aoi ids are required")
	}
	if artifact.Timestamp.IsZero() {
		return nil, errors.NewValidationError("artifact timestamp is required")
	}
	if len(artifact.Flood) == 0 || len(artifact.Footprint) == 0 {
		return nil, errors.NewValidationError("both geometries are required")
	}

	var stored ProductIndexModel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("product_id = ?", artifact.ProductID).First(&stored).Error
		if err == nil {
			return nil
		}
		if !stderrors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		geometries := []ArtifactGeometryModel{
			{ProductID: artifact.ProductID, Kind: string(ports.GeometryFlood), Geometry: datatypes.JSON(artifact.Flood)},
			{ProductID: artifact.ProductID, Kind: string(ports.GeometryFootprint), Geometry: datatypes.JSON(artifact.Footprint)},
		}
		if err := tx.Create(&geometries).Error; err != nil {
			return err
		}

		stored = ProductIndexModel{
			ProductID:     artifact.ProductID,
			AOIID:         artifact.AOIID,
			Timestamp:     artifact.Timestamp.UTC(),
			FloodPath:     geometryLocation(artifact.ProductID, ports.GeometryFlood),
			FootprintPath: geometryLocation(artifact.ProductID, ports.GeometryFootprint),
		}
		return tx.Create(&stored).Error
	})
	if err != nil {
		return nil, errors.NewStorageError(fmt.Sprintf("failed to store product %s", artifact.ProductID), err)
	}

	entry := modelToEntry(stored)
	return &entry, nil
}

func (s *Store) Get(ctx context.Context, productID string, kind ports.GeometryKind) ([]byte, error) {
	if !kind.IsValid() {
		return nil, errors.NewValidationError(fmt.Sprintf("unknown geometry kind %q", kind))
	}

	found, err := s.Has(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.NewNotFoundError(fmt.Sprintf("product %s is not materialized", productID))
	}

	var model ArtifactGeometryModel
	result := s.db.WithContext(ctx).Where("product_id = ? AND kind = ?", productID, string(kind)).First(&model)
	if result.Error != nil {
		return nil, errors.NewStorageError(
			fmt.Sprintf("failed to load %s geometry of product %s", kind, productID), result.Error)
	}
	return []byte(model.Geometry), nil
}

func (s *Store) IndexSnapshot(ctx context.Context) ([]ports.IndexEntry, error) {
	var models []ProductIndexModel
	result := s.db.WithContext(ctx).Order("timestamp, product_id").Find(&models)
	if result.Error != nil {
		return nil, errors.NewStorageError("failed to read product index", result.Error)
	}

	entries := make([]ports.IndexEntry, len(models))
	for i, m := range models {
		entries[i] = modelToEntry(m)
	}
	return entries, nil
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.NewStorageError("failed to get database handle", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return errors.NewStorageError("database ping failed", err)
	}
	return nil
}

func geometryLocation(productID string, kind ports.GeometryKind) string {
	return fmt.Sprintf("artifact_geometries/%s/%s", productID, kind)
}

func modelToEntry(m ProductIndexModel) ports.IndexEntry {
	return ports.IndexEntry{
		AOIID:         m.AOIID,
		Timestamp:     m.Timestamp.UTC(),
		ProductID:     m.ProductID,
		FloodPath:     m.FloodPath,
		FootprintPath: m.FootprintPath,
	}
}

package database

import (
	"time"

	"gorm.io/datatypes"
)

// ProductIndexModel is one materialized product
type ProductIndexModel struct {
	ProductID     string    `gorm:"primaryKey;size:128"`
	AOIID         string    `gorm:"index;size:128;not null"`
	Timestamp     time.Time `gorm:"index;not null"`
	FloodPath     string    `gorm:"not null"`
	FootprintPath string    `gorm:"not null"`
	CreatedAt     time.Time
}

func (ProductIndexModel) TableName() string {
	return "product_index"
}

// ArtifactGeometryModel holds one stored geometry of a product
type ArtifactGeometryModel struct {
	ID        uint           `gorm:"primaryKey"`
	ProductID string         `gorm:"uniqueIndex:idx_artifact_product_kind;size:128;not null"`
	Kind      string         `gorm:"uniqueIndex:idx_artifact_product_kind;size:16;not null"`
	Geometry  datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time
}

func (ArtifactGeometryModel) TableName() string {
	return "artifact_geometries"
}

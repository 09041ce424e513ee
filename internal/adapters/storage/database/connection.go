// Package database stores product geometries and the product index in a SQL
// database through GORM.
package database

import (
	"fmt"

	"floodmap.app/internal/ports"
	"floodmap.app/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the configured database
func Open(cfg ports.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, errors.NewConfigurationError(fmt.Sprintf("unsupported database driver: %s", cfg.Driver), nil)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, errors.NewStorageError("failed to connect to database", err)
	}
	return db, nil
}

// Migrate creates or updates the artifact tables
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&ProductIndexModel{}, &ArtifactGeometryModel{}); err != nil {
		return errors.NewStorageError("failed to migrate artifact tables", err)
	}
	return nil
}

// Close closes the underlying connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

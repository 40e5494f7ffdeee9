package database

import (
	"eoq-backend/internal/config"
	"eoq-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open connects to Postgres and runs the schema migration. The handle is
// returned to the caller and handed to each component at construction;
// nothing in this package keeps global state.
func Open(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		// Translates driver-specific errors so duplicate-key checks work
		// the same against Postgres and the sqlite driver used in tests.
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates/updates the schema. Split out so tests can run it
// against their own (sqlite) handle.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Item{},
		&models.StockTransaction{},
		&models.Sale{},
		&models.Shipping{},
		&models.AuditLog{},
	)
}

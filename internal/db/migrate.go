package db

import (
	"fmt"

	"github.com/zulandar/groundwork/internal/models"
	"gorm.io/gorm"
)

// AllModels returns every GORM model Groundwork persists.
func AllModels() []interface{} {
	return []interface{}{
		&models.Phase{},
		&models.Task{},
		&models.ConstructionLog{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

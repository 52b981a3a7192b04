package database

import (
	"fmt"

	"github.com/dahnny/analytics-api/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Sale{},
		&models.Expense{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

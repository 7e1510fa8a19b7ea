package repository

import (
	"fmt"

	"gorm.io/gorm"

	"rizz-social/internal/model"
)

// AutoMigrate creates or updates the users and posts tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.User{}, &model.Post{}); err != nil {
		return fmt.Errorf("auto migrate tables failed: %w", err)
	}
	return nil
}

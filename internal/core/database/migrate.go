package database

import (
	"gorm.io/gorm"

	"catalog-admin/internal/domain"
)

// Migrate 建表 / 补列
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.Category{}, &domain.Admin{})
}

package repository

import (
	"fmt"

	"gorm.io/gorm"
)

// WithCategoryLabel selects table.* plus the label of the referenced category
// as category_label. Missing or deleted categories leave the label empty.
func WithCategoryLabel(db *gorm.DB, table string) *gorm.DB {
	return db.
		Select(fmt.Sprintf("%s.*, categories.label AS category_label", table)).
		Joins(fmt.Sprintf("LEFT JOIN categories ON categories.id = %s.category_id AND categories.deleted_at IS NULL", table))
}

package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "mybudget/internal/errors"
	"mybudget/internal/models"
)

// categoryService handles category-related business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// CreateCategory creates a category. An empty kind defaults to expense.
func (s *categoryService) CreateCategory(ctx context.Context, label string, kind models.CategoryKind) (*models.Category, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, apperrors.Field("label", "is required")
	}
	if kind == "" {
		kind = models.CategoryKindExpense
	}

	category := &models.Category{Label: label, Kind: kind}
	if err := s.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

// ListCategories returns every category ordered by label.
func (s *categoryService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	if err := s.db.WithContext(ctx).Order("label ASC").Order("id ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

// GetCategoryByID returns a category or ErrCategoryNotFound.
func (s *categoryService) GetCategoryByID(ctx context.Context, id string) (*models.Category, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// UpdateCategory applies patch to the category.
func (s *categoryService) UpdateCategory(ctx context.Context, id string, patch CategoryPatch) (*models.Category, error) {
	category, err := s.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if patch.Label != nil {
		label := strings.TrimSpace(*patch.Label)
		if label == "" {
			return nil, apperrors.Field("label", "must not be empty")
		}
		updates["label"] = label
	}
	if patch.Kind != nil {
		updates["kind"] = *patch.Kind
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(category).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return category, nil
}

// DeleteCategory soft-deletes a category. Transactions and budgets that
// reference it are left untouched. It reports whether a row existed.
func (s *categoryService) DeleteCategory(ctx context.Context, id string) (bool, error) {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Category{})
	if result.Error != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	return result.RowsAffected > 0, nil
}

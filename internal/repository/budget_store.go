// Package repository implements the budgeting store on top of gorm.
package repository

import (
	"context"
	"errors"

	"mybudget/internal/budgeting"
	"mybudget/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BudgetStore is the gorm-backed budgeting.Store.
type BudgetStore struct {
	db *gorm.DB
}

var _ budgeting.Store = (*BudgetStore)(nil)

// NewBudgetStore creates a BudgetStore over db.
func NewBudgetStore(db *gorm.DB) *BudgetStore {
	return &BudgetStore{db: db}
}

// SumExpenses totals live expense transactions of categoryID in [from, to].
func (s *BudgetStore) SumExpenses(ctx context.Context, categoryID string, from, to models.Date) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("category_id = ? AND kind = ? AND occurred_on >= ? AND occurred_on <= ?",
			categoryID, models.TransactionKindExpense, from, to).
		Row().
		Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	// Drivers without a fixed-point type (sqlite) sum as floating point.
	return total.Round(2), nil
}

// FindBudgetCovering returns the budget of categoryID whose period contains day.
func (s *BudgetStore) FindBudgetCovering(ctx context.Context, categoryID string, day models.Date) (*models.Budget, error) {
	return s.takeBudget(s.db.WithContext(ctx).
		Where("category_id = ? AND period_start <= ? AND period_end >= ?", categoryID, day, day).
		Order("period_start DESC").
		Order("id ASC"))
}

// FindLatestBudgetEndingBefore returns the latest-ending budget of categoryID
// whose period ends strictly before day.
func (s *BudgetStore) FindLatestBudgetEndingBefore(ctx context.Context, categoryID string, day models.Date) (*models.Budget, error) {
	return s.takeBudget(s.db.WithContext(ctx).
		Where("category_id = ? AND period_end < ?", categoryID, day).
		Order("period_end DESC").
		Order("id DESC"))
}

func (s *BudgetStore) takeBudget(query *gorm.DB) (*models.Budget, error) {
	var budget models.Budget
	if err := query.Take(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &budget, nil
}

// ListAllBudgets returns every budget with its category label, newest period first.
func (s *BudgetStore) ListAllBudgets(ctx context.Context) ([]models.Budget, error) {
	var budgets []models.Budget
	err := WithCategoryLabel(s.db.WithContext(ctx).Model(&models.Budget{}), "budgets").
		Order("budgets.period_start DESC").
		Order("budgets.id ASC").
		Find(&budgets).Error
	if err != nil {
		return nil, err
	}
	return budgets, nil
}

// InsertBudget stores budget and fills in its id.
func (s *BudgetStore) InsertBudget(ctx context.Context, budget *models.Budget) error {
	return s.db.WithContext(ctx).Create(budget).Error
}

// InsertBudgets stores all budgets in one database transaction.
func (s *BudgetStore) InsertBudgets(ctx context.Context, budgets []models.Budget) error {
	if len(budgets) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range budgets {
			if err := tx.Create(&budgets[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

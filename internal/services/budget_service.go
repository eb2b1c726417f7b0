package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"mybudget/internal/budgeting"
	apperrors "mybudget/internal/errors"
	"mybudget/internal/models"
	"mybudget/internal/repository"
)

// budgetService handles budget-related business logic. Plain CRUD goes
// straight to gorm; anything involving spend goes through the budgeting rules.
type budgetService struct {
	db          *gorm.DB
	store       budgeting.Store
	aggregator  *budgeting.Aggregator
	rollover    *budgeting.RolloverCalculator
	distributor *budgeting.Distributor
}

// NewBudgetService creates a new BudgetServicer backed by db.
func NewBudgetService(db *gorm.DB, store budgeting.Store) BudgetServicer {
	return &budgetService{
		db:          db,
		store:       store,
		aggregator:  budgeting.NewAggregator(store),
		rollover:    budgeting.NewRolloverCalculator(store),
		distributor: budgeting.NewDistributor(store),
	}
}

// CreateBudget stores a budget as requested, without rollover.
func (s *budgetService) CreateBudget(ctx context.Context, req budgeting.BudgetRequest) (*models.Budget, error) {
	if err := s.checkRequest(ctx, req); err != nil {
		return nil, err
	}

	budget := &models.Budget{
		CategoryID:      req.CategoryID,
		AllocatedAmount: req.AllocatedAmount,
		PeriodStart:     req.PeriodStart,
		PeriodEnd:       req.PeriodEnd,
	}
	if err := s.store.InsertBudget(ctx, budget); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budget, nil
}

// CreateBudgetWithRollover stores a budget that absorbs the previous period's
// surplus or deficit.
func (s *budgetService) CreateBudgetWithRollover(ctx context.Context, req budgeting.BudgetRequest) (*models.Budget, error) {
	if err := s.checkRequest(ctx, req); err != nil {
		return nil, err
	}

	budget, err := s.rollover.CreateWithRollover(ctx, req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budget, nil
}

// DistributeIncome creates one budget per allocation, all or nothing.
func (s *budgetService) DistributeIncome(ctx context.Context, in budgeting.IncomeDistribution) ([]models.Budget, error) {
	var details []apperrors.FieldError
	if !in.IncomeAmount.IsPositive() {
		details = append(details, apperrors.FieldError{Field: "income_amount", Message: "must be greater than zero"})
	}
	if in.PeriodEnd.Before(in.PeriodStart) {
		details = append(details, apperrors.FieldError{Field: "period_end", Message: "must not be before period_start"})
	}
	for i, a := range in.Allocations {
		if !a.Percentage.IsPositive() {
			details = append(details, apperrors.FieldError{
				Field:   fmt.Sprintf("allocations[%d].percentage", i),
				Message: "must be greater than zero",
			})
		}
	}
	if len(details) > 0 {
		return nil, apperrors.Validation(details...)
	}

	if _, err := budgeting.Shares(in.IncomeAmount, in.Allocations); err != nil {
		return nil, err
	}
	for i, a := range in.Allocations {
		if err := s.requireCategory(ctx, a.CategoryID, fmt.Sprintf("allocations[%d].category_id", i)); err != nil {
			return nil, err
		}
	}

	budgets, err := s.distributor.DistributeIncome(ctx, in)
	if err != nil {
		if appErr, ok := apperrors.As(err); ok {
			return nil, appErr
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budgets, nil
}

// checkRequest validates the fields shared by both budget creation paths.
func (s *budgetService) checkRequest(ctx context.Context, req budgeting.BudgetRequest) error {
	var details []apperrors.FieldError
	if !req.AllocatedAmount.IsPositive() {
		details = append(details, apperrors.FieldError{Field: "allocated_amount", Message: "must be greater than zero"})
	}
	if req.PeriodEnd.Before(req.PeriodStart) {
		details = append(details, apperrors.FieldError{Field: "period_end", Message: "must not be before period_start"})
	}
	if len(details) > 0 {
		return apperrors.Validation(details...)
	}
	return s.requireCategory(ctx, req.CategoryID, "category_id")
}

// requireCategory reports a validation error on field when categoryID does not exist.
func (s *budgetService) requireCategory(ctx context.Context, categoryID, field string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", categoryID).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.Field(field, "category does not exist")
	}
	return nil
}

// ListBudgets returns every budget with its category label, newest period first.
func (s *budgetService) ListBudgets(ctx context.Context) ([]models.Budget, error) {
	budgets, err := s.store.ListAllBudgets(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if budgets == nil {
		budgets = []models.Budget{}
	}
	return budgets, nil
}

// GetBudgetByID returns a budget or ErrBudgetNotFound.
func (s *budgetService) GetBudgetByID(ctx context.Context, id string) (*models.Budget, error) {
	var budget models.Budget
	err := repository.WithCategoryLabel(s.db.WithContext(ctx).Model(&models.Budget{}), "budgets").
		Where("budgets.id = ?", id).
		Take(&budget).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// UpdateBudget applies patch to the budget's amount and period bounds.
func (s *budgetService) UpdateBudget(ctx context.Context, id string, patch BudgetPatch) (*models.Budget, error) {
	budget, err := s.GetBudgetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if patch.AllocatedAmount != nil {
		if !patch.AllocatedAmount.IsPositive() {
			return nil, apperrors.Field("allocated_amount", "must be greater than zero")
		}
		updates["allocated_amount"] = *patch.AllocatedAmount
	}
	if patch.PeriodStart != nil {
		updates["period_start"] = *patch.PeriodStart
	}
	if patch.PeriodEnd != nil {
		updates["period_end"] = *patch.PeriodEnd
	}

	start, end := budget.PeriodStart, budget.PeriodEnd
	if patch.PeriodStart != nil {
		start = *patch.PeriodStart
	}
	if patch.PeriodEnd != nil {
		end = *patch.PeriodEnd
	}
	if end.Before(start) {
		return nil, apperrors.Field("period_end", "must not be before period_start")
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(budget).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return budget, nil
}

// DeleteBudget soft-deletes a budget and reports whether it existed.
func (s *budgetService) DeleteBudget(ctx context.Context, id string) (bool, error) {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Budget{})
	if result.Error != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// GetBudgetStatus derives the current standing of one budget.
func (s *budgetService) GetBudgetStatus(ctx context.Context, id string) (*budgeting.BudgetStatus, error) {
	budget, err := s.GetBudgetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	status, err := s.aggregator.Status(ctx, *budget)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return status, nil
}

// ListAlerts returns the budgets currently in WARNING or OVER_BUDGET.
func (s *budgetService) ListAlerts(ctx context.Context) ([]budgeting.BudgetStatus, error) {
	alerts, err := s.aggregator.ListAlerts(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return alerts, nil
}

package budgeting

import (
	"context"
	"fmt"

	"mybudget/internal/logger"
	"mybudget/internal/models"

	"github.com/shopspring/decimal"
)

// BudgetRequest is the input for creating a budget.
type BudgetRequest struct {
	CategoryID      string
	AllocatedAmount decimal.Decimal
	PeriodStart     models.Date
	PeriodEnd       models.Date
}

// RolloverCalculator creates budgets that absorb the surplus or deficit of the
// category's previous period.
type RolloverCalculator struct {
	store Store
}

// NewRolloverCalculator creates a RolloverCalculator over store.
func NewRolloverCalculator(store Store) *RolloverCalculator {
	return &RolloverCalculator{store: store}
}

// Rollover returns what remained of the latest budget of categoryID that
// ended strictly before start: allocated minus spent, negative when
// overspent. It is zero when there is no such budget.
func (r *RolloverCalculator) Rollover(ctx context.Context, categoryID string, start models.Date) (decimal.Decimal, error) {
	prior, err := r.store.FindLatestBudgetEndingBefore(ctx, categoryID, start)
	if err != nil {
		return decimal.Zero, fmt.Errorf("find budget ending before %s: %w", start, err)
	}
	if prior == nil {
		return decimal.Zero, nil
	}

	spent, err := r.store.SumExpenses(ctx, prior.CategoryID, prior.PeriodStart, prior.PeriodEnd)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum expenses for budget %s: %w", prior.ID, err)
	}
	return prior.AllocatedAmount.Sub(spent), nil
}

// CreateWithRollover stores a budget whose allocation is the requested amount
// plus the rollover. The result is not clamped, so a large deficit can leave
// a negative allocation. The returned budget carries RolloverAmount.
// Every call creates a new row.
func (r *RolloverCalculator) CreateWithRollover(ctx context.Context, req BudgetRequest) (*models.Budget, error) {
	rollover, err := r.Rollover(ctx, req.CategoryID, req.PeriodStart)
	if err != nil {
		return nil, err
	}

	budget := &models.Budget{
		CategoryID:      req.CategoryID,
		AllocatedAmount: req.AllocatedAmount.Add(rollover),
		PeriodStart:     req.PeriodStart,
		PeriodEnd:       req.PeriodEnd,
	}
	if err := r.store.InsertBudget(ctx, budget); err != nil {
		return nil, fmt.Errorf("insert budget: %w", err)
	}
	budget.RolloverAmount = &rollover

	logger.Named("budgeting").Infow("created budget with rollover",
		"budget_id", budget.ID,
		"category_id", budget.CategoryID,
		"rollover_amount", rollover.String(),
		"allocated_amount", budget.AllocatedAmount.String(),
	)
	return budget, nil
}

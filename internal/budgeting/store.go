// Package budgeting holds the budget rules: status classification, pre-commit
// evaluation of new transactions, the alert list, period rollover and income
// distribution. It reads and writes only through Store.
package budgeting

import (
	"context"

	"mybudget/internal/models"

	"github.com/shopspring/decimal"
)

// Store is the persistence contract the budget rules depend on.
// Date bounds are calendar days and inclusive on both ends.
type Store interface {
	// SumExpenses totals expense transactions of categoryID with occurred_on in [from, to].
	SumExpenses(ctx context.Context, categoryID string, from, to models.Date) (decimal.Decimal, error)

	// FindBudgetCovering returns the budget of categoryID whose period contains day,
	// or nil when there is none. Overlaps resolve to the latest period_start, then lowest id.
	FindBudgetCovering(ctx context.Context, categoryID string, day models.Date) (*models.Budget, error)

	// FindLatestBudgetEndingBefore returns the budget of categoryID with the latest
	// period_end strictly before day, or nil. Ties resolve to the highest id.
	FindLatestBudgetEndingBefore(ctx context.Context, categoryID string, day models.Date) (*models.Budget, error)

	ListAllBudgets(ctx context.Context) ([]models.Budget, error)
	InsertBudget(ctx context.Context, budget *models.Budget) error

	// InsertBudgets stores every budget or none of them.
	InsertBudgets(ctx context.Context, budgets []models.Budget) error
}

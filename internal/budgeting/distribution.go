package budgeting

import (
	"context"
	"fmt"

	apperrors "mybudget/internal/errors"
	"mybudget/internal/models"

	"github.com/shopspring/decimal"
)

// Allocation assigns a percentage of an income to a category.
type Allocation struct {
	CategoryID string
	Percentage decimal.Decimal
}

// IncomeDistribution splits an income into one budget per allocation.
type IncomeDistribution struct {
	IncomeAmount decimal.Decimal
	PeriodStart  models.Date
	PeriodEnd    models.Date
	Allocations  []Allocation
}

// Distributor turns an income into a set of budgets.
type Distributor struct {
	store Store
}

// NewDistributor creates a Distributor writing to store.
func NewDistributor(store Store) *Distributor {
	return &Distributor{store: store}
}

// Shares computes the amount for every allocation. Percentages must add up
// to exactly 100. Each share is rounded to cents and the last one takes the
// remainder, so the shares always add up to the income.
func Shares(income decimal.Decimal, allocations []Allocation) ([]decimal.Decimal, error) {
	if len(allocations) == 0 {
		return nil, apperrors.Field("allocations", "must contain at least one allocation")
	}

	total := decimal.Zero
	for _, a := range allocations {
		total = total.Add(a.Percentage)
	}
	if !total.Equal(hundred) {
		return nil, apperrors.Field("allocations", fmt.Sprintf("percentages must sum to 100, got %s", total.String()))
	}

	shares := make([]decimal.Decimal, len(allocations))
	assigned := decimal.Zero
	for i, a := range allocations {
		if i == len(allocations)-1 {
			shares[i] = income.Sub(assigned)
			break
		}
		shares[i] = income.Mul(a.Percentage).Div(hundred).Round(2)
		assigned = assigned.Add(shares[i])
	}
	return shares, nil
}

// DistributeIncome creates one budget per allocation for the given period.
// Nothing is stored unless every budget can be.
func (d *Distributor) DistributeIncome(ctx context.Context, in IncomeDistribution) ([]models.Budget, error) {
	shares, err := Shares(in.IncomeAmount, in.Allocations)
	if err != nil {
		return nil, err
	}

	budgets := make([]models.Budget, len(in.Allocations))
	for i, a := range in.Allocations {
		budgets[i] = models.Budget{
			CategoryID:      a.CategoryID,
			AllocatedAmount: shares[i],
			PeriodStart:     in.PeriodStart,
			PeriodEnd:       in.PeriodEnd,
		}
	}

	if err := d.store.InsertBudgets(ctx, budgets); err != nil {
		return nil, fmt.Errorf("insert distributed budgets: %w", err)
	}
	return budgets, nil
}

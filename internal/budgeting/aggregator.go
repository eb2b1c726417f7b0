package budgeting

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"mybudget/internal/models"

	"github.com/shopspring/decimal"
)

// BudgetStatus is the live standing of one budget. It is derived on every
// read and never stored.
type BudgetStatus struct {
	BudgetID        string          `json:"budget_id"`
	CategoryID      string          `json:"category_id"`
	CategoryLabel   string          `json:"category_label"`
	AllocatedAmount decimal.Decimal `json:"allocated_amount"`
	SpentAmount     decimal.Decimal `json:"spent_amount"`
	PercentUsed     float64         `json:"percent_used"`
	Status          Status          `json:"status"`
	PeriodStart     models.Date     `json:"period_start"`
	PeriodEnd       models.Date     `json:"period_end"`

	percent decimal.Decimal
}

// Aggregator derives budget statuses from recorded transactions.
type Aggregator struct {
	store Store
}

// NewAggregator creates an Aggregator reading from store.
func NewAggregator(store Store) *Aggregator {
	return &Aggregator{store: store}
}

// Status computes the current standing of budget.
func (a *Aggregator) Status(ctx context.Context, budget models.Budget) (*BudgetStatus, error) {
	spent, err := a.store.SumExpenses(ctx, budget.CategoryID, budget.PeriodStart, budget.PeriodEnd)
	if err != nil {
		return nil, fmt.Errorf("sum expenses for budget %s: %w", budget.ID, err)
	}

	status, percent := Classify(budget.AllocatedAmount, spent)
	return &BudgetStatus{
		BudgetID:        budget.ID,
		CategoryID:      budget.CategoryID,
		CategoryLabel:   budget.CategoryLabel,
		AllocatedAmount: budget.AllocatedAmount,
		SpentAmount:     spent,
		PercentUsed:     RoundPercent(percent),
		Status:          status,
		PeriodStart:     budget.PeriodStart,
		PeriodEnd:       budget.PeriodEnd,
		percent:         percent,
	}, nil
}

// ListAlerts returns every budget currently in WARNING or OVER_BUDGET,
// highest percent used first and budget id ascending on ties.
func (a *Aggregator) ListAlerts(ctx context.Context) ([]BudgetStatus, error) {
	budgets, err := a.store.ListAllBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}

	alerts := make([]BudgetStatus, 0)
	for _, budget := range budgets {
		st, err := a.Status(ctx, budget)
		if err != nil {
			return nil, err
		}
		if st.Status.Alerting() {
			alerts = append(alerts, *st)
		}
	}

	slices.SortFunc(alerts, func(x, y BudgetStatus) int {
		if c := y.percent.Cmp(x.percent); c != 0 {
			return c
		}
		return strings.Compare(x.BudgetID, y.BudgetID)
	})
	return alerts, nil
}

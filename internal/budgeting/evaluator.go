package budgeting

import (
	"context"
	"fmt"

	"mybudget/internal/logger"
	"mybudget/internal/models"

	"github.com/shopspring/decimal"
)

// EvaluationInput describes a transaction that is about to be recorded.
type EvaluationInput struct {
	CategoryID string
	OccurredOn models.Date
	Kind       models.TransactionKind
	Amount     decimal.Decimal
}

// Evaluation is the projected budget impact of a transaction. Only
// TriggersAlert is meaningful when no budget was involved.
type Evaluation struct {
	TriggersAlert   bool            `json:"triggers_alert"`
	Status          Status          `json:"status,omitempty"`
	Percent         float64         `json:"percent"`
	BudgetID        string          `json:"budget_id,omitempty"`
	CategoryID      string          `json:"category_id,omitempty"`
	AllocatedAmount decimal.Decimal `json:"allocated_amount"`
	ProjectedSpent  decimal.Decimal `json:"projected_spent"`
}

var noAlert = Evaluation{TriggersAlert: false}

// Evaluator projects the spend a transaction would bring to its budget.
type Evaluator struct {
	store Store
}

// NewEvaluator creates an Evaluator reading from store.
func NewEvaluator(store Store) *Evaluator {
	return &Evaluator{store: store}
}

// Evaluate computes what the covering budget would look like once in is
// recorded. It never writes. Income, uncategorised and unbudgeted
// transactions never trigger an alert. Store errors are returned as-is.
func (e *Evaluator) Evaluate(ctx context.Context, in EvaluationInput) (*Evaluation, error) {
	if in.Kind != models.TransactionKindExpense || in.CategoryID == "" {
		result := noAlert
		return &result, nil
	}

	budget, err := e.store.FindBudgetCovering(ctx, in.CategoryID, in.OccurredOn)
	if err != nil {
		return nil, fmt.Errorf("find budget covering %s: %w", in.OccurredOn, err)
	}
	if budget == nil {
		result := noAlert
		return &result, nil
	}

	prior, err := e.store.SumExpenses(ctx, budget.CategoryID, budget.PeriodStart, budget.PeriodEnd)
	if err != nil {
		return nil, fmt.Errorf("sum expenses for budget %s: %w", budget.ID, err)
	}

	projected := prior.Add(in.Amount)
	status, percent := Classify(budget.AllocatedAmount, projected)

	logger.Named("budgeting").Debugw("evaluated transaction",
		"budget_id", budget.ID,
		"prior_spent", prior.String(),
		"projected_spent", projected.String(),
		"status", status,
	)

	return &Evaluation{
		TriggersAlert:   status.Alerting(),
		Status:          status,
		Percent:         RoundPercent(percent),
		BudgetID:        budget.ID,
		CategoryID:      budget.CategoryID,
		AllocatedAmount: budget.AllocatedAmount,
		ProjectedSpent:  projected,
	}, nil
}

package budgeting

import (
	"context"
	"errors"
	"strings"

	"mybudget/internal/models"
	"mybudget/internal/uuid"

	"github.com/shopspring/decimal"
)

// memStore is an in-memory Store used by the tests in this package.
type memStore struct {
	budgets      []models.Budget
	transactions []models.Transaction

	err       error // returned by every call when set
	insertErr error // returned by inserts only
}

var _ Store = (*memStore)(nil)

var errStoreDown = errors.New("store unavailable")

func newMemStore() *memStore { return &memStore{} }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(s string) models.Date { return models.MustParseDate(s) }

func (m *memStore) addBudget(categoryID, amount, start, end string) models.Budget {
	b := models.Budget{
		CategoryID:      categoryID,
		AllocatedAmount: dec(amount),
		PeriodStart:     day(start),
		PeriodEnd:       day(end),
	}
	b.ID = uuid.New()
	m.budgets = append(m.budgets, b)
	return b
}

func (m *memStore) addTransaction(categoryID string, kind models.TransactionKind, amount, on string) {
	t := models.Transaction{Amount: dec(amount), Kind: kind, OccurredOn: day(on)}
	t.ID = uuid.New()
	if categoryID != "" {
		t.CategoryID = &categoryID
	}
	m.transactions = append(m.transactions, t)
}

func (m *memStore) addExpense(categoryID, amount, on string) {
	m.addTransaction(categoryID, models.TransactionKindExpense, amount, on)
}

func (m *memStore) SumExpenses(_ context.Context, categoryID string, from, to models.Date) (decimal.Decimal, error) {
	if m.err != nil {
		return decimal.Zero, m.err
	}
	sum := decimal.Zero
	for _, t := range m.transactions {
		if t.Kind != models.TransactionKindExpense || t.CategoryID == nil || *t.CategoryID != categoryID {
			continue
		}
		if t.OccurredOn.Within(from, to) {
			sum = sum.Add(t.Amount)
		}
	}
	return sum, nil
}

func (m *memStore) FindBudgetCovering(_ context.Context, categoryID string, on models.Date) (*models.Budget, error) {
	if m.err != nil {
		return nil, m.err
	}
	var found *models.Budget
	for i := range m.budgets {
		b := m.budgets[i]
		if b.CategoryID != categoryID || !b.Covers(on) {
			continue
		}
		if found == nil || b.PeriodStart.After(found.PeriodStart) ||
			(b.PeriodStart.Equal(found.PeriodStart) && b.ID < found.ID) {
			found = &b
		}
	}
	return found, nil
}

func (m *memStore) FindLatestBudgetEndingBefore(_ context.Context, categoryID string, on models.Date) (*models.Budget, error) {
	if m.err != nil {
		return nil, m.err
	}
	var found *models.Budget
	for i := range m.budgets {
		b := m.budgets[i]
		if b.CategoryID != categoryID || !b.PeriodEnd.Before(on) {
			continue
		}
		if found == nil || b.PeriodEnd.After(found.PeriodEnd) ||
			(b.PeriodEnd.Equal(found.PeriodEnd) && b.ID > found.ID) {
			found = &b
		}
	}
	return found, nil
}

func (m *memStore) ListAllBudgets(context.Context) ([]models.Budget, error) {
	if m.err != nil {
		return nil, m.err
	}
	return append([]models.Budget(nil), m.budgets...), nil
}

func (m *memStore) InsertBudget(_ context.Context, b *models.Budget) error {
	if m.err != nil {
		return m.err
	}
	if m.insertErr != nil {
		return m.insertErr
	}
	b.ID = uuid.New()
	m.budgets = append(m.budgets, *b)
	return nil
}

func (m *memStore) InsertBudgets(_ context.Context, bs []models.Budget) error {
	if m.err != nil {
		return m.err
	}
	if m.insertErr != nil {
		return m.insertErr
	}
	for i := range bs {
		bs[i].ID = uuid.New()
	}
	m.budgets = append(m.budgets, bs...)
	return nil
}

func (m *memStore) budgetsFor(categoryID string) []models.Budget {
	var out []models.Budget
	for _, b := range m.budgets {
		if strings.EqualFold(b.CategoryID, categoryID) {
			out = append(out, b)
		}
	}
	return out
}

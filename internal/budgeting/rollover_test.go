package budgeting

import (
	"context"
	"errors"
	"testing"
)

func request(category, amount, start, end string) BudgetRequest {
	return BudgetRequest{
		CategoryID:      category,
		AllocatedAmount: dec(amount),
		PeriodStart:     day(start),
		PeriodEnd:       day(end),
	}
}

func TestCreateWithRollover(t *testing.T) {
	ctx := context.Background()

	t.Run("surplus carries forward", func(t *testing.T) {
		store := newMemStore()
		store.addBudget("food", "300", "2024-01-01", "2024-01-31")
		store.addExpense("food", "250", "2024-01-10")

		b, err := NewRolloverCalculator(store).CreateWithRollover(ctx, request("food", "300", "2024-02-01", "2024-02-29"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !b.RolloverAmount.Equal(dec("50")) || !b.AllocatedAmount.Equal(dec("350")) {
			t.Errorf("expected rollover 50 and allocation 350, got %s and %s", b.RolloverAmount, b.AllocatedAmount)
		}
		if b.ID == "" || len(store.budgetsFor("food")) != 2 {
			t.Error("expected the new budget to be stored")
		}
	})

	t.Run("deficit carries forward", func(t *testing.T) {
		store := newMemStore()
		store.addBudget("food", "300", "2024-01-01", "2024-01-31")
		store.addExpense("food", "320", "2024-01-10")

		b, err := NewRolloverCalculator(store).CreateWithRollover(ctx, request("food", "300", "2024-02-01", "2024-02-29"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !b.RolloverAmount.Equal(dec("-20")) || !b.AllocatedAmount.Equal(dec("280")) {
			t.Errorf("expected rollover -20 and allocation 280, got %s and %s", b.RolloverAmount, b.AllocatedAmount)
		}
	})

	t.Run("large deficit is not clamped", func(t *testing.T) {
		store := newMemStore()
		store.addBudget("food", "100", "2024-01-01", "2024-01-31")
		store.addExpense("food", "400", "2024-01-10")

		b, err := NewRolloverCalculator(store).CreateWithRollover(ctx, request("food", "100", "2024-02-01", "2024-02-29"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !b.AllocatedAmount.Equal(dec("-200")) {
			t.Errorf("expected allocation -200, got %s", b.AllocatedAmount)
		}
	})

	t.Run("no predecessor keeps the requested amount", func(t *testing.T) {
		store := newMemStore()
		store.addBudget("other", "300", "2024-01-01", "2024-01-31")

		b, err := NewRolloverCalculator(store).CreateWithRollover(ctx, request("food", "300", "2024-02-01", "2024-02-29"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !b.RolloverAmount.IsZero() || !b.AllocatedAmount.Equal(dec("300")) {
			t.Errorf("expected rollover 0 and allocation 300, got %s and %s", b.RolloverAmount, b.AllocatedAmount)
		}
	})

	t.Run("predecessor must end strictly before the new start", func(t *testing.T) {
		store := newMemStore()
		store.addBudget("food", "300", "2024-01-15", "2024-02-01")

		b, err := NewRolloverCalculator(store).CreateWithRollover(ctx, request("food", "300", "2024-02-01", "2024-02-29"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !b.RolloverAmount.IsZero() {
			t.Errorf("expected no rollover from an overlapping budget, got %s", b.RolloverAmount)
		}
	})

	t.Run("latest ending predecessor wins", func(t *testing.T) {
		store := newMemStore()
		store.addBudget("food", "1000", "2023-11-01", "2023-11-30")
		store.addBudget("food", "200", "2024-01-01", "2024-01-31")
		store.addBudget("food", "500", "2023-12-01", "2023-12-31")
		store.addExpense("food", "150", "2024-01-20")

		b, err := NewRolloverCalculator(store).CreateWithRollover(ctx, request("food", "300", "2024-02-01", "2024-02-29"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !b.RolloverAmount.Equal(dec("50")) {
			t.Errorf("expected rollover from January budget (50), got %s", b.RolloverAmount)
		}
	})

	t.Run("identical calls create distinct budgets", func(t *testing.T) {
		store := newMemStore()
		calc := NewRolloverCalculator(store)
		req := request("food", "300", "2024-02-01", "2024-02-29")

		first, err := calc.CreateWithRollover(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := calc.CreateWithRollover(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if first.ID == second.ID || len(store.budgetsFor("food")) != 2 {
			t.Error("expected two distinct rows")
		}
	})

	t.Run("insert failure propagates", func(t *testing.T) {
		store := newMemStore()
		store.insertErr = errStoreDown

		_, err := NewRolloverCalculator(store).CreateWithRollover(ctx, request("food", "300", "2024-02-01", "2024-02-29"))
		if !errors.Is(err, errStoreDown) {
			t.Errorf("expected store error, got %v", err)
		}
	})
}

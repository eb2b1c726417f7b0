package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"mybudget/internal/models"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestCategory creates a category with a unique label.
func CreateTestCategory(t *testing.T, db *gorm.DB, kind models.CategoryKind) *models.Category {
	t.Helper()

	category := &models.Category{
		Label: fmt.Sprintf("Test Category %d", nextID()),
		Kind:  kind,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestTransaction records a transaction in categoryID on the given day.
// An empty categoryID leaves the transaction uncategorised.
func CreateTestTransaction(t *testing.T, db *gorm.DB, categoryID string, kind models.TransactionKind, amount string, day models.Date) *models.Transaction {
	t.Helper()

	txn := &models.Transaction{
		Amount:     Dec(amount),
		Label:      fmt.Sprintf("Test Transaction %d", nextID()),
		Kind:       kind,
		OccurredOn: day,
	}
	if categoryID != "" {
		txn.CategoryID = &categoryID
	}
	if err := db.Create(txn).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return txn
}

// CreateTestExpense is CreateTestTransaction for the common expense case.
func CreateTestExpense(t *testing.T, db *gorm.DB, categoryID, amount string, day models.Date) *models.Transaction {
	t.Helper()
	return CreateTestTransaction(t, db, categoryID, models.TransactionKindExpense, amount, day)
}

// CreateTestBudget creates a budget for categoryID over [start, end].
func CreateTestBudget(t *testing.T, db *gorm.DB, categoryID, amount string, start, end models.Date) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		CategoryID:      categoryID,
		AllocatedAmount: Dec(amount),
		PeriodStart:     start,
		PeriodEnd:       end,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// Month returns the first and last day of the given month.
func Month(year int, month int) (models.Date, models.Date) {
	start := models.NewDate(year, time.Month(month), 1)
	end := models.DateOf(start.AddDate(0, 1, -1))
	return start, end
}

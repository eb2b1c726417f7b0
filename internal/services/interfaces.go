package services

import (
	"context"

	"github.com/shopspring/decimal"

	"mybudget/internal/budgeting"
	"mybudget/internal/models"
	"mybudget/internal/pagination"
)

// CategoryPatch carries the category fields to change; nil fields are left as they are.
type CategoryPatch struct {
	Label *string
	Kind  *models.CategoryKind
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(ctx context.Context, label string, kind models.CategoryKind) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategoryByID(ctx context.Context, id string) (*models.Category, error)
	UpdateCategory(ctx context.Context, id string, patch CategoryPatch) (*models.Category, error)
	DeleteCategory(ctx context.Context, id string) (bool, error)
}

// TransactionInput holds the fields of a new transaction.
type TransactionInput struct {
	Amount     decimal.Decimal
	Label      string
	Kind       models.TransactionKind
	OccurredOn models.Date
	CategoryID *string
}

// TransactionPatch carries the transaction fields to change; nil fields are left as they are.
type TransactionPatch struct {
	Amount     *decimal.Decimal
	Label      *string
	Kind       *models.TransactionKind
	OccurredOn *models.Date
	CategoryID *string
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	DateAfter  *models.Date
	DateBefore *models.Date
	CategoryID *string
	Kind       *models.TransactionKind
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	// CreateTransaction evaluates the budget impact, stores the transaction and
	// returns it with the evaluation. A failed evaluation stores nothing.
	CreateTransaction(ctx context.Context, in TransactionInput) (*models.Transaction, *budgeting.Evaluation, error)
	ListTransactions(ctx context.Context, filter TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(ctx context.Context, id string) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, patch TransactionPatch) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) (bool, error)
}

// BudgetPatch carries the budget fields to change; nil fields are left as they are.
type BudgetPatch struct {
	AllocatedAmount *decimal.Decimal
	PeriodStart     *models.Date
	PeriodEnd       *models.Date
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(ctx context.Context, req budgeting.BudgetRequest) (*models.Budget, error)
	CreateBudgetWithRollover(ctx context.Context, req budgeting.BudgetRequest) (*models.Budget, error)
	DistributeIncome(ctx context.Context, in budgeting.IncomeDistribution) ([]models.Budget, error)
	ListBudgets(ctx context.Context) ([]models.Budget, error)
	GetBudgetByID(ctx context.Context, id string) (*models.Budget, error)
	UpdateBudget(ctx context.Context, id string, patch BudgetPatch) (*models.Budget, error)
	DeleteBudget(ctx context.Context, id string) (bool, error)
	GetBudgetStatus(ctx context.Context, id string) (*budgeting.BudgetStatus, error)
	ListAlerts(ctx context.Context) ([]budgeting.BudgetStatus, error)
}

// AuditEvent describes one mutating API call.
type AuditEvent struct {
	Action       string
	ResourceType string
	ResourceID   string
	IPAddress    string
	RequestID    string
	Changes      any
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Record(ctx context.Context, event AuditEvent)
}

package models

import "github.com/shopspring/decimal"

// TransactionKind carries the sign of a transaction; amounts are always positive.
type TransactionKind string

const (
	TransactionKindIncome  TransactionKind = "income"
	TransactionKindExpense TransactionKind = "expense"
)

// Transaction is a single monetary movement.
type Transaction struct {
	Base
	Amount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Label      string          `gorm:"type:varchar(255)" json:"label"`
	Kind       TransactionKind `gorm:"type:varchar(16);not null;index:idx_transactions_spend,priority:2" json:"kind"`
	OccurredOn Date            `gorm:"not null;index:idx_transactions_spend,priority:3" json:"occurred_on"`
	CategoryID *string         `gorm:"type:varchar(36);index:idx_transactions_spend,priority:1" json:"category_id"`

	// CategoryLabel is filled by listing queries; it is not a column.
	CategoryLabel string `gorm:"->;-:migration" json:"category_label,omitempty"`
}

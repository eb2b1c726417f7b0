package models

// CategoryKind tells whether a category groups income or spending.
type CategoryKind string

const (
	CategoryKindIncome  CategoryKind = "income"
	CategoryKindExpense CategoryKind = "expense"
)

// Category is a named bucket transactions and budgets point at.
type Category struct {
	Base
	Label string       `gorm:"type:varchar(100);not null;index" json:"label"`
	Kind  CategoryKind `gorm:"type:varchar(16);not null;default:expense" json:"kind"`
}

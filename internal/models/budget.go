package models

import "github.com/shopspring/decimal"

// Budget is an allocation for one category over an inclusive date range.
type Budget struct {
	Base
	CategoryID      string          `gorm:"type:varchar(36);not null;index:idx_budgets_category_period,priority:1" json:"category_id"`
	AllocatedAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"allocated_amount"`
	PeriodStart     Date            `gorm:"not null;index:idx_budgets_category_period,priority:2" json:"period_start"`
	PeriodEnd       Date            `gorm:"not null;index:idx_budgets_category_period,priority:3" json:"period_end"`

	// RolloverAmount is only set on budgets returned by a rollover creation.
	// It is already folded into AllocatedAmount and never stored on its own.
	RolloverAmount *decimal.Decimal `gorm:"-" json:"rollover_amount,omitempty"`

	// CategoryLabel is filled by listing queries; it is not a column.
	CategoryLabel string `gorm:"->;-:migration" json:"category_label,omitempty"`
}

// Covers reports whether day falls inside the budget period, bounds included.
func (b *Budget) Covers(day Date) bool {
	return day.Within(b.PeriodStart, b.PeriodEnd)
}

package budgeting

import (
	"github.com/shopspring/decimal"
)

// Status is the three-tier health of a budget.
type Status string

const (
	StatusOK         Status = "OK"
	StatusWarning    Status = "WARNING"
	StatusOverBudget Status = "OVER_BUDGET"
)

var (
	hundred = decimal.NewFromInt(100)

	// WarningThreshold is the percent used at which a budget starts warning.
	WarningThreshold = decimal.NewFromInt(80)
)

// Alerting reports whether s belongs on the alert list.
func (s Status) Alerting() bool {
	return s == StatusWarning || s == StatusOverBudget
}

// PercentUsed returns spent as a percentage of allocated, unrounded.
// A non-positive allocation has no meaningful ratio and yields zero.
func PercentUsed(allocated, spent decimal.Decimal) decimal.Decimal {
	if !allocated.IsPositive() {
		return decimal.Zero
	}
	return spent.Mul(hundred).Div(allocated)
}

// Classify applies the three-tier rule to an allocation and its spend.
// It returns the status together with the unrounded percent used.
func Classify(allocated, spent decimal.Decimal) (Status, decimal.Decimal) {
	percent := PercentUsed(allocated, spent)

	switch {
	case spent.GreaterThan(allocated):
		return StatusOverBudget, percent
	case !allocated.IsPositive():
		// Nothing allocated and nothing spent beyond it.
		return StatusOK, percent
	case percent.GreaterThanOrEqual(WarningThreshold):
		return StatusWarning, percent
	default:
		return StatusOK, percent
	}
}

// RoundPercent rounds a percentage to two decimals for presentation.
func RoundPercent(p decimal.Decimal) float64 {
	return p.Round(2).InexactFloat64()
}

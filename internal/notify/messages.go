package notify

import (
	"encoding/json"
	"time"

	"mybudget/internal/budgeting"
	"mybudget/internal/models"

	"github.com/shopspring/decimal"
)

// AlertMessage is published when a recorded transaction pushes its budget
// into WARNING or OVER_BUDGET.
type AlertMessage struct {
	TransactionID   string           `json:"transaction_id"`
	BudgetID        string           `json:"budget_id"`
	CategoryID      string           `json:"category_id"`
	Status          budgeting.Status `json:"status"`
	Percent         float64          `json:"percent"`
	AllocatedAmount decimal.Decimal  `json:"allocated_amount"`
	ProjectedSpent  decimal.Decimal  `json:"projected_spent"`
	OccurredOn      models.Date      `json:"occurred_on"`
	Timestamp       time.Time        `json:"timestamp"`
}

// NewAlertMessage builds the event for txn and its evaluation.
func NewAlertMessage(txn *models.Transaction, eval *budgeting.Evaluation) *AlertMessage {
	return &AlertMessage{
		TransactionID:   txn.ID,
		BudgetID:        eval.BudgetID,
		CategoryID:      eval.CategoryID,
		Status:          eval.Status,
		Percent:         eval.Percent,
		AllocatedAmount: eval.AllocatedAmount,
		ProjectedSpent:  eval.ProjectedSpent,
		OccurredOn:      txn.OccurredOn,
		Timestamp:       time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *AlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// AlertMessageFromJSON decodes a message published by PublishAlert.
func AlertMessageFromJSON(data []byte) (*AlertMessage, error) {
	var msg AlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

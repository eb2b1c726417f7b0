package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"mybudget/internal/budgeting"
	apperrors "mybudget/internal/errors"
	"mybudget/internal/logger"
	"mybudget/internal/models"
	"mybudget/internal/notify"
	"mybudget/internal/pagination"
	"mybudget/internal/repository"
)

// Evaluator is the budget check run before a transaction is stored.
type Evaluator interface {
	Evaluate(ctx context.Context, in budgeting.EvaluationInput) (*budgeting.Evaluation, error)
}

// transactionService handles transaction-related business logic.
type transactionService struct {
	db        *gorm.DB
	evaluator Evaluator
	publisher notify.Publisher
}

// NewTransactionService creates a new TransactionServicer. A nil publisher
// disables alert events.
func NewTransactionService(db *gorm.DB, evaluator Evaluator, publisher notify.Publisher) TransactionServicer {
	if publisher == nil {
		publisher = notify.NopPublisher{}
	}
	return &transactionService{
		db:        db,
		evaluator: evaluator,
		publisher: publisher,
	}
}

// CreateTransaction projects the budget impact of in, stores it, and
// publishes an alert event when the projection crosses the warning line.
// Concurrent creations in one category can each miss the other's amount;
// no locking is done between the evaluation and the insert.
func (s *transactionService) CreateTransaction(ctx context.Context, in TransactionInput) (*models.Transaction, *budgeting.Evaluation, error) {
	if !in.Amount.IsPositive() {
		return nil, nil, apperrors.Field("amount", "must be greater than zero")
	}

	categoryID := ""
	if in.CategoryID != nil {
		categoryID = *in.CategoryID
	}

	eval, err := s.evaluator.Evaluate(ctx, budgeting.EvaluationInput{
		CategoryID: categoryID,
		OccurredOn: in.OccurredOn,
		Kind:       in.Kind,
		Amount:     in.Amount,
	})
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrEvaluationFailed, err)
	}

	transaction := &models.Transaction{
		Amount:     in.Amount,
		Label:      in.Label,
		Kind:       in.Kind,
		OccurredOn: in.OccurredOn,
		CategoryID: in.CategoryID,
	}
	if err := s.db.WithContext(ctx).Create(transaction).Error; err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if eval.TriggersAlert {
		s.publishAlert(ctx, transaction, eval)
	}
	return transaction, eval, nil
}

func (s *transactionService) publishAlert(ctx context.Context, transaction *models.Transaction, eval *budgeting.Evaluation) {
	msg := notify.NewAlertMessage(transaction, eval)
	if err := s.publisher.PublishAlert(ctx, msg); err != nil {
		logger.Named("transactions").Errorw("failed to publish budget alert",
			"error", err,
			"transaction_id", transaction.ID,
			"budget_id", eval.BudgetID,
		)
	}
}

// ListTransactions returns a filtered page of transactions, newest first,
// with their category labels.
func (s *transactionService) ListTransactions(ctx context.Context, filter TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := applyTransactionFilters(s.db.WithContext(ctx).Model(&models.Transaction{}), filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	err := repository.WithCategoryLabel(base.Session(&gorm.Session{}), "transactions").
		Order("transactions.occurred_on DESC").
		Order("transactions.id DESC").
		Scopes(pagination.Paginate(page)).
		Find(&transactions).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.DateAfter != nil {
		q = q.Where("transactions.occurred_on >= ?", *f.DateAfter)
	}
	if f.DateBefore != nil {
		q = q.Where("transactions.occurred_on <= ?", *f.DateBefore)
	}
	if f.CategoryID != nil {
		q = q.Where("transactions.category_id = ?", *f.CategoryID)
	}
	if f.Kind != nil {
		q = q.Where("transactions.kind = ?", *f.Kind)
	}
	return q
}

// GetTransactionByID returns a transaction or ErrTransactionNotFound.
func (s *transactionService) GetTransactionByID(ctx context.Context, id string) (*models.Transaction, error) {
	var transaction models.Transaction
	err := repository.WithCategoryLabel(s.db.WithContext(ctx).Model(&models.Transaction{}), "transactions").
		Where("transactions.id = ?", id).
		Take(&transaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// UpdateTransaction applies patch to the transaction. Budgets are not
// re-evaluated; the alert list reflects the change on its next read.
func (s *transactionService) UpdateTransaction(ctx context.Context, id string, patch TransactionPatch) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if patch.Amount != nil {
		if !patch.Amount.IsPositive() {
			return nil, apperrors.Field("amount", "must be greater than zero")
		}
		updates["amount"] = *patch.Amount
	}
	if patch.Label != nil {
		updates["label"] = *patch.Label
	}
	if patch.Kind != nil {
		updates["kind"] = *patch.Kind
	}
	if patch.OccurredOn != nil {
		updates["occurred_on"] = *patch.OccurredOn
	}
	if patch.CategoryID != nil {
		updates["category_id"] = *patch.CategoryID
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(transaction).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	if patch.CategoryID != nil {
		// The joined label belongs to the old category.
		return s.GetTransactionByID(ctx, id)
	}
	return transaction, nil
}

// DeleteTransaction soft-deletes a transaction and reports whether it existed.
func (s *transactionService) DeleteTransaction(ctx context.Context, id string) (bool, error) {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Transaction{})
	if result.Error != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	return result.RowsAffected > 0, nil
}

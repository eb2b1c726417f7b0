package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"mybudget/internal/budgeting"
	apperrors "mybudget/internal/errors"
	"mybudget/internal/models"
	"mybudget/internal/pagination"
	"mybudget/internal/services"
	"mybudget/internal/uuid"
)

// TransactionHandler handles transaction-related requests
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		auditService:       auditService,
	}
}

// CreateTransactionRequest represents the request payload for creating a transaction
type CreateTransactionRequest struct {
	Amount     decimal.Decimal        `json:"amount" binding:"required,gt=0" swaggertype:"string" example:"42.50"`
	Label      string                 `json:"label" binding:"max=255"`
	Kind       models.TransactionKind `json:"kind" binding:"required,transaction_kind"`
	OccurredOn models.Date            `json:"occurred_on" binding:"required" swaggertype:"string" example:"2024-03-15"`
	CategoryID *string                `json:"category_id" binding:"omitempty,uuid"`
}

// UpdateTransactionRequest represents the request payload for updating a transaction
type UpdateTransactionRequest struct {
	Amount     *decimal.Decimal        `json:"amount" binding:"omitempty,gt=0" swaggertype:"string"`
	Label      *string                 `json:"label" binding:"omitempty,max=255"`
	Kind       *models.TransactionKind `json:"kind" binding:"omitempty,transaction_kind"`
	OccurredOn *models.Date            `json:"occurred_on" swaggertype:"string"`
	CategoryID *string                 `json:"category_id" binding:"omitempty,uuid"`
}

// CreateTransactionResponse is the body of a successful creation. Alert is
// only present when the transaction pushed its budget to WARNING or over.
type CreateTransactionResponse struct {
	Transaction *models.Transaction   `json:"transaction"`
	Alert       *budgeting.Evaluation `json:"alert,omitempty"`
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Record a transaction. Expenses are checked against the budget covering their category and date first
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} CreateTransactionResponse "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error or budget evaluation failure"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req CreateTransactionRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	transaction, eval, err := h.transactionService.CreateTransaction(c.Request.Context(), services.TransactionInput{
		Amount:     req.Amount,
		Label:      req.Label,
		Kind:       req.Kind,
		OccurredOn: req.OccurredOn,
		CategoryID: req.CategoryID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	recordAudit(c, h.auditService, "CREATE_TRANSACTION", "transaction", transaction.ID, req)

	resp := CreateTransactionResponse{Transaction: transaction}
	if eval != nil && eval.TriggersAlert {
		resp.Alert = eval
	}
	c.JSON(http.StatusCreated, resp)
}

// ListTransactions handles the retrieval of transactions
// @Summary     List transactions
// @Description Get a page of transactions, newest first, with optional filters
// @Tags        transactions
// @Produce     json
// @Param       limit       query int    false "Items per page (default 50, max 500)"
// @Param       offset      query int    false "Items to skip"
// @Param       date_after  query string false "Only transactions on or after this date (YYYY-MM-DD)"
// @Param       date_before query string false "Only transactions on or before this date (YYYY-MM-DD)"
// @Param       category_id query string false "Filter by category ID"
// @Param       kind        query string false "Filter by kind (income, expense)"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	var page pagination.PageRequest
	if err := bindQuery(c, &page); err != nil {
		respondWithError(c, err)
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.ListTransactions(c.Request.Context(), filter, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	var filter services.TransactionFilter

	if v := c.Query("date_after"); v != "" {
		d, err := models.ParseDate(v)
		if err != nil {
			return filter, apperrors.Field("date_after", "must be a date in YYYY-MM-DD format")
		}
		filter.DateAfter = &d
	}

	if v := c.Query("date_before"); v != "" {
		d, err := models.ParseDate(v)
		if err != nil {
			return filter, apperrors.Field("date_before", "must be a date in YYYY-MM-DD format")
		}
		filter.DateBefore = &d
	}

	if v := c.Query("category_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, apperrors.Field("category_id", "must be a valid id")
		}
		filter.CategoryID = &id
	}

	if v := c.Query("kind"); v != "" {
		kind := models.TransactionKind(v)
		if kind != models.TransactionKindIncome && kind != models.TransactionKindExpense {
			return filter, apperrors.Field("kind", "must be one of income, expense")
		}
		filter.Kind = &kind
	}

	return filter, nil
}

// GetTransactionByID handles the retrieval of a specific transaction
// @Summary     Get transaction by ID
// @Tags        transactions
// @Produce     json
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction details"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	transactionID, err := parseIDParam(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(c.Request.Context(), transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// UpdateTransaction handles updating a transaction. Updates are not checked
// against budgets.
// @Summary     Update transaction
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       id      path string                   true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Fields to change"
// @Success     200 {object} models.Transaction "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input or transaction ID"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [patch]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	transactionID, err := parseIDParam(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.UpdateTransaction(c.Request.Context(), transactionID, services.TransactionPatch{
		Amount:     req.Amount,
		Label:      req.Label,
		Kind:       req.Kind,
		OccurredOn: req.OccurredOn,
		CategoryID: req.CategoryID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	recordAudit(c, h.auditService, "UPDATE_TRANSACTION", "transaction", transactionID, req)

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction handles deleting a transaction
// @Summary     Delete transaction
// @Tags        transactions
// @Param       id path string true "Transaction ID"
// @Success     204 "Transaction deleted"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	transactionID, err := parseIDParam(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	deleted, err := h.transactionService.DeleteTransaction(c.Request.Context(), transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if !deleted {
		respondWithError(c, apperrors.ErrTransactionNotFound)
		return
	}

	recordAudit(c, h.auditService, "DELETE_TRANSACTION", "transaction", transactionID, nil)

	c.Status(http.StatusNoContent)
}

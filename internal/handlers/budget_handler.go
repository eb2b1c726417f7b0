package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"mybudget/internal/budgeting"
	apperrors "mybudget/internal/errors"
	"mybudget/internal/models"
	"mybudget/internal/services"
)

// BudgetHandler handles budget-related requests
type BudgetHandler struct {
	budgetService services.BudgetServicer
	auditService  services.AuditServicer
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService services.BudgetServicer, auditService services.AuditServicer) *BudgetHandler {
	return &BudgetHandler{
		budgetService: budgetService,
		auditService:  auditService,
	}
}

// CreateBudgetRequest represents the request payload for creating a budget,
// with or without rollover.
type CreateBudgetRequest struct {
	CategoryID      string          `json:"category_id" binding:"required,uuid"`
	AllocatedAmount decimal.Decimal `json:"allocated_amount" binding:"required,gt=0" swaggertype:"string" example:"500.00"`
	PeriodStart     models.Date     `json:"period_start" binding:"required" swaggertype:"string" example:"2024-03-01"`
	PeriodEnd       models.Date     `json:"period_end" binding:"required" swaggertype:"string" example:"2024-03-31"`
}

func (r CreateBudgetRequest) toBudgetRequest() budgeting.BudgetRequest {
	return budgeting.BudgetRequest{
		CategoryID:      r.CategoryID,
		AllocatedAmount: r.AllocatedAmount,
		PeriodStart:     r.PeriodStart,
		PeriodEnd:       r.PeriodEnd,
	}
}

// UpdateBudgetRequest represents the request payload for updating a budget
type UpdateBudgetRequest struct {
	AllocatedAmount *decimal.Decimal `json:"allocated_amount" binding:"omitempty,gt=0" swaggertype:"string"`
	PeriodStart     *models.Date     `json:"period_start" swaggertype:"string"`
	PeriodEnd       *models.Date     `json:"period_end" swaggertype:"string"`
}

// AllocationRequest assigns a percentage of the income to one category.
type AllocationRequest struct {
	CategoryID string          `json:"category_id" binding:"required,uuid"`
	Percentage decimal.Decimal `json:"percentage" binding:"required,gt=0,lte=100" swaggertype:"string" example:"40"`
}

// DistributeIncomeRequest represents the request payload for splitting an income into budgets
type DistributeIncomeRequest struct {
	IncomeAmount decimal.Decimal     `json:"income_amount" binding:"required,gt=0" swaggertype:"string" example:"3000.00"`
	PeriodStart  models.Date         `json:"period_start" binding:"required" swaggertype:"string" example:"2024-03-01"`
	PeriodEnd    models.Date         `json:"period_end" binding:"required" swaggertype:"string" example:"2024-03-31"`
	Allocations  []AllocationRequest `json:"allocations" binding:"required,min=1,dive"`
}

// CreateBudget handles the creation of a new budget
// @Summary     Create a budget
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Param       request body CreateBudgetRequest true "Budget details"
// @Success     201 {object} models.Budget "Budget created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [post]
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	var req CreateBudgetRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.CreateBudget(c.Request.Context(), req.toBudgetRequest())
	if err != nil {
		respondWithError(c, err)
		return
	}

	recordAudit(c, h.auditService, "CREATE_BUDGET", "budget", budget.ID, req)

	c.JSON(http.StatusCreated, gin.H{"budget": budget})
}

// CreateBudgetWithRollover handles creating a budget that carries over the
// previous period's surplus or deficit
// @Summary     Create a budget with rollover
// @Description The allocation is adjusted by what was left (or overspent) in the category's latest budget ending before period_start
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Param       request body CreateBudgetRequest true "Budget details"
// @Success     201 {object} models.Budget "Budget created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/rollover [post]
func (h *BudgetHandler) CreateBudgetWithRollover(c *gin.Context) {
	var req CreateBudgetRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.CreateBudgetWithRollover(c.Request.Context(), req.toBudgetRequest())
	if err != nil {
		respondWithError(c, err)
		return
	}

	recordAudit(c, h.auditService, "CREATE_BUDGET_ROLLOVER", "budget", budget.ID, req)

	rollover := decimal.Zero
	if budget.RolloverAmount != nil {
		rollover = *budget.RolloverAmount
	}
	c.JSON(http.StatusCreated, gin.H{"budget": budget, "rollover_amount": rollover})
}

// DistributeIncome handles splitting an income into one budget per category
// @Summary     Distribute income
// @Description Percentages must add up to exactly 100. Either every budget is created or none is
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Param       request body DistributeIncomeRequest true "Income and allocations"
// @Success     201 {array}  models.Budget "Budgets created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/distribute [post]
func (h *BudgetHandler) DistributeIncome(c *gin.Context) {
	var req DistributeIncomeRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	allocations := make([]budgeting.Allocation, len(req.Allocations))
	for i, a := range req.Allocations {
		allocations[i] = budgeting.Allocation{CategoryID: a.CategoryID, Percentage: a.Percentage}
	}

	budgets, err := h.budgetService.DistributeIncome(c.Request.Context(), budgeting.IncomeDistribution{
		IncomeAmount: req.IncomeAmount,
		PeriodStart:  req.PeriodStart,
		PeriodEnd:    req.PeriodEnd,
		Allocations:  allocations,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	for _, b := range budgets {
		recordAudit(c, h.auditService, "DISTRIBUTE_INCOME", "budget", b.ID, req)
	}

	c.JSON(http.StatusCreated, gin.H{"budgets": budgets, "count": len(budgets)})
}

// ListBudgets handles the retrieval of all budgets
// @Summary     List budgets
// @Description Newest period first, with category labels
// @Tags        budgets
// @Produce     json
// @Success     200 {array}  models.Budget "List of budgets"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [get]
func (h *BudgetHandler) ListBudgets(c *gin.Context) {
	budgets, err := h.budgetService.ListBudgets(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budgets": budgets})
}

// ListAlerts handles the retrieval of budgets in WARNING or OVER_BUDGET
// @Summary     List budget alerts
// @Description Budgets at or above 80% of their allocation, highest usage first
// @Tags        budgets
// @Produce     json
// @Success     200 {array}  budgeting.BudgetStatus "Alerting budgets"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/alerts [get]
func (h *BudgetHandler) ListAlerts(c *gin.Context) {
	alerts, err := h.budgetService.ListAlerts(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"alerts": alerts, "count": len(alerts)})
}

// GetBudgetByID handles the retrieval of a specific budget
// @Summary     Get budget by ID
// @Tags        budgets
// @Produce     json
// @Param       id path string true "Budget ID"
// @Success     200 {object} models.Budget "Budget details"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [get]
func (h *BudgetHandler) GetBudgetByID(c *gin.Context) {
	budgetID, err := parseIDParam(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.GetBudgetByID(c.Request.Context(), budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// GetBudgetStatus handles the retrieval of a budget's spending status
// @Summary     Get budget status
// @Description Spent amount, percent used and status of a budget, computed from its transactions
// @Tags        budgets
// @Produce     json
// @Param       id path string true "Budget ID"
// @Success     200 {object} budgeting.BudgetStatus "Budget status"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/status [get]
func (h *BudgetHandler) GetBudgetStatus(c *gin.Context) {
	budgetID, err := parseIDParam(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	status, err := h.budgetService.GetBudgetStatus(c.Request.Context(), budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget_status": status})
}

// UpdateBudget handles updating a budget
// @Summary     Update budget
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Param       id      path string              true "Budget ID"
// @Param       request body UpdateBudgetRequest true "Fields to change"
// @Success     200 {object} models.Budget "Updated budget"
// @Failure     400 {object} ErrorResponse "Invalid input or budget ID"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [patch]
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	budgetID, err := parseIDParam(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateBudgetRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.UpdateBudget(c.Request.Context(), budgetID, services.BudgetPatch{
		AllocatedAmount: req.AllocatedAmount,
		PeriodStart:     req.PeriodStart,
		PeriodEnd:       req.PeriodEnd,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	recordAudit(c, h.auditService, "UPDATE_BUDGET", "budget", budgetID, req)

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// DeleteBudget handles deleting a budget
// @Summary     Delete budget
// @Tags        budgets
// @Param       id path string true "Budget ID"
// @Success     204 "Budget deleted"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	budgetID, err := parseIDParam(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	deleted, err := h.budgetService.DeleteBudget(c.Request.Context(), budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if !deleted {
		respondWithError(c, apperrors.ErrBudgetNotFound)
		return
	}

	recordAudit(c, h.auditService, "DELETE_BUDGET", "budget", budgetID, nil)

	c.Status(http.StatusNoContent)
}

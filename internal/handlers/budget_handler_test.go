package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"mybudget/internal/budgeting"
	apperrors "mybudget/internal/errors"
	"mybudget/internal/models"
	"mybudget/internal/services"
)

const (
	testBudgetID       = "0190a5c4-1b2c-7d3e-8f40-000000000010"
	testOtherCategory  = "0190a5c4-1b2c-7d3e-8f40-000000000011"
	validBudgetPayload = `{"category_id":"` + testCategoryID + `","allocated_amount":"500.00","period_start":"2024-03-01","period_end":"2024-03-31"}`
)

// --- mock budget service ---

type mockBudgetService struct {
	createBudgetFn             func(ctx context.Context, req budgeting.BudgetRequest) (*models.Budget, error)
	createBudgetWithRolloverFn func(ctx context.Context, req budgeting.BudgetRequest) (*models.Budget, error)
	distributeIncomeFn         func(ctx context.Context, in budgeting.IncomeDistribution) ([]models.Budget, error)
	listBudgetsFn              func(ctx context.Context) ([]models.Budget, error)
	getBudgetByIDFn            func(ctx context.Context, id string) (*models.Budget, error)
	updateBudgetFn             func(ctx context.Context, id string, patch services.BudgetPatch) (*models.Budget, error)
	deleteBudgetFn             func(ctx context.Context, id string) (bool, error)
	getBudgetStatusFn          func(ctx context.Context, id string) (*budgeting.BudgetStatus, error)
	listAlertsFn               func(ctx context.Context) ([]budgeting.BudgetStatus, error)
}

func (m *mockBudgetService) CreateBudget(ctx context.Context, req budgeting.BudgetRequest) (*models.Budget, error) {
	if m.createBudgetFn != nil {
		return m.createBudgetFn(ctx, req)
	}
	return &models.Budget{}, nil
}

func (m *mockBudgetService) CreateBudgetWithRollover(ctx context.Context, req budgeting.BudgetRequest) (*models.Budget, error) {
	if m.createBudgetWithRolloverFn != nil {
		return m.createBudgetWithRolloverFn(ctx, req)
	}
	return &models.Budget{}, nil
}

func (m *mockBudgetService) DistributeIncome(ctx context.Context, in budgeting.IncomeDistribution) ([]models.Budget, error) {
	if m.distributeIncomeFn != nil {
		return m.distributeIncomeFn(ctx, in)
	}
	return []models.Budget{}, nil
}

func (m *mockBudgetService) ListBudgets(ctx context.Context) ([]models.Budget, error) {
	if m.listBudgetsFn != nil {
		return m.listBudgetsFn(ctx)
	}
	return []models.Budget{}, nil
}

func (m *mockBudgetService) GetBudgetByID(ctx context.Context, id string) (*models.Budget, error) {
	if m.getBudgetByIDFn != nil {
		return m.getBudgetByIDFn(ctx, id)
	}
	return &models.Budget{}, nil
}

func (m *mockBudgetService) UpdateBudget(ctx context.Context, id string, patch services.BudgetPatch) (*models.Budget, error) {
	if m.updateBudgetFn != nil {
		return m.updateBudgetFn(ctx, id, patch)
	}
	return &models.Budget{}, nil
}

func (m *mockBudgetService) DeleteBudget(ctx context.Context, id string) (bool, error) {
	if m.deleteBudgetFn != nil {
		return m.deleteBudgetFn(ctx, id)
	}
	return true, nil
}

func (m *mockBudgetService) GetBudgetStatus(ctx context.Context, id string) (*budgeting.BudgetStatus, error) {
	if m.getBudgetStatusFn != nil {
		return m.getBudgetStatusFn(ctx, id)
	}
	return &budgeting.BudgetStatus{}, nil
}

func (m *mockBudgetService) ListAlerts(ctx context.Context) ([]budgeting.BudgetStatus, error) {
	if m.listAlertsFn != nil {
		return m.listAlertsFn(ctx)
	}
	return []budgeting.BudgetStatus{}, nil
}

var _ services.BudgetServicer = (*mockBudgetService)(nil)

func setupBudgetRouter(handler *BudgetHandler) *gin.Engine {
	r := gin.New()
	r.POST("/budgets", handler.CreateBudget)
	r.POST("/budgets/rollover", handler.CreateBudgetWithRollover)
	r.POST("/budgets/distribute", handler.DistributeIncome)
	r.GET("/budgets", handler.ListBudgets)
	r.GET("/budgets/alerts", handler.ListAlerts)
	r.GET("/budgets/:id", handler.GetBudgetByID)
	r.GET("/budgets/:id/status", handler.GetBudgetStatus)
	r.PATCH("/budgets/:id", handler.UpdateBudget)
	r.DELETE("/budgets/:id", handler.DeleteBudget)
	return r
}

func budgetFromRequest(req budgeting.BudgetRequest) *models.Budget {
	return &models.Budget{
		Base:            models.Base{ID: testBudgetID},
		CategoryID:      req.CategoryID,
		AllocatedAmount: req.AllocatedAmount,
		PeriodStart:     req.PeriodStart,
		PeriodEnd:       req.PeriodEnd,
	}
}

func TestBudgetHandler_CreateBudget(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		var got budgeting.BudgetRequest
		budgetSvc := &mockBudgetService{
			createBudgetFn: func(_ context.Context, req budgeting.BudgetRequest) (*models.Budget, error) {
				got = req
				return budgetFromRequest(req), nil
			},
		}
		audit := &mockAuditService{}
		r := setupBudgetRouter(NewBudgetHandler(budgetSvc, audit))

		rec := doRequest(r, "POST", "/budgets", validBudgetPayload)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.CategoryID != testCategoryID || got.PeriodStart.String() != "2024-03-01" || got.PeriodEnd.String() != "2024-03-31" {
			t.Errorf("unexpected request %+v", got)
		}
		budget := parseJSON(t, rec)["budget"].(map[string]interface{})
		if budget["allocated_amount"] != "500" {
			t.Errorf("expected allocated_amount 500, got %v", budget["allocated_amount"])
		}
		if actions := audit.actions(); len(actions) != 1 || actions[0] != "CREATE_BUDGET" {
			t.Errorf("expected CREATE_BUDGET audit event, got %v", actions)
		}
	})

	t.Run("returns 400 on zero allocation", func(t *testing.T) {
		r := setupBudgetRouter(NewBudgetHandler(&mockBudgetService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/budgets",
			`{"category_id":"`+testCategoryID+`","allocated_amount":"0","period_start":"2024-03-01","period_end":"2024-03-31"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorField(t, parseJSON(t, rec), "allocated_amount")
	})

	t.Run("returns 400 on missing category", func(t *testing.T) {
		r := setupBudgetRouter(NewBudgetHandler(&mockBudgetService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/budgets", `{"allocated_amount":"10","period_start":"2024-03-01","period_end":"2024-03-31"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorField(t, parseJSON(t, rec), "category_id")
	})

	t.Run("passes service validation errors through", func(t *testing.T) {
		budgetSvc := &mockBudgetService{
			createBudgetFn: func(context.Context, budgeting.BudgetRequest) (*models.Budget, error) {
				return nil, apperrors.Field("period_end", "must not be before period_start")
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(budgetSvc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/budgets", validBudgetPayload)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		assertErrorCode(t, result, "VALIDATION_ERROR")
		assertErrorField(t, result, "period_end")
	})
}

func TestBudgetHandler_CreateBudgetWithRollover(t *testing.T) {
	t.Run("returns the budget and rollover amount", func(t *testing.T) {
		budgetSvc := &mockBudgetService{
			createBudgetWithRolloverFn: func(_ context.Context, req budgeting.BudgetRequest) (*models.Budget, error) {
				b := budgetFromRequest(req)
				rollover := decimal.RequireFromString("-50")
				b.AllocatedAmount = req.AllocatedAmount.Add(rollover)
				b.RolloverAmount = &rollover
				return b, nil
			},
		}
		audit := &mockAuditService{}
		r := setupBudgetRouter(NewBudgetHandler(budgetSvc, audit))

		rec := doRequest(r, "POST", "/budgets/rollover", validBudgetPayload)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["rollover_amount"] != "-50" {
			t.Errorf("expected rollover_amount -50, got %v", result["rollover_amount"])
		}
		budget := result["budget"].(map[string]interface{})
		if budget["allocated_amount"] != "450" {
			t.Errorf("expected allocated_amount 450, got %v", budget["allocated_amount"])
		}
		if actions := audit.actions(); len(actions) != 1 || actions[0] != "CREATE_BUDGET_ROLLOVER" {
			t.Errorf("expected CREATE_BUDGET_ROLLOVER audit event, got %v", actions)
		}
	})

	t.Run("reports zero when nothing rolled over", func(t *testing.T) {
		r := setupBudgetRouter(NewBudgetHandler(&mockBudgetService{
			createBudgetWithRolloverFn: func(_ context.Context, req budgeting.BudgetRequest) (*models.Budget, error) {
				return budgetFromRequest(req), nil
			},
		}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/budgets/rollover", validBudgetPayload)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
		if got := parseJSON(t, rec)["rollover_amount"]; got != "0" {
			t.Errorf("expected rollover_amount 0, got %v", got)
		}
	})
}

func TestBudgetHandler_DistributeIncome(t *testing.T) {
	payload := `{"income_amount":"3000","period_start":"2024-03-01","period_end":"2024-03-31","allocations":[` +
		`{"category_id":"` + testCategoryID + `","percentage":"60"},` +
		`{"category_id":"` + testOtherCategory + `","percentage":40}]}`

	t.Run("returns 201 with the created budgets", func(t *testing.T) {
		var got budgeting.IncomeDistribution
		budgetSvc := &mockBudgetService{
			distributeIncomeFn: func(_ context.Context, in budgeting.IncomeDistribution) ([]models.Budget, error) {
				got = in
				shares, err := budgeting.Shares(in.IncomeAmount, in.Allocations)
				if err != nil {
					return nil, err
				}
				out := make([]models.Budget, len(shares))
				for i, s := range shares {
					out[i] = models.Budget{CategoryID: in.Allocations[i].CategoryID, AllocatedAmount: s}
				}
				return out, nil
			},
		}
		audit := &mockAuditService{}
		r := setupBudgetRouter(NewBudgetHandler(budgetSvc, audit))

		rec := doRequest(r, "POST", "/budgets/distribute", payload)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if len(got.Allocations) != 2 || !got.Allocations[1].Percentage.Equal(decimal.NewFromInt(40)) {
			t.Errorf("unexpected allocations %+v", got.Allocations)
		}
		result := parseJSON(t, rec)
		if result["count"] != 2.0 {
			t.Errorf("expected count 2, got %v", result["count"])
		}
		budgets := result["budgets"].([]interface{})
		if first := budgets[0].(map[string]interface{}); first["allocated_amount"] != "1800" {
			t.Errorf("expected first share 1800, got %v", first["allocated_amount"])
		}
		if len(audit.actions()) != 2 {
			t.Errorf("expected one audit event per budget, got %v", audit.actions())
		}
	})

	t.Run("returns 400 when percentages do not add up", func(t *testing.T) {
		budgetSvc := &mockBudgetService{
			distributeIncomeFn: func(_ context.Context, in budgeting.IncomeDistribution) ([]models.Budget, error) {
				_, err := budgeting.Shares(in.IncomeAmount, in.Allocations)
				return nil, err
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(budgetSvc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/budgets/distribute",
			`{"income_amount":"3000","period_start":"2024-03-01","period_end":"2024-03-31","allocations":[{"category_id":"`+testCategoryID+`","percentage":"90"}]}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
		assertErrorField(t, parseJSON(t, rec), "allocations")
	})

	t.Run("returns 400 on empty allocations", func(t *testing.T) {
		r := setupBudgetRouter(NewBudgetHandler(&mockBudgetService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/budgets/distribute",
			`{"income_amount":"3000","period_start":"2024-03-01","period_end":"2024-03-31","allocations":[]}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorField(t, parseJSON(t, rec), "allocations")
	})

	t.Run("names the bad allocation", func(t *testing.T) {
		r := setupBudgetRouter(NewBudgetHandler(&mockBudgetService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/budgets/distribute",
			`{"income_amount":"3000","period_start":"2024-03-01","period_end":"2024-03-31","allocations":[`+
				`{"category_id":"`+testCategoryID+`","percentage":"100"},{"category_id":"nope","percentage":"0"}]}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		assertErrorField(t, result, "allocations[1].category_id")
		assertErrorField(t, result, "allocations[1].percentage")
	})
}

func TestBudgetHandler_ListBudgets(t *testing.T) {
	t.Run("returns 200 with budgets", func(t *testing.T) {
		budgetSvc := &mockBudgetService{
			listBudgetsFn: func(context.Context) ([]models.Budget, error) {
				return []models.Budget{{CategoryLabel: "Food"}}, nil
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(budgetSvc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/budgets", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		budgets := parseJSON(t, rec)["budgets"].([]interface{})
		if len(budgets) != 1 || budgets[0].(map[string]interface{})["category_label"] != "Food" {
			t.Errorf("unexpected budgets %v", budgets)
		}
	})
}

func TestBudgetHandler_ListAlerts(t *testing.T) {
	t.Run("returns alerts with a count", func(t *testing.T) {
		budgetSvc := &mockBudgetService{
			listAlertsFn: func(context.Context) ([]budgeting.BudgetStatus, error) {
				return []budgeting.BudgetStatus{
					{BudgetID: testBudgetID, Status: budgeting.StatusOverBudget, PercentUsed: 120},
					{BudgetID: testOtherCategory, Status: budgeting.StatusWarning, PercentUsed: 85},
				}, nil
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(budgetSvc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/budgets/alerts", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["count"] != 2.0 {
			t.Errorf("expected count 2, got %v", result["count"])
		}
		first := result["alerts"].([]interface{})[0].(map[string]interface{})
		if first["status"] != "OVER_BUDGET" {
			t.Errorf("expected OVER_BUDGET first, got %v", first["status"])
		}
	})

	t.Run("returns an empty list rather than null", func(t *testing.T) {
		r := setupBudgetRouter(NewBudgetHandler(&mockBudgetService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/budgets/alerts", "")

		alerts, ok := parseJSON(t, rec)["alerts"].([]interface{})
		if !ok || len(alerts) != 0 {
			t.Errorf("expected empty alerts array, got %v", alerts)
		}
	})
}

func TestBudgetHandler_GetBudgetStatus(t *testing.T) {
	t.Run("returns 200 with the status", func(t *testing.T) {
		budgetSvc := &mockBudgetService{
			getBudgetStatusFn: func(_ context.Context, id string) (*budgeting.BudgetStatus, error) {
				return &budgeting.BudgetStatus{
					BudgetID:        id,
					AllocatedAmount: decimal.NewFromInt(200),
					SpentAmount:     decimal.NewFromInt(50),
					PercentUsed:     25,
					Status:          budgeting.StatusOK,
				}, nil
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(budgetSvc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/budgets/"+testBudgetID+"/status", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		status := parseJSON(t, rec)["budget_status"].(map[string]interface{})
		if status["percent_used"] != 25.0 || status["status"] != "OK" {
			t.Errorf("unexpected status %v", status)
		}
	})

	t.Run("returns 404 when budget not found", func(t *testing.T) {
		budgetSvc := &mockBudgetService{
			getBudgetStatusFn: func(context.Context, string) (*budgeting.BudgetStatus, error) {
				return nil, apperrors.ErrBudgetNotFound
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(budgetSvc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/budgets/"+testBudgetID+"/status", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "BUDGET_NOT_FOUND")
	})
}

func TestBudgetHandler_GetBudgetByID(t *testing.T) {
	t.Run("returns 400 on invalid ID", func(t *testing.T) {
		r := setupBudgetRouter(NewBudgetHandler(&mockBudgetService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/budgets/not-an-id", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 200 on success", func(t *testing.T) {
		budgetSvc := &mockBudgetService{
			getBudgetByIDFn: func(_ context.Context, id string) (*models.Budget, error) {
				return &models.Budget{Base: models.Base{ID: id}}, nil
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(budgetSvc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/budgets/"+testBudgetID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})
}

func TestBudgetHandler_UpdateBudget(t *testing.T) {
	t.Run("returns 200 and builds the patch", func(t *testing.T) {
		var got services.BudgetPatch
		budgetSvc := &mockBudgetService{
			updateBudgetFn: func(_ context.Context, id string, patch services.BudgetPatch) (*models.Budget, error) {
				got = patch
				return &models.Budget{Base: models.Base{ID: id}}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupBudgetRouter(NewBudgetHandler(budgetSvc, audit))

		rec := doRequest(r, "PATCH", "/budgets/"+testBudgetID, `{"period_end":"2024-04-15"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.PeriodEnd == nil || got.PeriodEnd.String() != "2024-04-15" {
			t.Errorf("unexpected period_end patch %v", got.PeriodEnd)
		}
		if got.AllocatedAmount != nil || got.PeriodStart != nil {
			t.Errorf("expected only period_end in patch, got %+v", got)
		}
		if actions := audit.actions(); len(actions) != 1 || actions[0] != "UPDATE_BUDGET" {
			t.Errorf("expected UPDATE_BUDGET audit event, got %v", actions)
		}
	})
}

func TestBudgetHandler_DeleteBudget(t *testing.T) {
	t.Run("returns 204 on success", func(t *testing.T) {
		r := setupBudgetRouter(NewBudgetHandler(&mockBudgetService{}, &mockAuditService{}))

		rec := doRequest(r, "DELETE", "/budgets/"+testBudgetID, "")

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		budgetSvc := &mockBudgetService{
			deleteBudgetFn: func(context.Context, string) (bool, error) { return false, nil },
		}
		r := setupBudgetRouter(NewBudgetHandler(budgetSvc, &mockAuditService{}))

		rec := doRequest(r, "DELETE", "/budgets/"+testBudgetID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "BUDGET_NOT_FOUND")
	})
}

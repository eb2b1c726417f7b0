package handlers

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"mybudget/internal/budgeting"
	"mybudget/internal/middleware"
	"mybudget/internal/notify"
	"mybudget/internal/repository"
	"mybudget/internal/services"
	"mybudget/internal/testutil"
)

type countingPublisher struct {
	published []*notify.AlertMessage
}

func (p *countingPublisher) PublishAlert(_ context.Context, msg *notify.AlertMessage) error {
	p.published = append(p.published, msg)
	return nil
}

func (p *countingPublisher) Close() error { return nil }

func setupFlowRouter(t *testing.T) (*gin.Engine, *countingPublisher) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	store := repository.NewBudgetStore(db)
	pub := &countingPublisher{}
	audit := services.NewAuditService(db)

	r := gin.New()
	r.Use(middleware.RequestLogging())
	RegisterRoutes(r.Group("/api/v1"),
		NewCategoryHandler(services.NewCategoryService(db), audit),
		NewTransactionHandler(services.NewTransactionService(db, budgeting.NewEvaluator(store), pub), audit),
		NewBudgetHandler(services.NewBudgetService(db, store), audit),
	)
	return r, pub
}

func mustCreate(t *testing.T, r *gin.Engine, path, body, key string) map[string]interface{} {
	t.Helper()
	rec := doRequest(r, "POST", path, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST %s: expected 201, got %d: %s", path, rec.Code, rec.Body.String())
	}
	obj, ok := parseJSON(t, rec)[key].(map[string]interface{})
	if !ok {
		t.Fatalf("POST %s: missing %q in %s", path, key, rec.Body.String())
	}
	return obj
}

func TestBudgetFlow(t *testing.T) {
	r, pub := setupFlowRouter(t)

	category := mustCreate(t, r, "/api/v1/categories", `{"label":"Groceries","kind":"expense"}`, "category")
	categoryID := category["id"].(string)

	budget := mustCreate(t, r, "/api/v1/budgets", fmt.Sprintf(
		`{"category_id":%q,"allocated_amount":"100","period_start":"2024-03-01","period_end":"2024-03-31"}`, categoryID), "budget")
	budgetID := budget["id"].(string)

	expense := func(amount, day string) map[string]interface{} {
		rec := doRequest(r, "POST", "/api/v1/transactions", fmt.Sprintf(
			`{"amount":%q,"kind":"expense","occurred_on":%q,"category_id":%q}`, amount, day, categoryID))
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		return parseJSON(t, rec)
	}

	t.Run("an expense under the threshold raises no alert", func(t *testing.T) {
		result := expense("50", "2024-03-05")
		if _, ok := result["alert"]; ok {
			t.Errorf("expected no alert, got %v", result["alert"])
		}
		if len(pub.published) != 0 {
			t.Errorf("expected nothing published, got %d", len(pub.published))
		}
	})

	t.Run("an expense outside the period is not counted", func(t *testing.T) {
		result := expense("500", "2024-04-01")
		if _, ok := result["alert"]; ok {
			t.Errorf("expected no alert, got %v", result["alert"])
		}
	})

	t.Run("crossing 80 percent raises a warning", func(t *testing.T) {
		result := expense("35", "2024-03-20")
		alert, ok := result["alert"].(map[string]interface{})
		if !ok {
			t.Fatalf("expected alert, got %v", result)
		}
		if alert["status"] != "WARNING" || alert["percent"] != 85.0 || alert["budget_id"] != budgetID {
			t.Errorf("unexpected alert %v", alert)
		}
		if len(pub.published) != 1 {
			t.Errorf("expected one published alert, got %d", len(pub.published))
		}
	})

	t.Run("status and alerts reflect recorded spend", func(t *testing.T) {
		rec := doRequest(r, "GET", "/api/v1/budgets/"+budgetID+"/status", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		status := parseJSON(t, rec)["budget_status"].(map[string]interface{})
		if status["spent_amount"] != "85" || status["status"] != "WARNING" || status["category_label"] != "Groceries" {
			t.Errorf("unexpected status %v", status)
		}

		rec = doRequest(r, "GET", "/api/v1/budgets/alerts", "")
		result := parseJSON(t, rec)
		if result["count"] != 1.0 {
			t.Errorf("expected one alert, got %v", result["count"])
		}
	})

	t.Run("the next budget rolls over the unspent amount", func(t *testing.T) {
		rec := doRequest(r, "POST", "/api/v1/budgets/rollover", fmt.Sprintf(
			`{"category_id":%q,"allocated_amount":"100","period_start":"2024-04-01","period_end":"2024-04-30"}`, categoryID))
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["rollover_amount"] != "15" {
			t.Errorf("expected rollover 15, got %v", result["rollover_amount"])
		}
		if got := result["budget"].(map[string]interface{})["allocated_amount"]; got != "115" {
			t.Errorf("expected allocation 115, got %v", got)
		}
	})

	t.Run("the April expense now puts that budget over", func(t *testing.T) {
		rec := doRequest(r, "GET", "/api/v1/budgets/alerts", "")
		alerts := parseJSON(t, rec)["alerts"].([]interface{})
		if len(alerts) != 2 {
			t.Fatalf("expected two alerts, got %v", alerts)
		}
		if first := alerts[0].(map[string]interface{}); first["status"] != "OVER_BUDGET" {
			t.Errorf("expected the over-budget alert first, got %v", first)
		}
	})

	t.Run("income distribution rejects bad percentages and stores nothing", func(t *testing.T) {
		rec := doRequest(r, "POST", "/api/v1/budgets/distribute", fmt.Sprintf(
			`{"income_amount":"1000","period_start":"2024-05-01","period_end":"2024-05-31","allocations":[{"category_id":%q,"percentage":"70"}]}`, categoryID))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}

		rec = doRequest(r, "GET", "/api/v1/budgets", "")
		if budgets := parseJSON(t, rec)["budgets"].([]interface{}); len(budgets) != 2 {
			t.Errorf("expected 2 budgets, got %d", len(budgets))
		}
	})

	t.Run("deleting a transaction twice returns 404 the second time", func(t *testing.T) {
		txn := expense("1", "2024-06-01")["transaction"].(map[string]interface{})
		path := "/api/v1/transactions/" + txn["id"].(string)

		if rec := doRequest(r, "DELETE", path, ""); rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
		if rec := doRequest(r, "DELETE", path, ""); rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

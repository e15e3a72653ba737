package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/LovationAdmin/finance-tracker-api/handlers"
	"github.com/LovationAdmin/finance-tracker-api/models"
	"github.com/LovationAdmin/finance-tracker-api/repository"
	"github.com/LovationAdmin/finance-tracker-api/routes"
	"github.com/LovationAdmin/finance-tracker-api/services"
	"github.com/LovationAdmin/finance-tracker-api/utils"

	"github.com/gin-gonic/gin"
)

const testSecret = "handlers-test-secret-0123456789ab"

type testAPI struct {
	router *gin.Engine
	token  string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	txns := repository.NewMemoryTransactionRepository()
	budgets := repository.NewMemoryBudgetRepository()
	cats := repository.NewMemoryCategoryRepository()
	users := repository.NewMemoryUserRepository()
	chats := repository.NewMemoryChatRepository()
	loc := time.UTC

	suggester, err := services.NewSuggestionService(services.DisabledGenerator{}, time.Minute, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(suggester.Close)

	ws := handlers.NewWSHandler()
	t.Cleanup(func() { ws.Close() })

	agg := services.NewAggregationService(txns, budgets, cats, users, services.IncomeTransactionsFirst)
	userSvc := services.NewUserService(users, testSecret, time.Hour, "")

	h := routes.Handlers{
		Auth:         &handlers.AuthHandler{Users: userSvc},
		User:         &handlers.UserHandler{Users: userSvc},
		Transactions: &handlers.TransactionHandler{Transactions: services.NewTransactionService(txns, budgets, suggester, ws, loc), UploadDir: t.TempDir(), Location: loc},
		Budgets:      &handlers.BudgetHandler{Budgets: services.NewBudgetService(budgets, agg, ws, loc), Location: loc},
		Categories:   &handlers.CategoryHandler{Categories: services.NewCategoryService(cats, txns, budgets, agg, ws, loc), Location: loc},
		Reports:      &handlers.ReportHandler{Reports: services.NewReportService(agg, users, services.StaticNarrator{}, nil, time.Second, time.Second), Location: loc},
		AI:           &handlers.AIHandler{Suggester: suggester, Assistant: services.NewAssistantService(nil, txns, chats, time.Second)},
		WS:           ws,
	}

	router := gin.New()
	routes.Register(router.Group("/api/v1"), h, testSecret)

	api := &testAPI{router: router}
	w := api.do(t, http.MethodPost, "/api/v1/auth/signup", `{"email":"ana@example.com","password":"s3cret!!","name":"Ana"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("signup status = %d: %s", w.Code, w.Body)
	}
	var auth models.AuthResponse
	decode(t, w, &auth)
	api.token = auth.Token
	return api
}

func (a *testAPI) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", w.Body, err)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	api := newTestAPI(t)
	api.token = ""

	w := api.do(t, http.MethodGet, "/api/v1/reports/monthly-summary", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}

	token, err := utils.GenerateAccessToken("someone", "x@example.com", "wrong-secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	api.token = token
	if w := api.do(t, http.MethodGet, "/api/v1/budgets", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("forged token status = %d, want 401", w.Code)
	}
}

func TestInvalidPeriodIsBadRequest(t *testing.T) {
	api := newTestAPI(t)

	for _, q := range []string{"year=2025&month=13", "year=2025&month=0", "year=abc&month=3", "month=march"} {
		w := api.do(t, http.MethodGet, "/api/v1/reports/monthly-summary?"+q, "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, w.Code)
		}
	}
}

func TestCreateTransactionCreatesBudget(t *testing.T) {
	api := newTestAPI(t)

	body := `{"type":"expense","amount":120.5,"date":"2025-03-10","category":"Pets","merchant":"Vet","payment_method":"card","tags":"health, vet"}`
	w := api.do(t, http.MethodPost, "/api/v1/transactions", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", w.Code, w.Body)
	}
	var created models.Transaction
	decode(t, w, &created)
	if len(created.Tags) != 2 || created.Tags[1] != "vet" {
		t.Errorf("tags = %v", created.Tags)
	}

	w = api.do(t, http.MethodGet, "/api/v1/budgets?year=2025&month=3", "")
	if w.Code != http.StatusOK {
		t.Fatalf("budgets status = %d", w.Code)
	}
	var budgets []models.BudgetWithSpend
	decode(t, w, &budgets)
	if len(budgets) != 1 || budgets[0].Category != "Pets" {
		t.Fatalf("budgets = %+v", budgets)
	}
	if !budgets[0].Limit.IsZero() || budgets[0].Spent.String() != "120.5" || !budgets[0].OverBudget {
		t.Errorf("budget = %+v", budgets[0])
	}

	if w := api.do(t, http.MethodDelete, "/api/v1/transactions/"+created.ID, ""); w.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", w.Code)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/v1/transactions", `{"type":"expense","amount":-5,"date":"2025-03-10","payment_method":"cash"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var resp map[string]interface{}
	decode(t, w, &resp)
	if resp["field"] != "amount" {
		t.Errorf("response = %v", resp)
	}
}

func TestOutOfRangeInputIsBadRequest(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name, body, field string
	}{
		{"sub-cent amount", `{"type":"expense","amount":0.004,"date":"2025-03-10","category":"Food","payment_method":"cash"}`, "amount"},
		{"trillion amount", `{"type":"expense","amount":1000000000000,"date":"2025-03-10","category":"Food","payment_method":"cash"}`, "amount"},
		{"long category", `{"type":"expense","amount":5,"date":"2025-03-10","category":"` + strings.Repeat("k", 101) + `","payment_method":"cash"}`, "category"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(t, http.MethodPost, "/api/v1/transactions", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400: %s", w.Code, w.Body)
			}
			var resp map[string]interface{}
			decode(t, w, &resp)
			if resp["field"] != tt.field {
				t.Errorf("response = %v", resp)
			}
		})
	}

	w := api.do(t, http.MethodPost, "/api/v1/budgets", `{"category":"Food","limit":12.345}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("budget limit status = %d, want 400", w.Code)
	}
	w = api.do(t, http.MethodGet, "/api/v1/budgets?year=2025&month=3", "")
	var budgets []models.BudgetWithSpend
	decode(t, w, &budgets)
	if len(budgets) != 0 {
		t.Errorf("rejected requests left budgets: %+v", budgets)
	}
}

func TestMalformedIDIsNotFound(t *testing.T) {
	api := newTestAPI(t)

	for _, path := range []string{"/api/v1/transactions/abc", "/api/v1/budgets/abc"} {
		if w := api.do(t, http.MethodDelete, path, ""); w.Code != http.StatusNotFound {
			t.Errorf("DELETE %s status = %d, want 404", path, w.Code)
		}
	}
	if w := api.do(t, http.MethodPut, "/api/v1/budgets/abc", `{"limit":10}`); w.Code != http.StatusNotFound {
		t.Errorf("PUT budget status = %d, want 404", w.Code)
	}
}

func TestMonthlySummaryAndExports(t *testing.T) {
	api := newTestAPI(t)

	for _, body := range []string{
		`{"type":"income","amount":50000,"date":"2025-03-01","category":"Salary","payment_method":"bank"}`,
		`{"type":"expense","amount":30000,"date":"2025-03-05","category":"Rent","payment_method":"bank"}`,
		`{"type":"expense","amount":12500,"date":"2025-03-20","category":"Food","payment_method":"card"}`,
	} {
		if w := api.do(t, http.MethodPost, "/api/v1/transactions", body); w.Code != http.StatusCreated {
			t.Fatalf("create status = %d: %s", w.Code, w.Body)
		}
	}

	w := api.do(t, http.MethodGet, "/api/v1/reports/monthly-summary?year=2025&month=3", "")
	if w.Code != http.StatusOK {
		t.Fatalf("summary status = %d: %s", w.Code, w.Body)
	}
	var report models.MonthlyReport
	decode(t, w, &report)
	if report.Year != 2025 || report.Month != 3 {
		t.Errorf("period = %d-%d", report.Year, report.Month)
	}
	if report.Summary.TotalExpense.String() != "42500" || report.Summary.RemainingBalance.String() != "7500" {
		t.Errorf("summary = %+v", report.Summary)
	}
	if len(report.SpendingByCategory) != 2 || report.SpendingByCategory[0].Name != "Rent" {
		t.Errorf("categories = %+v", report.SpendingByCategory)
	}
	if report.Metrics.BurnRate != 85 || report.Metrics.TopCategory != "Rent" {
		t.Errorf("metrics = %+v", report.Metrics)
	}

	w = api.do(t, http.MethodGet, "/api/v1/reports/monthly-summary/csv?year=2025&month=3", "")
	if w.Code != http.StatusOK {
		t.Fatalf("csv status = %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "financial-report-2025-03.csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if !strings.HasPrefix(w.Body.String(), "Category,Amount\nRent,30000.00\n") {
		t.Errorf("csv = %q", w.Body.String())
	}

	w = api.do(t, http.MethodGet, "/api/v1/reports/monthly-summary/xlsx?year=2025&month=3", "")
	if w.Code != http.StatusOK || !bytes.HasPrefix(w.Body.Bytes(), []byte("PK")) {
		t.Errorf("xlsx status = %d", w.Code)
	}

	w = api.do(t, http.MethodGet, "/api/v1/reports/monthly-summary/pdf?year=2025&month=3", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("pdf without renderer status = %d, want 503", w.Code)
	}
}

func TestRenameCategoryConflict(t *testing.T) {
	api := newTestAPI(t)

	for _, name := range []string{"Food", "Dining"} {
		if w := api.do(t, http.MethodPost, "/api/v1/categories", `{"name":"`+name+`"}`); w.Code != http.StatusCreated {
			t.Fatalf("create %s status = %d: %s", name, w.Code, w.Body)
		}
	}
	w := api.do(t, http.MethodPut, "/api/v1/categories/rename", `{"old_name":"Food","new_name":"dining"}`)
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409: %s", w.Code, w.Body)
	}
}

func TestSuggestDetailsAlwaysSucceeds(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/v1/ai/suggest-details", `{"description":"uber ride to airport"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var s models.Suggestion
	decode(t, w, &s)
	if s.Category == nil || *s.Category != "Transport" {
		t.Errorf("suggestion = %+v", s)
	}
}

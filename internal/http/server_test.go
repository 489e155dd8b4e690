package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"savvy/internal/auth"
	"savvy/internal/log"
	"savvy/internal/realtime"
	"savvy/internal/services"
	"savvy/internal/storage"
)

const testJWTSecret = "0123456789abcdef0123456789abcdef"

type testEnv struct {
	server *Server
	ts     *httptest.Server
	token  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	logger := log.New(log.DefaultConfig())
	hub := realtime.NewHub(logger)
	go hub.Run()
	t.Cleanup(hub.Stop)

	tokens := auth.NewTokenManager(testJWTSecret, time.Hour)
	users := services.NewUserService(repo, tokens, "USD")
	transactions := services.NewTransactionService(repo, nil, hub, logger)
	planning := services.NewPlanningService(repo, hub)

	cfg := Config{
		Addr:              "127.0.0.1:0",
		RequestsPerMinute: 10_000,
		DefaultCurrency:   "USD",
	}
	srv := NewServer(cfg, users, transactions, planning, tokens, hub, logger)
	ts := httptest.NewServer(srv.Server.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{server: srv, ts: ts}
}

// do sends a JSON request, attaching the bearer token when one is set.
func (e *testEnv) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, e.ts.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func (e *testEnv) register(t *testing.T, email string) {
	t.Helper()

	resp := e.do(t, http.MethodPost, "/api/auth/register", registerRequest{
		Email:    email,
		Password: "password123",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d, want 201", resp.StatusCode)
	}
	e.token = decodeBody[authResponse](t, resp).Token
}

func TestServer_RegisterLoginFlow(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/auth/register", registerRequest{
		Email:    "flow@example.com",
		Password: "password123",
		Currency: "eur",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d, want 201", resp.StatusCode)
	}
	created := decodeBody[authResponse](t, resp)
	if created.Token == "" {
		t.Fatal("register returned empty token")
	}
	if created.User.Currency != "EUR" {
		t.Fatalf("currency = %q, want EUR", created.User.Currency)
	}

	resp = env.do(t, http.MethodPost, "/api/auth/login", loginRequest{
		Email:    "flow@example.com",
		Password: "password123",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d, want 200", resp.StatusCode)
	}
	if decodeBody[authResponse](t, resp).User.ID != created.User.ID {
		t.Fatal("login returned a different user")
	}

	resp = env.do(t, http.MethodPost, "/api/auth/login", loginRequest{
		Email:    "flow@example.com",
		Password: "wrongpass",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad login status = %d, want 401", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.do(t, http.MethodPost, "/api/auth/register", registerRequest{
		Email:    "flow@example.com",
		Password: "password123",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate register status = %d, want 409", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestServer_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/transactions", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestServer_TransactionCRUD(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "crud@example.com")

	resp := env.do(t, http.MethodPost, "/api/transactions", transactionRequest{
		Kind:     "expense",
		Amount:   "12.34",
		Category: "groceries",
		Date:     "2026-03-15",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}
	created := decodeBody[transactionJSON](t, resp)
	if created.Amount.Cents != -1234 {
		t.Fatalf("expense cents = %d, want -1234", created.Amount.Cents)
	}
	if created.Date != "2026-03-15" {
		t.Fatalf("date = %q, want 2026-03-15", created.Date)
	}

	resp = env.do(t, http.MethodGet, "/api/transactions/"+created.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d, want 200", resp.StatusCode)
	}
	if got := decodeBody[transactionJSON](t, resp); got.Category != "groceries" {
		t.Fatalf("category = %q, want groceries", got.Category)
	}

	resp = env.do(t, http.MethodPut, "/api/transactions/"+created.ID, transactionRequest{
		Kind:     "expense",
		Amount:   "20.00",
		Category: "dining",
		Date:     "2026-03-16",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d, want 200", resp.StatusCode)
	}
	if got := decodeBody[transactionJSON](t, resp); got.Amount.Cents != -2000 {
		t.Fatalf("updated cents = %d, want -2000", got.Amount.Cents)
	}

	resp = env.do(t, http.MethodDelete, "/api/transactions/"+created.ID, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/transactions/"+created.ID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestServer_RejectsInvalidTransaction(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "invalid@example.com")

	cases := []struct {
		name string
		req  transactionRequest
	}{
		{"bad kind", transactionRequest{Kind: "transfer", Amount: "10.00", Category: "x", Date: "2026-01-01"}},
		{"bad amount", transactionRequest{Kind: "expense", Amount: "-5", Category: "x", Date: "2026-01-01"}},
		{"bad date", transactionRequest{Kind: "expense", Amount: "10.00", Category: "x", Date: "01/01/2026"}},
		{"empty category", transactionRequest{Kind: "expense", Amount: "10.00", Date: "2026-01-01"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := env.do(t, http.MethodPost, "/api/transactions", tc.req)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
			resp.Body.Close()
		})
	}
}

func TestServer_BudgetsAndGoals(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "plan@example.com")

	resp := env.do(t, http.MethodPost, "/api/budgets", budgetRequest{Amount: "500.00", Period: "monthly"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create budget status = %d, want 201", resp.StatusCode)
	}
	budget := decodeBody[budgetJSON](t, resp)
	if budget.Amount.Cents != 50000 {
		t.Fatalf("budget cents = %d, want 50000", budget.Amount.Cents)
	}

	resp = env.do(t, http.MethodPost, "/api/budgets", budgetRequest{Amount: "100.00", Period: "fortnightly"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad period status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.do(t, http.MethodPost, "/api/goals", goalRequest{
		Name:         "emergency fund",
		TargetAmount: "1000.00",
		TargetDate:   "2027-01-01",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create goal status = %d, want 201", resp.StatusCode)
	}
	goal := decodeBody[goalJSON](t, resp)
	if goal.Priority != "medium" {
		t.Fatalf("default priority = %q, want medium", goal.Priority)
	}

	resp = env.do(t, http.MethodDelete, "/api/goals/"+goal.ID, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete goal status = %d, want 204", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestServer_InsightsOverview(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "insights@example.com")

	today := time.Now().Format("2006-01-02")
	for _, req := range []transactionRequest{
		{Kind: "income", Amount: "3000.00", Category: "salary", Date: today},
		{Kind: "expense", Amount: "1000.00", Category: "rent", Date: today},
		{Kind: "expense", Amount: "200.00", Category: "groceries", Date: today},
	} {
		resp := env.do(t, http.MethodPost, "/api/transactions", req)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("seed transaction status = %d", resp.StatusCode)
		}
		resp.Body.Close()
	}

	resp := env.do(t, http.MethodGet, "/api/insights/overview?window=month", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("overview status = %d, want 200", resp.StatusCode)
	}
	overview := decodeBody[overviewResponse](t, resp)

	if overview.TotalIncome.Cents != 300000 {
		t.Fatalf("total income = %d, want 300000", overview.TotalIncome.Cents)
	}
	if overview.TotalExpenses.Cents != 120000 {
		t.Fatalf("total expenses = %d, want 120000", overview.TotalExpenses.Cents)
	}
	if overview.Net.Cents != 180000 {
		t.Fatalf("net = %d, want 180000", overview.Net.Cents)
	}
	// ratio 2.5 hits the top score band
	if overview.HealthScore.Score != 95 {
		t.Fatalf("health score = %d, want 95", overview.HealthScore.Score)
	}
	if len(overview.Recommendations) == 0 {
		t.Fatal("expected at least one recommendation")
	}
	if overview.Budget.State != "no-data" {
		t.Fatalf("budget state = %q, want no-data", overview.Budget.State)
	}
}

func TestServer_InsightsBudgetUsage(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "budgetuse@example.com")

	resp := env.do(t, http.MethodPost, "/api/budgets", budgetRequest{Amount: "1000.00", Period: "monthly"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create budget status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	today := time.Now().Format("2006-01-02")
	resp = env.do(t, http.MethodPost, "/api/transactions", transactionRequest{
		Kind: "expense", Amount: "800.00", Category: "rent", Date: today,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("seed transaction status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/insights/overview?window=month", nil)
	overview := decodeBody[overviewResponse](t, resp)

	if overview.Budget.State != "warning" {
		t.Fatalf("budget state = %q, want warning", overview.Budget.State)
	}
	if overview.Budget.TotalSpent.Cents != 80000 {
		t.Fatalf("spent = %d, want 80000", overview.Budget.TotalSpent.Cents)
	}
	if overview.Budget.Remaining.Cents != 20000 {
		t.Fatalf("remaining = %d, want 20000", overview.Budget.Remaining.Cents)
	}
}

func TestServer_InsightsCharts(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "charts@example.com")

	today := time.Now().Format("2006-01-02")
	for _, req := range []transactionRequest{
		{Kind: "expense", Amount: "50.00", Category: "groceries", Date: today},
		{Kind: "expense", Amount: "30.00", Category: "groceries", Date: today},
		{Kind: "expense", Amount: "20.00", Category: "transport", Date: today},
		{Kind: "income", Amount: "500.00", Category: "salary", Date: today},
	} {
		resp := env.do(t, http.MethodPost, "/api/transactions", req)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("seed transaction status = %d", resp.StatusCode)
		}
		resp.Body.Close()
	}

	resp := env.do(t, http.MethodGet, "/api/insights/charts?window=week", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("charts status = %d, want 200", resp.StatusCode)
	}
	charts := decodeBody[chartsResponse](t, resp)

	if len(charts.ByCategory) != 2 {
		t.Fatalf("categories = %d, want 2", len(charts.ByCategory))
	}
	// income must not leak into expense charts
	for _, p := range charts.ByCategory {
		if p.Label == "salary" {
			t.Fatal("income category leaked into expense aggregation")
		}
	}
	var groceries int64
	for _, p := range charts.ByCategory {
		if p.Label == "groceries" {
			groceries = p.Amount.Cents
		}
	}
	if groceries != 8000 {
		t.Fatalf("groceries total = %d, want 8000", groceries)
	}
}

func TestServer_InsightsCacheInvalidation(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "cache@example.com")

	today := time.Now().Format("2006-01-02")
	resp := env.do(t, http.MethodPost, "/api/transactions", transactionRequest{
		Kind: "income", Amount: "100.00", Category: "salary", Date: today,
	})
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/insights/overview", nil)
	first := decodeBody[overviewResponse](t, resp)
	if first.TotalIncome.Cents != 10000 {
		t.Fatalf("income = %d, want 10000", first.TotalIncome.Cents)
	}

	resp = env.do(t, http.MethodPost, "/api/transactions", transactionRequest{
		Kind: "income", Amount: "50.00", Category: "salary", Date: today,
	})
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/insights/overview", nil)
	second := decodeBody[overviewResponse](t, resp)
	if second.TotalIncome.Cents != 15000 {
		t.Fatalf("income after write = %d, want 15000 (stale cache?)", second.TotalIncome.Cents)
	}
}

func TestServer_InvalidWindow(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "window@example.com")

	resp := env.do(t, http.MethodGet, "/api/insights/overview?window=decade", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestServer_UserIsolation(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice@example.com")

	resp := env.do(t, http.MethodPost, "/api/transactions", transactionRequest{
		Kind: "expense", Amount: "10.00", Category: "coffee", Date: "2026-01-15",
	})
	created := decodeBody[transactionJSON](t, resp)

	env.register(t, "bob@example.com")

	resp = env.do(t, http.MethodGet, "/api/transactions/"+created.ID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("cross-user get status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/transactions", nil)
	if got := decodeBody[[]transactionJSON](t, resp); len(got) != 0 {
		t.Fatalf("bob sees %d transactions, want 0", len(got))
	}
}

func TestServer_HealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(env.ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s status = %d, want 200", path, resp.StatusCode)
		}
		resp.Body.Close()
	}
}

func TestServer_SecurityHeaders(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := resp.Header.Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("X-Frame-Options = %q, want DENY", got)
	}
}

func TestServer_RateLimit(t *testing.T) {
	// a tiny limit so the test does not hammer the listener
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "rl.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	logger := log.New(log.DefaultConfig())
	hub := realtime.NewHub(logger)
	go hub.Run()
	t.Cleanup(hub.Stop)

	tokens := auth.NewTokenManager(testJWTSecret, time.Hour)
	srv := NewServer(
		Config{Addr: "127.0.0.1:0", RequestsPerMinute: 3, DefaultCurrency: "USD"},
		services.NewUserService(repo, tokens, "USD"),
		services.NewTransactionService(repo, nil, hub, logger),
		services.NewPlanningService(repo, hub),
		tokens, hub, logger,
	)
	ts := httptest.NewServer(srv.Server.Handler)
	t.Cleanup(ts.Close)

	var last int
	for i := 0; i < 4; i++ {
		resp, err := http.Get(ts.URL + "/healthz")
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		last = resp.StatusCode
		resp.Body.Close()
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("4th request status = %d, want 429", last)
	}
}

func TestServer_OverviewCacheKeyPerWindow(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "windows@example.com")

	old := time.Now().AddDate(0, -2, 0).Format("2006-01-02")
	resp := env.do(t, http.MethodPost, "/api/transactions", transactionRequest{
		Kind: "income", Amount: "100.00", Category: "salary", Date: old,
	})
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/insights/overview?window=all", nil)
	all := decodeBody[overviewResponse](t, resp)
	resp = env.do(t, http.MethodGet, "/api/insights/overview?window=week", nil)
	week := decodeBody[overviewResponse](t, resp)

	if all.TotalIncome.Cents != 10000 {
		t.Fatalf("all-window income = %d, want 10000", all.TotalIncome.Cents)
	}
	if week.TotalIncome.Cents != 0 {
		t.Fatalf("week-window income = %d, want 0", week.TotalIncome.Cents)
	}
}

func TestErrorBodyShape(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/auth/login", loginRequest{Email: "x@y.z", Password: "nope1234"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	body := decodeBody[errorResponse](t, resp)
	if body.Error == "" {
		t.Fatal("error body missing message")
	}
	if body.Error != "invalid email or password" {
		t.Fatalf("error = %q", body.Error)
	}
}

func TestServer_ChartSeriesEndpoints(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "series@example.com")

	today := time.Now().Format("2006-01-02")
	for _, req := range []transactionRequest{
		{Kind: "expense", Amount: "40.00", Category: "groceries", Date: today},
		{Kind: "income", Amount: "900.00", Category: "salary", Date: today},
	} {
		resp := env.do(t, http.MethodPost, "/api/transactions", req)
		resp.Body.Close()
	}

	for _, series := range []string{"categories", "daily", "monthly", "radar", "treemap"} {
		resp := env.do(t, http.MethodGet, "/api/charts/"+series+"?window=month", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s status = %d, want 200", series, resp.StatusCode)
		}
		resp.Body.Close()
	}

	resp := env.do(t, http.MethodGet, "/api/charts/categories?kind=income", nil)
	points := decodeBody[[]struct {
		Label  string `json:"label"`
		Amount int64  `json:"amount"`
	}](t, resp)
	if len(points) != 1 || points[0].Label != "salary" {
		t.Fatalf("income categories = %+v, want single salary entry", points)
	}

	resp = env.do(t, http.MethodGet, "/api/charts/sankey", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown series status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestServer_InsightsHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "health@example.com")

	today := time.Now().Format("2006-01-02")
	for _, req := range []transactionRequest{
		{Kind: "income", Amount: "1000.00", Category: "salary", Date: today},
		{Kind: "expense", Amount: "900.00", Category: "rent", Date: today},
	} {
		resp := env.do(t, http.MethodPost, "/api/transactions", req)
		resp.Body.Close()
	}

	resp := env.do(t, http.MethodGet, "/api/insights/health?window=month", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d, want 200", resp.StatusCode)
	}
	hs := decodeBody[struct {
		Score  int    `json:"score"`
		Status string `json:"status"`
	}](t, resp)
	// ratio 1000/900 ≈ 1.11 falls in the break-even band
	if hs.Score != 50 || hs.Status != "fair" {
		t.Fatalf("health = %+v, want score 50 fair", hs)
	}
}

func TestServer_ForecastEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "forecast@example.com")

	// 35-day steps so each seed lands in a distinct month regardless of
	// the current day of month
	for i := 0; i < 3; i++ {
		date := time.Now().AddDate(0, 0, -35*i).Format("2006-01-02")
		resp := env.do(t, http.MethodPost, "/api/transactions", transactionRequest{
			Kind: "income", Amount: "1000.00", Category: "salary", Date: date,
		})
		resp.Body.Close()
	}

	resp := env.do(t, http.MethodGet, "/api/insights/forecast?months=6", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("forecast status = %d, want 200", resp.StatusCode)
	}
	points := decodeBody[[]struct {
		Forecast bool `json:"forecast"`
	}](t, resp)
	var projected int
	for _, p := range points {
		if p.Forecast {
			projected++
		}
	}
	if projected != 6 {
		t.Fatalf("projected points = %d, want 6", projected)
	}

	resp = env.do(t, http.MethodGet, "/api/insights/forecast?months=9", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid months status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestServer_BudgetStatusEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "status@example.com")

	resp := env.do(t, http.MethodGet, "/api/budgets/status", nil)
	status := decodeBody[budgetStatusResponse](t, resp)
	if status.Usage.State != "no-data" {
		t.Fatalf("state with no budget = %q, want no-data", status.Usage.State)
	}
	if len(status.Advice) == 0 {
		t.Fatal("expected onboarding advice with no budget")
	}

	resp = env.do(t, http.MethodPost, "/api/budgets", budgetRequest{Amount: "100.00", Period: "monthly"})
	resp.Body.Close()
	today := time.Now().Format("2006-01-02")
	resp = env.do(t, http.MethodPost, "/api/transactions", transactionRequest{
		Kind: "expense", Amount: "150.00", Category: "rent", Date: today,
	})
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/budgets/status", nil)
	status = decodeBody[budgetStatusResponse](t, resp)
	if status.Usage.State != "exceeded" {
		t.Fatalf("state = %q, want exceeded", status.Usage.State)
	}
	if status.Usage.Remaining.Cents != -5000 {
		t.Fatalf("remaining = %d, want -5000", status.Usage.Remaining.Cents)
	}
}

func TestServer_MilestonesEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "milestones@example.com")

	resp := env.do(t, http.MethodGet, "/api/insights/milestones", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("milestones status = %d, want 200", resp.StatusCode)
	}
	if got := decodeBody[[]struct{}](t, resp); len(got) != 0 {
		t.Fatalf("milestones with no income = %d entries, want 0", len(got))
	}

	// two months of history, current month well above the earlier one
	prev := time.Now().AddDate(0, 0, -35).Format("2006-01-02")
	today := time.Now().Format("2006-01-02")
	for _, req := range []transactionRequest{
		{Kind: "income", Amount: "1000.00", Category: "salary", Date: prev},
		{Kind: "income", Amount: "2000.00", Category: "salary", Date: today},
	} {
		resp := env.do(t, http.MethodPost, "/api/transactions", req)
		resp.Body.Close()
	}

	resp = env.do(t, http.MethodGet, "/api/insights/milestones", nil)
	milestones := decodeBody[[]struct {
		Achieved bool   `json:"achieved"`
		Type     string `json:"type"`
	}](t, resp)
	if len(milestones) == 0 {
		t.Fatal("expected milestones for a record month")
	}
	for _, m := range milestones {
		if !m.Achieved {
			t.Fatalf("unachieved milestone in response: %+v", m)
		}
	}
}

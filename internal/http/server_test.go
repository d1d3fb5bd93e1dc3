package http

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/finance"
	"fintrack/internal/persist/memory"
	"fintrack/internal/session"
)

type staticAuth struct{ ident core.Identity }

func (a staticAuth) Authenticate(ctx context.Context, token string) (core.Identity, error) {
	if token == "" {
		return core.Identity{}, session.ErrAuth
	}
	return a.ident, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	local := memory.New()
	store := finance.NewStore(local, nil)
	if err := store.Start(context.Background()); err != nil {
		t.Fatalf("start store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	auth := staticAuth{ident: core.Identity{UID: "u1", Name: "Test User", Email: "u1@example.com"}}
	factory := func(ctx context.Context, ident core.Identity) (session.RemoteAdapter, error) {
		return memory.NewRemote(), nil
	}
	sessions := session.NewManager(store, local, auth, factory)

	srv := NewServer(":0", store, sessions, nil, nil)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := doJSON(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, rr.Code)
		}
	}
}

func TestExpenseLifecycle(t *testing.T) {
	srv := newTestServer(t)

	// Invalid amount is rejected before anything persists
	rr := doJSON(t, srv, http.MethodPost, "/api/expenses", `{"amount":"abc","label":"Food"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid amount status = %d, want 422", rr.Code)
	}

	// Unknown category is rejected
	rr = doJSON(t, srv, http.MethodPost, "/api/expenses", `{"amount":"12.50","label":"NotACategory"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unknown category status = %d, want 422", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/expenses", `{"amount":"12.50","label":"Food","note":"Lunch"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rr.Code, rr.Body.String())
	}
	var created core.Transaction
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.ID == "" || created.Amount.Cents != 1250 {
		t.Fatalf("created = %+v", created)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/expenses", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), created.ID) {
		t.Fatalf("list status = %d, body %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, srv, http.MethodDelete, "/api/expenses/"+created.ID, "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/expenses", "")
	if strings.Contains(rr.Body.String(), created.ID) {
		t.Fatalf("expense still listed after delete: %s", rr.Body.String())
	}
}

func TestSummaryReflectsRecords(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, srv, http.MethodPost, "/api/income", `{"amount":"5000","label":"Salary"}`)
	doJSON(t, srv, http.MethodPost, "/api/expenses", `{"amount":"1200","label":"Housing"}`)

	rr := doJSON(t, srv, http.MethodGet, "/api/summary", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("summary status = %d", rr.Code)
	}
	var got summaryResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if got.Totals.Net.Cents != 380000 {
		t.Errorf("net = %d, want 380000", got.Totals.Net.Cents)
	}
	if math.Abs(got.Progress-38.0) > 1e-9 {
		t.Errorf("progress = %v, want 38", got.Progress)
	}
}

func TestSeriesWindowValidation(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodGet, "/api/series?window=0", "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("window=0 status = %d, want 400", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/series?window=12", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("series status = %d", rr.Code)
	}
	var buckets []core.MonthBucket
	if err := json.Unmarshal(rr.Body.Bytes(), &buckets); err != nil {
		t.Fatalf("decode series: %v", err)
	}
	if len(buckets) != 12 {
		t.Errorf("series length = %d, want 12", len(buckets))
	}
}

func TestGoalEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPut, "/api/goal", `{"target":"0"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("zero target status = %d, want 422", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodPut, "/api/goal", `{"target":"25000","deadline":"2027-06-30"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("set goal status = %d, body %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/goal", "")
	var goal core.SavingsGoal
	if err := json.Unmarshal(rr.Body.Bytes(), &goal); err != nil {
		t.Fatalf("decode goal: %v", err)
	}
	if goal.Target.Cents != 2500000 {
		t.Errorf("goal target = %d, want 2500000", goal.Target.Cents)
	}
}

func TestCurrencyEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPut, "/api/currency", `{"code":"XXX"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("unknown code status = %d, want 422", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodPut, "/api/currency", `{"code":"EUR"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("set currency status = %d", rr.Code)
	}
	var cur core.Currency
	if err := json.Unmarshal(rr.Body.Bytes(), &cur); err != nil {
		t.Fatalf("decode currency: %v", err)
	}
	if cur.Code != "EUR" || cur.Symbol != "€" {
		t.Errorf("currency = %+v", cur)
	}
}

func TestCatalogueEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodGet, "/api/categories", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Housing") {
		t.Errorf("categories status = %d, body %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/currencies", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "USD") {
		t.Errorf("currencies status = %d, body %s", rr.Code, rr.Body.String())
	}
}

func TestSessionEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodGet, "/api/session", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "unauthenticated") {
		t.Fatalf("initial status = %d, body %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/session/login", `{"token":""}`)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("empty token status = %d, want 401", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/session/login", `{"token":"good"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rr.Code, rr.Body.String())
	}
	var ident core.Identity
	if err := json.Unmarshal(rr.Body.Bytes(), &ident); err != nil {
		t.Fatalf("decode identity: %v", err)
	}
	if ident.UID != "u1" {
		t.Errorf("identity = %+v", ident)
	}

	// Second login conflicts
	rr = doJSON(t, srv, http.MethodPost, "/api/session/login", `{"token":"good"}`)
	if rr.Code != http.StatusConflict {
		t.Errorf("second login status = %d, want 409", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/session", "")
	if !strings.Contains(rr.Body.String(), `"authenticated"`) {
		t.Errorf("status body = %s", rr.Body.String())
	}

	rr = doJSON(t, srv, http.MethodPut, "/api/profile", `{"job":"Engineer"}`)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Engineer") {
		t.Errorf("profile status = %d, body %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/session/logout", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("logout status = %d", rr.Code)
	}
	rr = doJSON(t, srv, http.MethodPost, "/api/session/logout", "")
	if rr.Code != http.StatusConflict {
		t.Errorf("double logout status = %d, want 409", rr.Code)
	}
}

func TestAssistantEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodGet, "/api/assistant/context", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Current Financial Context") {
		t.Errorf("context status = %d, body %s", rr.Code, rr.Body.String())
	}

	// No client configured
	rr = doJSON(t, srv, http.MethodPost, "/api/assistant/chat", `{"question":"how am I doing?"}`)
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("chat status = %d, want 503", rr.Code)
	}
}

func TestUnknownFieldRejected(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/api/expenses", `{"amount":"1.00","label":"Food","bogus":true}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("unknown field status = %d, want 400", rr.Code)
	}
}

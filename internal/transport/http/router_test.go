package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	appsession "miner-tycoon/internal/app/session"
	"miner-tycoon/internal/catalog"
	"miner-tycoon/internal/game"
	"miner-tycoon/internal/store"

	"github.com/go-chi/chi/v5"
)

type noopNotifier struct{}

func (noopNotifier) Emit(string, game.Severity) {}

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()
	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("catalog load: %v", err)
	}
	mem := store.NewMemory()
	svc := appsession.NewService(cat, mem, noopNotifier{}, 1.0, nil, nil)
	if err := svc.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	return NewRouter(svc, mem)
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(t)
	rec := doJSON(t, r, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestSessionSummaryEndpoint(t *testing.T) {
	r := newTestRouter(t)
	rec := doJSON(t, r, http.MethodGet, "/api/session", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var sum appsession.SummaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sum.Username != "CEO" || sum.TokenBalance != 1_000_000 {
		t.Fatalf("summary = %+v", sum)
	}
}

func TestPurchaseAction(t *testing.T) {
	r := newTestRouter(t)
	rec := doJSON(t, r, http.MethodPost, "/api/actions/purchase", map[string]any{
		"category":   "miner",
		"catalog_id": "node_basic",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	var res game.PurchaseResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.ItemUID == "" || res.Entry.ID != "node_basic" {
		t.Fatalf("result = %+v", res)
	}

	sum := doJSON(t, r, http.MethodGet, "/api/session", nil)
	var s appsession.SummaryResponse
	if err := json.Unmarshal(sum.Body.Bytes(), &s); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if s.TokenBalance != 1_000_000-160 {
		t.Fatalf("token balance = %v, want %v", s.TokenBalance, 1_000_000-160)
	}
}

func TestPurchaseUnknownEntry(t *testing.T) {
	r := newTestRouter(t)
	rec := doJSON(t, r, http.MethodPost, "/api/actions/purchase", map[string]any{
		"category":   "miner",
		"catalog_id": "nope",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["error"] != "invalid_state" {
		t.Fatalf("error = %q", body["error"])
	}
}

func TestInvalidJSONBody(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/actions/deposit", bytes.NewBufferString("{nope"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestInstallMissingUIDs(t *testing.T) {
	r := newTestRouter(t)
	rec := doJSON(t, r, http.MethodPost, "/api/actions/install", map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["error"] != "invalid_request" {
		t.Fatalf("error = %q", body["error"])
	}
}

func TestRenameAction(t *testing.T) {
	r := newTestRouter(t)
	rec := doJSON(t, r, http.MethodPost, "/api/actions/rename", map[string]any{"name": "Hashlord"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["username"] != "Hashlord" {
		t.Fatalf("username = %q", body["username"])
	}
}

func TestCatalogEndpoint(t *testing.T) {
	r := newTestRouter(t)
	rec := doJSON(t, r, http.MethodGet, "/api/catalog", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var res appsession.CatalogResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Miners) == 0 || len(res.Boxes) == 0 {
		t.Fatalf("catalog = %+v", res)
	}
	for _, e := range res.Miners {
		if e.Hidden {
			t.Fatalf("hidden entry %s exposed", e.ID)
		}
	}
}

func TestLogEndpointRejectsBadLimit(t *testing.T) {
	r := newTestRouter(t)
	rec := doJSON(t, r, http.MethodGet, "/api/log?limit=zero", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestMapActionError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{appsession.ErrInvalidRequest, http.StatusBadRequest, "invalid_request"},
		{game.ErrInsufficientBalance, http.StatusConflict, "insufficient_balance"},
		{game.ErrNotEmpty, http.StatusConflict, "not_empty"},
		{game.ErrCapacityExceeded, http.StatusConflict, "capacity_exceeded"},
		{game.ErrInvalidState, http.StatusConflict, "invalid_state"},
		{game.ErrDataIntegrity, http.StatusInternalServerError, "data_integrity"},
	}
	for _, c := range cases {
		status, code := MapActionError(c.err)
		if status != c.status || code != c.code {
			t.Errorf("MapActionError(%v) = %d %q, want %d %q", c.err, status, code, c.status, c.code)
		}
	}
}

package service

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/goonhub/goonhub/pkg/ratelimit"
	"github.com/goonhub/goonhub/pkg/solana"
)

func newTokenTestServer(t *testing.T, limit func(http.Handler) http.Handler) http.Handler {
	t.Helper()
	svc, _, _ := newTestService(t, solana.VanityPool{})
	r := chi.NewRouter()
	RegisterRoutes(r, svc, limit, zap.NewNop())
	return r
}

func launch(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/tokens/launch", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestTokenHTTP_NamingRule(t *testing.T) {
	h := newTokenTestServer(t, nil)

	rec := launch(h, `{"name":"MyCoin","symbol":"GOON","supply":1000}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
	var errBody struct {
		Error string `json:"error"`
		Code  int    `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &errBody); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if errBody.Code != http.StatusBadRequest || errBody.Error == "" {
		t.Fatalf("unexpected error body %+v", errBody)
	}

	rec = launch(h, `{"name":"MyCoinGOON","symbol":"GOON","supply":1000}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	var tok struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		MintAddress string `json:"mint_address"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &tok); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if tok.Name != "MyCoinGOON" {
		t.Fatalf("expected name %q, got %q", "MyCoinGOON", tok.Name)
	}
	if !slices.Contains(solana.VanityAddresses(), tok.MintAddress) {
		t.Fatalf("mint address %q is not from the vanity pool", tok.MintAddress)
	}

	getReq := httptest.NewRequest(http.MethodGet, "/api/tokens/"+tok.ID, nil)
	getRec := httptest.NewRecorder()
	h.ServeHTTP(getRec, getReq)
	if getRec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, getRec.Code)
	}
}

func TestTokenHTTP_LaunchIsRateLimited(t *testing.T) {
	limit := ratelimit.Middleware(ratelimit.NewLocal(1, 1), "token_launch", zap.NewNop())
	h := newTokenTestServer(t, limit)

	body := `{"name":"MyCoinGOON","symbol":"GOON","supply":1000}`
	if rec := launch(h, body); rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	rec := launch(h, body)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status %d, got %d", http.StatusTooManyRequests, rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}

	// reads are not limited
	listReq := httptest.NewRequest(http.MethodGet, "/api/tokens", nil)
	listRec := httptest.NewRecorder()
	h.ServeHTTP(listRec, listReq)
	if listRec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, listRec.Code)
	}
}

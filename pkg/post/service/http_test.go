package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func newPostTestServer(f *fixture) http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, f.svc, zap.NewNop())
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPostHTTP_UnlockFlow(t *testing.T) {
	f := newFixture(t, nil)
	f.addPost(t, "p1", 500_000_000)
	h := newPostTestServer(f)

	body := `{"postId":"p1","userPubkey":"w1"}`

	rec := do(t, h, http.MethodPost, "/api/posts/unlock", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	var first map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &first); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if first["success"] != true {
		t.Fatalf("expected success=true, got %v", first["success"])
	}
	if _, ok := first["message"]; ok {
		t.Fatalf("expected no message on first unlock, got %v", first["message"])
	}

	rec = do(t, h, http.MethodPost, "/api/posts/unlock", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var second map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &second); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if second["success"] != true || second["message"] != "Already unlocked" {
		t.Fatalf("expected already unlocked response, got %v", second)
	}

	purchases, err := f.store.ListPurchasesByUser(context.Background(), "w1")
	if err != nil {
		t.Fatalf("failed to list purchases: %v", err)
	}
	if len(purchases) != 1 {
		t.Fatalf("expected exactly 1 purchase, got %d", len(purchases))
	}
}

func TestPostHTTP_UnlockValidation(t *testing.T) {
	f := newFixture(t, nil)
	h := newPostTestServer(f)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"missing user", `{"postId":"p1"}`, http.StatusBadRequest},
		{"missing post id", `{"userPubkey":"w1"}`, http.StatusBadRequest},
		{"unknown post", `{"postId":"nope","userPubkey":"w1"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/posts/unlock", tt.body)
			if rec.Code != tt.code {
				t.Fatalf("expected status %d, got %d", tt.code, rec.Code)
			}
		})
	}
}

func TestPostHTTP_GetEmbedsCreator(t *testing.T) {
	f := newFixture(t, nil)
	f.addPost(t, "p1", 500_000_000)
	h := newPostTestServer(f)

	rec := do(t, h, http.MethodGet, "/api/posts/p1?userId=w1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var got struct {
		ID       string `json:"id"`
		MediaURL string `json:"media_url"`
		Creator  struct {
			Handle string `json:"handle"`
		} `json:"creator"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if got.ID != "p1" || got.Creator.Handle != "sarah_creates" {
		t.Fatalf("unexpected post %+v", got)
	}
	if got.MediaURL != "" {
		t.Fatalf("expected media to be redacted, got %q", got.MediaURL)
	}

	if rec := do(t, h, http.MethodGet, "/api/posts/missing", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestPostHTTP_CreateValidation(t *testing.T) {
	f := newFixture(t, nil)
	h := newPostTestServer(f)

	rec := do(t, h, http.MethodPost, "/api/posts", `{"creatorId":"c1"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}

	rec = do(t, h, http.MethodPost, "/api/posts", `{"creatorId":"c1","mediaUrl":"https://m/1.jpg","tags":["Cosplay"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/api/posts?category=cosplay", "")
	var list []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 post in category, got %d", len(list))
	}
}

func TestPostHTTP_LikeAndView(t *testing.T) {
	f := newFixture(t, nil)
	f.addPost(t, "p1", 0)
	h := newPostTestServer(f)

	rec := do(t, h, http.MethodPost, "/api/posts/p1/like", `{"userId":"w1"}`)
	var liked LikeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &liked); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if liked.Likes != 1 {
		t.Fatalf("expected 1 like, got %d", liked.Likes)
	}

	rec = do(t, h, http.MethodDelete, "/api/posts/p1/like?userId=w1", "")
	var unliked LikeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &unliked); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if unliked.Likes != 0 || !unliked.Changed {
		t.Fatalf("unexpected unlike response %+v", unliked)
	}

	rec = do(t, h, http.MethodPost, "/api/posts/p1/view", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}

func TestPostHTTP_UpdateKeepsPricedMediaHidden(t *testing.T) {
	f := newFixture(t, nil)
	f.addPost(t, "p1", 500_000_000)
	h := newPostTestServer(f)

	if rec := do(t, h, http.MethodPatch, "/api/posts/p1", `{}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d without creatorId, got %d: %s", http.StatusBadRequest, rec.Code, rec.Body.String())
	}
	if rec := do(t, h, http.MethodPatch, "/api/posts/p1", `{"creatorId":"stranger"}`); rec.Code != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d: %s", http.StatusForbidden, rec.Code, rec.Body.String())
	}

	rec := do(t, h, http.MethodPatch, "/api/posts/p1", `{"creatorId":"c1","caption":"edited"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if got["caption"] != "edited" {
		t.Fatalf("expected caption to be updated, got %v", got["caption"])
	}
	if url, _ := got["media_url"].(string); url != "" {
		t.Fatalf("expected media_url to be hidden, got %q", url)
	}
}

package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/goonhub/goonhub/pkg/activity"
	apperrors "github.com/goonhub/goonhub/pkg/app/errors"
	"github.com/goonhub/goonhub/pkg/events"
	"github.com/goonhub/goonhub/pkg/solana"
	"github.com/goonhub/goonhub/pkg/store/memory"
	"github.com/goonhub/goonhub/pkg/user"
)

// newTestService wires the tip service to a real dispatcher and notifier so
// the tests see the activity records a tip produces.
func newTestService(t *testing.T) (Service, *memory.Store) {
	t.Helper()
	s := memory.New()
	for id, handle := range map[string]string{"alice": "alice", "creator": "sarah_creates"} {
		u, err := user.New(id, handle)
		require.NoError(t, err)
		_, err = s.CreateUser(context.Background(), u)
		require.NoError(t, err)
	}

	bus := events.NewDispatcher(zap.NewNop(), activity.NewNotifier(s, 0, zap.NewNop()))
	return NewService(s, solana.NewUnverifiedPayments(zap.NewNop()), bus, zap.NewNop()), s
}

func TestSend(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()

	tp, err := svc.Send(ctx, &SendRequest{FromUser: "alice", ToUser: "creator", AmountSOL: "0.5", Message: "love it"})
	require.NoError(t, err)
	assert.Equal(t, int64(500_000_000), tp.AmountLamports)

	_, err = svc.Send(ctx, &SendRequest{FromUser: "alice", ToUser: "creator", AmountLamports: 250_000_000})
	require.NoError(t, err)

	got, err := svc.Received(ctx, "creator")
	require.NoError(t, err)
	assert.Len(t, got.Tips, 2)
	assert.Equal(t, int64(750_000_000), got.TotalLamports)
	assert.Equal(t, "0.75", got.TotalSOL)

	feed, err := s.ListActivities(ctx, "creator", 0)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, activity.TypeTipReceived, feed[0].Type)

	// the sender is not notified about its own tips
	feed, err = s.ListActivities(ctx, "alice", 0)
	require.NoError(t, err)
	assert.Empty(t, feed)
}

func TestSend_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  SendRequest
		cat  apperrors.Category
	}{
		{"zero amount", SendRequest{FromUser: "alice", ToUser: "creator"}, apperrors.CategoryDataError},
		{"self tip", SendRequest{FromUser: "alice", ToUser: "alice", AmountLamports: 1}, apperrors.CategoryDataError},
		{"bad sol amount", SendRequest{FromUser: "alice", ToUser: "creator", AmountSOL: "lots"}, apperrors.CategoryDataError},
		{"unknown recipient", SendRequest{FromUser: "alice", ToUser: "ghost", AmountLamports: 1}, apperrors.CategoryResourceNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Send(ctx, &tt.req)
			assert.True(t, apperrors.Is(err, tt.cat), "got %v", err)
		})
	}
}

func TestTipHTTP(t *testing.T) {
	svc, _ := newTestService(t)
	r := chi.NewRouter()
	RegisterRoutes(r, svc, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/tips/send",
		bytes.NewBufferString(`{"fromUser":"alice","toUser":"creator","amountLamports":1000,"txnSig":"sig"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/api/tips/send", bytes.NewBufferString(`{"toUser":"creator"}`))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/tips/received/creator", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	var got Received
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if got.TotalLamports != 1000 || len(got.Tips) != 1 {
		t.Fatalf("unexpected received summary %+v", got)
	}
}

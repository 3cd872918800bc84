package ratelimit_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/goonhub/goonhub/pkg/ratelimit"
	"github.com/goonhub/goonhub/pkg/ratelimit/mocks"
)

func serve(h http.Handler, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/tokens/launch", nil)
	req.RemoteAddr = remote
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware_KeysByRouteAndIP(t *testing.T) {
	limiter := mocks.NewLimiter(t)
	limiter.EXPECT().Allow(mock.Anything, "token_launch:10.0.0.7").
		Return(ratelimit.Decision{Allowed: false, RetryAfter: 1500 * time.Millisecond}, nil).Once()

	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("rejected request reached the handler")
	})
	rec := serve(ratelimit.Middleware(limiter, "token_launch", zap.NewNop())(next), "10.0.0.7:4000")

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
}

func TestMiddleware_FailsOpen(t *testing.T) {
	limiter := mocks.NewLimiter(t)
	limiter.EXPECT().Allow(mock.Anything, mock.Anything).Return(ratelimit.Decision{}, errors.New("backend down")).Once()

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	rec := serve(ratelimit.Middleware(limiter, "token_launch", zap.NewNop())(next), "10.0.0.8:4000")

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/goonhub/goonhub/pkg/app/errors"
	"github.com/goonhub/goonhub/pkg/solana"
)

const (
	testAddress   = "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"
	testSignature = "2ERmFbFakjobyyTc4yMu7X9CkTymSC82H6B4urRqv6JShdWLugHCxLJ5vrHxj3FSPzj5CHL8Jv4H8vsjKLgqYmFT"
)

// fakeChain validates inputs like the real client and serves canned results.
type fakeChain struct {
	lamports int64
	found    bool
	err      error
}

func (f *fakeChain) GetBalance(_ context.Context, address string) (*solana.Balance, error) {
	if err := solana.ValidateAddress(address); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return &solana.Balance{Address: address, Lamports: f.lamports, SOL: solana.FormatSOL(f.lamports), Slot: 99}, nil
}

func (f *fakeChain) GetTransaction(_ context.Context, signature string) (*solana.TransactionStatus, error) {
	if err := solana.ValidateSignature(signature); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return &solana.TransactionStatus{Signature: signature, Found: f.found, Success: f.found}, nil
}

func TestBalance(t *testing.T) {
	svc := NewService(&fakeChain{lamports: 1_250_000_000}, zap.NewNop())

	b, err := svc.Balance(context.Background(), testAddress)
	require.NoError(t, err)
	assert.Equal(t, int64(1_250_000_000), b.Lamports)
	assert.Equal(t, "1.25", b.SOL)

	_, err = svc.Balance(context.Background(), "not-an-address")
	assert.True(t, apperrors.Is(err, apperrors.CategoryDataError), "got %v", err)
}

func TestRPCFailureIsDependencyError(t *testing.T) {
	svc := NewService(&fakeChain{err: fmt.Errorf("solana getBalance failed: %w", errors.New("connection refused"))}, zap.NewNop())

	_, err := svc.Balance(context.Background(), testAddress)
	assert.True(t, apperrors.Is(err, apperrors.CategoryDependencyFailure), "got %v", err)

	_, err = svc.Transaction(context.Background(), testSignature)
	assert.True(t, apperrors.Is(err, apperrors.CategoryDependencyFailure), "got %v", err)
}

func TestWalletHTTP(t *testing.T) {
	r := chi.NewRouter()
	RegisterRoutes(r, NewService(&fakeChain{lamports: 5000, found: true}, zap.NewNop()), zap.NewNop())

	get := func(target string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		return rec
	}

	rec := get("/api/wallets/" + testAddress + "/balance")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var b solana.Balance
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
	assert.Equal(t, "0.000005", b.SOL)

	rec = get("/api/wallets/bogus/balance")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get("/api/transactions/" + testSignature)
	require.Equal(t, http.StatusOK, rec.Code)
	var status solana.TransactionStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.Found)

	rec = get("/api/transactions/short")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

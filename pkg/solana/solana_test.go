package solana

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/goonhub/goonhub/pkg/config"
)

const (
	testAddress   = "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"
	testSignature = "2ERmFbFakjobyyTc4yMu7X9CkTymSC82H6B4urRqv6JShdWLugHCxLJ5vrHxj3FSPzj5CHL8Jv4H8vsjKLgqYmFT"
)

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

// newRPCServer answers JSON-RPC calls with the result returned by respond.
func newRPCServer(t *testing.T, respond func(req rpcRequest) (any, *rpcError)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode rpc request: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		result, rpcErr := respond(req)
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := NewClient(context.Background(), &config.SolanaConfig{
		RPCURL:         url,
		Commitment:     "confirmed",
		RequestTimeout: 5 * time.Second,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestClient_GetBalance(t *testing.T) {
	srv := newRPCServer(t, func(req rpcRequest) (any, *rpcError) {
		assert.Equal(t, "getBalance", req.Method)
		if assert.Len(t, req.Params, 2) {
			assert.JSONEq(t, `"`+testAddress+`"`, string(req.Params[0]))
			assert.JSONEq(t, `{"commitment":"confirmed"}`, string(req.Params[1]))
		}
		return map[string]any{
			"context": map[string]any{"slot": 1234},
			"value":   2_500_000_000,
		}, nil
	})
	c := newTestClient(t, srv.URL)

	bal, err := c.GetBalance(context.Background(), testAddress)
	require.NoError(t, err)
	assert.Equal(t, int64(2_500_000_000), bal.Lamports)
	assert.Equal(t, "2.5", bal.SOL)
	assert.Equal(t, uint64(1234), bal.Slot)
}

func TestClient_GetBalanceRejectsBadAddress(t *testing.T) {
	srv := newRPCServer(t, func(rpcRequest) (any, *rpcError) {
		t.Error("rpc must not be called for an invalid address")
		return nil, nil
	})
	c := newTestClient(t, srv.URL)

	_, err := c.GetBalance(context.Background(), "not-base58-0OIl")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidAddress))
}

func TestClient_GetTransaction(t *testing.T) {
	tests := []struct {
		name   string
		result any
		check  func(t *testing.T, s *TransactionStatus)
	}{
		{
			name:   "unknown signature",
			result: nil,
			check: func(t *testing.T, s *TransactionStatus) {
				assert.False(t, s.Found)
				assert.False(t, s.Success)
			},
		},
		{
			name: "successful transaction",
			result: map[string]any{
				"slot":      99,
				"blockTime": 1700000000,
				"meta":      map[string]any{"err": nil, "fee": 5000},
			},
			check: func(t *testing.T, s *TransactionStatus) {
				assert.True(t, s.Found)
				assert.True(t, s.Success)
				assert.Equal(t, uint64(99), s.Slot)
				assert.Equal(t, int64(5000), s.FeeLamports)
				require.NotNil(t, s.BlockTime)
				assert.Equal(t, int64(1700000000), s.BlockTime.Unix())
			},
		},
		{
			name: "failed transaction",
			result: map[string]any{
				"slot": 100,
				"meta": map[string]any{"err": map[string]any{"InstructionError": []any{0, "Custom"}}, "fee": 5000},
			},
			check: func(t *testing.T, s *TransactionStatus) {
				assert.True(t, s.Found)
				assert.False(t, s.Success)
				assert.NotNil(t, s.Error)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newRPCServer(t, func(req rpcRequest) (any, *rpcError) {
				assert.Equal(t, "getTransaction", req.Method)
				return tt.result, nil
			})
			c := newTestClient(t, srv.URL)

			status, err := c.GetTransaction(context.Background(), testSignature)
			require.NoError(t, err)
			assert.Equal(t, testSignature, status.Signature)
			tt.check(t, status)
		})
	}
}

func TestClient_RPCError(t *testing.T) {
	srv := newRPCServer(t, func(rpcRequest) (any, *rpcError) {
		return nil, &rpcError{Code: -32602, Message: "Invalid param"}
	})
	c := newTestClient(t, srv.URL)

	_, err := c.GetBalance(context.Background(), testAddress)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid param")
}

func TestValidateAddress(t *testing.T) {
	require.NoError(t, ValidateAddress(testAddress))
	for _, addr := range VanityAddresses() {
		require.NoError(t, ValidateAddress(addr), addr)
	}

	for _, bad := range []string{"", "abc", "0x1234", testSignature} {
		assert.ErrorIs(t, ValidateAddress(bad), ErrInvalidAddress, bad)
	}
}

func TestValidateSignature(t *testing.T) {
	require.NoError(t, ValidateSignature(testSignature))
	assert.ErrorIs(t, ValidateSignature(testAddress), ErrInvalidSignature)
	assert.ErrorIs(t, ValidateSignature(""), ErrInvalidSignature)
}

func TestLamports(t *testing.T) {
	assert.Equal(t, "1", FormatSOL(LamportsPerSOL))
	assert.Equal(t, "0.000000001", FormatSOL(1))
	assert.Equal(t, "0", FormatSOL(0))

	lamports, err := ParseSOL("0.25")
	require.NoError(t, err)
	assert.Equal(t, int64(250_000_000), lamports)

	for _, bad := range []string{"abc", "0.0000000001", "-1"} {
		_, err := ParseSOL(bad)
		assert.Error(t, err, bad)
	}
}

func TestVanityPool(t *testing.T) {
	pool := VanityPool{}
	seen := map[string]bool{}
	for range 200 {
		mint := pool.NextMint()
		assert.True(t, strings.HasSuffix(mint, VanitySuffix), mint)
		seen[mint] = true
	}
	assert.Greater(t, len(seen), 1)
	for mint := range seen {
		assert.Contains(t, VanityAddresses(), mint)
	}
}

func TestUnverifiedPayments_AcceptsAll(t *testing.T) {
	v := NewUnverifiedPayments(zap.NewNop())
	require.NoError(t, v.VerifyPayment(context.Background(), Payment{Purpose: "unlock", AmountLamports: 1}))
	require.NoError(t, v.VerifyPayment(context.Background(), Payment{}))
}

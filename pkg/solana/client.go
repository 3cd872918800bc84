// Package solana talks to a Solana JSON-RPC node and holds the small amount
// of chain logic the API needs.
package solana

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"

	"github.com/goonhub/goonhub/internal/metrics"
	"github.com/goonhub/goonhub/pkg/config"
)

// Balance is an account balance at a slot.
type Balance struct {
	Address  string `json:"address"`
	Lamports int64  `json:"lamports"`
	SOL      string `json:"sol"`
	Slot     uint64 `json:"slot"`
}

// TransactionStatus summarises a getTransaction lookup.
type TransactionStatus struct {
	Signature   string     `json:"signature"`
	Found       bool       `json:"found"`
	Success     bool       `json:"success"`
	Slot        uint64     `json:"slot,omitempty"`
	BlockTime   *time.Time `json:"block_time,omitempty"`
	FeeLamports int64      `json:"fee_lamports,omitempty"`
	Error       any        `json:"error,omitempty"`
}

type balanceResult struct {
	Context struct {
		Slot uint64 `json:"slot"`
	} `json:"context"`
	Value int64 `json:"value"`
}

type transactionResult struct {
	Slot      uint64 `json:"slot"`
	BlockTime *int64 `json:"blockTime"`
	Meta      *struct {
		Err any   `json:"err"`
		Fee int64 `json:"fee"`
	} `json:"meta"`
}

// Client is a Solana JSON-RPC client.
type Client struct {
	rpc        *rpc.Client
	commitment string
	timeout    time.Duration
	logger     *zap.Logger
}

// NewClient dials the configured RPC endpoint. HTTP endpoints are not
// contacted until the first call.
func NewClient(ctx context.Context, cfg *config.SolanaConfig, logger *zap.Logger) (*Client, error) {
	c, err := rpc.DialOptions(ctx, cfg.RPCURL, rpc.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}))
	if err != nil {
		return nil, fmt.Errorf("failed to dial solana rpc %s: %w", cfg.RPCURL, err)
	}
	logger.Info("Solana RPC client configured",
		zap.String("rpc_url", cfg.RPCURL),
		zap.String("commitment", cfg.Commitment),
	)
	return &Client{
		rpc:        c,
		commitment: cfg.Commitment,
		timeout:    cfg.RequestTimeout,
		logger:     logger,
	}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() {
	c.rpc.Close()
}

func (c *Client) call(ctx context.Context, result any, method string, args ...any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	err := c.rpc.CallContext(ctx, result, method, args...)
	metrics.SolanaRPCRequests.WithLabelValues(method, metrics.Status(err)).Inc()
	if err != nil {
		return fmt.Errorf("solana %s failed: %w", method, err)
	}
	return nil
}

// GetBalance returns the lamport balance of address.
func (c *Client) GetBalance(ctx context.Context, address string) (*Balance, error) {
	if err := ValidateAddress(address); err != nil {
		return nil, err
	}
	var res balanceResult
	if err := c.call(ctx, &res, "getBalance", address, map[string]string{"commitment": c.commitment}); err != nil {
		return nil, err
	}
	return &Balance{
		Address:  address,
		Lamports: res.Value,
		SOL:      FormatSOL(res.Value),
		Slot:     res.Context.Slot,
	}, nil
}

// GetTransaction looks up a transaction by signature. An unknown signature
// yields Found=false rather than an error.
func (c *Client) GetTransaction(ctx context.Context, signature string) (*TransactionStatus, error) {
	if err := ValidateSignature(signature); err != nil {
		return nil, err
	}
	var res *transactionResult
	opts := map[string]any{
		"commitment":                     c.commitment,
		"encoding":                       "json",
		"maxSupportedTransactionVersion": 0,
	}
	if err := c.call(ctx, &res, "getTransaction", signature, opts); err != nil {
		return nil, err
	}

	status := &TransactionStatus{Signature: signature}
	if res == nil {
		return status, nil
	}
	status.Found = true
	status.Slot = res.Slot
	if res.BlockTime != nil {
		t := time.Unix(*res.BlockTime, 0).UTC()
		status.BlockTime = &t
	}
	if res.Meta != nil {
		status.FeeLamports = res.Meta.Fee
		status.Error = res.Meta.Err
		status.Success = res.Meta.Err == nil
	}
	return status, nil
}

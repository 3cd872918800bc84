package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	apperrors "github.com/goonhub/goonhub/pkg/app/errors"
	"github.com/goonhub/goonhub/pkg/solana"
)

// Chain is the subset of the Solana RPC client used for wallet lookups.
type Chain interface {
	GetBalance(ctx context.Context, address string) (*solana.Balance, error)
	GetTransaction(ctx context.Context, signature string) (*solana.TransactionStatus, error)
}

// Service defines read-only wallet lookups against the chain
type Service interface {
	Balance(ctx context.Context, address string) (*solana.Balance, error)
	Transaction(ctx context.Context, signature string) (*solana.TransactionStatus, error)
}

type walletService struct {
	chain  Chain
	logger *zap.Logger
}

// NewService creates a new wallet service
func NewService(chain Chain, logger *zap.Logger) Service {
	return &walletService{
		chain:  chain,
		logger: logger,
	}
}

func (s *walletService) Balance(ctx context.Context, address string) (*solana.Balance, error) {
	b, err := s.chain.GetBalance(ctx, address)
	if err != nil {
		return nil, mapChainErr(err)
	}
	return b, nil
}

func (s *walletService) Transaction(ctx context.Context, signature string) (*solana.TransactionStatus, error) {
	status, err := s.chain.GetTransaction(ctx, signature)
	if err != nil {
		return nil, mapChainErr(err)
	}
	if !status.Found {
		s.logger.Debug("transaction not found", zap.String("signature", signature))
	}
	return status, nil
}

func mapChainErr(err error) error {
	switch {
	case errors.Is(err, solana.ErrInvalidAddress), errors.Is(err, solana.ErrInvalidSignature):
		return apperrors.BadRequestError(err, err.Error())
	default:
		return apperrors.DependencyError(err, "solana rpc request failed")
	}
}

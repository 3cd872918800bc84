package solana

import (
	"context"

	"go.uber.org/zap"
)

// Payment describes a transfer a caller claims to have made.
type Payment struct {
	Signature      string
	Payer          string
	Recipient      string
	AmountLamports int64
	Purpose        string
}

// PaymentVerifier confirms that a claimed payment landed on chain.
type PaymentVerifier interface {
	VerifyPayment(ctx context.Context, p Payment) error
}

// UnverifiedPayments accepts every payment without checking the chain and
// logs a warning each time. It is a placeholder until on-chain verification
// is built.
type UnverifiedPayments struct {
	logger *zap.Logger
}

// NewUnverifiedPayments creates the placeholder verifier.
func NewUnverifiedPayments(logger *zap.Logger) *UnverifiedPayments {
	return &UnverifiedPayments{logger: logger}
}

func (v *UnverifiedPayments) VerifyPayment(_ context.Context, p Payment) error {
	v.logger.Warn("payment verification not implemented, accepting payment",
		zap.String("purpose", p.Purpose),
		zap.String("payer", p.Payer),
		zap.String("recipient", p.Recipient),
		zap.Int64("amount_lamports", p.AmountLamports),
		zap.Bool("has_signature", p.Signature != ""),
	)
	return nil
}

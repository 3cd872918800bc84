package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/goonhub/goonhub/internal/metrics"
	apperrors "github.com/goonhub/goonhub/pkg/app/errors"
	"github.com/goonhub/goonhub/pkg/events"
	"github.com/goonhub/goonhub/pkg/solana"
	"github.com/goonhub/goonhub/pkg/store"
	"github.com/goonhub/goonhub/pkg/tip"
	"github.com/goonhub/goonhub/pkg/user"
)

// Store is the narrow data-access interface for the tip service.
type Store interface {
	GetUser(ctx context.Context, id string) (*user.User, error)
	CreateTip(ctx context.Context, t *tip.Tip) (*tip.Tip, error)
	ListTipsReceived(ctx context.Context, userID string) ([]*tip.Tip, error)
	SumTipsReceived(ctx context.Context, userID string) (int64, error)
}

// SendRequest is the body of POST /api/tips/send. The amount is given either
// in lamports or as a decimal SOL string.
type SendRequest struct {
	FromUser       string `json:"fromUser" validate:"required"`
	ToUser         string `json:"toUser" validate:"required"`
	AmountLamports int64  `json:"amountLamports" validate:"gte=0"`
	AmountSOL      string `json:"amountSol"`
	Message        string `json:"message"`
	TxnSig         string `json:"txnSig"`
}

// Received lists tips received by a user with their total.
type Received struct {
	Tips          []*tip.Tip `json:"tips"`
	TotalLamports int64      `json:"total_lamports"`
	TotalSOL      string     `json:"total_sol"`
}

// Service defines the tipping business logic
type Service interface {
	Send(ctx context.Context, req *SendRequest) (*tip.Tip, error)
	Received(ctx context.Context, userID string) (*Received, error)
}

type tipService struct {
	store    Store
	verifier solana.PaymentVerifier
	bus      events.Bus
	logger   *zap.Logger
}

// NewService creates a new tip service
func NewService(store Store, verifier solana.PaymentVerifier, bus events.Bus, logger *zap.Logger) Service {
	return &tipService{
		store:    store,
		verifier: verifier,
		bus:      bus,
		logger:   logger,
	}
}

func (s *tipService) Send(ctx context.Context, req *SendRequest) (*tip.Tip, error) {
	amount := req.AmountLamports
	if amount == 0 && req.AmountSOL != "" {
		parsed, err := solana.ParseSOL(req.AmountSOL)
		if err != nil {
			return nil, apperrors.BadRequestError(err, err.Error())
		}
		amount = parsed
	}

	t, err := tip.New(req.FromUser, req.ToUser, amount, req.Message, req.TxnSig)
	if err != nil {
		return nil, apperrors.BadRequestError(err, err.Error())
	}

	if _, err := s.store.GetUser(ctx, req.ToUser); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.ResourceNotFoundError(err, "recipient not found")
		}
		return nil, fmt.Errorf("failed to get recipient: %w", err)
	}

	err = s.verifier.VerifyPayment(ctx, solana.Payment{
		Signature:      req.TxnSig,
		Payer:          req.FromUser,
		Recipient:      req.ToUser,
		AmountLamports: amount,
		Purpose:        "tip",
	})
	if err != nil {
		return nil, apperrors.BadRequestError(err, "payment could not be verified")
	}

	created, err := s.store.CreateTip(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("failed to record tip: %w", err)
	}
	metrics.TipsLamports.Observe(float64(created.AmountLamports))

	s.logger.Info("tip sent",
		zap.String("tip_id", created.ID),
		zap.String("from_user", created.FromUser),
		zap.String("to_user", created.ToUser),
		zap.String("amount_sol", solana.FormatSOL(created.AmountLamports)),
	)

	e := events.New(events.TipSent, created.FromUser).With(events.KeyAmountLamports, created.AmountLamports)
	e.TargetUserID = created.ToUser
	if sender, err := s.store.GetUser(ctx, created.FromUser); err == nil {
		e.With(events.KeyActorHandle, sender.Handle)
	}
	s.bus.Publish(ctx, e)

	return created, nil
}

func (s *tipService) Received(ctx context.Context, userID string) (*Received, error) {
	tips, err := s.store.ListTipsReceived(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tips: %w", err)
	}
	total, err := s.store.SumTipsReceived(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum tips: %w", err)
	}
	return &Received{
		Tips:          tips,
		TotalLamports: total,
		TotalSOL:      solana.FormatSOL(total),
	}, nil
}

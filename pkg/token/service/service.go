package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	apperrors "github.com/goonhub/goonhub/pkg/app/errors"
	"github.com/goonhub/goonhub/pkg/events"
	"github.com/goonhub/goonhub/pkg/solana"
	"github.com/goonhub/goonhub/pkg/store"
	"github.com/goonhub/goonhub/pkg/token"
	"github.com/goonhub/goonhub/pkg/user"
)

// Store is the narrow data-access interface for the token service.
type Store interface {
	GetUser(ctx context.Context, id string) (*user.User, error)
	GetUserByHandle(ctx context.Context, handle string) (*user.User, error)
	CreateToken(ctx context.Context, t *token.Token) (*token.Token, error)
	GetToken(ctx context.Context, id string) (*token.Token, error)
	ListTokens(ctx context.Context, creatorID string) ([]*token.Token, error)
}

// LaunchRequest is the body of POST /api/tokens/launch. A missing creator id
// launches the token as token.AnonymousCreator.
type LaunchRequest struct {
	CreatorID string `json:"creatorId"`
	Name      string `json:"name" validate:"required"`
	Symbol    string `json:"symbol" validate:"required"`
	Supply    int64  `json:"supply"`
	ImageURL  string `json:"imageUrl"`
}

// Service defines the token launch business logic
type Service interface {
	Launch(ctx context.Context, req *LaunchRequest) (*token.Token, error)
	ListTokens(ctx context.Context, creator string) ([]*token.Token, error)
	GetToken(ctx context.Context, id string) (*token.Token, error)
}

type tokenService struct {
	store  Store
	mints  solana.MintSource
	bus    events.Bus
	logger *zap.Logger
}

// NewService creates a new token service
func NewService(store Store, mints solana.MintSource, bus events.Bus, logger *zap.Logger) Service {
	return &tokenService{
		store:  store,
		mints:  mints,
		bus:    bus,
		logger: logger,
	}
}

// Launch validates the GOON naming rules and records the token with a mint
// address drawn from the vanity pool.
func (s *tokenService) Launch(ctx context.Context, req *LaunchRequest) (*token.Token, error) {
	creatorID := req.CreatorID
	handle := ""
	if creatorID == "" {
		creatorID = token.AnonymousCreator
	} else {
		creator, err := s.store.GetUser(ctx, creatorID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.ResourceNotFoundError(err, "creator not found")
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get creator: %w", err)
		}
		handle = creator.Handle
	}

	t, err := token.New(token.Params{
		CreatorID:   creatorID,
		MintAddress: s.mints.NextMint(),
		Name:        req.Name,
		Symbol:      req.Symbol,
		Supply:      req.Supply,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return nil, apperrors.BadRequestError(err, err.Error())
	}

	created, err := s.store.CreateToken(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("failed to create token: %w", err)
	}

	s.logger.Info("token launched",
		zap.String("token_id", created.ID),
		zap.String("creator_id", created.CreatorID),
		zap.String("name", created.Name),
		zap.String("mint_address", created.MintAddress),
	)

	e := events.New(events.TokenLaunched, created.CreatorID).
		With(events.KeyTokenID, created.ID).
		With(events.KeyTokenName, created.Name).
		With(events.KeyMintAddress, created.MintAddress)
	if handle != "" {
		e.With(events.KeyActorHandle, handle)
	}
	s.bus.Publish(ctx, e)

	return created, nil
}

// ListTokens lists all tokens, or one creator's when creator (handle or id)
// is set.
func (s *tokenService) ListTokens(ctx context.Context, creator string) ([]*token.Token, error) {
	creatorID := ""
	if creator != "" {
		u, err := s.store.GetUserByHandle(ctx, user.NormalizeHandle(creator))
		switch {
		case err == nil:
			creatorID = u.ID
		case errors.Is(err, store.ErrNotFound):
			creatorID = creator
		default:
			return nil, fmt.Errorf("failed to resolve creator: %w", err)
		}
	}

	tokens, err := s.store.ListTokens(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}
	return tokens, nil
}

func (s *tokenService) GetToken(ctx context.Context, id string) (*token.Token, error) {
	t, err := s.store.GetToken(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.ResourceNotFoundError(err, "token not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	return t, nil
}

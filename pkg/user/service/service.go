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
	"github.com/goonhub/goonhub/pkg/user"
)

// Store is the narrow data-access interface for the user service.
type Store interface {
	GetUser(ctx context.Context, id string) (*user.User, error)
	CreateUser(ctx context.Context, u *user.User) (*user.User, error)
	UpdateUser(ctx context.Context, id string, patch user.Patch) (*user.User, error)
	FollowUser(ctx context.Context, followerID, followingID string) (*user.Follow, bool, error)
	UnfollowUser(ctx context.Context, followerID, followingID string) (bool, error)
	IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)
	GetFollowerCount(ctx context.Context, userID string) (int, error)
	GetFollowingCount(ctx context.Context, userID string) (int, error)
}

// CreateUserRequest is the body of POST /api/users.
type CreateUserRequest struct {
	ID            string `json:"id"`
	Handle        string `json:"handle" validate:"required"`
	AvatarURL     string `json:"avatarUrl"`
	Bio           string `json:"bio"`
	IsCreator     bool   `json:"isCreator"`
	AgeVerified   bool   `json:"ageVerified"`
	SolanaAddress string `json:"solanaAddress"`
}

// Profile is a user with social graph counters.
type Profile struct {
	*user.User
	FollowerCount  int `json:"follower_count"`
	FollowingCount int `json:"following_count"`
}

// Service defines the user and follow business logic
type Service interface {
	CreateUser(ctx context.Context, req *CreateUserRequest) (*user.User, error)
	GetProfile(ctx context.Context, id string) (*Profile, error)
	UpdateUser(ctx context.Context, id string, patch user.Patch) (*user.User, error)
	Follow(ctx context.Context, followerID, followingID string) (*user.Follow, error)
	Unfollow(ctx context.Context, followerID, followingID string) (bool, error)
	IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)
}

type userService struct {
	store  Store
	bus    events.Bus
	logger *zap.Logger
}

// NewService creates a new user service
func NewService(store Store, bus events.Bus, logger *zap.Logger) Service {
	return &userService{
		store:  store,
		bus:    bus,
		logger: logger,
	}
}

// CreateUser registers a user. When the id is already known the stored user
// is returned unchanged, so wallets can call it on every connect.
func (s *userService) CreateUser(ctx context.Context, req *CreateUserRequest) (*user.User, error) {
	if req.ID != "" {
		existing, err := s.store.GetUser(ctx, req.ID)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up user %s: %w", req.ID, err)
		}
	}

	if req.SolanaAddress != "" {
		if err := solana.ValidateAddress(req.SolanaAddress); err != nil {
			return nil, apperrors.BadRequestError(err, err.Error())
		}
	}

	u, err := user.New(req.ID, req.Handle)
	if err != nil {
		return nil, apperrors.BadRequestError(err, err.Error())
	}
	u.AvatarURL = req.AvatarURL
	u.Bio = req.Bio
	u.IsCreator = req.IsCreator
	u.AgeVerified = req.AgeVerified
	u.SolanaAddress = req.SolanaAddress

	created, err := s.store.CreateUser(ctx, u)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, apperrors.ConflictError(err, "handle already taken")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user created", zap.String("user_id", created.ID), zap.String("handle", created.Handle))
	return created, nil
}

func (s *userService) GetProfile(ctx context.Context, id string) (*Profile, error) {
	u, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	followers, err := s.store.GetFollowerCount(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count followers: %w", err)
	}
	following, err := s.store.GetFollowingCount(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count following: %w", err)
	}

	return &Profile{User: u, FollowerCount: followers, FollowingCount: following}, nil
}

func (s *userService) UpdateUser(ctx context.Context, id string, patch user.Patch) (*user.User, error) {
	if patch.SolanaAddress != nil && *patch.SolanaAddress != "" {
		if err := solana.ValidateAddress(*patch.SolanaAddress); err != nil {
			return nil, apperrors.BadRequestError(err, err.Error())
		}
	}

	u, err := s.store.UpdateUser(ctx, id, patch)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, apperrors.ResourceNotFoundError(err, "user not found")
	case errors.Is(err, store.ErrDuplicate):
		return nil, apperrors.ConflictError(err, "handle already taken")
	case errors.Is(err, user.ErrInvalid):
		return nil, apperrors.BadRequestError(err, err.Error())
	case err != nil:
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return u, nil
}

// Follow adds the follower -> following edge. Following twice is a no-op and
// only the first call notifies the followed user.
func (s *userService) Follow(ctx context.Context, followerID, followingID string) (*user.Follow, error) {
	if _, err := user.NewFollow(followerID, followingID); err != nil {
		return nil, apperrors.BadRequestError(err, err.Error())
	}
	if _, err := s.getUser(ctx, followingID); err != nil {
		return nil, err
	}

	f, created, err := s.store.FollowUser(ctx, followerID, followingID)
	if err != nil {
		return nil, fmt.Errorf("failed to follow user: %w", err)
	}
	if !created {
		return f, nil
	}

	e := events.New(events.UserFollowed, followerID)
	e.TargetUserID = followingID
	if follower, err := s.store.GetUser(ctx, followerID); err == nil {
		e.With(events.KeyActorHandle, follower.Handle)
	}
	s.bus.Publish(ctx, e)

	return f, nil
}

func (s *userService) Unfollow(ctx context.Context, followerID, followingID string) (bool, error) {
	if followerID == "" || followingID == "" {
		return false, apperrors.BadRequestError(nil, "followerId is required")
	}
	removed, err := s.store.UnfollowUser(ctx, followerID, followingID)
	if err != nil {
		return false, fmt.Errorf("failed to unfollow user: %w", err)
	}
	return removed, nil
}

func (s *userService) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	following, err := s.store.IsFollowing(ctx, followerID, followingID)
	if err != nil {
		return false, fmt.Errorf("failed to check follow: %w", err)
	}
	return following, nil
}

func (s *userService) getUser(ctx context.Context, id string) (*user.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.ResourceNotFoundError(err, "user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return u, nil
}

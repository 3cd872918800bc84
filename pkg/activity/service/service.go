package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/goonhub/goonhub/pkg/activity"
	apperrors "github.com/goonhub/goonhub/pkg/app/errors"
	"github.com/goonhub/goonhub/pkg/config"
	"github.com/goonhub/goonhub/pkg/store"
)

// Store is the narrow data-access interface for the activity feed.
type Store interface {
	ListActivities(ctx context.Context, userID string, limit int) ([]*activity.Activity, error)
	CountUnreadActivities(ctx context.Context, userID string) (int, error)
	MarkActivityAsRead(ctx context.Context, id string) (*activity.Activity, error)
}

// Service defines the activity feed operations
type Service interface {
	// List returns the user's feed newest first. A limit of 0 selects the
	// configured default; larger limits are capped at the configured maximum.
	List(ctx context.Context, userID string, limit int) ([]*activity.Activity, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id string) (*activity.Activity, error)
}

type activityService struct {
	store  Store
	cfg    config.ActivityConfig
	logger *zap.Logger
}

// NewService creates a new activity service
func NewService(store Store, cfg config.ActivityConfig, logger *zap.Logger) Service {
	return &activityService{
		store:  store,
		cfg:    cfg,
		logger: logger,
	}
}

func (s *activityService) List(ctx context.Context, userID string, limit int) ([]*activity.Activity, error) {
	switch {
	case limit <= 0:
		limit = s.cfg.DefaultLimit
	case s.cfg.MaxLimit > 0 && limit > s.cfg.MaxLimit:
		limit = s.cfg.MaxLimit
	}

	feed, err := s.store.ListActivities(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	if feed == nil {
		feed = []*activity.Activity{}
	}
	return feed, nil
}

func (s *activityService) UnreadCount(ctx context.Context, userID string) (int, error) {
	n, err := s.store.CountUnreadActivities(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread activities: %w", err)
	}
	return n, nil
}

// MarkRead is idempotent; marking a read activity again succeeds.
func (s *activityService) MarkRead(ctx context.Context, id string) (*activity.Activity, error) {
	a, err := s.store.MarkActivityAsRead(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.ResourceNotFoundError(err, "activity not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to mark activity %s as read: %w", id, err)
	}
	return a, nil
}

package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/goonhub/goonhub/internal/metrics"
	apperrors "github.com/goonhub/goonhub/pkg/app/errors"
	"github.com/goonhub/goonhub/pkg/events"
	"github.com/goonhub/goonhub/pkg/store"
	"github.com/goonhub/goonhub/pkg/stream"
	"github.com/goonhub/goonhub/pkg/user"
)

// Store is the narrow data-access interface for the stream service.
type Store interface {
	GetUser(ctx context.Context, id string) (*user.User, error)
	CreateLiveStream(ctx context.Context, s *stream.LiveStream) (*stream.LiveStream, error)
	GetLiveStream(ctx context.Context, id string) (*stream.LiveStream, error)
	ListLiveStreams(ctx context.Context, status stream.Status) ([]*stream.LiveStream, error)
	EndLiveStream(ctx context.Context, id string) (*stream.LiveStream, bool, error)
	UpdateStreamViewerCount(ctx context.Context, id string, count int) (*stream.LiveStream, error)
}

// CreateRequest is the body of POST /api/streams.
type CreateRequest struct {
	CreatorID   string `json:"creatorId" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}

// Service defines the live stream lifecycle
type Service interface {
	// Create starts a stream. The response is the only place the stream key
	// is returned.
	Create(ctx context.Context, req *CreateRequest) (*stream.LiveStream, error)
	List(ctx context.Context, status stream.Status) ([]*stream.LiveStream, error)
	Get(ctx context.Context, id string) (*stream.LiveStream, error)
	End(ctx context.Context, id string) (*stream.LiveStream, error)
	SetViewers(ctx context.Context, id string, count int) (*stream.LiveStream, error)
}

type streamService struct {
	store  Store
	bus    events.Bus
	logger *zap.Logger
}

// NewService creates a new stream service
func NewService(store Store, bus events.Bus, logger *zap.Logger) Service {
	return &streamService{
		store:  store,
		bus:    bus,
		logger: logger,
	}
}

func (s *streamService) Create(ctx context.Context, req *CreateRequest) (*stream.LiveStream, error) {
	creator, err := s.store.GetUser(ctx, req.CreatorID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.ResourceNotFoundError(err, "creator not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get creator: %w", err)
	}
	if !creator.IsCreator {
		return nil, apperrors.ForbiddenError(nil, "only creators can go live")
	}

	ls, err := stream.New(creator.ID, req.Title, req.Description)
	if err != nil {
		return nil, apperrors.BadRequestError(err, err.Error())
	}
	created, err := s.store.CreateLiveStream(ctx, ls)
	if err != nil {
		return nil, fmt.Errorf("failed to create live stream: %w", err)
	}
	metrics.LiveStreams.Inc()

	s.logger.Info("live stream started",
		zap.String("stream_id", created.ID),
		zap.String("creator_id", created.CreatorID),
	)

	s.bus.Publish(ctx, events.New(events.StreamStarted, creator.ID).
		With(events.KeyStreamID, created.ID).
		With(events.KeyTitle, created.Title).
		With(events.KeyActorHandle, creator.Handle))

	return created, nil
}

func (s *streamService) List(ctx context.Context, status stream.Status) ([]*stream.LiveStream, error) {
	if status != "" && status != stream.StatusLive && status != stream.StatusEnded {
		return nil, apperrors.BadRequestError(nil, "status must be live or ended")
	}

	list, err := s.store.ListLiveStreams(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list live streams: %w", err)
	}
	out := make([]*stream.LiveStream, 0, len(list))
	for _, ls := range list {
		out = append(out, ls.Public())
	}
	return out, nil
}

func (s *streamService) Get(ctx context.Context, id string) (*stream.LiveStream, error) {
	ls, err := s.store.GetLiveStream(ctx, id)
	if err != nil {
		return nil, mapStreamErr(err, id)
	}
	return ls.Public(), nil
}

// End is idempotent. The live gauge only moves on the live to ended
// transition.
func (s *streamService) End(ctx context.Context, id string) (*stream.LiveStream, error) {
	ended, wasLive, err := s.store.EndLiveStream(ctx, id)
	if err != nil {
		return nil, mapStreamErr(err, id)
	}
	if wasLive {
		metrics.LiveStreams.Dec()
		s.logger.Info("live stream ended",
			zap.String("stream_id", id),
			zap.Int64("duration_seconds", ended.Duration),
			zap.Int("max_viewers", ended.MaxViewers),
		)
	}
	return ended.Public(), nil
}

func (s *streamService) SetViewers(ctx context.Context, id string, count int) (*stream.LiveStream, error) {
	ls, err := s.store.UpdateStreamViewerCount(ctx, id, count)
	if err != nil {
		return nil, mapStreamErr(err, id)
	}
	return ls.Public(), nil
}

func mapStreamErr(err error, id string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperrors.ResourceNotFoundError(err, "live stream not found")
	case errors.Is(err, stream.ErrInvalid):
		return apperrors.BadRequestError(err, err.Error())
	default:
		return fmt.Errorf("live stream %s: %w", id, err)
	}
}

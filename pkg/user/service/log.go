package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/goonhub/goonhub/pkg/user"
)

const serviceName = "UserService"

// logService wraps Service with automatic logging of all method calls
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the user Service.
// It logs method entry/exit, duration and errors.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{
		svc:    svc,
		logger: logger,
	}
}

// CreateUser wraps the service method with logging
func (ls *logService) CreateUser(ctx context.Context, req *CreateUserRequest) (u *user.User, err error) {
	start := time.Now()

	ls.logger.Info("CreateUser started",
		zap.String("service", serviceName),
		zap.String("method", "CreateUser"),
		zap.String("user_id", req.ID),
		zap.String("handle", req.Handle),
	)

	defer func() {
		duration := time.Since(start)
		if err != nil {
			ls.logger.Error("CreateUser failed",
				zap.String("service", serviceName),
				zap.String("method", "CreateUser"),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
			return
		}
		ls.logger.Info("CreateUser completed",
			zap.String("service", serviceName),
			zap.String("method", "CreateUser"),
			zap.String("user_id", u.ID),
			zap.Duration("duration", duration),
		)
	}()

	return ls.svc.CreateUser(ctx, req)
}

// GetProfile is a read and only logs failures
func (ls *logService) GetProfile(ctx context.Context, id string) (*Profile, error) {
	p, err := ls.svc.GetProfile(ctx, id)
	if err != nil {
		ls.logger.Debug("GetProfile failed",
			zap.String("service", serviceName),
			zap.String("method", "GetProfile"),
			zap.String("user_id", id),
			zap.Error(err),
		)
	}
	return p, err
}

// UpdateUser wraps the service method with logging
func (ls *logService) UpdateUser(ctx context.Context, id string, patch user.Patch) (u *user.User, err error) {
	start := time.Now()

	ls.logger.Info("UpdateUser started",
		zap.String("service", serviceName),
		zap.String("method", "UpdateUser"),
		zap.String("user_id", id),
	)

	defer func() {
		duration := time.Since(start)
		if err != nil {
			ls.logger.Error("UpdateUser failed",
				zap.String("service", serviceName),
				zap.String("method", "UpdateUser"),
				zap.String("user_id", id),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
			return
		}
		ls.logger.Info("UpdateUser completed",
			zap.String("service", serviceName),
			zap.String("method", "UpdateUser"),
			zap.String("user_id", id),
			zap.Duration("duration", duration),
		)
	}()

	return ls.svc.UpdateUser(ctx, id, patch)
}

// Follow wraps the service method with logging
func (ls *logService) Follow(ctx context.Context, followerID, followingID string) (f *user.Follow, err error) {
	start := time.Now()

	defer func() {
		fields := []zap.Field{
			zap.String("service", serviceName),
			zap.String("method", "Follow"),
			zap.String("follower_id", followerID),
			zap.String("following_id", followingID),
			zap.Duration("duration", time.Since(start)),
		}
		if err != nil {
			ls.logger.Error("Follow failed", append(fields, zap.Error(err))...)
			return
		}
		ls.logger.Info("Follow completed", fields...)
	}()

	return ls.svc.Follow(ctx, followerID, followingID)
}

// Unfollow wraps the service method with logging
func (ls *logService) Unfollow(ctx context.Context, followerID, followingID string) (removed bool, err error) {
	start := time.Now()

	defer func() {
		fields := []zap.Field{
			zap.String("service", serviceName),
			zap.String("method", "Unfollow"),
			zap.String("follower_id", followerID),
			zap.String("following_id", followingID),
			zap.Duration("duration", time.Since(start)),
		}
		if err != nil {
			ls.logger.Error("Unfollow failed", append(fields, zap.Error(err))...)
			return
		}
		ls.logger.Info("Unfollow completed", append(fields, zap.Bool("removed", removed))...)
	}()

	return ls.svc.Unfollow(ctx, followerID, followingID)
}

func (ls *logService) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	return ls.svc.IsFollowing(ctx, followerID, followingID)
}

package service

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/goonhub/goonhub/pkg/post"
)

const serviceName = "PostService"

const (
	logCaptionMaxLen     = 50
	signatureDisplaySize = 16
)

// logService wraps Service with automatic logging of write calls
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the post Service.
// Writes are logged with duration and errors; reads pass through.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{
		svc:    svc,
		logger: logger,
	}
}

func (ls *logService) ListPosts(ctx context.Context, req *ListRequest) ([]*View, error) {
	return ls.svc.ListPosts(ctx, req)
}

func (ls *logService) GetPost(ctx context.Context, id, viewerID string) (*View, error) {
	return ls.svc.GetPost(ctx, id, viewerID)
}

// CreatePost wraps the service method with logging
func (ls *logService) CreatePost(ctx context.Context, req *CreateRequest) (p *post.Post, err error) {
	start := time.Now()

	ls.logger.Info("CreatePost started",
		zap.String("service", serviceName),
		zap.String("method", "CreatePost"),
		zap.String("creator_id", req.CreatorID),
		zap.String("caption", truncateString(req.Caption, logCaptionMaxLen)),
		zap.Int64("price_lamports", req.PriceLamports),
	)

	defer func() {
		duration := time.Since(start)
		if err != nil {
			ls.logger.Error("CreatePost failed",
				zap.String("service", serviceName),
				zap.String("method", "CreatePost"),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
			return
		}
		ls.logger.Info("CreatePost completed",
			zap.String("service", serviceName),
			zap.String("method", "CreatePost"),
			zap.String("post_id", p.ID),
			zap.String("status", string(p.Status)),
			zap.Duration("duration", duration),
		)
	}()

	return ls.svc.CreatePost(ctx, req)
}

// UpdatePost wraps the service method with logging
func (ls *logService) UpdatePost(ctx context.Context, id, editorID string, patch post.Patch) (p *post.Post, err error) {
	start := time.Now()

	defer func() {
		duration := time.Since(start)
		if err != nil {
			ls.logger.Error("UpdatePost failed",
				zap.String("service", serviceName),
				zap.String("method", "UpdatePost"),
				zap.String("post_id", id),
				zap.String("editor_id", editorID),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
			return
		}
		ls.logger.Info("UpdatePost completed",
			zap.String("service", serviceName),
			zap.String("method", "UpdatePost"),
			zap.String("post_id", id),
			zap.String("status", string(p.Status)),
			zap.Duration("duration", duration),
		)
	}()

	return ls.svc.UpdatePost(ctx, id, editorID, patch)
}

// Unlock wraps the service method with logging
func (ls *logService) Unlock(ctx context.Context, req *UnlockRequest) (resp *UnlockResponse, err error) {
	start := time.Now()

	ls.logger.Info("Unlock started",
		zap.String("service", serviceName),
		zap.String("method", "Unlock"),
		zap.String("post_id", req.PostID),
		zap.String("user", req.UserPubkey),
		zap.String("txn_sig", redactSignature(req.TxnSig)),
	)

	defer func() {
		duration := time.Since(start)
		if err != nil {
			ls.logger.Error("Unlock failed",
				zap.String("service", serviceName),
				zap.String("method", "Unlock"),
				zap.String("post_id", req.PostID),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
			return
		}
		ls.logger.Info("Unlock completed",
			zap.String("service", serviceName),
			zap.String("method", "Unlock"),
			zap.String("post_id", req.PostID),
			zap.String("message", resp.Message),
			zap.Bool("purchased", resp.Purchase != nil),
			zap.Duration("duration", duration),
		)
	}()

	return ls.svc.Unlock(ctx, req)
}

func (ls *logService) Like(ctx context.Context, postID, userID string) (*LikeResponse, error) {
	return ls.svc.Like(ctx, postID, userID)
}

func (ls *logService) Unlike(ctx context.Context, postID, userID string) (*LikeResponse, error) {
	return ls.svc.Unlike(ctx, postID, userID)
}

func (ls *logService) RecordView(ctx context.Context, id string) (*post.Post, error) {
	return ls.svc.RecordView(ctx, id)
}

// truncateString limits string length for logging to prevent log spam
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	for maxLen > 0 && !utf8.RuneStart(s[maxLen]) {
		maxLen--
	}
	return s[:maxLen] + "..."
}

// redactSignature shows only the edges of a transaction signature
func redactSignature(sig string) string {
	if sig == "" {
		return "<empty>"
	}
	sigLen := len(sig)
	if sigLen > signatureDisplaySize {
		return fmt.Sprintf("%s...%s (%d bytes)", sig[:8], sig[sigLen-4:], sigLen)
	}
	return fmt.Sprintf("<%d bytes>", sigLen)
}

package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/goonhub/goonhub/pkg/chat"
)

const serviceName = "ChatService"

const (
	logMessageMaxLen     = 50
	signatureDisplaySize = 16
)

type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the chat Service.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{
		svc:    svc,
		logger: logger,
	}
}

func (ls *logService) ListPersonas(ctx context.Context) ([]*PersonaView, error) {
	return ls.svc.ListPersonas(ctx)
}

func (ls *logService) GetPersona(ctx context.Context, handle string) (*PersonaView, error) {
	return ls.svc.GetPersona(ctx, handle)
}

func (ls *logService) UpsertPersona(ctx context.Context, handle string, req *UpsertPersonaRequest) (p *chat.Persona, err error) {
	start := time.Now()

	defer func() {
		fields := []zap.Field{
			zap.String("service", serviceName),
			zap.String("method", "UpsertPersona"),
			zap.String("creator_handle", handle),
			zap.Duration("duration", time.Since(start)),
		}
		if err != nil {
			ls.logger.Error("UpsertPersona failed", append(fields, zap.Error(err))...)
			return
		}
		ls.logger.Info("UpsertPersona completed", append(fields, zap.Bool("is_active", p.IsActive))...)
	}()

	return ls.svc.UpsertPersona(ctx, handle, req)
}

func (ls *logService) ListMessages(ctx context.Context, creatorHandle, userID string) ([]*chat.Message, error) {
	return ls.svc.ListMessages(ctx, creatorHandle, userID)
}

// Send logs the request without the full message body or signature
func (ls *logService) Send(ctx context.Context, req *SendRequest) (resp *SendResponse, err error) {
	start := time.Now()

	ls.logger.Info("Send started",
		zap.String("service", serviceName),
		zap.String("method", "Send"),
		zap.String("user_id", req.UserID),
		zap.String("creator_handle", req.CreatorHandle),
		zap.String("message", truncateString(req.Message, logMessageMaxLen)),
		zap.String("txn_sig", redactSignature(req.TxnSig)),
	)

	defer func() {
		duration := time.Since(start)
		if err != nil {
			ls.logger.Error("Send failed",
				zap.String("service", serviceName),
				zap.String("method", "Send"),
				zap.String("creator_handle", req.CreatorHandle),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
			return
		}
		ls.logger.Info("Send completed",
			zap.String("service", serviceName),
			zap.String("method", "Send"),
			zap.String("creator_handle", req.CreatorHandle),
			zap.Int("reply_length", len(resp.Response)),
			zap.Duration("duration", duration),
		)
	}()

	return ls.svc.Send(ctx, req)
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return truncate(s, maxLen) + "..."
}

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

package service

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/goonhub/goonhub/pkg/ai"
	apperrors "github.com/goonhub/goonhub/pkg/app/errors"
	"github.com/goonhub/goonhub/pkg/chat"
	"github.com/goonhub/goonhub/pkg/solana"
	"github.com/goonhub/goonhub/pkg/store"
	"github.com/goonhub/goonhub/pkg/user"
)

// Store is the narrow data-access interface for the chat service.
type Store interface {
	GetUser(ctx context.Context, id string) (*user.User, error)
	GetUserByHandle(ctx context.Context, handle string) (*user.User, error)
	GetPersona(ctx context.Context, creatorID string) (*chat.Persona, error)
	UpsertPersona(ctx context.Context, p *chat.Persona) (*chat.Persona, error)
	ListActivePersonas(ctx context.Context) ([]*chat.Persona, error)
	CreateChatMessage(ctx context.Context, m *chat.Message) (*chat.Message, error)
	ListChatMessages(ctx context.Context, userID, creatorID string) ([]*chat.Message, error)
}

// UpsertPersonaRequest is the body of POST /api/personas/{handle}.
type UpsertPersonaRequest struct {
	SystemPrompt    string `json:"systemPrompt" validate:"required"`
	PricePerMessage int64  `json:"pricePerMessage" validate:"gte=0"`
	IsActive        *bool  `json:"isActive"`
}

// SendRequest is the body of POST /api/chat/send.
type SendRequest struct {
	UserID        string `json:"userId" validate:"required"`
	CreatorHandle string `json:"creatorHandle" validate:"required"`
	Message       string `json:"message" validate:"required"`
	TxnSig        string `json:"txnSig"`
}

// SendResponse carries the assistant reply.
type SendResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response"`
}

// PersonaView is a persona with its creator.
type PersonaView struct {
	*chat.Persona
	Creator *user.User `json:"creator,omitempty"`
}

// Service defines the AI persona chat business logic
type Service interface {
	ListPersonas(ctx context.Context) ([]*PersonaView, error)
	GetPersona(ctx context.Context, handle string) (*PersonaView, error)
	UpsertPersona(ctx context.Context, handle string, req *UpsertPersonaRequest) (*chat.Persona, error)
	ListMessages(ctx context.Context, creatorHandle, userID string) ([]*chat.Message, error)
	Send(ctx context.Context, req *SendRequest) (*SendResponse, error)
}

type chatService struct {
	store     Store
	responder ai.Responder
	verifier  solana.PaymentVerifier
	logger    *zap.Logger
}

// NewService creates a new chat service
func NewService(store Store, responder ai.Responder, verifier solana.PaymentVerifier, logger *zap.Logger) Service {
	return &chatService{
		store:     store,
		responder: responder,
		verifier:  verifier,
		logger:    logger,
	}
}

func (s *chatService) ListPersonas(ctx context.Context) ([]*PersonaView, error) {
	personas, err := s.store.ListActivePersonas(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list personas: %w", err)
	}

	out := make([]*PersonaView, 0, len(personas))
	for _, p := range personas {
		creator, err := s.store.GetUser(ctx, p.CreatorID)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get persona creator: %w", err)
		}
		out = append(out, &PersonaView{Persona: p, Creator: creator})
	}
	return out, nil
}

func (s *chatService) GetPersona(ctx context.Context, handle string) (*PersonaView, error) {
	creator, err := s.creatorByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}
	p, err := s.store.GetPersona(ctx, creator.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.ResourceNotFoundError(err, "persona not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get persona: %w", err)
	}
	return &PersonaView{Persona: p, Creator: creator}, nil
}

// UpsertPersona creates or replaces the creator's persona. IsActive defaults
// to true.
func (s *chatService) UpsertPersona(ctx context.Context, handle string, req *UpsertPersonaRequest) (*chat.Persona, error) {
	creator, err := s.creatorByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	p, err := chat.NewPersona(creator.ID, req.SystemPrompt, req.PricePerMessage, active)
	if err != nil {
		return nil, apperrors.BadRequestError(err, err.Error())
	}

	saved, err := s.store.UpsertPersona(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to save persona: %w", err)
	}
	return saved, nil
}

func (s *chatService) ListMessages(ctx context.Context, creatorHandle, userID string) ([]*chat.Message, error) {
	if userID == "" {
		return nil, apperrors.BadRequestError(nil, "userId is required")
	}
	creator, err := s.creatorByHandle(ctx, creatorHandle)
	if err != nil {
		return nil, err
	}

	msgs, err := s.store.ListChatMessages(ctx, userID, creator.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return msgs, nil
}

// Send stores the fan's message, asks the responder for the creator's reply
// and stores that too. The user message is stored before the completion
// call, so a failed completion leaves it in the history.
func (s *chatService) Send(ctx context.Context, req *SendRequest) (*SendResponse, error) {
	creator, err := s.creatorByHandle(ctx, req.CreatorHandle)
	if err != nil {
		return nil, err
	}

	prompt := chat.DefaultSystemPrompt(creator.Handle)
	persona, err := s.store.GetPersona(ctx, creator.ID)
	switch {
	case err == nil:
		if !persona.IsActive {
			return nil, apperrors.ForbiddenError(nil, "chat is disabled for this creator")
		}
		prompt = persona.SystemPrompt
	case errors.Is(err, store.ErrNotFound):
		// default prompt
	default:
		return nil, fmt.Errorf("failed to get persona: %w", err)
	}

	userMsg, err := chat.NewMessage(req.UserID, creator.ID, chat.RoleUser, req.Message, req.TxnSig)
	if err != nil {
		return nil, apperrors.BadRequestError(err, err.Error())
	}

	mod, err := s.responder.Moderate(ctx, userMsg.Content)
	if err != nil {
		return nil, apperrors.DependencyError(err, "message moderation failed")
	}
	if !mod.IsAppropriate {
		return nil, apperrors.BadRequestError(nil, mod.Reason)
	}

	if persona != nil && persona.PricePerMessage > 0 {
		err := s.verifier.VerifyPayment(ctx, solana.Payment{
			Signature:      req.TxnSig,
			Payer:          req.UserID,
			Recipient:      creator.ID,
			AmountLamports: persona.PricePerMessage,
			Purpose:        "chat",
		})
		if err != nil {
			return nil, apperrors.BadRequestError(err, "payment could not be verified")
		}
	}

	if _, err := s.store.CreateChatMessage(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}

	reply, err := s.responder.Reply(ctx, userMsg.Content, prompt)
	if err != nil {
		return nil, apperrors.DependencyError(err, "failed to generate a reply")
	}

	assistantMsg, err := chat.NewMessage(req.UserID, creator.ID, chat.RoleAssistant, truncate(reply, chat.MaxContentLen), "")
	if err != nil {
		return nil, fmt.Errorf("invalid assistant reply: %w", err)
	}
	if _, err := s.store.CreateChatMessage(ctx, assistantMsg); err != nil {
		return nil, fmt.Errorf("failed to store reply: %w", err)
	}

	return &SendResponse{Success: true, Response: assistantMsg.Content}, nil
}

func (s *chatService) creatorByHandle(ctx context.Context, handle string) (*user.User, error) {
	u, err := s.store.GetUserByHandle(ctx, user.NormalizeHandle(handle))
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.ResourceNotFoundError(err, "creator not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get creator %s: %w", handle, err)
	}
	return u, nil
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

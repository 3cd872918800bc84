package chat

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxContentLen bounds a single chat message.
const MaxContentLen = 2000

// ErrInvalid is wrapped by every validation failure in this package.
var ErrInvalid = errors.New("invalid chat data")

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Persona is the AI character bound to a creator. One per creator.
type Persona struct {
	CreatorID       string    `json:"creator_id"`
	SystemPrompt    string    `json:"system_prompt"`
	PricePerMessage int64     `json:"price_per_message"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewPersona creates a validated Persona.
func NewPersona(creatorID, systemPrompt string, pricePerMessage int64, active bool) (*Persona, error) {
	p := &Persona{
		CreatorID:       creatorID,
		SystemPrompt:    strings.TrimSpace(systemPrompt),
		PricePerMessage: pricePerMessage,
		IsActive:        active,
		CreatedAt:       time.Now().UTC(),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the persona invariants.
func (p *Persona) Validate() error {
	switch {
	case p.CreatorID == "":
		return fmt.Errorf("%w: creator_id is required", ErrInvalid)
	case p.SystemPrompt == "":
		return fmt.Errorf("%w: system_prompt is required", ErrInvalid)
	case p.PricePerMessage < 0:
		return fmt.Errorf("%w: price_per_message must not be negative", ErrInvalid)
	}
	return nil
}

// Message is one turn of a (user, creator) conversation.
type Message struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatorID string    `json:"creator_id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	TxnSig    string    `json:"txn_sig,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMessage creates a validated Message.
func NewMessage(userID, creatorID string, role Role, content, txnSig string) (*Message, error) {
	m := &Message{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatorID: creatorID,
		Role:      role,
		Content:   strings.TrimSpace(content),
		TxnSig:    txnSig,
		CreatedAt: time.Now().UTC(),
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks the message invariants.
func (m *Message) Validate() error {
	switch {
	case m.UserID == "" || m.CreatorID == "":
		return fmt.Errorf("%w: user_id and creator_id are required", ErrInvalid)
	case m.Role != RoleUser && m.Role != RoleAssistant:
		return fmt.Errorf("%w: unknown role %q", ErrInvalid, m.Role)
	case m.Content == "":
		return fmt.Errorf("%w: content is required", ErrInvalid)
	case len(m.Content) > MaxContentLen:
		return fmt.Errorf("%w: content longer than %d characters", ErrInvalid, MaxContentLen)
	}
	return nil
}

// DefaultSystemPrompt is used for creators without an active persona prompt.
func DefaultSystemPrompt(handle string) string {
	return fmt.Sprintf(
		"You are %s, a content creator on GoonHub chatting with a fan. "+
			"Stay in character, be friendly and flirty but never explicit, keep replies under 100 words "+
			"and never reveal that you are an AI model.",
		handle,
	)
}

package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GOON naming rules enforced on every token.
const (
	Symbol     = "GOON"
	NameSuffix = "GOON"

	// AnonymousCreator owns tokens launched without a creator id.
	AnonymousCreator = "anonymous"

	maxNameLen = 64
)

// ErrInvalid is wrapped by every validation failure in this package.
var ErrInvalid = errors.New("invalid token")

// Token is a creator launched SPL token.
type Token struct {
	ID          string    `json:"id"`
	CreatorID   string    `json:"creator_id"`
	MintAddress string    `json:"mint_address"`
	Name        string    `json:"name"`
	Symbol      string    `json:"symbol"`
	Supply      int64     `json:"supply"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Params holds the caller supplied fields of a new token.
type Params struct {
	CreatorID   string
	MintAddress string
	Name        string
	Symbol      string
	Supply      int64
	ImageURL    string
}

// New creates a validated Token.
func New(p Params) (*Token, error) {
	t := &Token{
		ID:          uuid.NewString(),
		CreatorID:   p.CreatorID,
		MintAddress: p.MintAddress,
		Name:        strings.TrimSpace(p.Name),
		Symbol:      strings.TrimSpace(p.Symbol),
		Supply:      p.Supply,
		ImageURL:    p.ImageURL,
		CreatedAt:   time.Now().UTC(),
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks the GOON naming rules and supply.
func (t *Token) Validate() error {
	switch {
	case t.CreatorID == "":
		return fmt.Errorf("%w: creator_id is required", ErrInvalid)
	case t.MintAddress == "":
		return fmt.Errorf("%w: mint_address is required", ErrInvalid)
	case !strings.HasSuffix(t.Name, NameSuffix) || len(t.Name) > maxNameLen:
		return fmt.Errorf("%w: name must end with %s", ErrInvalid, NameSuffix)
	case t.Symbol != Symbol:
		return fmt.Errorf("%w: symbol must be %s", ErrInvalid, Symbol)
	case t.Supply <= 0:
		return fmt.Errorf("%w: supply must be positive", ErrInvalid)
	}
	return nil
}

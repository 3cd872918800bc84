package tip

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const maxMessageLen = 280

// ErrInvalid is wrapped by every validation failure in this package.
var ErrInvalid = errors.New("invalid tip")

// Tip is a lamport transfer from one user to another.
type Tip struct {
	ID             string    `json:"id"`
	FromUser       string    `json:"from_user"`
	ToUser         string    `json:"to_user"`
	AmountLamports int64     `json:"amount_lamports"`
	Message        string    `json:"message,omitempty"`
	TxnSig         string    `json:"txn_sig,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// New creates a validated Tip.
func New(fromUser, toUser string, amountLamports int64, message, txnSig string) (*Tip, error) {
	t := &Tip{
		ID:             uuid.NewString(),
		FromUser:       fromUser,
		ToUser:         toUser,
		AmountLamports: amountLamports,
		Message:        message,
		TxnSig:         txnSig,
		CreatedAt:      time.Now().UTC(),
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks the tip invariants.
func (t *Tip) Validate() error {
	switch {
	case t.FromUser == "" || t.ToUser == "":
		return fmt.Errorf("%w: from_user and to_user are required", ErrInvalid)
	case t.FromUser == t.ToUser:
		return fmt.Errorf("%w: cannot tip yourself", ErrInvalid)
	case t.AmountLamports <= 0:
		return fmt.Errorf("%w: amount_lamports must be positive", ErrInvalid)
	case len(t.Message) > maxMessageLen:
		return fmt.Errorf("%w: message longer than %d characters", ErrInvalid, maxMessageLen)
	}
	return nil
}

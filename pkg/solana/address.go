package solana

import (
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

const (
	addressLen   = 32
	signatureLen = 64
)

// ErrInvalidAddress is returned for strings that are not base58 public keys.
var ErrInvalidAddress = errors.New("invalid solana address")

// ErrInvalidSignature is returned for strings that are not base58 transaction signatures.
var ErrInvalidSignature = errors.New("invalid transaction signature")

// ValidateAddress checks that s is a base58 encoded 32-byte public key.
func ValidateAddress(s string) error {
	if s == "" {
		return fmt.Errorf("%w: empty", ErrInvalidAddress)
	}
	b, err := base58.Decode(s)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(b) != addressLen {
		return fmt.Errorf("%w: decoded to %d bytes, expected %d", ErrInvalidAddress, len(b), addressLen)
	}
	return nil
}

// ValidateSignature checks that s is a base58 encoded 64-byte signature.
func ValidateSignature(s string) error {
	if s == "" {
		return fmt.Errorf("%w: empty", ErrInvalidSignature)
	}
	b, err := base58.Decode(s)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if len(b) != signatureLen {
		return fmt.Errorf("%w: decoded to %d bytes, expected %d", ErrInvalidSignature, len(b), signatureLen)
	}
	return nil
}

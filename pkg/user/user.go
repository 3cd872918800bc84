package user

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalid is wrapped by every validation failure in this package.
var ErrInvalid = errors.New("invalid user")

var handlePattern = regexp.MustCompile(`^[a-z0-9_]{3,32}$`)

// User represents a platform account. ID usually equals the wallet public key.
type User struct {
	ID            string    `json:"id"`
	Handle        string    `json:"handle"`
	AvatarURL     string    `json:"avatar_url"`
	Bio           string    `json:"bio"`
	IsCreator     bool      `json:"is_creator"`
	AgeVerified   bool      `json:"age_verified"`
	SolanaAddress string    `json:"solana_address,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// New creates a User. An empty id is replaced by a random UUID.
func New(id, handle string) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	u := &User{
		ID:        id,
		Handle:    NormalizeHandle(handle),
		CreatedAt: time.Now().UTC(),
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

// Validate checks the user invariants.
func (u *User) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalid)
	}
	return ValidateHandle(u.Handle)
}

// NormalizeHandle trims whitespace, a leading "@" and lowercases the handle.
func NormalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(handle), "@"))
}

// ValidateHandle reports whether handle is 3-32 chars of [a-z0-9_].
func ValidateHandle(handle string) error {
	if !handlePattern.MatchString(handle) {
		return fmt.Errorf("%w: handle must be 3-32 characters of a-z, 0-9 or _", ErrInvalid)
	}
	return nil
}

// Patch is a partial user update. Nil fields are left untouched.
type Patch struct {
	Handle        *string `json:"handle,omitempty"`
	AvatarURL     *string `json:"avatar_url,omitempty"`
	Bio           *string `json:"bio,omitempty"`
	IsCreator     *bool   `json:"is_creator,omitempty"`
	AgeVerified   *bool   `json:"age_verified,omitempty"`
	SolanaAddress *string `json:"solana_address,omitempty"`
}

// Apply merges the patch into u and validates the result.
func (p Patch) Apply(u *User) error {
	if p.Handle != nil {
		u.Handle = NormalizeHandle(*p.Handle)
	}
	if p.AvatarURL != nil {
		u.AvatarURL = *p.AvatarURL
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.IsCreator != nil {
		u.IsCreator = *p.IsCreator
	}
	if p.AgeVerified != nil {
		u.AgeVerified = *p.AgeVerified
	}
	if p.SolanaAddress != nil {
		u.SolanaAddress = *p.SolanaAddress
	}
	return u.Validate()
}

// Follow is a directed edge from FollowerID to FollowingID.
type Follow struct {
	ID          string    `json:"id"`
	FollowerID  string    `json:"follower_id"`
	FollowingID string    `json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewFollow creates a Follow edge.
func NewFollow(followerID, followingID string) (*Follow, error) {
	if followerID == "" || followingID == "" {
		return nil, fmt.Errorf("%w: follower and following ids are required", ErrInvalid)
	}
	if followerID == followingID {
		return nil, fmt.Errorf("%w: cannot follow yourself", ErrInvalid)
	}
	return &Follow{
		ID:          uuid.NewString(),
		FollowerID:  followerID,
		FollowingID: followingID,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

package post

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalid is wrapped by every validation failure in this package.
var ErrInvalid = errors.New("invalid post")

// Visibility controls who may see a post.
type Visibility string

const (
	VisibilityPublic      Visibility = "public"
	VisibilitySubscribers Visibility = "subscribers"
	VisibilityGoonGated   Visibility = "goon-gated"
)

// Valid reports whether v is a known visibility.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilitySubscribers, VisibilityGoonGated:
		return true
	}
	return false
}

// Status is the publication state of a post.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

const maxTags = 10

// Post is a piece of creator media, optionally priced.
type Post struct {
	ID            string     `json:"id"`
	CreatorID     string     `json:"creator_id"`
	MediaURL      string     `json:"media_url"`
	ThumbURL      string     `json:"thumb_url"`
	Caption       string     `json:"caption"`
	PriceLamports int64      `json:"price_lamports"`
	Visibility    Visibility `json:"visibility"`
	Status        Status     `json:"status"`
	Views         int64      `json:"views"`
	Likes         int64      `json:"likes"`
	Tags          []string   `json:"tags"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Draft holds the caller supplied fields of a new post.
type Draft struct {
	CreatorID     string
	MediaURL      string
	ThumbURL      string
	Caption       string
	PriceLamports int64
	Visibility    Visibility
	Status        Status
	Tags          []string
}

// New creates a Post, defaulting visibility to public and status to published.
func New(d Draft) (*Post, error) {
	p := &Post{
		ID:            uuid.NewString(),
		CreatorID:     d.CreatorID,
		MediaURL:      d.MediaURL,
		ThumbURL:      d.ThumbURL,
		Caption:       d.Caption,
		PriceLamports: d.PriceLamports,
		Visibility:    d.Visibility,
		Status:        d.Status,
		Tags:          normalizeTags(d.Tags),
		CreatedAt:     time.Now().UTC(),
	}
	if p.Visibility == "" {
		p.Visibility = VisibilityPublic
	}
	if p.Status == "" {
		p.Status = StatusPublished
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the post invariants.
func (p *Post) Validate() error {
	switch {
	case p.ID == "":
		return fmt.Errorf("%w: id is required", ErrInvalid)
	case p.CreatorID == "":
		return fmt.Errorf("%w: creator_id is required", ErrInvalid)
	case strings.TrimSpace(p.MediaURL) == "":
		return fmt.Errorf("%w: media_url is required", ErrInvalid)
	case p.PriceLamports < 0:
		return fmt.Errorf("%w: price_lamports must not be negative", ErrInvalid)
	case !p.Visibility.Valid():
		return fmt.Errorf("%w: unknown visibility %q", ErrInvalid, p.Visibility)
	case !p.Status.Valid():
		return fmt.Errorf("%w: unknown status %q", ErrInvalid, p.Status)
	case len(p.Tags) > maxTags:
		return fmt.Errorf("%w: at most %d tags allowed", ErrInvalid, maxTags)
	}
	return nil
}

// IsPriced reports whether the media requires a purchase.
func (p *Post) IsPriced() bool {
	return p.PriceLamports > 0
}

// HasTag reports whether the post carries tag, ignoring case.
func (p *Post) HasTag(tag string) bool {
	return slices.ContainsFunc(p.Tags, func(t string) bool {
		return strings.EqualFold(t, tag)
	})
}

// Redacted returns a copy of the post without its media URL.
func (p *Post) Redacted() *Post {
	cp := *p
	cp.MediaURL = ""
	cp.Tags = slices.Clone(p.Tags)
	return &cp
}

// Patch is a partial post update. Nil fields are left untouched.
type Patch struct {
	Caption       *string     `json:"caption,omitempty"`
	ThumbURL      *string     `json:"thumb_url,omitempty"`
	PriceLamports *int64      `json:"price_lamports,omitempty"`
	Visibility    *Visibility `json:"visibility,omitempty"`
	Status        *Status     `json:"status,omitempty"`
	Tags          []string    `json:"tags,omitempty"`
}

// Apply merges the patch into p and validates the result.
func (pt Patch) Apply(p *Post) error {
	if pt.Caption != nil {
		p.Caption = *pt.Caption
	}
	if pt.ThumbURL != nil {
		p.ThumbURL = *pt.ThumbURL
	}
	if pt.PriceLamports != nil {
		p.PriceLamports = *pt.PriceLamports
	}
	if pt.Visibility != nil {
		p.Visibility = *pt.Visibility
	}
	if pt.Status != nil {
		p.Status = *pt.Status
	}
	if pt.Tags != nil {
		p.Tags = normalizeTags(pt.Tags)
	}
	return p.Validate()
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}

// Purchase records the unlock of a priced post by a user.
type Purchase struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	PostID         string    `json:"post_id"`
	AmountLamports int64     `json:"amount_lamports"`
	TxnSig         string    `json:"txn_sig,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewPurchase creates a Purchase.
func NewPurchase(userID, postID string, amountLamports int64, txnSig string) (*Purchase, error) {
	if userID == "" || postID == "" {
		return nil, fmt.Errorf("%w: purchase needs user_id and post_id", ErrInvalid)
	}
	if amountLamports < 0 {
		return nil, fmt.Errorf("%w: amount_lamports must not be negative", ErrInvalid)
	}
	return &Purchase{
		ID:             uuid.NewString(),
		UserID:         userID,
		PostID:         postID,
		AmountLamports: amountLamports,
		TxnSig:         txnSig,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

package activity

import (
	"maps"
	"time"

	"github.com/google/uuid"
)

// Type classifies an activity.
type Type string

const (
	TypeNewPost       Type = "new_post"
	TypeNewFollower   Type = "new_follower"
	TypeTipReceived   Type = "tip_received"
	TypePostUnlocked  Type = "post_unlocked"
	TypeStreamLive    Type = "stream_live"
	TypeTokenLaunched Type = "token_launched"
)

// KeyActorID is the metadata key naming the user who caused a pairwise
// notification.
const KeyActorID = "actor_id"

// Activity is a notification record. A nil UserID marks a global activity.
type Activity struct {
	ID           string         `json:"id"`
	Type         Type           `json:"type"`
	UserID       *string        `json:"user_id"`
	TargetUserID *string        `json:"target_user_id"`
	PostID       *string        `json:"post_id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	IsRead       bool           `json:"is_read"`
	CreatedAt    time.Time      `json:"created_at"`
}

// New creates an unread Activity.
func New(typ Type, title, description string) *Activity {
	return &Activity{
		ID:          uuid.NewString(),
		Type:        typ,
		Title:       title,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
}

// VisibleTo reports whether the activity appears in userID's feed:
// global, owned by or targeted at the user.
func (a *Activity) VisibleTo(userID string) bool {
	if a.UserID == nil {
		return true
	}
	if userID == "" {
		return false
	}
	return *a.UserID == userID || (a.TargetUserID != nil && *a.TargetUserID == userID)
}

// Clone returns a deep copy of a.
func (a *Activity) Clone() *Activity {
	cp := *a
	cp.UserID = clonePtr(a.UserID)
	cp.TargetUserID = clonePtr(a.TargetUserID)
	cp.PostID = clonePtr(a.PostID)
	cp.Metadata = maps.Clone(a.Metadata)
	return &cp
}

func clonePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// StringPtr returns nil for "" and &s otherwise.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

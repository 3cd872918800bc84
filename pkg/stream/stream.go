package stream

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalid is wrapped by every validation failure in this package.
var ErrInvalid = errors.New("invalid live stream")

// Status of a live stream. ended is terminal.
type Status string

const (
	StatusLive  Status = "live"
	StatusEnded Status = "ended"
)

// LiveStream is a creator broadcast session.
type LiveStream struct {
	ID          string     `json:"id"`
	CreatorID   string     `json:"creator_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	ViewerCount int        `json:"viewer_count"`
	MaxViewers  int        `json:"max_viewers"`
	StreamKey   string     `json:"stream_key,omitempty"`
	Duration    int64      `json:"duration"`
	CreatedAt   time.Time  `json:"created_at"`
	EndedAt     *time.Time `json:"ended_at"`
}

// New creates a live stream in the live state with a fresh stream key.
func New(creatorID, title, description string) (*LiveStream, error) {
	s := &LiveStream{
		ID:          uuid.NewString(),
		CreatorID:   creatorID,
		Title:       strings.TrimSpace(title),
		Description: description,
		Status:      StatusLive,
		StreamKey:   "sk_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		CreatedAt:   time.Now().UTC(),
	}
	if s.CreatorID == "" {
		return nil, fmt.Errorf("%w: creator_id is required", ErrInvalid)
	}
	if s.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalid)
	}
	return s, nil
}

// End forces the ended state, stamps EndedAt and recomputes Duration in seconds.
// Repeated calls re-stamp.
func (s *LiveStream) End(now time.Time) {
	s.Status = StatusEnded
	s.EndedAt = &now
	s.Duration = int64(now.Sub(s.CreatedAt).Seconds())
}

// SetViewers records the current viewer count and raises MaxViewers.
func (s *LiveStream) SetViewers(count int) {
	s.ViewerCount = count
	if count > s.MaxViewers {
		s.MaxViewers = count
	}
}

// Public returns a copy without the stream key.
func (s *LiveStream) Public() *LiveStream {
	cp := *s
	cp.StreamKey = ""
	return &cp
}

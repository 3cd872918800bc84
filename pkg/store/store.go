// Package store defines the repository contract shared by every persistence
// backend. Backends perform no side effects beyond their own state.
package store

import (
	"context"
	"errors"

	"github.com/goonhub/goonhub/pkg/activity"
	"github.com/goonhub/goonhub/pkg/chat"
	"github.com/goonhub/goonhub/pkg/post"
	"github.com/goonhub/goonhub/pkg/stream"
	"github.com/goonhub/goonhub/pkg/tip"
	"github.com/goonhub/goonhub/pkg/token"
	"github.com/goonhub/goonhub/pkg/user"
)

var (
	// ErrNotFound is returned when the addressed entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a write violates a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate")
)

// UserStore defines user persistence
type UserStore interface {
	GetUser(ctx context.Context, id string) (*user.User, error)
	GetUserByHandle(ctx context.Context, handle string) (*user.User, error)
	CreateUser(ctx context.Context, u *user.User) (*user.User, error)
	UpdateUser(ctx context.Context, id string, patch user.Patch) (*user.User, error)
	ListCreators(ctx context.Context) ([]*user.User, error)
}

// FollowStore defines the social graph
type FollowStore interface {
	// FollowUser is idempotent: an existing edge is returned with created=false.
	FollowUser(ctx context.Context, followerID, followingID string) (f *user.Follow, created bool, err error)
	UnfollowUser(ctx context.Context, followerID, followingID string) (bool, error)
	IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)
	GetFollowerCount(ctx context.Context, userID string) (int, error)
	GetFollowingCount(ctx context.Context, userID string) (int, error)
	ListFollowerIDs(ctx context.Context, userID string) ([]string, error)
}

// PostStore defines post persistence and the like edge set
type PostStore interface {
	GetPost(ctx context.Context, id string) (*post.Post, error)
	ListPosts(ctx context.Context, opts ...PostQueryOption) ([]*post.Post, error)
	CreatePost(ctx context.Context, p *post.Post) (*post.Post, error)
	UpdatePost(ctx context.Context, id string, patch post.Patch) (*post.Post, error)
	IncrementPostViews(ctx context.Context, id string) (*post.Post, error)
	// LikePost adds the (post, user) edge and bumps the counter in lockstep.
	// It reports false when the edge already existed.
	LikePost(ctx context.Context, postID, userID string) (bool, error)
	// UnlikePost reports false, leaving the counter untouched, when no edge existed.
	UnlikePost(ctx context.Context, postID, userID string) (bool, error)
	HasLiked(ctx context.Context, postID, userID string) (bool, error)
}

// PurchaseStore defines purchase persistence
type PurchaseStore interface {
	// CreatePurchase returns ErrDuplicate when (user_id, post_id) already exists.
	CreatePurchase(ctx context.Context, p *post.Purchase) (*post.Purchase, error)
	HasPurchased(ctx context.Context, userID, postID string) (bool, error)
	ListPurchasesByUser(ctx context.Context, userID string) ([]*post.Purchase, error)
}

// TokenStore defines token persistence
type TokenStore interface {
	CreateToken(ctx context.Context, t *token.Token) (*token.Token, error)
	GetToken(ctx context.Context, id string) (*token.Token, error)
	// ListTokens lists all tokens, or only creatorID's when non-empty.
	ListTokens(ctx context.Context, creatorID string) ([]*token.Token, error)
}

// TipStore defines tip persistence
type TipStore interface {
	CreateTip(ctx context.Context, t *tip.Tip) (*tip.Tip, error)
	ListTipsReceived(ctx context.Context, userID string) ([]*tip.Tip, error)
	SumTipsReceived(ctx context.Context, userID string) (int64, error)
}

// PersonaStore defines AI persona persistence, one persona per creator
type PersonaStore interface {
	GetPersona(ctx context.Context, creatorID string) (*chat.Persona, error)
	UpsertPersona(ctx context.Context, p *chat.Persona) (*chat.Persona, error)
	ListActivePersonas(ctx context.Context) ([]*chat.Persona, error)
}

// ChatStore defines chat message persistence
type ChatStore interface {
	CreateChatMessage(ctx context.Context, m *chat.Message) (*chat.Message, error)
	// ListChatMessages returns the conversation oldest first, insertion order breaking ties.
	ListChatMessages(ctx context.Context, userID, creatorID string) ([]*chat.Message, error)
}

// ActivityStore defines activity feed persistence
type ActivityStore interface {
	CreateActivity(ctx context.Context, a *activity.Activity) (*activity.Activity, error)
	CreateActivities(ctx context.Context, as []*activity.Activity) error
	// ListActivities returns global, owned and targeted activities newest first.
	ListActivities(ctx context.Context, userID string, limit int) ([]*activity.Activity, error)
	CountUnreadActivities(ctx context.Context, userID string) (int, error)
	MarkActivityAsRead(ctx context.Context, id string) (*activity.Activity, error)
}

// LiveStreamStore defines live stream persistence
type LiveStreamStore interface {
	CreateLiveStream(ctx context.Context, s *stream.LiveStream) (*stream.LiveStream, error)
	GetLiveStream(ctx context.Context, id string) (*stream.LiveStream, error)
	// ListLiveStreams lists all streams, or only those with status when non-empty.
	ListLiveStreams(ctx context.Context, status stream.Status) ([]*stream.LiveStream, error)
	// EndLiveStream reports whether this call moved the stream out of live.
	EndLiveStream(ctx context.Context, id string) (*stream.LiveStream, bool, error)
	UpdateStreamViewerCount(ctx context.Context, id string, count int) (*stream.LiveStream, error)
}

// Store is the full repository implemented by each backend
type Store interface {
	UserStore
	FollowStore
	PostStore
	PurchaseStore
	TokenStore
	TipStore
	PersonaStore
	ChatStore
	ActivityStore
	LiveStreamStore
	Close() error
}

// PostQueryOptions defines filters for listing posts
type PostQueryOptions struct {
	CreatorID string
	Tag       string
	Status    post.Status
	Limit     int
}

// PostQueryOption is a functional option for listing posts
type PostQueryOption func(*PostQueryOptions)

// WithCreator restricts posts to one creator
func WithCreator(creatorID string) PostQueryOption {
	return func(opts *PostQueryOptions) {
		opts.CreatorID = creatorID
	}
}

// WithTag restricts posts to those carrying tag
func WithTag(tag string) PostQueryOption {
	return func(opts *PostQueryOptions) {
		opts.Tag = tag
	}
}

// WithStatus restricts posts to one status
func WithStatus(status post.Status) PostQueryOption {
	return func(opts *PostQueryOptions) {
		opts.Status = status
	}
}

// WithLimit caps the number of posts returned
func WithLimit(limit int) PostQueryOption {
	return func(opts *PostQueryOptions) {
		opts.Limit = limit
	}
}

// ApplyPostOptions folds opts into PostQueryOptions.
func ApplyPostOptions(opts ...PostQueryOption) PostQueryOptions {
	var o PostQueryOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

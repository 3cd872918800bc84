package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	apperrors "github.com/goonhub/goonhub/pkg/app/errors"
	"github.com/goonhub/goonhub/pkg/post"
	"github.com/goonhub/goonhub/pkg/solana"
	"github.com/goonhub/goonhub/pkg/store"
	"github.com/goonhub/goonhub/pkg/token"
	"github.com/goonhub/goonhub/pkg/user"
)

// Store is the narrow data-access interface for the creator directory.
type Store interface {
	GetUserByHandle(ctx context.Context, handle string) (*user.User, error)
	ListCreators(ctx context.Context) ([]*user.User, error)
	GetFollowerCount(ctx context.Context, userID string) (int, error)
	ListPosts(ctx context.Context, opts ...store.PostQueryOption) ([]*post.Post, error)
	ListTokens(ctx context.Context, creatorID string) ([]*token.Token, error)
	SumTipsReceived(ctx context.Context, userID string) (int64, error)
}

// Stats aggregates a creator's audience and earnings.
type Stats struct {
	PostCount            int    `json:"post_count"`
	FollowerCount        int    `json:"follower_count"`
	TotalLikes           int64  `json:"total_likes"`
	TotalViews           int64  `json:"total_views"`
	TokenCount           int    `json:"token_count"`
	TipsReceivedLamports int64  `json:"tips_received_lamports"`
	TipsReceivedSOL      string `json:"tips_received_sol"`
}

// Summary is a creator with stats, as listed by GET /api/creators.
type Summary struct {
	*user.User
	Stats Stats `json:"stats"`
}

// Detail is the creator page: profile, published posts, tokens and stats.
type Detail struct {
	Creator *user.User     `json:"creator"`
	Posts   []*post.Post   `json:"posts"`
	Tokens  []*token.Token `json:"tokens"`
	Stats   Stats          `json:"stats"`
}

// Service defines the creator directory
type Service interface {
	ListCreators(ctx context.Context) ([]*Summary, error)
	GetCreator(ctx context.Context, handle string) (*Detail, error)
}

type creatorService struct {
	store  Store
	logger *zap.Logger
}

// NewService creates a new creator service
func NewService(store Store, logger *zap.Logger) Service {
	return &creatorService{
		store:  store,
		logger: logger,
	}
}

func (s *creatorService) ListCreators(ctx context.Context) ([]*Summary, error) {
	creators, err := s.store.ListCreators(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list creators: %w", err)
	}

	out := make([]*Summary, 0, len(creators))
	for _, c := range creators {
		_, _, stats, err := s.collect(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, &Summary{User: c, Stats: stats})
	}
	return out, nil
}

func (s *creatorService) GetCreator(ctx context.Context, handle string) (*Detail, error) {
	c, err := s.store.GetUserByHandle(ctx, user.NormalizeHandle(handle))
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.ResourceNotFoundError(err, "creator not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get creator %s: %w", handle, err)
	}
	if !c.IsCreator {
		return nil, apperrors.ResourceNotFoundError(nil, "creator not found")
	}

	posts, tokens, stats, err := s.collect(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	for i, p := range posts {
		if p.IsPriced() {
			posts[i] = p.Redacted()
		}
	}
	return &Detail{Creator: c, Posts: posts, Tokens: tokens, Stats: stats}, nil
}

// collect loads the creator's published posts and tokens and derives stats
// from them. Only published posts count toward likes and views.
func (s *creatorService) collect(ctx context.Context, creatorID string) ([]*post.Post, []*token.Token, Stats, error) {
	var stats Stats

	posts, err := s.store.ListPosts(ctx, store.WithCreator(creatorID), store.WithStatus(post.StatusPublished))
	if err != nil {
		return nil, nil, stats, fmt.Errorf("failed to list posts: %w", err)
	}
	tokens, err := s.store.ListTokens(ctx, creatorID)
	if err != nil {
		return nil, nil, stats, fmt.Errorf("failed to list tokens: %w", err)
	}
	followers, err := s.store.GetFollowerCount(ctx, creatorID)
	if err != nil {
		return nil, nil, stats, fmt.Errorf("failed to count followers: %w", err)
	}
	tips, err := s.store.SumTipsReceived(ctx, creatorID)
	if err != nil {
		return nil, nil, stats, fmt.Errorf("failed to sum tips: %w", err)
	}

	stats.PostCount = len(posts)
	stats.FollowerCount = followers
	stats.TokenCount = len(tokens)
	stats.TipsReceivedLamports = tips
	stats.TipsReceivedSOL = solana.FormatSOL(tips)
	for _, p := range posts {
		stats.TotalLikes += p.Likes
		stats.TotalViews += p.Views
	}

	if posts == nil {
		posts = []*post.Post{}
	}
	if tokens == nil {
		tokens = []*token.Token{}
	}
	return posts, tokens, stats, nil
}

package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/goonhub/goonhub/pkg/post"
	"github.com/goonhub/goonhub/pkg/store"
)

func copyPost(p *post.Post) *post.Post {
	cp := *p
	cp.Tags = slices.Clone(p.Tags)
	if cp.Tags == nil {
		cp.Tags = []string{}
	}
	return &cp
}

func (s *Store) GetPost(_ context.Context, id string) (*post.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyPost(p), nil
}

// ListPosts returns matching posts newest first; on equal timestamps the
// later insert wins.
func (s *Store) ListPosts(_ context.Context, opts ...store.PostQueryOption) ([]*post.Post, error) {
	o := store.ApplyPostOptions(opts...)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*post.Post, 0, len(s.postOrder))
	for i := len(s.postOrder) - 1; i >= 0; i-- {
		p := s.posts[s.postOrder[i]]
		if o.CreatorID != "" && p.CreatorID != o.CreatorID {
			continue
		}
		if o.Tag != "" && !p.HasTag(o.Tag) {
			continue
		}
		if o.Status != "" && p.Status != o.Status {
			continue
		}
		out = append(out, copyPost(p))
	}
	slices.SortStableFunc(out, func(a, b *post.Post) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	if o.Limit > 0 && len(out) > o.Limit {
		out = out[:o.Limit]
	}
	return out, nil
}

func (s *Store) CreatePost(_ context.Context, p *post.Post) (*post.Post, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[p.ID]; ok {
		return nil, fmt.Errorf("post %s: %w", p.ID, store.ErrDuplicate)
	}

	cp := copyPost(p)
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = s.now()
	}
	s.posts[cp.ID] = cp
	s.postOrder = append(s.postOrder, cp.ID)
	return copyPost(cp), nil
}

func (s *Store) UpdatePost(_ context.Context, id string, patch post.Patch) (*post.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.posts[id]
	if !ok {
		return nil, store.ErrNotFound
	}

	updated := copyPost(existing)
	if err := patch.Apply(updated); err != nil {
		return nil, err
	}
	s.posts[id] = updated
	return copyPost(updated), nil
}

func (s *Store) IncrementPostViews(_ context.Context, id string) (*post.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	p.Views++
	return copyPost(p), nil
}

func (s *Store) LikePost(_ context.Context, postID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[postID]
	if !ok {
		return false, store.ErrNotFound
	}
	key := edgeKey{postID, userID}
	if _, liked := s.likes[key]; liked {
		return false, nil
	}
	s.likes[key] = struct{}{}
	p.Likes++
	return true, nil
}

func (s *Store) UnlikePost(_ context.Context, postID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[postID]
	if !ok {
		return false, store.ErrNotFound
	}
	key := edgeKey{postID, userID}
	if _, liked := s.likes[key]; !liked {
		return false, nil
	}
	delete(s.likes, key)
	p.Likes--
	return true, nil
}

func (s *Store) HasLiked(_ context.Context, postID, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.likes[edgeKey{postID, userID}]
	return ok, nil
}

func (s *Store) CreatePurchase(_ context.Context, p *post.Purchase) (*post.Purchase, error) {
	if p.UserID == "" || p.PostID == "" {
		return nil, fmt.Errorf("%w: purchase needs user_id and post_id", post.ErrInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := edgeKey{p.UserID, p.PostID}
	if _, ok := s.purchases[key]; ok {
		return nil, fmt.Errorf("purchase (%s, %s): %w", p.UserID, p.PostID, store.ErrDuplicate)
	}

	cp := *p
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = s.now()
	}
	s.purchases[key] = &cp
	out := cp
	return &out, nil
}

func (s *Store) HasPurchased(_ context.Context, userID, postID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.purchases[edgeKey{userID, postID}]
	return ok, nil
}

func (s *Store) ListPurchasesByUser(_ context.Context, userID string) ([]*post.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*post.Purchase
	for k, p := range s.purchases {
		if k.from == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *post.Purchase) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

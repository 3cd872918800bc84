// Package memory is the in-process Store backend. State lives in maps guarded
// by a single RWMutex and every read returns a copy.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/goonhub/goonhub/pkg/activity"
	"github.com/goonhub/goonhub/pkg/chat"
	"github.com/goonhub/goonhub/pkg/post"
	"github.com/goonhub/goonhub/pkg/store"
	"github.com/goonhub/goonhub/pkg/stream"
	"github.com/goonhub/goonhub/pkg/tip"
	"github.com/goonhub/goonhub/pkg/token"
	"github.com/goonhub/goonhub/pkg/user"
)

type edgeKey struct {
	from, to string
}

// Store is a map-backed store.Store.
type Store struct {
	mu sync.RWMutex

	users      map[string]*user.User
	follows    map[edgeKey]*user.Follow
	posts      map[string]*post.Post
	postOrder  []string
	likes      map[edgeKey]struct{}
	purchases  map[edgeKey]*post.Purchase
	tokens     map[string]*token.Token
	tokenOrder []string
	tips       []*tip.Tip
	personas   map[string]*chat.Persona
	messages   []*chat.Message
	activities []*activity.Activity
	streams    map[string]*stream.LiveStream

	now func() time.Time
}

var _ store.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		users:     make(map[string]*user.User),
		follows:   make(map[edgeKey]*user.Follow),
		posts:     make(map[string]*post.Post),
		likes:     make(map[edgeKey]struct{}),
		purchases: make(map[edgeKey]*post.Purchase),
		tokens:    make(map[string]*token.Token),
		personas:  make(map[string]*chat.Persona),
		streams:   make(map[string]*stream.LiveStream),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

func copyUser(u *user.User) *user.User {
	cp := *u
	return &cp
}

func (s *Store) GetUser(_ context.Context, id string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyUser(u), nil
}

func (s *Store) GetUserByHandle(_ context.Context, handle string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if u := s.userByHandle(user.NormalizeHandle(handle)); u != nil {
		return copyUser(u), nil
	}
	return nil, store.ErrNotFound
}

func (s *Store) userByHandle(handle string) *user.User {
	for _, u := range s.users {
		if u.Handle == handle {
			return u
		}
	}
	return nil
}

func (s *Store) CreateUser(_ context.Context, u *user.User) (*user.User, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.ID]; ok {
		return nil, fmt.Errorf("user %s: %w", u.ID, store.ErrDuplicate)
	}
	if s.userByHandle(u.Handle) != nil {
		return nil, fmt.Errorf("handle %s: %w", u.Handle, store.ErrDuplicate)
	}

	cp := copyUser(u)
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = s.now()
	}
	s.users[cp.ID] = cp
	return copyUser(cp), nil
}

func (s *Store) UpdateUser(_ context.Context, id string, patch user.Patch) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}

	updated := copyUser(existing)
	if err := patch.Apply(updated); err != nil {
		return nil, err
	}
	if updated.Handle != existing.Handle {
		if other := s.userByHandle(updated.Handle); other != nil && other.ID != id {
			return nil, fmt.Errorf("handle %s: %w", updated.Handle, store.ErrDuplicate)
		}
	}

	s.users[id] = updated
	return copyUser(updated), nil
}

func (s *Store) ListCreators(_ context.Context) ([]*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*user.User
	for _, u := range s.users {
		if u.IsCreator {
			out = append(out, copyUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Handle < out[j].Handle
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) FollowUser(_ context.Context, followerID, followingID string) (*user.Follow, bool, error) {
	f, err := user.NewFollow(followerID, followingID)
	if err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := edgeKey{followerID, followingID}
	if existing, ok := s.follows[key]; ok {
		cp := *existing
		return &cp, false, nil
	}

	s.follows[key] = f
	cp := *f
	return &cp, true, nil
}

func (s *Store) UnfollowUser(_ context.Context, followerID, followingID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := edgeKey{followerID, followingID}
	if _, ok := s.follows[key]; !ok {
		return false, nil
	}
	delete(s.follows, key)
	return true, nil
}

func (s *Store) IsFollowing(_ context.Context, followerID, followingID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.follows[edgeKey{followerID, followingID}]
	return ok, nil
}

func (s *Store) GetFollowerCount(_ context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for k := range s.follows {
		if k.to == userID {
			n++
		}
	}
	return n, nil
}

func (s *Store) GetFollowingCount(_ context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for k := range s.follows {
		if k.from == userID {
			n++
		}
	}
	return n, nil
}

func (s *Store) ListFollowerIDs(_ context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var edges []*user.Follow
	for k, f := range s.follows {
		if k.to == userID {
			edges = append(edges, f)
		}
	}
	slices.SortFunc(edges, func(a, b *user.Follow) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	ids := make([]string, 0, len(edges))
	for _, f := range edges {
		ids = append(ids, f.FollowerID)
	}
	return ids, nil
}

package memory

import (
	"context"
	"slices"

	"github.com/goonhub/goonhub/pkg/activity"
	"github.com/goonhub/goonhub/pkg/store"
)

func (s *Store) CreateActivity(_ context.Context, a *activity.Activity) (*activity.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := s.insertActivity(a)
	return cp.Clone(), nil
}

// CreateActivities inserts the batch under a single lock.
func (s *Store) CreateActivities(_ context.Context, as []*activity.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range as {
		s.insertActivity(a)
	}
	return nil
}

func (s *Store) insertActivity(a *activity.Activity) *activity.Activity {
	cp := a.Clone()
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = s.now()
	}
	s.activities = append(s.activities, cp)
	return cp
}

func (s *Store) ListActivities(_ context.Context, userID string, limit int) ([]*activity.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*activity.Activity, 0)
	for i := len(s.activities) - 1; i >= 0; i-- {
		if a := s.activities[i]; a.VisibleTo(userID) {
			out = append(out, a.Clone())
		}
	}
	slices.SortStableFunc(out, func(a, b *activity.Activity) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) CountUnreadActivities(_ context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, a := range s.activities {
		if !a.IsRead && a.VisibleTo(userID) {
			n++
		}
	}
	return n, nil
}

func (s *Store) MarkActivityAsRead(_ context.Context, id string) (*activity.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.activities {
		if a.ID == id {
			a.IsRead = true
			return a.Clone(), nil
		}
	}
	return nil, store.ErrNotFound
}

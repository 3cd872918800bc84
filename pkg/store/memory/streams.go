package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/goonhub/goonhub/pkg/store"
	"github.com/goonhub/goonhub/pkg/stream"
)

func (s *Store) CreateLiveStream(_ context.Context, ls *stream.LiveStream) (*stream.LiveStream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.streams[ls.ID]; ok {
		return nil, fmt.Errorf("live stream %s: %w", ls.ID, store.ErrDuplicate)
	}

	cp := *ls
	if cp.Status == "" {
		cp.Status = stream.StatusLive
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = s.now()
	}
	s.streams[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (s *Store) GetLiveStream(_ context.Context, id string) (*stream.LiveStream, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ls, ok := s.streams[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *ls
	return &cp, nil
}

func (s *Store) ListLiveStreams(_ context.Context, status stream.Status) ([]*stream.LiveStream, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*stream.LiveStream, 0)
	for _, ls := range s.streams {
		if status != "" && ls.Status != status {
			continue
		}
		cp := *ls
		out = append(out, &cp)
	}
	slices.SortFunc(out, func(a, b *stream.LiveStream) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (s *Store) EndLiveStream(_ context.Context, id string) (*stream.LiveStream, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ls, ok := s.streams[id]
	if !ok {
		return nil, false, store.ErrNotFound
	}
	wasLive := ls.Status == stream.StatusLive
	ls.End(s.now())
	cp := *ls
	return &cp, wasLive, nil
}

func (s *Store) UpdateStreamViewerCount(_ context.Context, id string, count int) (*stream.LiveStream, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: viewer count must not be negative", stream.ErrInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ls, ok := s.streams[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	ls.SetViewers(count)
	cp := *ls
	return &cp, nil
}

package memory

import (
	"context"
	"slices"
	"sort"

	"github.com/goonhub/goonhub/pkg/chat"
	"github.com/goonhub/goonhub/pkg/store"
)

func (s *Store) GetPersona(_ context.Context, creatorID string) (*chat.Persona, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.personas[creatorID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// UpsertPersona updates the creator's persona in place, keeping its
// created_at, or inserts it.
func (s *Store) UpsertPersona(_ context.Context, p *chat.Persona) (*chat.Persona, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *p
	if existing, ok := s.personas[p.CreatorID]; ok {
		cp.CreatedAt = existing.CreatedAt
	} else if cp.CreatedAt.IsZero() {
		cp.CreatedAt = s.now()
	}
	s.personas[cp.CreatorID] = &cp
	out := cp
	return &out, nil
}

func (s *Store) ListActivePersonas(_ context.Context) ([]*chat.Persona, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*chat.Persona, 0)
	for _, p := range s.personas {
		if p.IsActive {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatorID < out[j].CreatorID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) CreateChatMessage(_ context.Context, m *chat.Message) (*chat.Message, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *m
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = s.now()
	}
	s.messages = append(s.messages, &cp)
	out := cp
	return &out, nil
}

func (s *Store) ListChatMessages(_ context.Context, userID, creatorID string) ([]*chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*chat.Message, 0)
	for _, m := range s.messages {
		if m.UserID == userID && m.CreatorID == creatorID {
			cp := *m
			out = append(out, &cp)
		}
	}
	slices.SortStableFunc(out, func(a, b *chat.Message) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/goonhub/goonhub/pkg/store"
	"github.com/goonhub/goonhub/pkg/tip"
	"github.com/goonhub/goonhub/pkg/token"
)

func (s *Store) CreateToken(_ context.Context, t *token.Token) (*token.Token, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tokens[t.ID]; ok {
		return nil, fmt.Errorf("token %s: %w", t.ID, store.ErrDuplicate)
	}

	cp := *t
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = s.now()
	}
	s.tokens[cp.ID] = &cp
	s.tokenOrder = append(s.tokenOrder, cp.ID)
	out := cp
	return &out, nil
}

func (s *Store) GetToken(_ context.Context, id string) (*token.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tokens[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *Store) ListTokens(_ context.Context, creatorID string) ([]*token.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*token.Token, 0)
	for i := len(s.tokenOrder) - 1; i >= 0; i-- {
		t := s.tokens[s.tokenOrder[i]]
		if creatorID != "" && t.CreatorID != creatorID {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	slices.SortStableFunc(out, func(a, b *token.Token) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (s *Store) CreateTip(_ context.Context, t *tip.Tip) (*tip.Tip, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *t
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = s.now()
	}
	s.tips = append(s.tips, &cp)
	out := cp
	return &out, nil
}

func (s *Store) ListTipsReceived(_ context.Context, userID string) ([]*tip.Tip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*tip.Tip, 0)
	for i := len(s.tips) - 1; i >= 0; i-- {
		if t := s.tips[i]; t.ToUser == userID {
			cp := *t
			out = append(out, &cp)
		}
	}
	slices.SortStableFunc(out, func(a, b *tip.Tip) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (s *Store) SumTipsReceived(_ context.Context, userID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum int64
	for _, t := range s.tips {
		if t.ToUser == userID {
			sum += t.AmountLamports
		}
	}
	return sum, nil
}

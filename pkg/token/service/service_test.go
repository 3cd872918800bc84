package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/goonhub/goonhub/pkg/app/errors"
	"github.com/goonhub/goonhub/pkg/events"
	"github.com/goonhub/goonhub/pkg/solana"
	"github.com/goonhub/goonhub/pkg/store/memory"
	"github.com/goonhub/goonhub/pkg/token"
	"github.com/goonhub/goonhub/pkg/user"
)

type recordingBus struct {
	events []*events.Event
}

func (b *recordingBus) Publish(_ context.Context, e *events.Event) {
	b.events = append(b.events, e)
}

type fixedMint string

func (m fixedMint) NextMint() string { return string(m) }

func newTestService(t *testing.T, mints solana.MintSource) (Service, *memory.Store, *recordingBus) {
	t.Helper()
	s := memory.New()
	creator, err := user.New("c1", "sarah_creates")
	require.NoError(t, err)
	creator.IsCreator = true
	_, err = s.CreateUser(context.Background(), creator)
	require.NoError(t, err)

	bus := &recordingBus{}
	return NewService(s, mints, bus, zap.NewNop()), s, bus
}

func TestLaunch_NamingRules(t *testing.T) {
	svc, _, bus := newTestService(t, fixedMint("CASi45ub7Qe4ZE36UT5G6cU4ud8Fhhe4deS4F3cwgoon"))
	ctx := context.Background()

	tests := []struct {
		name string
		req  LaunchRequest
	}{
		{"name without suffix", LaunchRequest{Name: "MyCoin", Symbol: "GOON", Supply: 1000}},
		{"wrong symbol", LaunchRequest{Name: "MyCoinGOON", Symbol: "MCG", Supply: 1000}},
		{"zero supply", LaunchRequest{Name: "MyCoinGOON", Symbol: "GOON"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Launch(ctx, &tt.req)
			assert.True(t, apperrors.Is(err, apperrors.CategoryDataError), "got %v", err)
		})
	}
	assert.Empty(t, bus.events)
}

func TestLaunch_WithCreator(t *testing.T) {
	mint := "CASi45ub7Qe4ZE36UT5G6cU4ud8Fhhe4deS4F3cwgoon"
	svc, _, bus := newTestService(t, fixedMint(mint))
	ctx := context.Background()

	tok, err := svc.Launch(ctx, &LaunchRequest{CreatorID: "c1", Name: "SarahGOON", Symbol: "GOON", Supply: 1_000_000})
	require.NoError(t, err)
	assert.Equal(t, "c1", tok.CreatorID)
	assert.Equal(t, mint, tok.MintAddress)

	require.Len(t, bus.events, 1)
	e := bus.events[0]
	assert.Equal(t, events.TokenLaunched, e.Type)
	assert.Equal(t, "sarah_creates", e.String(events.KeyActorHandle))
	assert.Equal(t, tok.ID, e.String(events.KeyTokenID))

	got, err := svc.GetToken(ctx, tok.ID)
	require.NoError(t, err)
	assert.Equal(t, tok.Name, got.Name)

	for _, creator := range []string{"sarah_creates", "c1"} {
		list, err := svc.ListTokens(ctx, creator)
		require.NoError(t, err)
		assert.Len(t, list, 1, creator)
	}
}

func TestLaunch_AnonymousAndUnknownCreator(t *testing.T) {
	svc, _, _ := newTestService(t, solana.VanityPool{})
	ctx := context.Background()

	tok, err := svc.Launch(ctx, &LaunchRequest{Name: "MyCoinGOON", Symbol: "GOON", Supply: 1000})
	require.NoError(t, err)
	assert.Equal(t, token.AnonymousCreator, tok.CreatorID)
	assert.Contains(t, solana.VanityAddresses(), tok.MintAddress)

	_, err = svc.Launch(ctx, &LaunchRequest{CreatorID: "ghost", Name: "MyCoinGOON", Symbol: "GOON", Supply: 1000})
	assert.True(t, apperrors.Is(err, apperrors.CategoryResourceNotFound), "got %v", err)

	_, err = svc.GetToken(ctx, "missing")
	assert.True(t, apperrors.Is(err, apperrors.CategoryResourceNotFound), "got %v", err)
}

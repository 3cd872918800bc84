package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/goonhub/goonhub/pkg/app/errors"
	"github.com/goonhub/goonhub/pkg/events"
	"github.com/goonhub/goonhub/pkg/store/memory"
	"github.com/goonhub/goonhub/pkg/user"
)

type recordingBus struct {
	events []*events.Event
}

func (b *recordingBus) Publish(_ context.Context, e *events.Event) {
	b.events = append(b.events, e)
}

func newTestService(t *testing.T) (Service, *memory.Store, *recordingBus) {
	t.Helper()
	s := memory.New()
	bus := &recordingBus{}
	return NewService(s, bus, zap.NewNop()), s, bus
}

func mustCreate(t *testing.T, svc Service, id, handle string) *user.User {
	t.Helper()
	u, err := svc.CreateUser(context.Background(), &CreateUserRequest{ID: id, Handle: handle})
	require.NoError(t, err)
	return u
}

func TestCreateUser_ReturnsExisting(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	first := mustCreate(t, svc, "w1", "alice")
	second, err := svc.CreateUser(ctx, &CreateUserRequest{ID: "w1", Handle: "different"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if second.Handle != first.Handle {
		t.Fatalf("expected existing handle %q, got %q", first.Handle, second.Handle)
	}
}

func TestCreateUser_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, &CreateUserRequest{ID: "w1", Handle: "x"})
	if !apperrors.Is(err, apperrors.CategoryDataError) {
		t.Fatalf("expected data error for short handle, got %v", err)
	}

	_, err = svc.CreateUser(ctx, &CreateUserRequest{ID: "w2", Handle: "bobby", SolanaAddress: "nope"})
	if !apperrors.Is(err, apperrors.CategoryDataError) {
		t.Fatalf("expected data error for bad address, got %v", err)
	}

	mustCreate(t, svc, "w3", "taken")
	_, err = svc.CreateUser(ctx, &CreateUserRequest{ID: "w4", Handle: "taken"})
	if !apperrors.Is(err, apperrors.CategoryDataConflict) {
		t.Fatalf("expected conflict for duplicate handle, got %v", err)
	}
}

func TestFollow_IdempotentAndNotifiesOnce(t *testing.T) {
	svc, _, bus := newTestService(t)
	ctx := context.Background()
	mustCreate(t, svc, "fan", "fan_account")
	mustCreate(t, svc, "creator", "sarah_creates")

	for range 2 {
		_, err := svc.Follow(ctx, "fan", "creator")
		require.NoError(t, err)
	}

	p, err := svc.GetProfile(ctx, "creator")
	require.NoError(t, err)
	assert.Equal(t, 1, p.FollowerCount)
	assert.Equal(t, 0, p.FollowingCount)

	require.Len(t, bus.events, 1)
	e := bus.events[0]
	assert.Equal(t, events.UserFollowed, e.Type)
	assert.Equal(t, "fan", e.ActorID)
	assert.Equal(t, "creator", e.TargetUserID)
	assert.Equal(t, "fan_account", e.String(events.KeyActorHandle))

	following, err := svc.IsFollowing(ctx, "fan", "creator")
	require.NoError(t, err)
	assert.True(t, following)
}

func TestFollow_Errors(t *testing.T) {
	svc, _, bus := newTestService(t)
	ctx := context.Background()
	mustCreate(t, svc, "creator", "sarah_creates")

	_, err := svc.Follow(ctx, "creator", "creator")
	assert.True(t, apperrors.Is(err, apperrors.CategoryDataError), "self follow: %v", err)

	_, err = svc.Follow(ctx, "fan", "ghost")
	assert.True(t, apperrors.Is(err, apperrors.CategoryResourceNotFound), "missing user: %v", err)

	assert.Empty(t, bus.events)
}

func TestUnfollow(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	mustCreate(t, svc, "creator", "sarah_creates")

	removed, err := svc.Unfollow(ctx, "fan", "creator")
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = svc.Follow(ctx, "fan", "creator")
	require.NoError(t, err)

	removed, err = svc.Unfollow(ctx, "fan", "creator")
	require.NoError(t, err)
	assert.True(t, removed)

	p, err := svc.GetProfile(ctx, "creator")
	require.NoError(t, err)
	assert.Zero(t, p.FollowerCount)
}

func TestUpdateUser(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	mustCreate(t, svc, "w1", "alice")
	mustCreate(t, svc, "w2", "bob_b")

	bio := "hello"
	creator := true
	u, err := svc.UpdateUser(ctx, "w1", user.Patch{Bio: &bio, IsCreator: &creator})
	require.NoError(t, err)
	assert.Equal(t, "hello", u.Bio)
	assert.True(t, u.IsCreator)
	assert.Equal(t, "alice", u.Handle)

	taken := "bob_b"
	_, err = svc.UpdateUser(ctx, "w1", user.Patch{Handle: &taken})
	assert.True(t, apperrors.Is(err, apperrors.CategoryDataConflict), "got %v", err)

	bad := "!!"
	_, err = svc.UpdateUser(ctx, "w1", user.Patch{Handle: &bad})
	assert.True(t, apperrors.Is(err, apperrors.CategoryDataError), "got %v", err)

	_, err = svc.UpdateUser(ctx, "missing", user.Patch{Bio: &bio})
	assert.True(t, apperrors.Is(err, apperrors.CategoryResourceNotFound), "got %v", err)
}

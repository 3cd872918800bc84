package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/goonhub/goonhub/pkg/events/mocks"
)

func TestDispatcher_DeliversInOrder(t *testing.T) {
	var got []string
	record := func(name string) Handler {
		return HandlerFunc(func(_ context.Context, e *Event) error {
			got = append(got, name+":"+string(e.Type))
			return nil
		})
	}

	d := NewDispatcher(zap.NewNop(), record("a"))
	d.Subscribe(record("b"))

	require.NoError(t, d.Dispatch(context.Background(), New(PostCreated, "creator-1")))
	assert.Equal(t, []string{"a:post.created", "b:post.created"}, got)
}

func TestDispatcher_JoinsErrors(t *testing.T) {
	errA := errors.New("a failed")
	errB := errors.New("b failed")
	calls := 0

	d := NewDispatcher(zap.NewNop(),
		HandlerFunc(func(context.Context, *Event) error { calls++; return errA }),
		HandlerFunc(func(context.Context, *Event) error { calls++; return nil }),
		HandlerFunc(func(context.Context, *Event) error { calls++; return errB }),
	)

	err := d.Dispatch(context.Background(), New(TipSent, "u1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.Equal(t, 3, calls)

	// Publish swallows the error
	d.Publish(context.Background(), New(TipSent, "u1"))
	assert.Equal(t, 6, calls)
}

func TestEvent_Payload(t *testing.T) {
	e := New(TokenLaunched, "creator-1").
		With(KeyTokenName, "SarahGOON").
		With(KeyAmountLamports, int64(42))

	assert.Equal(t, "SarahGOON", e.String(KeyTokenName))
	assert.Equal(t, "42", e.String(KeyAmountLamports))
	assert.Empty(t, e.String("missing"))
	assert.False(t, e.OccurredAt.IsZero())
}

func TestNATSPublisher_Handle(t *testing.T) {
	conn := mocks.NewConn(t)
	p := NewNATSPublisher(conn, "goonhub.events")

	var published []byte
	conn.EXPECT().Publish("goonhub.events.user.followed", mock.Anything).
		Run(func(_ string, data []byte) { published = data }).
		Return(nil).Once()
	conn.EXPECT().Drain().Return(nil).Once()

	e := New(UserFollowed, "alice")
	e.TargetUserID = "bob"
	require.NoError(t, p.Handle(context.Background(), e))

	var decoded Event
	require.NoError(t, json.Unmarshal(published, &decoded))
	assert.Equal(t, UserFollowed, decoded.Type)
	assert.Equal(t, "alice", decoded.ActorID)
	assert.Equal(t, "bob", decoded.TargetUserID)

	require.NoError(t, p.Close())
}

func TestNATSPublisher_PostCreatedSubject(t *testing.T) {
	conn := mocks.NewConn(t)
	conn.EXPECT().Publish("goonhub.post.created", mock.Anything).Return(nil).Once()

	p := NewNATSPublisher(conn, "goonhub")
	require.NoError(t, p.Handle(context.Background(), New(PostCreated, "creator")))
}

func TestNATSPublisher_PublishError(t *testing.T) {
	conn := mocks.NewConn(t)
	conn.EXPECT().Publish("tip.sent", mock.Anything).Return(errors.New("connection closed")).Once()
	p := NewNATSPublisher(conn, "")

	assert.Equal(t, "tip.sent", p.Subject(TipSent))
	err := p.Handle(context.Background(), New(TipSent, "alice"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection closed")
}

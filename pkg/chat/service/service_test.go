package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/goonhub/goonhub/pkg/ai"
	"github.com/goonhub/goonhub/pkg/ai/mocks"
	apperrors "github.com/goonhub/goonhub/pkg/app/errors"
	"github.com/goonhub/goonhub/pkg/chat"
	"github.com/goonhub/goonhub/pkg/solana"
	"github.com/goonhub/goonhub/pkg/store"
	"github.com/goonhub/goonhub/pkg/store/memory"
)

var approved = &ai.Moderation{IsAppropriate: true}

// newSeededService returns a chat service over a store holding the demo
// creators, including sarah_creates with an active persona.
func newSeededService(t *testing.T, responder ai.Responder) (Service, *memory.Store) {
	t.Helper()
	s := memory.New()
	_, err := store.Seed(context.Background(), s)
	require.NoError(t, err)
	return NewService(s, responder, solana.NewUnverifiedPayments(zap.NewNop()), zap.NewNop()), s
}

func TestSend_StoresBothMessagesInOrder(t *testing.T) {
	responder := mocks.NewResponder(t)
	svc, s := newSeededService(t, responder)
	ctx := context.Background()

	sarah, err := s.GetUserByHandle(ctx, "sarah_creates")
	require.NoError(t, err)
	persona, err := s.GetPersona(ctx, sarah.ID)
	require.NoError(t, err)

	responder.EXPECT().Moderate(mock.Anything, "hi sarah").Return(approved, nil).Once()
	responder.EXPECT().Reply(mock.Anything, "hi sarah", persona.SystemPrompt).Return("hey you!", nil).Once()

	resp, err := svc.Send(ctx, &SendRequest{UserID: "w1", CreatorHandle: "sarah_creates", Message: "  hi sarah "})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "hey you!", resp.Response)

	msgs, err := svc.ListMessages(ctx, "sarah_creates", "w1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, chat.RoleUser, msgs[0].Role)
	assert.Equal(t, "hi sarah", msgs[0].Content)
	assert.Equal(t, chat.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "hey you!", msgs[1].Content)
}

func TestSend_DefaultPromptWithoutPersona(t *testing.T) {
	responder := mocks.NewResponder(t)
	svc, _ := newSeededService(t, responder)

	// fitness_mia has no persona in the demo data
	responder.EXPECT().Moderate(mock.Anything, mock.Anything).Return(approved, nil).Once()
	responder.EXPECT().Reply(mock.Anything, "hello", chat.DefaultSystemPrompt("fitness_mia")).Return("hi!", nil).Once()

	_, err := svc.Send(context.Background(), &SendRequest{UserID: "w1", CreatorHandle: "fitness_mia", Message: "hello"})
	require.NoError(t, err)
}

func TestSend_InactivePersonaForbidden(t *testing.T) {
	responder := mocks.NewResponder(t)
	svc, _ := newSeededService(t, responder)
	ctx := context.Background()

	inactive := false
	_, err := svc.UpsertPersona(ctx, "luna_nights", &UpsertPersonaRequest{SystemPrompt: "You are Luna.", IsActive: &inactive})
	require.NoError(t, err)

	_, err = svc.Send(ctx, &SendRequest{UserID: "w1", CreatorHandle: "luna_nights", Message: "hello"})
	assert.True(t, apperrors.Is(err, apperrors.CategoryForbidden), "got %v", err)
}

func TestSend_ModerationBlocks(t *testing.T) {
	responder := mocks.NewResponder(t)
	svc, s := newSeededService(t, responder)
	ctx := context.Background()

	responder.EXPECT().Moderate(mock.Anything, "something nasty").
		Return(&ai.Moderation{IsAppropriate: false, Reason: "message flagged for harassment"}, nil).Once()

	_, err := svc.Send(ctx, &SendRequest{UserID: "w1", CreatorHandle: "sarah_creates", Message: "something nasty"})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CategoryDataError), "got %v", err)
	var svcErr *apperrors.ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, "message flagged for harassment", svcErr.Message)

	sarah, err := s.GetUserByHandle(ctx, "sarah_creates")
	require.NoError(t, err)
	msgs, err := s.ListChatMessages(ctx, "w1", sarah.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs, "blocked messages are not stored")
}

func TestSend_ReplyFailureKeepsUserMessage(t *testing.T) {
	responder := mocks.NewResponder(t)
	svc, _ := newSeededService(t, responder)
	ctx := context.Background()

	responder.EXPECT().Moderate(mock.Anything, mock.Anything).Return(approved, nil).Once()
	responder.EXPECT().Reply(mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("upstream 500")).Once()

	_, err := svc.Send(ctx, &SendRequest{UserID: "w1", CreatorHandle: "sarah_creates", Message: "hello?"})
	assert.True(t, apperrors.Is(err, apperrors.CategoryDependencyFailure), "got %v", err)

	msgs, err := svc.ListMessages(ctx, "sarah_creates", "w1")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, chat.RoleUser, msgs[0].Role)
}

func TestSend_Errors(t *testing.T) {
	responder := mocks.NewResponder(t)
	svc, _ := newSeededService(t, responder)
	ctx := context.Background()

	_, err := svc.Send(ctx, &SendRequest{UserID: "w1", CreatorHandle: "nobody", Message: "hi"})
	assert.True(t, apperrors.Is(err, apperrors.CategoryResourceNotFound), "got %v", err)

	_, err = svc.ListMessages(ctx, "sarah_creates", "")
	assert.True(t, apperrors.Is(err, apperrors.CategoryDataError), "got %v", err)
}

func TestPersonas(t *testing.T) {
	svc, s := newSeededService(t, ai.Placeholder{})
	ctx := context.Background()

	list, err := svc.ListPersonas(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, list)
	for _, p := range list {
		require.NotNil(t, p.Creator)
		assert.True(t, p.IsActive)
	}

	_, err = svc.GetPersona(ctx, "fitness_mia")
	assert.True(t, apperrors.Is(err, apperrors.CategoryResourceNotFound), "got %v", err)

	saved, err := svc.UpsertPersona(ctx, "fitness_mia", &UpsertPersonaRequest{SystemPrompt: "You are Mia.", PricePerMessage: 1000})
	require.NoError(t, err)
	assert.True(t, saved.IsActive)

	updated, err := svc.UpsertPersona(ctx, "@fitness_mia", &UpsertPersonaRequest{SystemPrompt: "You are Mia, a coach."})
	require.NoError(t, err)
	assert.Equal(t, saved.CreatedAt, updated.CreatedAt)

	got, err := svc.GetPersona(ctx, "fitness_mia")
	require.NoError(t, err)
	assert.Equal(t, "You are Mia, a coach.", got.SystemPrompt)

	mia, err := s.GetUserByHandle(ctx, "fitness_mia")
	require.NoError(t, err)
	assert.Equal(t, mia.ID, got.CreatorID)

	_, err = svc.UpsertPersona(ctx, "ghost", &UpsertPersonaRequest{SystemPrompt: "x"})
	assert.True(t, apperrors.Is(err, apperrors.CategoryResourceNotFound), "got %v", err)
}

func TestSend_PlaceholderResponder(t *testing.T) {
	svc, _ := newSeededService(t, ai.Placeholder{})

	resp, err := svc.Send(context.Background(), &SendRequest{UserID: "w1", CreatorHandle: "sarah_creates", Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, ai.PlaceholderReply, resp.Response)
}

type rejectingVerifier struct{}

func (rejectingVerifier) VerifyPayment(context.Context, solana.Payment) error {
	return errors.New("signature not found")
}

func TestSend_PaidPersonaRequiresPayment(t *testing.T) {
	responder := mocks.NewResponder(t)
	s := memory.New()
	_, err := store.Seed(context.Background(), s)
	require.NoError(t, err)
	svc := NewService(s, responder, rejectingVerifier{}, zap.NewNop())

	responder.EXPECT().Moderate(mock.Anything, mock.Anything).Return(approved, nil).Once()

	// sarah_creates charges per message, luna_nights does not
	_, err = svc.Send(context.Background(), &SendRequest{UserID: "w1", CreatorHandle: "sarah_creates", Message: "hi"})
	assert.True(t, apperrors.Is(err, apperrors.CategoryDataError), "got %v", err)
}

func TestSend_LongMultibyteReplyStaysValidUTF8(t *testing.T) {
	responder := mocks.NewResponder(t)
	svc, _ := newSeededService(t, responder)
	ctx := context.Background()

	long := "a" + strings.Repeat("é", chat.MaxContentLen)
	responder.EXPECT().Moderate(mock.Anything, mock.Anything).Return(approved, nil).Once()
	responder.EXPECT().Reply(mock.Anything, mock.Anything, mock.Anything).Return(long, nil).Once()

	_, err := svc.Send(ctx, &SendRequest{UserID: "w1", CreatorHandle: "luna_nights", Message: "talk to me"})
	require.NoError(t, err)

	msgs, err := svc.ListMessages(ctx, "luna_nights", "w1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	stored := msgs[1].Content
	assert.True(t, utf8.ValidString(stored))
	assert.LessOrEqual(t, len(stored), chat.MaxContentLen)
	assert.Equal(t, chat.MaxContentLen-1, len(stored), "cut at the last whole rune")
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 3, "hel"},
		{"aé", 2, "a"},
		{"éé", 3, "é"},
		{"日本語", 4, "日"},
	}
	for _, tt := range tests {
		got := truncate(tt.in, tt.n)
		assert.Equal(t, tt.want, got, "truncate(%q, %d)", tt.in, tt.n)
		assert.True(t, utf8.ValidString(got))
	}
}

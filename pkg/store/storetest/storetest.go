// Package storetest holds the behavioural suite every store.Store backend
// must pass.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goonhub/goonhub/pkg/activity"
	"github.com/goonhub/goonhub/pkg/chat"
	"github.com/goonhub/goonhub/pkg/post"
	"github.com/goonhub/goonhub/pkg/store"
	"github.com/goonhub/goonhub/pkg/stream"
	"github.com/goonhub/goonhub/pkg/tip"
	"github.com/goonhub/goonhub/pkg/token"
	"github.com/goonhub/goonhub/pkg/user"
)

// Factory returns an empty store for one subtest.
type Factory func(t *testing.T) store.Store

// Run executes the suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"Users", testUsers},
		{"FollowIdempotence", testFollowIdempotence},
		{"LikeUnlikeSymmetry", testLikeUnlikeSymmetry},
		{"ConcurrentViews", testConcurrentViews},
		{"ListPostsFilters", testListPostsFilters},
		{"UpdatePost", testUpdatePost},
		{"PurchaseGatesContent", testPurchaseGatesContent},
		{"TokenRulesEnforced", testTokenRulesEnforced},
		{"Tips", testTips},
		{"PersonaUpsert", testPersonaUpsert},
		{"ChatOrdering", testChatOrdering},
		{"ActivityFeed", testActivityFeed},
		{"ActivityReadOneWay", testActivityReadOneWay},
		{"MaxViewersMonotonic", testMaxViewersMonotonic},
		{"EndStreamIdempotent", testEndStreamIdempotent},
		{"ConcurrentEndsTransitionOnce", testConcurrentEndsTransitionOnce},
		{"Seed", testSeed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			t.Cleanup(func() { _ = s.Close() })
			tt.fn(t, s)
		})
	}
}

func mustUser(t *testing.T, s store.Store, id, handle string, creator bool) *user.User {
	t.Helper()
	u, err := user.New(id, handle)
	require.NoError(t, err)
	u.IsCreator = creator
	created, err := s.CreateUser(context.Background(), u)
	require.NoError(t, err)
	return created
}

func mustPost(t *testing.T, s store.Store, d post.Draft) *post.Post {
	t.Helper()
	if d.MediaURL == "" {
		d.MediaURL = "https://cdn.example/media.jpg"
	}
	p, err := post.New(d)
	require.NoError(t, err)
	created, err := s.CreatePost(context.Background(), p)
	require.NoError(t, err)
	return created
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, err := s.GetUser(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	u := mustUser(t, s, "w1", "sarah_creates", true)
	assert.False(t, u.CreatedAt.IsZero())

	got, err := s.GetUserByHandle(ctx, "Sarah_Creates")
	require.NoError(t, err)
	assert.Equal(t, "w1", got.ID)

	dupID, err := user.New("w1", "other_handle")
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, dupID)
	require.ErrorIs(t, err, store.ErrDuplicate)

	dupHandle, err := user.New("w2", "sarah_creates")
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, dupHandle)
	require.ErrorIs(t, err, store.ErrDuplicate)

	bio := "hello"
	updated, err := s.UpdateUser(ctx, "w1", user.Patch{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "hello", updated.Bio)
	assert.Equal(t, "sarah_creates", updated.Handle)

	_, err = s.UpdateUser(ctx, "missing", user.Patch{Bio: &bio})
	require.ErrorIs(t, err, store.ErrNotFound)

	mustUser(t, s, "w3", "just_a_fan", false)
	creators, err := s.ListCreators(ctx)
	require.NoError(t, err)
	require.Len(t, creators, 1)
	assert.Equal(t, "w1", creators[0].ID)
}

func testFollowIdempotence(t *testing.T, s store.Store) {
	ctx := context.Background()

	first, created, err := s.FollowUser(ctx, "a", "b")
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := s.FollowUser(ctx, "a", "b")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	count, err := s.GetFollowerCount(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	following, err := s.GetFollowingCount(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, following)

	_, _, err = s.FollowUser(ctx, "c", "b")
	require.NoError(t, err)
	ids, err := s.ListFollowerIDs(ctx, "b")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "c"}, ids)

	ok, err := s.IsFollowing(ctx, "a", "b")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.IsFollowing(ctx, "b", "a")
	require.NoError(t, err)
	assert.False(t, ok)

	removed, err := s.UnfollowUser(ctx, "a", "b")
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = s.UnfollowUser(ctx, "a", "b")
	require.NoError(t, err)
	assert.False(t, removed)

	_, _, err = s.FollowUser(ctx, "a", "a")
	require.ErrorIs(t, err, user.ErrInvalid)
}

func testLikeUnlikeSymmetry(t *testing.T, s store.Store) {
	ctx := context.Background()
	p := mustPost(t, s, post.Draft{CreatorID: "c1"})

	removed, err := s.UnlikePost(ctx, p.ID, "u1")
	require.NoError(t, err)
	assert.False(t, removed)

	liked, err := s.LikePost(ctx, p.ID, "u1")
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = s.LikePost(ctx, p.ID, "u1")
	require.NoError(t, err)
	assert.False(t, liked)

	got, err := s.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Likes)

	has, err := s.HasLiked(ctx, p.ID, "u1")
	require.NoError(t, err)
	assert.True(t, has)

	removed, err = s.UnlikePost(ctx, p.ID, "u1")
	require.NoError(t, err)
	assert.True(t, removed)

	got, err = s.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Likes)

	_, err = s.LikePost(ctx, "missing", "u1")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testConcurrentViews(t *testing.T, s store.Store) {
	ctx := context.Background()
	p := mustPost(t, s, post.Draft{CreatorID: "c1"})

	const workers = 20
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = s.IncrementPostViews(ctx, p.ID)
			_, _ = s.LikePost(ctx, p.ID, fmt.Sprintf("u%d", i))
		}(i)
	}
	wg.Wait()

	got, err := s.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(workers), got.Views)
	assert.Equal(t, int64(workers), got.Likes)

	_, err = s.IncrementPostViews(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testListPostsFilters(t *testing.T, s store.Store) {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Millisecond)

	older := mustPostAt(t, s, post.Draft{CreatorID: "c1", Tags: []string{"cosplay"}}, base.Add(-time.Hour))
	newer := mustPostAt(t, s, post.Draft{CreatorID: "c1", Tags: []string{"gaming"}}, base)
	other := mustPostAt(t, s, post.Draft{CreatorID: "c2", Tags: []string{"cosplay"}, Status: post.StatusDraft}, base.Add(-time.Minute))

	all, err := s.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{newer.ID, other.ID, older.ID}, postIDs(all))

	byCreator, err := s.ListPosts(ctx, store.WithCreator("c1"))
	require.NoError(t, err)
	assert.Equal(t, []string{newer.ID, older.ID}, postIDs(byCreator))

	byTag, err := s.ListPosts(ctx, store.WithTag("COSPLAY"))
	require.NoError(t, err)
	assert.Equal(t, []string{other.ID, older.ID}, postIDs(byTag))

	published, err := s.ListPosts(ctx, store.WithStatus(post.StatusPublished), store.WithLimit(1))
	require.NoError(t, err)
	assert.Equal(t, []string{newer.ID}, postIDs(published))
}

func mustPostAt(t *testing.T, s store.Store, d post.Draft, at time.Time) *post.Post {
	t.Helper()
	d.MediaURL = "https://cdn.example/media.jpg"
	p, err := post.New(d)
	require.NoError(t, err)
	p.CreatedAt = at
	created, err := s.CreatePost(context.Background(), p)
	require.NoError(t, err)
	return created
}

func postIDs(ps []*post.Post) []string {
	ids := make([]string, 0, len(ps))
	for _, p := range ps {
		ids = append(ids, p.ID)
	}
	return ids
}

func testUpdatePost(t *testing.T, s store.Store) {
	ctx := context.Background()
	p := mustPost(t, s, post.Draft{CreatorID: "c1", Caption: "old"})

	archived := post.StatusArchived
	caption := "new"
	updated, err := s.UpdatePost(ctx, p.ID, post.Patch{Status: &archived, Caption: &caption})
	require.NoError(t, err)
	assert.Equal(t, post.StatusArchived, updated.Status)
	assert.Equal(t, "new", updated.Caption)
	assert.Equal(t, p.MediaURL, updated.MediaURL)

	bad := post.Visibility("friends")
	_, err = s.UpdatePost(ctx, p.ID, post.Patch{Visibility: &bad})
	require.ErrorIs(t, err, post.ErrInvalid)

	_, err = s.UpdatePost(ctx, "missing", post.Patch{Caption: &caption})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testPurchaseGatesContent(t *testing.T, s store.Store) {
	ctx := context.Background()
	p := mustPost(t, s, post.Draft{CreatorID: "c1", PriceLamports: 500_000_000})
	require.True(t, p.IsPriced())

	has, err := s.HasPurchased(ctx, "u1", p.ID)
	require.NoError(t, err)
	assert.False(t, has)

	purchase, err := post.NewPurchase("u1", p.ID, p.PriceLamports, "")
	require.NoError(t, err)
	_, err = s.CreatePurchase(ctx, purchase)
	require.NoError(t, err)

	has, err = s.HasPurchased(ctx, "u1", p.ID)
	require.NoError(t, err)
	assert.True(t, has)

	again, err := post.NewPurchase("u1", p.ID, p.PriceLamports, "")
	require.NoError(t, err)
	_, err = s.CreatePurchase(ctx, again)
	require.ErrorIs(t, err, store.ErrDuplicate)

	purchases, err := s.ListPurchasesByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, purchases, 1)
}

func testTokenRulesEnforced(t *testing.T, s store.Store) {
	ctx := context.Background()

	bad := &token.Token{ID: "t-bad", CreatorID: "c1", MintAddress: "mint", Name: "MyCoin", Symbol: token.Symbol, Supply: 1000}
	_, err := s.CreateToken(ctx, bad)
	require.ErrorIs(t, err, token.ErrInvalid)

	good, err := token.New(token.Params{CreatorID: "c1", MintAddress: "mint1", Name: "MyCoinGOON", Symbol: token.Symbol, Supply: 1000})
	require.NoError(t, err)
	_, err = s.CreateToken(ctx, good)
	require.NoError(t, err)

	other, err := token.New(token.Params{CreatorID: "c2", MintAddress: "mint2", Name: "OtherGOON", Symbol: token.Symbol, Supply: 5})
	require.NoError(t, err)
	_, err = s.CreateToken(ctx, other)
	require.NoError(t, err)

	got, err := s.GetToken(ctx, good.ID)
	require.NoError(t, err)
	assert.Equal(t, "MyCoinGOON", got.Name)

	_, err = s.GetToken(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	mine, err := s.ListTokens(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, good.ID, mine[0].ID)

	all, err := s.ListTokens(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func testTips(t *testing.T, s store.Store) {
	ctx := context.Background()

	for _, amount := range []int64{100, 250} {
		tp, err := tip.New("fan", "creator", amount, "gm", "")
		require.NoError(t, err)
		_, err = s.CreateTip(ctx, tp)
		require.NoError(t, err)
	}

	received, err := s.ListTipsReceived(ctx, "creator")
	require.NoError(t, err)
	assert.Len(t, received, 2)

	sum, err := s.SumTipsReceived(ctx, "creator")
	require.NoError(t, err)
	assert.Equal(t, int64(350), sum)

	none, err := s.SumTipsReceived(ctx, "fan")
	require.NoError(t, err)
	assert.Zero(t, none)
}

func testPersonaUpsert(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, err := s.GetPersona(ctx, "c1")
	require.ErrorIs(t, err, store.ErrNotFound)

	p, err := chat.NewPersona("c1", "first prompt", 0, true)
	require.NoError(t, err)
	_, err = s.UpsertPersona(ctx, p)
	require.NoError(t, err)

	p2, err := chat.NewPersona("c1", "second prompt", 1000, false)
	require.NoError(t, err)
	updated, err := s.UpsertPersona(ctx, p2)
	require.NoError(t, err)
	assert.Equal(t, "second prompt", updated.SystemPrompt)
	assert.False(t, updated.IsActive)

	got, err := s.GetPersona(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), got.PricePerMessage)

	active, err := s.ListActivePersonas(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func testChatOrdering(t *testing.T, s store.Store) {
	ctx := context.Background()
	at := time.Now().UTC().Truncate(time.Millisecond)

	var want []string
	for i, role := range []chat.Role{chat.RoleUser, chat.RoleAssistant, chat.RoleUser, chat.RoleAssistant} {
		m, err := chat.NewMessage("w1", "c1", role, fmt.Sprintf("message %d", i), "")
		require.NoError(t, err)
		// identical timestamps exercise the insertion order tie-breaker
		m.CreatedAt = at
		_, err = s.CreateChatMessage(ctx, m)
		require.NoError(t, err)
		want = append(want, m.ID)
	}

	other, err := chat.NewMessage("w2", "c1", chat.RoleUser, "someone else", "")
	require.NoError(t, err)
	_, err = s.CreateChatMessage(ctx, other)
	require.NoError(t, err)

	msgs, err := s.ListChatMessages(ctx, "w1", "c1")
	require.NoError(t, err)
	got := make([]string, 0, len(msgs))
	for _, m := range msgs {
		got = append(got, m.ID)
	}
	assert.Equal(t, want, got)
	assert.Equal(t, chat.RoleUser, msgs[0].Role)
	assert.Equal(t, chat.RoleAssistant, msgs[1].Role)
}

func newActivity(typ activity.Type, userID, targetID string, at time.Time) *activity.Activity {
	a := activity.New(typ, string(typ), "")
	a.UserID = activity.StringPtr(userID)
	a.TargetUserID = activity.StringPtr(targetID)
	a.CreatedAt = at
	return a
}

func testActivityFeed(t *testing.T, s store.Store) {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Millisecond)

	global := newActivity(activity.TypeTokenLaunched, "", "", base.Add(-3*time.Minute))
	owned := newActivity(activity.TypeTipReceived, "alice", "bob", base.Add(-2*time.Minute))
	targeted := newActivity(activity.TypeNewFollower, "carol", "alice", base.Add(-time.Minute))
	hidden := newActivity(activity.TypeNewPost, "dave", "erin", base)
	hidden.Metadata = map[string]any{"post_caption": "hi"}

	_, err := s.CreateActivity(ctx, global)
	require.NoError(t, err)
	require.NoError(t, s.CreateActivities(ctx, []*activity.Activity{owned, targeted, hidden}))

	feed, err := s.ListActivities(ctx, "alice", 10)
	require.NoError(t, err)
	require.Len(t, feed, 3)
	assert.Equal(t, targeted.ID, feed[0].ID)
	assert.Equal(t, owned.ID, feed[1].ID)
	assert.Equal(t, global.ID, feed[2].ID)

	limited, err := s.ListActivities(ctx, "alice", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	unread, err := s.CountUnreadActivities(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 3, unread)

	erinFeed, err := s.ListActivities(ctx, "erin", 10)
	require.NoError(t, err)
	require.Len(t, erinFeed, 2)
	assert.Equal(t, "hi", erinFeed[0].Metadata["post_caption"])
}

func testActivityReadOneWay(t *testing.T, s store.Store) {
	ctx := context.Background()
	a := newActivity(activity.TypeNewFollower, "bob", "alice", time.Now().UTC())
	_, err := s.CreateActivity(ctx, a)
	require.NoError(t, err)

	for range 2 {
		read, err := s.MarkActivityAsRead(ctx, a.ID)
		require.NoError(t, err)
		assert.True(t, read.IsRead)
	}

	unread, err := s.CountUnreadActivities(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, unread)

	_, err = s.MarkActivityAsRead(ctx, "00000000-0000-0000-0000-000000000000")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testMaxViewersMonotonic(t *testing.T, s store.Store) {
	ctx := context.Background()
	ls, err := stream.New("c1", "late night", "")
	require.NoError(t, err)
	_, err = s.CreateLiveStream(ctx, ls)
	require.NoError(t, err)

	var last *stream.LiveStream
	for _, n := range []int{5, 20, 3, 30, 1} {
		last, err = s.UpdateStreamViewerCount(ctx, ls.ID, n)
		require.NoError(t, err)
	}
	assert.Equal(t, 30, last.MaxViewers)
	assert.Equal(t, 1, last.ViewerCount)

	got, err := s.GetLiveStream(ctx, ls.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, got.MaxViewers)

	_, err = s.UpdateStreamViewerCount(ctx, "00000000-0000-0000-0000-000000000000", 1)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testEndStreamIdempotent(t *testing.T, s store.Store) {
	ctx := context.Background()
	ls, err := stream.New("c1", "title", "")
	require.NoError(t, err)
	created, err := s.CreateLiveStream(ctx, ls)
	require.NoError(t, err)
	assert.Equal(t, stream.StatusLive, created.Status)

	live, err := s.ListLiveStreams(ctx, stream.StatusLive)
	require.NoError(t, err)
	assert.Len(t, live, 1)

	first, wasLive, err := s.EndLiveStream(ctx, ls.ID)
	require.NoError(t, err)
	assert.True(t, wasLive)
	assert.Equal(t, stream.StatusEnded, first.Status)
	require.NotNil(t, first.EndedAt)

	second, wasLive, err := s.EndLiveStream(ctx, ls.ID)
	require.NoError(t, err)
	assert.False(t, wasLive, "a repeated end is not a transition")
	assert.Equal(t, stream.StatusEnded, second.Status)
	require.NotNil(t, second.EndedAt)
	assert.False(t, second.EndedAt.Before(*first.EndedAt))

	live, err = s.ListLiveStreams(ctx, stream.StatusLive)
	require.NoError(t, err)
	assert.Empty(t, live)

	_, _, err = s.EndLiveStream(ctx, "00000000-0000-0000-0000-000000000000")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testConcurrentEndsTransitionOnce(t *testing.T, s store.Store) {
	ctx := context.Background()
	ls, err := stream.New("c1", "race", "")
	require.NoError(t, err)
	_, err = s.CreateLiveStream(ctx, ls)
	require.NoError(t, err)

	const workers = 8
	var (
		wg          sync.WaitGroup
		transitions atomic.Int32
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, wasLive, err := s.EndLiveStream(ctx, ls.ID)
			assert.NoError(t, err)
			if wasLive {
				transitions.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), transitions.Load())
}

func testSeed(t *testing.T, s store.Store) {
	ctx := context.Background()

	n, err := store.Seed(ctx, s)
	require.NoError(t, err)
	assert.Positive(t, n)

	again, err := store.Seed(ctx, s)
	require.NoError(t, err)
	assert.Zero(t, again)

	sarah, err := s.GetUserByHandle(ctx, "sarah_creates")
	require.NoError(t, err)
	assert.True(t, sarah.IsCreator)

	persona, err := s.GetPersona(ctx, sarah.ID)
	require.NoError(t, err)
	assert.True(t, persona.IsActive)

	posts, err := s.ListPosts(ctx, store.WithCreator(sarah.ID))
	require.NoError(t, err)
	assert.NotEmpty(t, posts)
}

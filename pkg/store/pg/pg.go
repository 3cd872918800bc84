// Package pg is the Postgres store.Store backend built on bun.
package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/goonhub/goonhub/pkg/activity"
	"github.com/goonhub/goonhub/pkg/chat"
	"github.com/goonhub/goonhub/pkg/post"
	"github.com/goonhub/goonhub/pkg/store"
	"github.com/goonhub/goonhub/pkg/stream"
	"github.com/goonhub/goonhub/pkg/tip"
	"github.com/goonhub/goonhub/pkg/token"
	"github.com/goonhub/goonhub/pkg/user"
)

const uniqueViolation = "23505"

// Store is a Postgres implementation of store.Store.
type Store struct {
	db *bun.DB
}

var _ store.Store = (*Store)(nil)

// NewStore creates a new postgres implementation of the store
func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.Field('C') == uniqueViolation
}

// mapErr turns driver errors into store sentinels and wraps the rest.
func mapErr(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return store.ErrNotFound
	case isUniqueViolation(err):
		return fmt.Errorf("failed to %s: %w", op, store.ErrDuplicate)
	default:
		return fmt.Errorf("failed to %s: %w", op, err)
	}
}

func (s *Store) GetUser(ctx context.Context, id string) (*user.User, error) {
	dao := new(UserDao)
	if err := s.db.NewSelect().Model(dao).Where("id = ?", id).Scan(ctx); err != nil {
		return nil, mapErr(err, "get user")
	}
	return toUser(dao), nil
}

func (s *Store) GetUserByHandle(ctx context.Context, handle string) (*user.User, error) {
	dao := new(UserDao)
	err := s.db.NewSelect().Model(dao).Where("handle = ?", user.NormalizeHandle(handle)).Scan(ctx)
	if err != nil {
		return nil, mapErr(err, "get user by handle")
	}
	return toUser(dao), nil
}

func (s *Store) CreateUser(ctx context.Context, u *user.User) (*user.User, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	dao := toUserDao(u)
	if _, err := s.db.NewInsert().Model(dao).Returning("*").Exec(ctx); err != nil {
		return nil, mapErr(err, "create user")
	}
	return toUser(dao), nil
}

func (s *Store) UpdateUser(ctx context.Context, id string, patch user.Patch) (*user.User, error) {
	var out *user.User
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		dao := new(UserDao)
		if err := tx.NewSelect().Model(dao).Where("id = ?", id).For("UPDATE").Scan(ctx); err != nil {
			return mapErr(err, "load user")
		}

		u := toUser(dao)
		if err := patch.Apply(u); err != nil {
			return err
		}

		updated := toUserDao(u)
		_, err := tx.NewUpdate().
			Model(updated).
			Column("handle", "avatar_url", "bio", "is_creator", "age_verified", "solana_address").
			WherePK().
			Exec(ctx)
		if err != nil {
			return mapErr(err, "update user")
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) ListCreators(ctx context.Context) ([]*user.User, error) {
	var daos []*UserDao
	err := s.db.NewSelect().
		Model(&daos).
		Where("is_creator = TRUE").
		Order("created_at ASC", "handle ASC").
		Scan(ctx)
	if err != nil {
		return nil, mapErr(err, "list creators")
	}

	out := make([]*user.User, 0, len(daos))
	for _, dao := range daos {
		out = append(out, toUser(dao))
	}
	return out, nil
}

func (s *Store) FollowUser(ctx context.Context, followerID, followingID string) (*user.Follow, bool, error) {
	f, err := user.NewFollow(followerID, followingID)
	if err != nil {
		return nil, false, err
	}

	dao := &FollowDao{ID: f.ID, FollowerID: f.FollowerID, FollowingID: f.FollowingID, CreatedAt: f.CreatedAt}
	res, err := s.db.NewInsert().
		Model(dao).
		On("CONFLICT (follower_id, following_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, false, mapErr(err, "follow user")
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return toFollow(dao), true, nil
	}

	existing := new(FollowDao)
	err = s.db.NewSelect().
		Model(existing).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Scan(ctx)
	if err != nil {
		return nil, false, mapErr(err, "load follow")
	}
	return toFollow(existing), false, nil
}

func (s *Store) UnfollowUser(ctx context.Context, followerID, followingID string) (bool, error) {
	res, err := s.db.NewDelete().
		Model((*FollowDao)(nil)).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Exec(ctx)
	if err != nil {
		return false, mapErr(err, "unfollow user")
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *Store) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	ok, err := s.db.NewSelect().
		Model((*FollowDao)(nil)).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Exists(ctx)
	if err != nil {
		return false, mapErr(err, "check follow")
	}
	return ok, nil
}

func (s *Store) GetFollowerCount(ctx context.Context, userID string) (int, error) {
	n, err := s.db.NewSelect().Model((*FollowDao)(nil)).Where("following_id = ?", userID).Count(ctx)
	if err != nil {
		return 0, mapErr(err, "count followers")
	}
	return n, nil
}

func (s *Store) GetFollowingCount(ctx context.Context, userID string) (int, error) {
	n, err := s.db.NewSelect().Model((*FollowDao)(nil)).Where("follower_id = ?", userID).Count(ctx)
	if err != nil {
		return 0, mapErr(err, "count following")
	}
	return n, nil
}

func (s *Store) ListFollowerIDs(ctx context.Context, userID string) ([]string, error) {
	ids := make([]string, 0)
	err := s.db.NewSelect().
		Model((*FollowDao)(nil)).
		Column("follower_id").
		Where("following_id = ?", userID).
		Order("created_at ASC").
		Scan(ctx, &ids)
	if err != nil {
		return nil, mapErr(err, "list followers")
	}
	return ids, nil
}

func (s *Store) GetPost(ctx context.Context, id string) (*post.Post, error) {
	dao := new(PostDao)
	if err := s.db.NewSelect().Model(dao).Where("id = ?", id).Scan(ctx); err != nil {
		return nil, mapErr(err, "get post")
	}
	return toPost(dao), nil
}

func (s *Store) ListPosts(ctx context.Context, opts ...store.PostQueryOption) ([]*post.Post, error) {
	o := store.ApplyPostOptions(opts...)

	var daos []*PostDao
	q := s.db.NewSelect().Model(&daos)
	if o.CreatorID != "" {
		q = q.Where("creator_id = ?", o.CreatorID)
	}
	if o.Tag != "" {
		q = q.Where("? = ANY(tags)", strings.ToLower(o.Tag))
	}
	if o.Status != "" {
		q = q.Where("status = ?", string(o.Status))
	}
	q = q.Order("created_at DESC")
	if o.Limit > 0 {
		q = q.Limit(o.Limit)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, mapErr(err, "list posts")
	}

	out := make([]*post.Post, 0, len(daos))
	for _, dao := range daos {
		out = append(out, toPost(dao))
	}
	return out, nil
}

func (s *Store) CreatePost(ctx context.Context, p *post.Post) (*post.Post, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	dao := toPostDao(p)
	if _, err := s.db.NewInsert().Model(dao).Returning("*").Exec(ctx); err != nil {
		return nil, mapErr(err, "create post")
	}
	return toPost(dao), nil
}

func (s *Store) UpdatePost(ctx context.Context, id string, patch post.Patch) (*post.Post, error) {
	var out *post.Post
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		dao := new(PostDao)
		if err := tx.NewSelect().Model(dao).Where("id = ?", id).For("UPDATE").Scan(ctx); err != nil {
			return mapErr(err, "load post")
		}

		p := toPost(dao)
		if err := patch.Apply(p); err != nil {
			return err
		}

		_, err := tx.NewUpdate().
			Model(toPostDao(p)).
			Column("caption", "thumb_url", "price_lamports", "visibility", "status", "tags").
			WherePK().
			Exec(ctx)
		if err != nil {
			return mapErr(err, "update post")
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) IncrementPostViews(ctx context.Context, id string) (*post.Post, error) {
	dao := new(PostDao)
	err := s.db.NewUpdate().
		Model(dao).
		Set("views = views + 1").
		Where("id = ?", id).
		Returning("*").
		Scan(ctx)
	if err != nil {
		return nil, mapErr(err, "increment views")
	}
	return toPost(dao), nil
}

// LikePost inserts the edge and bumps the counter in one transaction.
func (s *Store) LikePost(ctx context.Context, postID, userID string) (bool, error) {
	var liked bool
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockPost(ctx, tx, postID); err != nil {
			return err
		}

		res, err := tx.NewInsert().
			Model(&PostLikeDao{PostID: postID, UserID: userID}).
			On("CONFLICT (post_id, user_id) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return mapErr(err, "insert like")
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil
		}

		if _, err := tx.NewUpdate().
			Model((*PostDao)(nil)).
			Set("likes = likes + 1").
			Where("id = ?", postID).
			Exec(ctx); err != nil {
			return mapErr(err, "increment likes")
		}
		liked = true
		return nil
	})
	return liked, err
}

// UnlikePost deletes the edge and decrements the counter in one transaction.
func (s *Store) UnlikePost(ctx context.Context, postID, userID string) (bool, error) {
	var removed bool
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockPost(ctx, tx, postID); err != nil {
			return err
		}

		res, err := tx.NewDelete().
			Model((*PostLikeDao)(nil)).
			Where("post_id = ? AND user_id = ?", postID, userID).
			Exec(ctx)
		if err != nil {
			return mapErr(err, "delete like")
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil
		}

		if _, err := tx.NewUpdate().
			Model((*PostDao)(nil)).
			Set("likes = likes - 1").
			Where("id = ?", postID).
			Exec(ctx); err != nil {
			return mapErr(err, "decrement likes")
		}
		removed = true
		return nil
	})
	return removed, err
}

func lockPost(ctx context.Context, tx bun.Tx, postID string) error {
	var id string
	err := tx.NewSelect().
		Model((*PostDao)(nil)).
		Column("id").
		Where("id = ?", postID).
		For("UPDATE").
		Scan(ctx, &id)
	return mapErr(err, "lock post")
}

func (s *Store) HasLiked(ctx context.Context, postID, userID string) (bool, error) {
	ok, err := s.db.NewSelect().
		Model((*PostLikeDao)(nil)).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Exists(ctx)
	if err != nil {
		return false, mapErr(err, "check like")
	}
	return ok, nil
}

func (s *Store) CreatePurchase(ctx context.Context, p *post.Purchase) (*post.Purchase, error) {
	if p.UserID == "" || p.PostID == "" {
		return nil, fmt.Errorf("%w: purchase needs user_id and post_id", post.ErrInvalid)
	}
	dao := toPurchaseDao(p)
	if _, err := s.db.NewInsert().Model(dao).Returning("*").Exec(ctx); err != nil {
		return nil, mapErr(err, "create purchase")
	}
	return toPurchase(dao), nil
}

func (s *Store) HasPurchased(ctx context.Context, userID, postID string) (bool, error) {
	ok, err := s.db.NewSelect().
		Model((*PurchaseDao)(nil)).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Exists(ctx)
	if err != nil {
		return false, mapErr(err, "check purchase")
	}
	return ok, nil
}

func (s *Store) ListPurchasesByUser(ctx context.Context, userID string) ([]*post.Purchase, error) {
	var daos []*PurchaseDao
	err := s.db.NewSelect().Model(&daos).Where("user_id = ?", userID).Order("created_at DESC").Scan(ctx)
	if err != nil {
		return nil, mapErr(err, "list purchases")
	}
	out := make([]*post.Purchase, 0, len(daos))
	for _, dao := range daos {
		out = append(out, toPurchase(dao))
	}
	return out, nil
}

func (s *Store) CreateToken(ctx context.Context, t *token.Token) (*token.Token, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	dao := toTokenDao(t)
	if _, err := s.db.NewInsert().Model(dao).Returning("*").Exec(ctx); err != nil {
		return nil, mapErr(err, "create token")
	}
	return toToken(dao), nil
}

func (s *Store) GetToken(ctx context.Context, id string) (*token.Token, error) {
	dao := new(TokenDao)
	if err := s.db.NewSelect().Model(dao).Where("id = ?", id).Scan(ctx); err != nil {
		return nil, mapErr(err, "get token")
	}
	return toToken(dao), nil
}

func (s *Store) ListTokens(ctx context.Context, creatorID string) ([]*token.Token, error) {
	var daos []*TokenDao
	q := s.db.NewSelect().Model(&daos)
	if creatorID != "" {
		q = q.Where("creator_id = ?", creatorID)
	}
	if err := q.Order("created_at DESC").Scan(ctx); err != nil {
		return nil, mapErr(err, "list tokens")
	}
	out := make([]*token.Token, 0, len(daos))
	for _, dao := range daos {
		out = append(out, toToken(dao))
	}
	return out, nil
}

func (s *Store) CreateTip(ctx context.Context, t *tip.Tip) (*tip.Tip, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	dao := toTipDao(t)
	if _, err := s.db.NewInsert().Model(dao).Returning("*").Exec(ctx); err != nil {
		return nil, mapErr(err, "create tip")
	}
	return toTip(dao), nil
}

func (s *Store) ListTipsReceived(ctx context.Context, userID string) ([]*tip.Tip, error) {
	var daos []*TipDao
	err := s.db.NewSelect().Model(&daos).Where("to_user = ?", userID).Order("created_at DESC").Scan(ctx)
	if err != nil {
		return nil, mapErr(err, "list tips")
	}
	out := make([]*tip.Tip, 0, len(daos))
	for _, dao := range daos {
		out = append(out, toTip(dao))
	}
	return out, nil
}

func (s *Store) SumTipsReceived(ctx context.Context, userID string) (int64, error) {
	var sum int64
	err := s.db.NewSelect().
		Model((*TipDao)(nil)).
		ColumnExpr("COALESCE(SUM(amount_lamports), 0)").
		Where("to_user = ?", userID).
		Scan(ctx, &sum)
	if err != nil {
		return 0, mapErr(err, "sum tips")
	}
	return sum, nil
}

func (s *Store) GetPersona(ctx context.Context, creatorID string) (*chat.Persona, error) {
	dao := new(PersonaDao)
	if err := s.db.NewSelect().Model(dao).Where("creator_id = ?", creatorID).Scan(ctx); err != nil {
		return nil, mapErr(err, "get persona")
	}
	return toPersona(dao), nil
}

func (s *Store) UpsertPersona(ctx context.Context, p *chat.Persona) (*chat.Persona, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	dao := toPersonaDao(p)
	err := s.db.NewInsert().
		Model(dao).
		On("CONFLICT (creator_id) DO UPDATE").
		Set("system_prompt = EXCLUDED.system_prompt").
		Set("price_per_message = EXCLUDED.price_per_message").
		Set("is_active = EXCLUDED.is_active").
		Returning("*").
		Scan(ctx)
	if err != nil {
		return nil, mapErr(err, "upsert persona")
	}
	return toPersona(dao), nil
}

func (s *Store) ListActivePersonas(ctx context.Context) ([]*chat.Persona, error) {
	var daos []*PersonaDao
	err := s.db.NewSelect().Model(&daos).Where("is_active = TRUE").Order("created_at ASC", "creator_id ASC").Scan(ctx)
	if err != nil {
		return nil, mapErr(err, "list personas")
	}
	out := make([]*chat.Persona, 0, len(daos))
	for _, dao := range daos {
		out = append(out, toPersona(dao))
	}
	return out, nil
}

func (s *Store) CreateChatMessage(ctx context.Context, m *chat.Message) (*chat.Message, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	dao := toChatMessageDao(m)
	if _, err := s.db.NewInsert().Model(dao).Returning("*").Exec(ctx); err != nil {
		return nil, mapErr(err, "create chat message")
	}
	return toChatMessage(dao), nil
}

func (s *Store) ListChatMessages(ctx context.Context, userID, creatorID string) ([]*chat.Message, error) {
	var daos []*ChatMessageDao
	err := s.db.NewSelect().
		Model(&daos).
		Where("user_id = ? AND creator_id = ?", userID, creatorID).
		Order("created_at ASC", "seq ASC").
		Scan(ctx)
	if err != nil {
		return nil, mapErr(err, "list chat messages")
	}
	out := make([]*chat.Message, 0, len(daos))
	for _, dao := range daos {
		out = append(out, toChatMessage(dao))
	}
	return out, nil
}

func (s *Store) CreateActivity(ctx context.Context, a *activity.Activity) (*activity.Activity, error) {
	dao := toActivityDao(a)
	if _, err := s.db.NewInsert().Model(dao).Returning("*").Exec(ctx); err != nil {
		return nil, mapErr(err, "create activity")
	}
	return toActivity(dao), nil
}

// CreateActivities writes the batch with a single multi-row INSERT.
func (s *Store) CreateActivities(ctx context.Context, as []*activity.Activity) error {
	if len(as) == 0 {
		return nil
	}
	daos := make([]*ActivityDao, 0, len(as))
	for _, a := range as {
		daos = append(daos, toActivityDao(a))
	}
	if _, err := s.db.NewInsert().Model(&daos).Exec(ctx); err != nil {
		return mapErr(err, "create activities")
	}
	return nil
}

func visibleTo(userID string) func(*bun.SelectQuery) *bun.SelectQuery {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		q = q.Where("user_id IS NULL")
		if userID != "" {
			q = q.WhereOr("user_id = ?", userID).WhereOr("target_user_id = ?", userID)
		}
		return q
	}
}

func (s *Store) ListActivities(ctx context.Context, userID string, limit int) ([]*activity.Activity, error) {
	var daos []*ActivityDao
	q := s.db.NewSelect().
		Model(&daos).
		WhereGroup(" AND ", visibleTo(userID)).
		Order("created_at DESC", "seq DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, mapErr(err, "list activities")
	}
	out := make([]*activity.Activity, 0, len(daos))
	for _, dao := range daos {
		out = append(out, toActivity(dao))
	}
	return out, nil
}

func (s *Store) CountUnreadActivities(ctx context.Context, userID string) (int, error) {
	n, err := s.db.NewSelect().
		Model((*ActivityDao)(nil)).
		Where("is_read = FALSE").
		WhereGroup(" AND ", visibleTo(userID)).
		Count(ctx)
	if err != nil {
		return 0, mapErr(err, "count unread activities")
	}
	return n, nil
}

func (s *Store) MarkActivityAsRead(ctx context.Context, id string) (*activity.Activity, error) {
	dao := new(ActivityDao)
	err := s.db.NewUpdate().
		Model(dao).
		Set("is_read = TRUE").
		Where("id = ?", id).
		Returning("*").
		Scan(ctx)
	if err != nil {
		return nil, mapErr(err, "mark activity read")
	}
	return toActivity(dao), nil
}

func (s *Store) CreateLiveStream(ctx context.Context, ls *stream.LiveStream) (*stream.LiveStream, error) {
	if ls.Status == "" {
		ls.Status = stream.StatusLive
	}
	dao := toLiveStreamDao(ls)
	if _, err := s.db.NewInsert().Model(dao).Returning("*").Exec(ctx); err != nil {
		return nil, mapErr(err, "create live stream")
	}
	return toLiveStream(dao), nil
}

func (s *Store) GetLiveStream(ctx context.Context, id string) (*stream.LiveStream, error) {
	dao := new(LiveStreamDao)
	if err := s.db.NewSelect().Model(dao).Where("id = ?", id).Scan(ctx); err != nil {
		return nil, mapErr(err, "get live stream")
	}
	return toLiveStream(dao), nil
}

func (s *Store) ListLiveStreams(ctx context.Context, status stream.Status) ([]*stream.LiveStream, error) {
	var daos []*LiveStreamDao
	q := s.db.NewSelect().Model(&daos)
	if status != "" {
		q = q.Where("status = ?", string(status))
	}
	if err := q.Order("created_at DESC").Scan(ctx); err != nil {
		return nil, mapErr(err, "list live streams")
	}
	out := make([]*stream.LiveStream, 0, len(daos))
	for _, dao := range daos {
		out = append(out, toLiveStream(dao))
	}
	return out, nil
}

// EndLiveStream forces the ended state. Calling it again re-stamps ended_at.
// The row lock serialises concurrent ends so only one observes the live state.
func (s *Store) EndLiveStream(ctx context.Context, id string) (*stream.LiveStream, bool, error) {
	var (
		out     *stream.LiveStream
		wasLive bool
	)
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		before := new(LiveStreamDao)
		if err := tx.NewSelect().Model(before).Where("id = ?", id).For("UPDATE").Scan(ctx); err != nil {
			return mapErr(err, "load live stream")
		}
		wasLive = before.Status == string(stream.StatusLive)

		dao := new(LiveStreamDao)
		err := tx.NewUpdate().
			Model(dao).
			Set("status = ?", string(stream.StatusEnded)).
			Set("ended_at = clock_timestamp()").
			Set("duration = GREATEST(EXTRACT(EPOCH FROM (clock_timestamp() - created_at))::bigint, 0)").
			Where("id = ?", id).
			Returning("*").
			Scan(ctx)
		if err != nil {
			return mapErr(err, "end live stream")
		}
		out = toLiveStream(dao)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, wasLive, nil
}

// UpdateStreamViewerCount sets viewer_count and raises max_viewers atomically.
func (s *Store) UpdateStreamViewerCount(ctx context.Context, id string, count int) (*stream.LiveStream, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: viewer count must not be negative", stream.ErrInvalid)
	}
	dao := new(LiveStreamDao)
	err := s.db.NewUpdate().
		Model(dao).
		Set("viewer_count = ?", count).
		Set("max_viewers = GREATEST(max_viewers, ?)", count).
		Where("id = ?", id).
		Returning("*").
		Scan(ctx)
	if err != nil {
		return nil, mapErr(err, "update viewer count")
	}
	return toLiveStream(dao), nil
}

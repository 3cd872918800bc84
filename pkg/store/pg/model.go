package pg

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/goonhub/goonhub/pkg/activity"
	"github.com/goonhub/goonhub/pkg/chat"
	"github.com/goonhub/goonhub/pkg/post"
	"github.com/goonhub/goonhub/pkg/stream"
	"github.com/goonhub/goonhub/pkg/tip"
	"github.com/goonhub/goonhub/pkg/token"
	"github.com/goonhub/goonhub/pkg/user"
)

// UserDao maps to the 'users' table.
type UserDao struct {
	bun.BaseModel `bun:"table:users,alias:u"`
	ID            string    `bun:"id,pk,type:varchar(64)"`
	Handle        string    `bun:"handle,unique,notnull,type:varchar(32)"`
	AvatarURL     string    `bun:"avatar_url,notnull,type:text"`
	Bio           string    `bun:"bio,notnull,type:text"`
	IsCreator     bool      `bun:"is_creator,notnull"`
	AgeVerified   bool      `bun:"age_verified,notnull"`
	SolanaAddress *string   `bun:"solana_address,type:varchar(64)"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// FollowDao maps to the 'follows' table. (follower_id, following_id) is unique.
type FollowDao struct {
	bun.BaseModel `bun:"table:follows,alias:f"`
	ID            string    `bun:"id,pk,type:varchar(36)"`
	FollowerID    string    `bun:"follower_id,notnull,unique:follows_edge,type:varchar(64)"`
	FollowingID   string    `bun:"following_id,notnull,unique:follows_edge,type:varchar(64)"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// PostDao maps to the 'posts' table.
type PostDao struct {
	bun.BaseModel `bun:"table:posts,alias:p"`
	ID            string    `bun:"id,pk,type:varchar(36)"`
	CreatorID     string    `bun:"creator_id,notnull,type:varchar(64)"`
	MediaURL      string    `bun:"media_url,notnull,type:text"`
	ThumbURL      string    `bun:"thumb_url,notnull,type:text"`
	Caption       string    `bun:"caption,notnull,type:text"`
	PriceLamports int64     `bun:"price_lamports,notnull"`
	Visibility    string    `bun:"visibility,notnull,type:varchar(16)"`
	Status        string    `bun:"status,notnull,type:varchar(16)"`
	Views         int64     `bun:"views,notnull"`
	Likes         int64     `bun:"likes,notnull"`
	Tags          []string  `bun:"tags,array,notnull,type:text[]"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// PostLikeDao maps to the 'post_likes' edge table.
type PostLikeDao struct {
	bun.BaseModel `bun:"table:post_likes,alias:pl"`
	PostID        string    `bun:"post_id,pk,type:varchar(36)"`
	UserID        string    `bun:"user_id,pk,type:varchar(64)"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// PurchaseDao maps to the 'purchases' table. (user_id, post_id) is unique.
type PurchaseDao struct {
	bun.BaseModel  `bun:"table:purchases,alias:pu"`
	ID             string    `bun:"id,pk,type:varchar(36)"`
	UserID         string    `bun:"user_id,notnull,unique:purchases_user_post,type:varchar(64)"`
	PostID         string    `bun:"post_id,notnull,unique:purchases_user_post,type:varchar(36)"`
	AmountLamports int64     `bun:"amount_lamports,notnull"`
	TxnSig         *string   `bun:"txn_sig,type:varchar(128)"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// TokenDao maps to the 'tokens' table. mint_address is deliberately not unique.
type TokenDao struct {
	bun.BaseModel `bun:"table:tokens,alias:t"`
	ID            string    `bun:"id,pk,type:varchar(36)"`
	CreatorID     string    `bun:"creator_id,notnull,type:varchar(64)"`
	MintAddress   string    `bun:"mint_address,notnull,type:varchar(64)"`
	Name          string    `bun:"name,notnull,type:varchar(64)"`
	Symbol        string    `bun:"symbol,notnull,type:varchar(16)"`
	Supply        int64     `bun:"supply,notnull"`
	ImageURL      string    `bun:"image_url,notnull,type:text"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// TipDao maps to the 'tips' table.
type TipDao struct {
	bun.BaseModel  `bun:"table:tips,alias:ti"`
	ID             string    `bun:"id,pk,type:varchar(36)"`
	FromUser       string    `bun:"from_user,notnull,type:varchar(64)"`
	ToUser         string    `bun:"to_user,notnull,type:varchar(64)"`
	AmountLamports int64     `bun:"amount_lamports,notnull"`
	Message        string    `bun:"message,notnull,type:text"`
	TxnSig         *string   `bun:"txn_sig,type:varchar(128)"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// PersonaDao maps to the 'ai_personas' table, keyed by creator.
type PersonaDao struct {
	bun.BaseModel   `bun:"table:ai_personas,alias:ap"`
	CreatorID       string    `bun:"creator_id,pk,type:varchar(64)"`
	SystemPrompt    string    `bun:"system_prompt,notnull,type:text"`
	PricePerMessage int64     `bun:"price_per_message,notnull"`
	IsActive        bool      `bun:"is_active,notnull"`
	CreatedAt       time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// ChatMessageDao maps to the 'chat_messages' table. Seq orders messages
// sharing a timestamp.
type ChatMessageDao struct {
	bun.BaseModel `bun:"table:chat_messages,alias:cm"`
	Seq           int64     `bun:"seq,pk,autoincrement"`
	ID            string    `bun:"id,unique,notnull,type:varchar(36)"`
	UserID        string    `bun:"user_id,notnull,type:varchar(64)"`
	CreatorID     string    `bun:"creator_id,notnull,type:varchar(64)"`
	Role          string    `bun:"role,notnull,type:varchar(16)"`
	Content       string    `bun:"content,notnull,type:text"`
	TxnSig        *string   `bun:"txn_sig,type:varchar(128)"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// ActivityDao maps to the 'activities' table. A NULL user_id marks a global activity.
type ActivityDao struct {
	bun.BaseModel `bun:"table:activities,alias:a"`
	Seq           int64          `bun:"seq,pk,autoincrement"`
	ID            string         `bun:"id,unique,notnull,type:varchar(36)"`
	Type          string         `bun:"type,notnull,type:varchar(32)"`
	UserID        *string        `bun:"user_id,type:varchar(64)"`
	TargetUserID  *string        `bun:"target_user_id,type:varchar(64)"`
	PostID        *string        `bun:"post_id,type:varchar(36)"`
	Title         string         `bun:"title,notnull,type:text"`
	Description   string         `bun:"description,notnull,type:text"`
	Metadata      map[string]any `bun:"metadata,type:jsonb"`
	IsRead        bool           `bun:"is_read,notnull"`
	CreatedAt     time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// LiveStreamDao maps to the 'live_streams' table.
type LiveStreamDao struct {
	bun.BaseModel `bun:"table:live_streams,alias:ls"`
	ID            string     `bun:"id,pk,type:varchar(36)"`
	CreatorID     string     `bun:"creator_id,notnull,type:varchar(64)"`
	Title         string     `bun:"title,notnull,type:text"`
	Description   string     `bun:"description,notnull,type:text"`
	Status        string     `bun:"status,notnull,type:varchar(16)"`
	ViewerCount   int        `bun:"viewer_count,notnull"`
	MaxViewers    int        `bun:"max_viewers,notnull"`
	StreamKey     string     `bun:"stream_key,notnull,type:varchar(64)"`
	Duration      int64      `bun:"duration,notnull"`
	CreatedAt     time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	EndedAt       *time.Time `bun:"ended_at"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toUserDao(u *user.User) *UserDao {
	return &UserDao{
		ID:            u.ID,
		Handle:        u.Handle,
		AvatarURL:     u.AvatarURL,
		Bio:           u.Bio,
		IsCreator:     u.IsCreator,
		AgeVerified:   u.AgeVerified,
		SolanaAddress: optional(u.SolanaAddress),
		CreatedAt:     u.CreatedAt,
	}
}

func toUser(dao *UserDao) *user.User {
	return &user.User{
		ID:            dao.ID,
		Handle:        dao.Handle,
		AvatarURL:     dao.AvatarURL,
		Bio:           dao.Bio,
		IsCreator:     dao.IsCreator,
		AgeVerified:   dao.AgeVerified,
		SolanaAddress: deref(dao.SolanaAddress),
		CreatedAt:     dao.CreatedAt.UTC(),
	}
}

func toFollow(dao *FollowDao) *user.Follow {
	return &user.Follow{
		ID:          dao.ID,
		FollowerID:  dao.FollowerID,
		FollowingID: dao.FollowingID,
		CreatedAt:   dao.CreatedAt.UTC(),
	}
}

func toPostDao(p *post.Post) *PostDao {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return &PostDao{
		ID:            p.ID,
		CreatorID:     p.CreatorID,
		MediaURL:      p.MediaURL,
		ThumbURL:      p.ThumbURL,
		Caption:       p.Caption,
		PriceLamports: p.PriceLamports,
		Visibility:    string(p.Visibility),
		Status:        string(p.Status),
		Views:         p.Views,
		Likes:         p.Likes,
		Tags:          tags,
		CreatedAt:     p.CreatedAt,
	}
}

func toPost(dao *PostDao) *post.Post {
	tags := dao.Tags
	if tags == nil {
		tags = []string{}
	}
	return &post.Post{
		ID:            dao.ID,
		CreatorID:     dao.CreatorID,
		MediaURL:      dao.MediaURL,
		ThumbURL:      dao.ThumbURL,
		Caption:       dao.Caption,
		PriceLamports: dao.PriceLamports,
		Visibility:    post.Visibility(dao.Visibility),
		Status:        post.Status(dao.Status),
		Views:         dao.Views,
		Likes:         dao.Likes,
		Tags:          tags,
		CreatedAt:     dao.CreatedAt.UTC(),
	}
}

func toPurchaseDao(p *post.Purchase) *PurchaseDao {
	return &PurchaseDao{
		ID:             p.ID,
		UserID:         p.UserID,
		PostID:         p.PostID,
		AmountLamports: p.AmountLamports,
		TxnSig:         optional(p.TxnSig),
		CreatedAt:      p.CreatedAt,
	}
}

func toPurchase(dao *PurchaseDao) *post.Purchase {
	return &post.Purchase{
		ID:             dao.ID,
		UserID:         dao.UserID,
		PostID:         dao.PostID,
		AmountLamports: dao.AmountLamports,
		TxnSig:         deref(dao.TxnSig),
		CreatedAt:      dao.CreatedAt.UTC(),
	}
}

func toTokenDao(t *token.Token) *TokenDao {
	return &TokenDao{
		ID:          t.ID,
		CreatorID:   t.CreatorID,
		MintAddress: t.MintAddress,
		Name:        t.Name,
		Symbol:      t.Symbol,
		Supply:      t.Supply,
		ImageURL:    t.ImageURL,
		CreatedAt:   t.CreatedAt,
	}
}

func toToken(dao *TokenDao) *token.Token {
	return &token.Token{
		ID:          dao.ID,
		CreatorID:   dao.CreatorID,
		MintAddress: dao.MintAddress,
		Name:        dao.Name,
		Symbol:      dao.Symbol,
		Supply:      dao.Supply,
		ImageURL:    dao.ImageURL,
		CreatedAt:   dao.CreatedAt.UTC(),
	}
}

func toTipDao(t *tip.Tip) *TipDao {
	return &TipDao{
		ID:             t.ID,
		FromUser:       t.FromUser,
		ToUser:         t.ToUser,
		AmountLamports: t.AmountLamports,
		Message:        t.Message,
		TxnSig:         optional(t.TxnSig),
		CreatedAt:      t.CreatedAt,
	}
}

func toTip(dao *TipDao) *tip.Tip {
	return &tip.Tip{
		ID:             dao.ID,
		FromUser:       dao.FromUser,
		ToUser:         dao.ToUser,
		AmountLamports: dao.AmountLamports,
		Message:        dao.Message,
		TxnSig:         deref(dao.TxnSig),
		CreatedAt:      dao.CreatedAt.UTC(),
	}
}

func toPersonaDao(p *chat.Persona) *PersonaDao {
	return &PersonaDao{
		CreatorID:       p.CreatorID,
		SystemPrompt:    p.SystemPrompt,
		PricePerMessage: p.PricePerMessage,
		IsActive:        p.IsActive,
		CreatedAt:       p.CreatedAt,
	}
}

func toPersona(dao *PersonaDao) *chat.Persona {
	return &chat.Persona{
		CreatorID:       dao.CreatorID,
		SystemPrompt:    dao.SystemPrompt,
		PricePerMessage: dao.PricePerMessage,
		IsActive:        dao.IsActive,
		CreatedAt:       dao.CreatedAt.UTC(),
	}
}

func toChatMessageDao(m *chat.Message) *ChatMessageDao {
	return &ChatMessageDao{
		ID:        m.ID,
		UserID:    m.UserID,
		CreatorID: m.CreatorID,
		Role:      string(m.Role),
		Content:   m.Content,
		TxnSig:    optional(m.TxnSig),
		CreatedAt: m.CreatedAt,
	}
}

func toChatMessage(dao *ChatMessageDao) *chat.Message {
	return &chat.Message{
		ID:        dao.ID,
		UserID:    dao.UserID,
		CreatorID: dao.CreatorID,
		Role:      chat.Role(dao.Role),
		Content:   dao.Content,
		TxnSig:    deref(dao.TxnSig),
		CreatedAt: dao.CreatedAt.UTC(),
	}
}

func toActivityDao(a *activity.Activity) *ActivityDao {
	return &ActivityDao{
		ID:           a.ID,
		Type:         string(a.Type),
		UserID:       a.UserID,
		TargetUserID: a.TargetUserID,
		PostID:       a.PostID,
		Title:        a.Title,
		Description:  a.Description,
		Metadata:     a.Metadata,
		IsRead:       a.IsRead,
		CreatedAt:    a.CreatedAt,
	}
}

func toActivity(dao *ActivityDao) *activity.Activity {
	return &activity.Activity{
		ID:           dao.ID,
		Type:         activity.Type(dao.Type),
		UserID:       dao.UserID,
		TargetUserID: dao.TargetUserID,
		PostID:       dao.PostID,
		Title:        dao.Title,
		Description:  dao.Description,
		Metadata:     dao.Metadata,
		IsRead:       dao.IsRead,
		CreatedAt:    dao.CreatedAt.UTC(),
	}
}

func toLiveStreamDao(s *stream.LiveStream) *LiveStreamDao {
	return &LiveStreamDao{
		ID:          s.ID,
		CreatorID:   s.CreatorID,
		Title:       s.Title,
		Description: s.Description,
		Status:      string(s.Status),
		ViewerCount: s.ViewerCount,
		MaxViewers:  s.MaxViewers,
		StreamKey:   s.StreamKey,
		Duration:    s.Duration,
		CreatedAt:   s.CreatedAt,
		EndedAt:     s.EndedAt,
	}
}

func toLiveStream(dao *LiveStreamDao) *stream.LiveStream {
	s := &stream.LiveStream{
		ID:          dao.ID,
		CreatorID:   dao.CreatorID,
		Title:       dao.Title,
		Description: dao.Description,
		Status:      stream.Status(dao.Status),
		ViewerCount: dao.ViewerCount,
		MaxViewers:  dao.MaxViewers,
		StreamKey:   dao.StreamKey,
		Duration:    dao.Duration,
		CreatedAt:   dao.CreatedAt.UTC(),
	}
	if dao.EndedAt != nil {
		ended := dao.EndedAt.UTC()
		s.EndedAt = &ended
	}
	return s
}

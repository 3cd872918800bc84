package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	apperrors "github.com/goonhub/goonhub/pkg/app/errors"
	"github.com/goonhub/goonhub/pkg/events"
	"github.com/goonhub/goonhub/pkg/post"
	"github.com/goonhub/goonhub/pkg/solana"
	"github.com/goonhub/goonhub/pkg/store"
	"github.com/goonhub/goonhub/pkg/user"
)

// Unlock outcome messages.
const (
	MessageAlreadyUnlocked = "Already unlocked"
	MessageFreePost        = "Post is free"
)

// Store is the narrow data-access interface for the post service.
type Store interface {
	GetUser(ctx context.Context, id string) (*user.User, error)
	GetUserByHandle(ctx context.Context, handle string) (*user.User, error)
	GetPost(ctx context.Context, id string) (*post.Post, error)
	ListPosts(ctx context.Context, opts ...store.PostQueryOption) ([]*post.Post, error)
	CreatePost(ctx context.Context, p *post.Post) (*post.Post, error)
	UpdatePost(ctx context.Context, id string, patch post.Patch) (*post.Post, error)
	IncrementPostViews(ctx context.Context, id string) (*post.Post, error)
	LikePost(ctx context.Context, postID, userID string) (bool, error)
	UnlikePost(ctx context.Context, postID, userID string) (bool, error)
	HasLiked(ctx context.Context, postID, userID string) (bool, error)
	CreatePurchase(ctx context.Context, p *post.Purchase) (*post.Purchase, error)
	HasPurchased(ctx context.Context, userID, postID string) (bool, error)
}

// ListRequest filters the post feed. Creator accepts a handle or a user id.
type ListRequest struct {
	Category string
	Creator  string
	ViewerID string
	Limit    int
}

// CreateRequest is the body of POST /api/posts.
type CreateRequest struct {
	CreatorID     string          `json:"creatorId" validate:"required"`
	MediaURL      string          `json:"mediaUrl" validate:"required"`
	ThumbURL      string          `json:"thumbUrl"`
	Caption       string          `json:"caption"`
	PriceLamports int64           `json:"priceLamports" validate:"gte=0"`
	Visibility    post.Visibility `json:"visibility"`
	Status        post.Status     `json:"status"`
	Tags          []string        `json:"tags"`
}

// UnlockRequest is the body of POST /api/posts/unlock.
type UnlockRequest struct {
	PostID     string `json:"postId" validate:"required"`
	UserPubkey string `json:"userPubkey" validate:"required"`
	TxnSig     string `json:"txnSig"`
}

// UnlockResponse reports the outcome of an unlock.
type UnlockResponse struct {
	Success  bool           `json:"success"`
	Message  string         `json:"message,omitempty"`
	Purchase *post.Purchase `json:"purchase,omitempty"`
}

// LikeResponse reports the like edge state and the current counter.
type LikeResponse struct {
	Success bool  `json:"success"`
	Changed bool  `json:"changed"`
	Likes   int64 `json:"likes"`
}

// View is a post as seen by one viewer.
type View struct {
	*post.Post
	Creator  *user.User `json:"creator,omitempty"`
	Unlocked bool       `json:"unlocked"`
	Liked    bool       `json:"liked"`
}

// Service defines the post business logic
type Service interface {
	ListPosts(ctx context.Context, req *ListRequest) ([]*View, error)
	GetPost(ctx context.Context, id, viewerID string) (*View, error)
	CreatePost(ctx context.Context, req *CreateRequest) (*post.Post, error)
	UpdatePost(ctx context.Context, id, editorID string, patch post.Patch) (*post.Post, error)
	Unlock(ctx context.Context, req *UnlockRequest) (*UnlockResponse, error)
	Like(ctx context.Context, postID, userID string) (*LikeResponse, error)
	Unlike(ctx context.Context, postID, userID string) (*LikeResponse, error)
	RecordView(ctx context.Context, id string) (*post.Post, error)
}

type postService struct {
	store    Store
	verifier solana.PaymentVerifier
	bus      events.Bus
	logger   *zap.Logger
}

// NewService creates a new post service
func NewService(store Store, verifier solana.PaymentVerifier, bus events.Bus, logger *zap.Logger) Service {
	return &postService{
		store:    store,
		verifier: verifier,
		bus:      bus,
		logger:   logger,
	}
}

// ListPosts returns published posts newest first, redacted for the viewer.
func (s *postService) ListPosts(ctx context.Context, req *ListRequest) ([]*View, error) {
	opts := []store.PostQueryOption{store.WithStatus(post.StatusPublished)}
	if req.Category != "" {
		opts = append(opts, store.WithTag(req.Category))
	}
	if req.Creator != "" {
		creator, err := s.resolveCreator(ctx, req.Creator)
		if err != nil {
			return nil, err
		}
		opts = append(opts, store.WithCreator(creator.ID))
	}
	if req.Limit > 0 {
		opts = append(opts, store.WithLimit(req.Limit))
	}

	posts, err := s.store.ListPosts(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	creators := make(map[string]*user.User)
	views := make([]*View, 0, len(posts))
	for _, p := range posts {
		creator, ok := creators[p.CreatorID]
		if !ok {
			creator, err = s.lookupUser(ctx, p.CreatorID)
			if err != nil {
				return nil, err
			}
			creators[p.CreatorID] = creator
		}
		v, err := s.view(ctx, p, creator, req.ViewerID)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// GetPost returns one post with its creator. Drafts are only visible to
// their creator.
func (s *postService) GetPost(ctx context.Context, id, viewerID string) (*View, error) {
	p, err := s.visiblePost(ctx, id, viewerID)
	if err != nil {
		return nil, err
	}

	creator, err := s.lookupUser(ctx, p.CreatorID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, p, creator, viewerID)
}

func (s *postService) CreatePost(ctx context.Context, req *CreateRequest) (*post.Post, error) {
	creator, err := s.store.GetUser(ctx, req.CreatorID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.ResourceNotFoundError(err, "creator not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get creator: %w", err)
	}
	if !creator.IsCreator {
		return nil, apperrors.ForbiddenError(nil, "only creators can publish posts")
	}

	p, err := post.New(post.Draft{
		CreatorID:     req.CreatorID,
		MediaURL:      req.MediaURL,
		ThumbURL:      req.ThumbURL,
		Caption:       req.Caption,
		PriceLamports: req.PriceLamports,
		Visibility:    req.Visibility,
		Status:        req.Status,
		Tags:          req.Tags,
	})
	if err != nil {
		return nil, apperrors.BadRequestError(err, err.Error())
	}

	created, err := s.store.CreatePost(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	if created.Status == post.StatusPublished {
		s.publishCreated(ctx, created, creator.Handle)
	}
	return created, nil
}

// UpdatePost applies a partial update on behalf of the post's creator.
// Publishing a draft notifies followers the same way creating a published
// post does. Priced media is never echoed back.
func (s *postService) UpdatePost(ctx context.Context, id, editorID string, patch post.Patch) (*post.Post, error) {
	before, err := s.visiblePost(ctx, id, editorID)
	if err != nil {
		return nil, err
	}
	if before.CreatorID != editorID {
		return nil, apperrors.ForbiddenError(nil, "only the creator can edit this post")
	}

	updated, err := s.store.UpdatePost(ctx, id, patch)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, apperrors.ResourceNotFoundError(err, "post not found")
	case errors.Is(err, post.ErrInvalid):
		return nil, apperrors.BadRequestError(err, err.Error())
	case err != nil:
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	if before.Status != post.StatusPublished && updated.Status == post.StatusPublished {
		handle := ""
		if creator, err := s.store.GetUser(ctx, updated.CreatorID); err == nil {
			handle = creator.Handle
		}
		s.publishCreated(ctx, updated, handle)
	}
	if updated.IsPriced() {
		return updated.Redacted(), nil
	}
	return updated, nil
}

// Unlock records a purchase of a priced post. The unique (user, post) key
// makes repeated unlocks report "Already unlocked" instead of paying twice.
func (s *postService) Unlock(ctx context.Context, req *UnlockRequest) (*UnlockResponse, error) {
	p, err := s.visiblePost(ctx, req.PostID, req.UserPubkey)
	if err != nil {
		return nil, err
	}
	if !p.IsPriced() {
		return &UnlockResponse{Success: true, Message: MessageFreePost}, nil
	}

	purchased, err := s.store.HasPurchased(ctx, req.UserPubkey, p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check purchase: %w", err)
	}
	if purchased {
		return &UnlockResponse{Success: true, Message: MessageAlreadyUnlocked}, nil
	}

	err = s.verifier.VerifyPayment(ctx, solana.Payment{
		Signature:      req.TxnSig,
		Payer:          req.UserPubkey,
		Recipient:      p.CreatorID,
		AmountLamports: p.PriceLamports,
		Purpose:        "unlock",
	})
	if err != nil {
		return nil, apperrors.BadRequestError(err, "payment could not be verified")
	}

	purchase, err := post.NewPurchase(req.UserPubkey, p.ID, p.PriceLamports, req.TxnSig)
	if err != nil {
		return nil, apperrors.BadRequestError(err, err.Error())
	}
	purchase, err = s.store.CreatePurchase(ctx, purchase)
	if errors.Is(err, store.ErrDuplicate) {
		return &UnlockResponse{Success: true, Message: MessageAlreadyUnlocked}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to record purchase: %w", err)
	}

	e := events.New(events.PostUnlocked, req.UserPubkey).With(events.KeyAmountLamports, p.PriceLamports)
	e.TargetUserID = p.CreatorID
	e.PostID = p.ID
	if buyer, err := s.store.GetUser(ctx, req.UserPubkey); err == nil {
		e.With(events.KeyActorHandle, buyer.Handle)
	}
	s.bus.Publish(ctx, e)

	return &UnlockResponse{Success: true, Purchase: purchase}, nil
}

func (s *postService) Like(ctx context.Context, postID, userID string) (*LikeResponse, error) {
	if userID == "" {
		return nil, apperrors.BadRequestError(nil, "userId is required")
	}
	if _, err := s.visiblePost(ctx, postID, userID); err != nil {
		return nil, err
	}
	changed, err := s.store.LikePost(ctx, postID, userID)
	if err != nil {
		return nil, mapPostErr(err, "failed to like post")
	}
	return s.likeResponse(ctx, postID, changed)
}

func (s *postService) Unlike(ctx context.Context, postID, userID string) (*LikeResponse, error) {
	if userID == "" {
		return nil, apperrors.BadRequestError(nil, "userId is required")
	}
	if _, err := s.visiblePost(ctx, postID, userID); err != nil {
		return nil, err
	}
	changed, err := s.store.UnlikePost(ctx, postID, userID)
	if err != nil {
		return nil, mapPostErr(err, "failed to unlike post")
	}
	return s.likeResponse(ctx, postID, changed)
}

func (s *postService) RecordView(ctx context.Context, id string) (*post.Post, error) {
	p, err := s.store.IncrementPostViews(ctx, id)
	if err != nil {
		return nil, mapPostErr(err, "failed to record view")
	}
	return p.Redacted(), nil
}

func (s *postService) likeResponse(ctx context.Context, postID string, changed bool) (*LikeResponse, error) {
	p, err := s.getPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &LikeResponse{Success: true, Changed: changed, Likes: p.Likes}, nil
}

// view applies media redaction: priced media stays hidden unless the viewer
// created the post or bought it.
func (s *postService) view(ctx context.Context, p *post.Post, creator *user.User, viewerID string) (*View, error) {
	v := &View{Post: p, Creator: creator, Unlocked: !p.IsPriced()}

	if viewerID != "" {
		if p.CreatorID == viewerID {
			v.Unlocked = true
		} else if !v.Unlocked {
			purchased, err := s.store.HasPurchased(ctx, viewerID, p.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to check purchase: %w", err)
			}
			v.Unlocked = purchased
		}

		liked, err := s.store.HasLiked(ctx, p.ID, viewerID)
		if err != nil {
			return nil, fmt.Errorf("failed to check like: %w", err)
		}
		v.Liked = liked
	}

	if !v.Unlocked {
		v.Post = p.Redacted()
	}
	return v, nil
}

func (s *postService) publishCreated(ctx context.Context, p *post.Post, handle string) {
	e := events.New(events.PostCreated, p.CreatorID).
		With(events.KeyActorHandle, handle).
		With(events.KeyCaption, p.Caption)
	e.PostID = p.ID
	s.bus.Publish(ctx, e)
}

func (s *postService) resolveCreator(ctx context.Context, creator string) (*user.User, error) {
	u, err := s.store.GetUserByHandle(ctx, user.NormalizeHandle(creator))
	if errors.Is(err, store.ErrNotFound) {
		u, err = s.store.GetUser(ctx, creator)
	}
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.ResourceNotFoundError(err, "creator not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve creator %s: %w", creator, err)
	}
	return u, nil
}

// lookupUser tolerates posts whose creator row is gone.
func (s *postService) lookupUser(ctx context.Context, id string) (*user.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return u, nil
}

// visiblePost loads a post, reporting drafts as missing to anyone but
// their creator.
func (s *postService) visiblePost(ctx context.Context, id, viewerID string) (*post.Post, error) {
	p, err := s.getPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status == post.StatusDraft && p.CreatorID != viewerID {
		return nil, apperrors.ResourceNotFoundError(nil, "post not found")
	}
	return p, nil
}

func (s *postService) getPost(ctx context.Context, id string) (*post.Post, error) {
	p, err := s.store.GetPost(ctx, id)
	if err != nil {
		return nil, mapPostErr(err, "failed to get post")
	}
	return p, nil
}

func mapPostErr(err error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperrors.ResourceNotFoundError(err, "post not found")
	}
	return fmt.Errorf("%s: %w", msg, err)
}

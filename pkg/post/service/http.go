package service

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apphttp "github.com/goonhub/goonhub/pkg/app/http"
	"github.com/goonhub/goonhub/pkg/post"
)

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service Service
	logger  *zap.Logger
}

type updatePostRequest struct {
	CreatorID     string           `json:"creatorId" validate:"required"`
	Caption       *string          `json:"caption"`
	ThumbURL      *string          `json:"thumbUrl"`
	PriceLamports *int64           `json:"priceLamports" validate:"omitnil,gte=0"`
	Visibility    *post.Visibility `json:"visibility"`
	Status        *post.Status     `json:"status"`
	Tags          []string         `json:"tags"`
}

type likeRequest struct {
	UserID string `json:"userId" validate:"required"`
}

// RegisterRoutes registers HTTP endpoints for the post service on the given chi router
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Get("/api/posts", apphttp.HandleError(h.list))
	r.Post("/api/posts", apphttp.HandleError(h.create))
	r.Post("/api/posts/unlock", apphttp.HandleError(h.unlock))
	r.Get("/api/posts/{id}", apphttp.HandleError(h.get))
	r.Patch("/api/posts/{id}", apphttp.HandleError(h.update))
	r.Post("/api/posts/{id}/like", apphttp.HandleError(h.like))
	r.Delete("/api/posts/{id}/like", apphttp.HandleError(h.unlike))
	r.Post("/api/posts/{id}/view", apphttp.HandleError(h.view))
}

func (h *HTTP) list(w http.ResponseWriter, r *http.Request) error {
	limit, err := apphttp.IntQuery(r, "limit", 0)
	if err != nil {
		return err
	}

	q := r.URL.Query()
	views, err := h.service.ListPosts(r.Context(), &ListRequest{
		Category: q.Get("category"),
		Creator:  q.Get("creator"),
		ViewerID: q.Get("userId"),
		Limit:    limit,
	})
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, views)
	return nil
}

func (h *HTTP) get(w http.ResponseWriter, r *http.Request) error {
	v, err := h.service.GetPost(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("userId"))
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, v)
	return nil
}

func (h *HTTP) create(w http.ResponseWriter, r *http.Request) error {
	var req CreateRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		return err
	}

	p, err := h.service.CreatePost(r.Context(), &req)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, p)
	return nil
}

func (h *HTTP) update(w http.ResponseWriter, r *http.Request) error {
	var req updatePostRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		return err
	}

	p, err := h.service.UpdatePost(r.Context(), chi.URLParam(r, "id"), req.CreatorID, post.Patch{
		Caption:       req.Caption,
		ThumbURL:      req.ThumbURL,
		PriceLamports: req.PriceLamports,
		Visibility:    req.Visibility,
		Status:        req.Status,
		Tags:          req.Tags,
	})
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, p)
	return nil
}

func (h *HTTP) unlock(w http.ResponseWriter, r *http.Request) error {
	var req UnlockRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		return err
	}

	resp, err := h.service.Unlock(r.Context(), &req)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, resp)
	return nil
}

func (h *HTTP) like(w http.ResponseWriter, r *http.Request) error {
	var req likeRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		return err
	}

	resp, err := h.service.Like(r.Context(), chi.URLParam(r, "id"), req.UserID)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, resp)
	return nil
}

func (h *HTTP) unlike(w http.ResponseWriter, r *http.Request) error {
	userID, err := apphttp.RequiredQuery(r, "userId")
	if err != nil {
		return err
	}

	resp, err := h.service.Unlike(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, resp)
	return nil
}

func (h *HTTP) view(w http.ResponseWriter, r *http.Request) error {
	p, err := h.service.RecordView(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, map[string]int64{"views": p.Views})
	return nil
}

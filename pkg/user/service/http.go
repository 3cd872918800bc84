package service

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apphttp "github.com/goonhub/goonhub/pkg/app/http"
	"github.com/goonhub/goonhub/pkg/user"
)

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service Service
	logger  *zap.Logger
}

type updateUserRequest struct {
	Handle        *string `json:"handle"`
	AvatarURL     *string `json:"avatarUrl"`
	Bio           *string `json:"bio"`
	IsCreator     *bool   `json:"isCreator"`
	AgeVerified   *bool   `json:"ageVerified"`
	SolanaAddress *string `json:"solanaAddress"`
}

type followRequest struct {
	FollowerID string `json:"followerId" validate:"required"`
}

type followResponse struct {
	Following bool `json:"following"`
}

type unfollowResponse struct {
	Success bool `json:"success"`
	Removed bool `json:"removed"`
}

// RegisterRoutes registers HTTP endpoints for the user service on the given chi router
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Post("/api/users", apphttp.HandleError(h.create))
	r.Get("/api/users/{id}", apphttp.HandleError(h.get))
	r.Patch("/api/users/{id}", apphttp.HandleError(h.update))
	r.Post("/api/users/{id}/follow", apphttp.HandleError(h.follow))
	r.Delete("/api/users/{id}/follow", apphttp.HandleError(h.unfollow))
	r.Get("/api/users/{id}/follow", apphttp.HandleError(h.isFollowing))
}

func (h *HTTP) create(w http.ResponseWriter, r *http.Request) error {
	var req CreateUserRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		return err
	}

	u, err := h.service.CreateUser(r.Context(), &req)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, u)
	return nil
}

func (h *HTTP) get(w http.ResponseWriter, r *http.Request) error {
	p, err := h.service.GetProfile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, p)
	return nil
}

func (h *HTTP) update(w http.ResponseWriter, r *http.Request) error {
	var req updateUserRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		return err
	}

	u, err := h.service.UpdateUser(r.Context(), chi.URLParam(r, "id"), user.Patch{
		Handle:        req.Handle,
		AvatarURL:     req.AvatarURL,
		Bio:           req.Bio,
		IsCreator:     req.IsCreator,
		AgeVerified:   req.AgeVerified,
		SolanaAddress: req.SolanaAddress,
	})
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, u)
	return nil
}

func (h *HTTP) follow(w http.ResponseWriter, r *http.Request) error {
	var req followRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		return err
	}

	f, err := h.service.Follow(r.Context(), req.FollowerID, chi.URLParam(r, "id"))
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, f)
	return nil
}

func (h *HTTP) unfollow(w http.ResponseWriter, r *http.Request) error {
	followerID, err := apphttp.RequiredQuery(r, "followerId")
	if err != nil {
		return err
	}

	removed, err := h.service.Unfollow(r.Context(), followerID, chi.URLParam(r, "id"))
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, &unfollowResponse{Success: true, Removed: removed})
	return nil
}

func (h *HTTP) isFollowing(w http.ResponseWriter, r *http.Request) error {
	followerID, err := apphttp.RequiredQuery(r, "followerId")
	if err != nil {
		return err
	}

	following, err := h.service.IsFollowing(r.Context(), followerID, chi.URLParam(r, "id"))
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, &followResponse{Following: following})
	return nil
}

package service

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apphttp "github.com/goonhub/goonhub/pkg/app/http"
)

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service Service
	logger  *zap.Logger
}

type unreadCountResponse struct {
	Count int `json:"count"`
}

// RegisterRoutes registers HTTP endpoints for the activity feed
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Get("/api/activities", apphttp.HandleError(h.list))
	r.Get("/api/activities/unread-count", apphttp.HandleError(h.unreadCount))
	r.Post("/api/activities/{id}/read", apphttp.HandleError(h.markRead))
}

// list serves the feed; without userId only global activities are returned
func (h *HTTP) list(w http.ResponseWriter, r *http.Request) error {
	limit, err := apphttp.IntQuery(r, "limit", 0)
	if err != nil {
		return err
	}

	feed, err := h.service.List(r.Context(), r.URL.Query().Get("userId"), limit)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, feed)
	return nil
}

func (h *HTTP) unreadCount(w http.ResponseWriter, r *http.Request) error {
	n, err := h.service.UnreadCount(r.Context(), r.URL.Query().Get("userId"))
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, unreadCountResponse{Count: n})
	return nil
}

func (h *HTTP) markRead(w http.ResponseWriter, r *http.Request) error {
	a, err := h.service.MarkRead(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, a)
	return nil
}

package service

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apphttp "github.com/goonhub/goonhub/pkg/app/http"
	"github.com/goonhub/goonhub/pkg/stream"
)

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service Service
	logger  *zap.Logger
}

type viewersRequest struct {
	Count *int `json:"count" validate:"required,gte=0"`
}

// RegisterRoutes registers HTTP endpoints for live streams
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Post("/api/streams", apphttp.HandleError(h.create))
	r.Get("/api/streams", apphttp.HandleError(h.list))
	r.Get("/api/streams/{id}", apphttp.HandleError(h.get))
	r.Post("/api/streams/{id}/end", apphttp.HandleError(h.end))
	r.Post("/api/streams/{id}/viewers", apphttp.HandleError(h.viewers))
}

func (h *HTTP) create(w http.ResponseWriter, r *http.Request) error {
	var req CreateRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		return err
	}

	ls, err := h.service.Create(r.Context(), &req)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, ls)
	return nil
}

func (h *HTTP) list(w http.ResponseWriter, r *http.Request) error {
	list, err := h.service.List(r.Context(), stream.Status(r.URL.Query().Get("status")))
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, list)
	return nil
}

func (h *HTTP) get(w http.ResponseWriter, r *http.Request) error {
	ls, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, ls)
	return nil
}

func (h *HTTP) end(w http.ResponseWriter, r *http.Request) error {
	ls, err := h.service.End(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, ls)
	return nil
}

func (h *HTTP) viewers(w http.ResponseWriter, r *http.Request) error {
	var req viewersRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		return err
	}

	ls, err := h.service.SetViewers(r.Context(), chi.URLParam(r, "id"), *req.Count)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, ls)
	return nil
}

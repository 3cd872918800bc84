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

// RegisterRoutes registers HTTP endpoints for the tip service on the given chi router
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Post("/api/tips/send", apphttp.HandleError(h.send))
	r.Get("/api/tips/received/{userId}", apphttp.HandleError(h.received))
}

func (h *HTTP) send(w http.ResponseWriter, r *http.Request) error {
	var req SendRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		return err
	}

	t, err := h.service.Send(r.Context(), &req)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, t)
	return nil
}

func (h *HTTP) received(w http.ResponseWriter, r *http.Request) error {
	resp, err := h.service.Received(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, resp)
	return nil
}

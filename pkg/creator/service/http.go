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

// RegisterRoutes registers HTTP endpoints for the creator directory
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Get("/api/creators", apphttp.HandleError(h.list))
	r.Get("/api/creators/{handle}", apphttp.HandleError(h.get))
}

func (h *HTTP) list(w http.ResponseWriter, r *http.Request) error {
	creators, err := h.service.ListCreators(r.Context())
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, creators)
	return nil
}

func (h *HTTP) get(w http.ResponseWriter, r *http.Request) error {
	detail, err := h.service.GetCreator(r.Context(), chi.URLParam(r, "handle"))
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, detail)
	return nil
}

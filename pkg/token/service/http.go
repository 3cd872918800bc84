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

// RegisterRoutes registers HTTP endpoints for the token service. launchLimit
// wraps the launch route and may be nil.
func RegisterRoutes(r chi.Router, service Service, launchLimit func(http.Handler) http.Handler, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	launch := r
	if launchLimit != nil {
		launch = r.With(launchLimit)
	}
	launch.Post("/api/tokens/launch", apphttp.HandleError(h.launch))
	r.Get("/api/tokens", apphttp.HandleError(h.list))
	r.Get("/api/tokens/{id}", apphttp.HandleError(h.get))
}

func (h *HTTP) launch(w http.ResponseWriter, r *http.Request) error {
	var req LaunchRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		return err
	}

	t, err := h.service.Launch(r.Context(), &req)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, t)
	return nil
}

func (h *HTTP) list(w http.ResponseWriter, r *http.Request) error {
	tokens, err := h.service.ListTokens(r.Context(), r.URL.Query().Get("creator"))
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, tokens)
	return nil
}

func (h *HTTP) get(w http.ResponseWriter, r *http.Request) error {
	t, err := h.service.GetToken(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, t)
	return nil
}

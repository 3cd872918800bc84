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

// RegisterRoutes registers the wallet balance and transaction lookups
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Get("/api/wallets/{address}/balance", apphttp.HandleError(h.balance))
	r.Get("/api/transactions/{signature}", apphttp.HandleError(h.transaction))
}

func (h *HTTP) balance(w http.ResponseWriter, r *http.Request) error {
	b, err := h.service.Balance(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, b)
	return nil
}

func (h *HTTP) transaction(w http.ResponseWriter, r *http.Request) error {
	status, err := h.service.Transaction(r.Context(), chi.URLParam(r, "signature"))
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, status)
	return nil
}

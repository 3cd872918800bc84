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

// RegisterRoutes registers HTTP endpoints for the chat service. sendLimit
// wraps POST /api/chat/send and may be nil.
func RegisterRoutes(r chi.Router, service Service, sendLimit func(http.Handler) http.Handler, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Get("/api/personas", apphttp.HandleError(h.listPersonas))
	r.Get("/api/personas/{handle}", apphttp.HandleError(h.getPersona))
	r.Post("/api/personas/{handle}", apphttp.HandleError(h.upsertPersona))
	r.Get("/api/chat/messages/{creatorHandle}", apphttp.HandleError(h.messages))

	send := r
	if sendLimit != nil {
		send = r.With(sendLimit)
	}
	send.Post("/api/chat/send", apphttp.HandleError(h.send))
}

func (h *HTTP) listPersonas(w http.ResponseWriter, r *http.Request) error {
	personas, err := h.service.ListPersonas(r.Context())
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, personas)
	return nil
}

func (h *HTTP) getPersona(w http.ResponseWriter, r *http.Request) error {
	p, err := h.service.GetPersona(r.Context(), chi.URLParam(r, "handle"))
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, p)
	return nil
}

func (h *HTTP) upsertPersona(w http.ResponseWriter, r *http.Request) error {
	var req UpsertPersonaRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		return err
	}

	p, err := h.service.UpsertPersona(r.Context(), chi.URLParam(r, "handle"), &req)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, p)
	return nil
}

func (h *HTTP) messages(w http.ResponseWriter, r *http.Request) error {
	userID, err := apphttp.RequiredQuery(r, "userId")
	if err != nil {
		return err
	}

	msgs, err := h.service.ListMessages(r.Context(), chi.URLParam(r, "creatorHandle"), userID)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, msgs)
	return nil
}

func (h *HTTP) send(w http.ResponseWriter, r *http.Request) error {
	var req SendRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		return err
	}

	resp, err := h.service.Send(r.Context(), &req)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, resp)
	return nil
}

package event_api

import (
	"net/http"

	"ms-admission/internal/auth"
	"ms-admission/internal/events"
	"ms-admission/internal/logger"
	"ms-admission/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	Service *events.Service
	Logger  *logger.Logger
}

func NewHandler(service *events.Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

func (h *Handler) RegisterRoutes(r chi.Router, authMW func(http.Handler) http.Handler) {
	r.Route("/api/events/{eventId}", func(r chi.Router) {
		r.Use(authMW)
		r.Get("/tickets", h.ListTickets)
		r.Delete("/", h.DeleteEvent)
	})
}

func (h *Handler) ListTickets(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFrom(r.Context())

	list, err := h.Service.ListEventTickets(r.Context(), chi.URLParam(r, "eventId"), principal)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Event tickets", list))
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFrom(r.Context())

	if err := h.Service.DeleteEvent(r.Context(), chi.URLParam(r, "eventId"), principal); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Event deleted", nil))
}

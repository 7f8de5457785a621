package analytics_api

import (
	"net/http"

	"ms-admission/internal/analytics"
	"ms-admission/internal/auth"
	"ms-admission/internal/logger"
	"ms-admission/internal/utils"

	"github.com/go-chi/chi/v5"
)

// Handler handles analytics HTTP endpoints
type Handler struct {
	Service *analytics.Service
	Logger  *logger.Logger
}

// NewHandler creates a new analytics handler
func NewHandler(service *analytics.Service, logger *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: logger}
}

// RegisterRoutes registers the analytics routes on a chi router
func (h *Handler) RegisterRoutes(r chi.Router, authMW func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMW)
		r.Get("/api/stats", h.GetStats)
		r.Get("/api/stats/ticket-types", h.GetSalesByTicketType)
	})
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFrom(r.Context())

	stats, err := h.Service.Stats(r.Context(), principal)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Stats", stats))
}

func (h *Handler) GetSalesByTicketType(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFrom(r.Context())

	rows, err := h.Service.SalesByTicketType(r.Context(), principal)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Sales by ticket type", rows))
}

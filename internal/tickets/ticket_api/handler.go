package ticket_api

import (
	"encoding/json"
	"net/http"

	"ms-admission/internal/auth"
	"ms-admission/internal/logger"
	"ms-admission/internal/models"
	"ms-admission/internal/redemption"
	"ms-admission/internal/tickets/qr"
	tickets "ms-admission/internal/tickets/service"
	"ms-admission/internal/utils"

	"github.com/go-chi/chi/v5"
)

const IdempotencyKeyHeader = "Idempotency-Key"

type Handler struct {
	TicketService *tickets.TicketService
	Gate          *redemption.Gate
	QRGenerator   *qr.Generator
	Logger        *logger.Logger
}

func NewHandler(ticketService *tickets.TicketService, gate *redemption.Gate, log *logger.Logger) *Handler {
	return &Handler{
		TicketService: ticketService,
		Gate:          gate,
		QRGenerator:   qr.NewGenerator(qr.DefaultSize),
		Logger:        log,
	}
}

// RegisterRoutes mounts the public purchase routes and the authenticated
// redemption route.
func (h *Handler) RegisterRoutes(r chi.Router, authMW func(http.Handler) http.Handler) {
	r.Post("/api/purchases", h.Purchase)
	r.Get("/api/tickets/{code}/qr", h.TicketQR)
	r.With(authMW).Post("/api/redemptions", h.Redeem)
}

// Purchase expects {"buyer_name", "buyer_email", "ticket_type_id", "quantity", "payment_method"}.
func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	var req models.PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	receipt, replayed, err := h.TicketService.PurchaseWithKey(r.Context(), r.Header.Get(IdempotencyKeyHeader), req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	status := http.StatusCreated
	if replayed {
		status = http.StatusOK
		w.Header().Set("Idempotent-Replayed", "true")
	}
	utils.WriteJSON(w, status, utils.SuccessResponse("Purchase completed", receipt))
}

// Redeem expects {"code": "<redemption code>"}.
func (h *Handler) Redeem(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Authorization required", "no principal"))
		return
	}

	var body struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	details, err := h.Gate.Redeem(r.Context(), body.Code, principal)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Ticket redeemed", details))
}

// TicketQR renders the redemption code as a PNG. It does not touch the database.
func (h *Handler) TicketQR(w http.ResponseWriter, r *http.Request) {
	png, err := h.QRGenerator.PNG(chi.URLParam(r, "code"))
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid code", err.Error()))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"snack-cart/internal/middleware"
	"snack-cart/internal/model"
	"snack-cart/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CheckoutHandler handles checkout and payment callback requests.
type CheckoutHandler struct {
	service service.CheckoutService
	logger  zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(service service.CheckoutService, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		logger:  logger.With().Str("handler", "checkout").Logger(),
	}
}

// Place handles POST /api/checkout requests. A successful response is a
// pending order awaiting the payment outcome, not a placed order.
func (h *CheckoutHandler) Place(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.OwnerFrom(r.Context())
	if !ok {
		writeError(w, http.StatusBadRequest, "missing X-User-ID or X-Session-ID header", h.logger)
		return
	}

	var req model.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	pending, err := h.service.PlaceOrder(r.Context(), owner, &req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusAccepted, pending)
}

// Confirm handles POST /api/payments/confirm, the gateway's confirmation
// callback.
func (h *CheckoutHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID    string `json:"orderId"`
		PaymentRef string `json:"paymentRef"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID format", h.logger)
		return
	}
	if req.PaymentRef == "" {
		writeError(w, http.StatusBadRequest, "paymentRef is required", h.logger)
		return
	}

	order, err := h.service.ConfirmPayment(r.Context(), orderID, req.PaymentRef)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// Cancel handles POST /api/payments/cancel, the gateway's cancellation
// callback. The cart is left untouched so the user can retry.
func (h *CheckoutHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID string `json:"orderId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID format", h.logger)
		return
	}

	if err := h.service.CancelPayment(r.Context(), orderID); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "cancelled",
		"message": model.ErrPaymentCancelled.Message,
	})
}

// GetOrder handles GET /api/orders/{id} requests.
func (h *CheckoutHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/orders/")
	if idStr == "" {
		writeError(w, http.StatusBadRequest, "order ID is required", h.logger)
		return
	}

	orderID, err := uuid.Parse(idStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID format", h.logger)
		return
	}

	order, err := h.service.GetOrder(r.Context(), orderID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to retrieve order", h.logger)
		return
	}
	if order == nil {
		writeError(w, http.StatusNotFound, "order not found", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

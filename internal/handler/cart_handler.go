package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"snack-cart/internal/middleware"
	"snack-cart/internal/model"
	"snack-cart/internal/service"

	"github.com/rs/zerolog"
)

// CartHandler handles cart-related HTTP requests.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// owner resolves the request's cart owner, writing a 400 when absent.
func (h *CartHandler) owner(w http.ResponseWriter, r *http.Request) (model.Owner, bool) {
	owner, ok := middleware.OwnerFrom(r.Context())
	if !ok {
		writeError(w, http.StatusBadRequest, "missing X-User-ID or X-Session-ID header", h.logger)
	}
	return owner, ok
}

// Get handles GET /api/cart requests.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	cart, err := h.service.Get(r.Context(), owner)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load cart", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// AddItemRequest is the payload for POST /api/cart/items.
type AddItemRequest struct {
	ProductID  string `json:"productId"`
	VariantKey string `json:"variantKey,omitempty"`
	Quantity   int    `json:"quantity"`
}

// AddItem handles POST /api/cart/items requests.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "productId is required", h.logger)
		return
	}

	cart, err := h.service.AddItem(r.Context(), owner, req.ProductID, req.VariantKey, req.Quantity)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// UpdateQuantityRequest is the payload for PUT /api/cart/items/{key}.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// lineKeyFromPath extracts the line key from /api/cart/items/{key}.
func lineKeyFromPath(path string) string {
	return strings.TrimPrefix(path, "/api/cart/items/")
}

// UpdateQuantity handles PUT /api/cart/items/{key} requests.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	key := lineKeyFromPath(r.URL.Path)
	if key == "" {
		writeError(w, http.StatusBadRequest, "line key is required", h.logger)
		return
	}

	var req UpdateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	cart, err := h.service.UpdateQuantity(r.Context(), owner, key, req.Quantity)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// RemoveItem handles DELETE /api/cart/items/{key} requests.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	key := lineKeyFromPath(r.URL.Path)
	if key == "" {
		writeError(w, http.StatusBadRequest, "line key is required", h.logger)
		return
	}

	cart, err := h.service.RemoveItem(r.Context(), owner, key)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// Clear handles DELETE /api/cart requests.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	if err := h.service.Clear(r.Context(), owner); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to clear cart", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// Merge handles POST /api/cart/merge requests, called once when a guest
// session authenticates. It requires both the session and user headers.
func (h *CartHandler) Merge(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get(middleware.SessionHeader)
	userID := r.Header.Get(middleware.UserHeader)
	if sessionID == "" || userID == "" {
		writeError(w, http.StatusBadRequest, "merge requires both X-Session-ID and X-User-ID headers", h.logger)
		return
	}

	cart, err := h.service.MergeGuestIntoAccount(r.Context(),
		model.GuestOwner(sessionID), model.AccountOwner(userID))
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

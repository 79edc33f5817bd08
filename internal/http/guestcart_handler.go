package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/domain"
	"github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/guestcart"
)

type GuestCartHandler struct {
	guest *guestcart.Store
}

func NewGuestCartHandler(guest *guestcart.Store) *GuestCartHandler {
	return &GuestCartHandler{guest: guest}
}

type guestCartResponse struct {
	Items []domain.GuestCartItem `json:"items"`
	Count int                    `json:"count"`
}

func (h *GuestCartHandler) respondCart(w http.ResponseWriter, status int, items []domain.GuestCartItem) {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	if items == nil {
		items = []domain.GuestCartItem{}
	}
	respondJSON(w, status, guestCartResponse{Items: items, Count: count})
}

func (h *GuestCartHandler) Get(w http.ResponseWriter, r *http.Request) {
	guestID := getGuestID(r.Context())
	if guestID == "" {
		respondError(w, http.StatusBadRequest, "missing_guest_id", "X-Guest-ID header is required")
		return
	}
	h.respondCart(w, http.StatusOK, h.guest.Items(r.Context(), guestID))
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId,omitempty"`
	Quantity  int    `json:"quantity"`
}

func (h *GuestCartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	guestID := getGuestID(r.Context())
	if guestID == "" {
		respondError(w, http.StatusBadRequest, "missing_guest_id", "X-Guest-ID header is required")
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "productId is required")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	items := h.guest.AddItem(r.Context(), guestID, domain.GuestCartItem{
		ProductID: req.ProductID,
		VariantID: req.VariantID,
		Quantity:  req.Quantity,
	})
	h.respondCart(w, http.StatusCreated, items)
}

type updateQuantityRequest struct {
	Quantity  int    `json:"quantity"`
	VariantID string `json:"variantId,omitempty"`
}

func (h *GuestCartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	guestID := getGuestID(r.Context())
	if guestID == "" {
		respondError(w, http.StatusBadRequest, "missing_guest_id", "X-Guest-ID header is required")
		return
	}

	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	productID := chi.URLParam(r, "productID")
	items := h.guest.UpdateQuantity(r.Context(), guestID, productID, req.Quantity, req.VariantID)
	h.respondCart(w, http.StatusOK, items)
}

func (h *GuestCartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	guestID := getGuestID(r.Context())
	if guestID == "" {
		respondError(w, http.StatusBadRequest, "missing_guest_id", "X-Guest-ID header is required")
		return
	}

	productID := chi.URLParam(r, "productID")
	variantID := r.URL.Query().Get("variantId")
	items := h.guest.RemoveItem(r.Context(), guestID, productID, variantID)
	h.respondCart(w, http.StatusOK, items)
}

func (h *GuestCartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	guestID := getGuestID(r.Context())
	if guestID == "" {
		respondError(w, http.StatusBadRequest, "missing_guest_id", "X-Guest-ID header is required")
		return
	}
	h.guest.Clear(r.Context(), guestID)
	h.respondCart(w, http.StatusOK, nil)
}

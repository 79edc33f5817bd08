package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/checkout"
	"github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/domain"
)

type CheckoutHandler struct {
	flow *checkout.Orchestrator
}

func NewCheckoutHandler(flow *checkout.Orchestrator) *CheckoutHandler {
	return &CheckoutHandler{flow: flow}
}

type checkoutStateResponse struct {
	Draft  *checkout.Draft   `json:"draft"`
	Items  []domain.CartLine `json:"items"`
	Totals checkout.Totals   `json:"totals"`
}

// Start opens the wizard. An empty cart is a 409 carrying a redirect hint:
// checkout must never be enterable with nothing to order.
func (h *CheckoutHandler) Start(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())
	draft, items, err := h.flow.Start(r.Context(), sess.Token)
	if err != nil {
		if errors.Is(err, checkout.ErrEmptyCart) {
			respondJSON(w, http.StatusConflict, ErrorResponse{
				Error:   "cart is empty",
				Code:    "empty_cart",
				Details: map[string]string{"redirect": "/cart"},
			})
			return
		}
		respondError(w, http.StatusBadGateway, "cart_unavailable", "could not load cart contents")
		return
	}

	totals, _ := h.flow.Totals(sess.Token)
	respondJSON(w, http.StatusCreated, checkoutStateResponse{Draft: draft, Items: items, Totals: totals})
}

func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())
	draft, items, totals, err := h.flow.Get(sess.Token)
	if err != nil {
		respondError(w, http.StatusNotFound, "no_checkout", "no checkout in progress")
		return
	}
	respondJSON(w, http.StatusOK, checkoutStateResponse{Draft: draft, Items: items, Totals: totals})
}

type fieldsResponse struct {
	FieldErrors checkout.FieldErrors `json:"fieldErrors"`
}

// UpdateFields stores edits and echoes display-level errors; nothing here
// blocks, the gates are Advance and Submit.
func (h *CheckoutHandler) UpdateFields(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())

	var patch checkout.FieldPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	fieldErrs, err := h.flow.UpdateFields(sess.Token, patch)
	if err != nil {
		respondError(w, http.StatusNotFound, "no_checkout", "no checkout in progress")
		return
	}
	respondJSON(w, http.StatusOK, fieldsResponse{FieldErrors: fieldErrs})
}

func (h *CheckoutHandler) Advance(w http.ResponseWriter, r *http.Request) {
	h.respondTransition(w, r, func(token string) (*checkout.Draft, error) {
		return h.flow.Advance(token)
	})
}

func (h *CheckoutHandler) Retreat(w http.ResponseWriter, r *http.Request) {
	h.respondTransition(w, r, func(token string) (*checkout.Draft, error) {
		return h.flow.Retreat(token)
	})
}

type jumpRequest struct {
	Step domain.Step `json:"step"`
}

func (h *CheckoutHandler) Jump(w http.ResponseWriter, r *http.Request) {
	var req jumpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	h.respondTransition(w, r, func(token string) (*checkout.Draft, error) {
		return h.flow.JumpTo(token, req.Step)
	})
}

func (h *CheckoutHandler) respondTransition(w http.ResponseWriter, r *http.Request, fn func(string) (*checkout.Draft, error)) {
	sess := getSession(r.Context())
	draft, err := fn(sess.Token)
	if err != nil {
		var verr *checkout.ValidationError
		switch {
		case errors.As(err, &verr):
			respondFieldErrors(w, verr.Fields)
		case errors.Is(err, checkout.ErrNoDraft):
			respondError(w, http.StatusNotFound, "no_checkout", "no checkout in progress")
		case errors.Is(err, checkout.ErrForwardJump), errors.Is(err, checkout.ErrUnknownStep):
			respondError(w, http.StatusBadRequest, "invalid_step", err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "internal", "unexpected error")
		}
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"draft": draft})
}

type couponRequest struct {
	Code string `json:"code"`
}

// ApplyCoupon reports the outcome inside the coupon state; a rejected code
// is a 200 whose state carries the inline error.
func (h *CheckoutHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())

	var req couponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "coupon code is required")
		return
	}

	state, err := h.flow.ApplyCoupon(r.Context(), sess.Token, req.Code)
	if err != nil {
		respondError(w, http.StatusNotFound, "no_checkout", "no checkout in progress")
		return
	}

	totals, _ := h.flow.Totals(sess.Token)
	respondJSON(w, http.StatusOK, map[string]any{"coupon": state, "totals": totals})
}

func (h *CheckoutHandler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())

	state, err := h.flow.RemoveCoupon(sess.Token)
	if err != nil {
		respondError(w, http.StatusNotFound, "no_checkout", "no checkout in progress")
		return
	}

	totals, _ := h.flow.Totals(sess.Token)
	respondJSON(w, http.StatusOK, map[string]any{"coupon": state, "totals": totals})
}

// Submit places the order. Validation failures are field-scoped 422s; a
// submit racing another gets 409; a core failure is a 502 that leaves the
// wizard intact for retry.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())

	orderNumber, err := h.flow.Submit(r.Context(), sess.Token, sess.User.ID)
	if err != nil {
		var verr *checkout.ValidationError
		switch {
		case errors.As(err, &verr):
			respondFieldErrors(w, verr.Fields)
		case errors.Is(err, checkout.ErrSubmitInFlight):
			respondError(w, http.StatusConflict, "submit_in_flight", err.Error())
		case errors.Is(err, checkout.ErrNotOnFinalStep):
			respondError(w, http.StatusConflict, "not_on_final_step", err.Error())
		case errors.Is(err, checkout.ErrNoDraft):
			respondError(w, http.StatusNotFound, "no_checkout", "no checkout in progress")
		case errors.Is(err, checkout.ErrEmptyCart):
			respondError(w, http.StatusConflict, "empty_cart", err.Error())
		default:
			respondError(w, http.StatusBadGateway, "order_failed", err.Error())
		}
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"orderNumber": orderNumber})
}

// Abandon discards the wizard, e.g. when the client navigates away.
func (h *CheckoutHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())
	h.flow.Abandon(sess.Token)
	respondJSON(w, http.StatusOK, map[string]string{"status": "abandoned"})
}

// Package checkout gates order submission behind sequential validated
// steps, manages the optional coupon discount and submits the order.
package checkout

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/api"
	"github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/domain"
	"github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/events"
)

// CartReader is the slice of the core API feeding checkout: the account
// cart contents and the post-submission clear.
type CartReader interface {
	Contents(ctx context.Context, token string) ([]domain.CartLine, error)
	Clear(ctx context.Context, token string) error
}

type CouponValidator interface {
	ValidateCoupon(ctx context.Context, token, code string, amount float64) (float64, error)
}

type OrderCreator interface {
	CreateFromCart(ctx context.Context, token string, req api.OrderRequest) ([]domain.OrderResult, error)
}

// EventPublisher may be nil; publication is best-effort either way.
type EventPublisher interface {
	OrderPlaced(ctx context.Context, ev events.OrderPlaced) error
}

// Orchestrator holds every in-progress checkout wizard, keyed by the
// session credential. Drafts live in memory only: they are destroyed on
// successful submission or when the session abandons the wizard.
type Orchestrator struct {
	carts      CartReader
	coupons    CouponValidator
	orders     OrderCreator
	events     EventPublisher
	log        *logrus.Logger
	courierFee float64

	mu       sync.Mutex
	sessions map[string]*wizard
}

type wizard struct {
	draft      *Draft
	lines      []domain.CartLine
	submitting bool
}

func NewOrchestrator(carts CartReader, coupons CouponValidator, orders OrderCreator, pub EventPublisher, courierFee float64, log *logrus.Logger) *Orchestrator {
	return &Orchestrator{
		carts:      carts,
		coupons:    coupons,
		orders:     orders,
		events:     pub,
		log:        log,
		courierFee: courierFee,
		sessions:   make(map[string]*wizard),
	}
}

// Totals is the payable breakdown of the current wizard.
type Totals struct {
	Subtotal   float64 `json:"subtotal"`
	CourierFee float64 `json:"courierFee"`
	Discount   float64 `json:"discount"`
	Total      float64 `json:"total"`
}

// Start reads the account cart and opens a fresh wizard. An empty cart
// refuses checkout outright so an empty order can never be submitted.
func (o *Orchestrator) Start(ctx context.Context, token string) (*Draft, []domain.CartLine, error) {
	lines, err := o.carts.Contents(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	if len(lines) == 0 {
		return nil, nil, ErrEmptyCart
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	w := &wizard{draft: NewDraft(), lines: lines}
	o.sessions[token] = w
	return copyDraft(w.draft), lines, nil
}

// Get returns the current draft, cart lines and totals.
func (o *Orchestrator) Get(token string) (*Draft, []domain.CartLine, Totals, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	w, ok := o.sessions[token]
	if !ok {
		return nil, nil, Totals{}, ErrNoDraft
	}
	return copyDraft(w.draft), w.lines, o.totalsLocked(w), nil
}

// FieldPatch carries partial field edits; nil means untouched.
type FieldPatch struct {
	Phone         *string               `json:"phone,omitempty"`
	City          *string               `json:"city,omitempty"`
	Address       *string               `json:"address,omitempty"`
	PaymentMethod *domain.PaymentMethod `json:"paymentMethod,omitempty"`
}

// UpdateFields applies edits and reports the per-field errors for display.
// Errors here never block: they gate only Advance and Submit.
func (o *Orchestrator) UpdateFields(token string, patch FieldPatch) (FieldErrors, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	w, ok := o.sessions[token]
	if !ok {
		return nil, ErrNoDraft
	}

	if patch.Phone != nil {
		w.draft.Phone = *patch.Phone
	}
	if patch.City != nil {
		w.draft.City = *patch.City
	}
	if patch.Address != nil {
		w.draft.Address = *patch.Address
	}
	if patch.PaymentMethod != nil {
		w.draft.PaymentMethod = *patch.PaymentMethod
	}
	return w.draft.StepErrors(w.draft.Step), nil
}

func (o *Orchestrator) Advance(token string) (*Draft, error) {
	return o.transition(token, func(d *Draft) error { return d.Advance() })
}

func (o *Orchestrator) Retreat(token string) (*Draft, error) {
	return o.transition(token, func(d *Draft) error { d.Retreat(); return nil })
}

func (o *Orchestrator) JumpTo(token string, step domain.Step) (*Draft, error) {
	return o.transition(token, func(d *Draft) error { return d.JumpTo(step) })
}

func (o *Orchestrator) transition(token string, fn func(*Draft) error) (*Draft, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	w, ok := o.sessions[token]
	if !ok {
		return nil, ErrNoDraft
	}
	if err := fn(w.draft); err != nil {
		return copyDraft(w.draft), err
	}
	return copyDraft(w.draft), nil
}

// ApplyCoupon validates a code against the pre-discount subtotal. Applying
// over an existing coupon implicitly removes it first; there is no stacked
// state. Remote rejection and transport failure both land in the returned
// CouponState, never as a Go error.
func (o *Orchestrator) ApplyCoupon(ctx context.Context, token, code string) (domain.CouponState, error) {
	o.mu.Lock()
	w, ok := o.sessions[token]
	if !ok {
		o.mu.Unlock()
		return domain.CouponState{}, ErrNoDraft
	}
	w.draft.Coupon = domain.CouponState{}
	subtotal := domain.Subtotal(w.lines)
	o.mu.Unlock()

	// remote call outside the lock: field editing stays free meanwhile
	discount, err := o.coupons.ValidateCoupon(ctx, token, code, subtotal)

	o.mu.Lock()
	defer o.mu.Unlock()
	w, ok = o.sessions[token]
	if !ok {
		return domain.CouponState{}, ErrNoDraft
	}
	if err != nil {
		msg := "could not validate coupon, try again"
		var coreErr *api.CoreError
		if errors.Is(err, api.ErrCouponRejected) || errors.As(err, &coreErr) {
			msg = err.Error()
		}
		w.draft.Coupon = domain.CouponState{Code: code, Err: msg}
		return w.draft.Coupon, nil
	}

	w.draft.Coupon = domain.CouponState{Code: code, DiscountAmount: discount, Applied: true}
	return w.draft.Coupon, nil
}

// RemoveCoupon resets the coupon to its empty default and discards any
// coupon error.
func (o *Orchestrator) RemoveCoupon(token string) (domain.CouponState, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	w, ok := o.sessions[token]
	if !ok {
		return domain.CouponState{}, ErrNoDraft
	}
	w.draft.Coupon = domain.CouponState{}
	return w.draft.Coupon, nil
}

// Totals returns subtotal + courier fee − discount, clamped at zero. The
// core caps discounts at the subtotal, but the clamp stands regardless.
func (o *Orchestrator) Totals(token string) (Totals, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	w, ok := o.sessions[token]
	if !ok {
		return Totals{}, ErrNoDraft
	}
	return o.totalsLocked(w), nil
}

func (o *Orchestrator) totalsLocked(w *wizard) Totals {
	t := Totals{
		Subtotal:   domain.Subtotal(w.lines),
		CourierFee: o.courierFee,
		Discount:   w.draft.Coupon.DiscountAmount,
	}
	t.Total = t.Subtotal + t.CourierFee - t.Discount
	if t.Total < 0 {
		t.Total = 0
	}
	return t
}

// Abandon destroys the draft, e.g. when the user navigates away.
func (o *Orchestrator) Abandon(token string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.sessions, token)
}

// Submit re-validates every field from scratch and posts the combined
// order. A second submit while one is in flight is rejected, not queued.
// On failure the wizard (step, coupon, fields) and the cart survive for a
// retry; on success the cart is cleared and the draft destroyed.
func (o *Orchestrator) Submit(ctx context.Context, token, buyerID string) (string, error) {
	o.mu.Lock()
	w, ok := o.sessions[token]
	if !ok {
		o.mu.Unlock()
		return "", ErrNoDraft
	}
	if w.submitting {
		o.mu.Unlock()
		return "", ErrSubmitInFlight
	}
	if w.draft.Step != domain.StepPayment {
		o.mu.Unlock()
		return "", ErrNotOnFinalStep
	}
	if errs := w.draft.ValidateAll(); len(errs) > 0 {
		o.mu.Unlock()
		return "", &ValidationError{Fields: errs}
	}
	w.submitting = true
	draft := copyDraft(w.draft)
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		if w, ok := o.sessions[token]; ok {
			w.submitting = false
		}
		o.mu.Unlock()
	}()

	// the cart is re-read at submission time; it is the authoritative set
	// of lines the order carries
	lines, err := o.carts.Contents(ctx, token)
	if err != nil {
		return "", err
	}
	if len(lines) == 0 {
		return "", ErrEmptyCart
	}

	req := api.OrderRequest{
		Address:       draft.Address,
		City:          draft.City,
		Phone:         draft.Phone,
		PaymentMethod: draft.PaymentMethod,
	}
	if draft.Coupon.Applied {
		req.CouponCode = draft.Coupon.Code
	}
	for _, line := range lines {
		req.Items = append(req.Items, api.OrderItem{
			ProductID: line.Product.ID,
			Quantity:  line.Quantity,
		})
	}

	results, err := o.orders.CreateFromCart(ctx, token, req)
	if err != nil {
		return "", err
	}

	if err := o.carts.Clear(ctx, token); err != nil {
		o.log.WithError(err).Warn("cart clear after order creation failed")
	}

	o.mu.Lock()
	totals := o.totalsLocked(&wizard{draft: draft, lines: lines})
	delete(o.sessions, token)
	o.mu.Unlock()

	o.publishOrderPlaced(ctx, buyerID, draft, results, totals)

	// the first order number is the user-facing confirmation
	return results[0].OrderNumber, nil
}

func (o *Orchestrator) publishOrderPlaced(ctx context.Context, buyerID string, draft *Draft, results []domain.OrderResult, totals Totals) {
	if o.events == nil {
		return
	}
	numbers := make([]string, 0, len(results))
	for _, r := range results {
		numbers = append(numbers, r.OrderNumber)
	}
	ev := events.OrderPlaced{
		OrderNumbers:  numbers,
		BuyerID:       buyerID,
		City:          draft.City,
		PaymentMethod: string(draft.PaymentMethod),
		Total:         totals.Total,
		PlacedAt:      time.Now(),
	}
	if err := o.events.OrderPlaced(ctx, ev); err != nil {
		o.log.WithError(err).Warn("order event publish failed, continuing")
	}
}

func copyDraft(d *Draft) *Draft {
	cp := *d
	return &cp
}

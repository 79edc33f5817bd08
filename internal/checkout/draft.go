package checkout

import (
	"github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/domain"
)

// Draft is the whole state of one in-progress checkout wizard. All
// transitions are pure methods so the step and submission rules live in
// one place.
type Draft struct {
	Step          domain.Step          `json:"step"`
	Phone         string               `json:"phone"`
	City          string               `json:"city"`
	Address       string               `json:"address"`
	PaymentMethod domain.PaymentMethod `json:"paymentMethod"`
	Coupon        domain.CouponState   `json:"coupon"`
}

func NewDraft() *Draft {
	return &Draft{
		Step:          domain.StepContact,
		PaymentMethod: domain.PaymentCash,
	}
}

// StepErrors reports the field errors gating one step. Step 3 is always
// structurally valid: the payment method has a non-empty default.
func (d *Draft) StepErrors(step domain.Step) FieldErrors {
	errs := FieldErrors{}
	switch step {
	case domain.StepContact:
		errs.add("phone", ValidatePhone(d.Phone))
	case domain.StepDelivery:
		errs.add("city", ValidateCity(d.City))
		errs.add("address", ValidateAddress(d.Address))
	}
	return errs
}

// ValidateAll re-checks every field from scratch. Backward navigation can
// leave fields touched but unvalidated, so submission never trusts the
// per-step checks alone.
func (d *Draft) ValidateAll() FieldErrors {
	errs := FieldErrors{}
	errs.add("phone", ValidatePhone(d.Phone))
	errs.add("city", ValidateCity(d.City))
	errs.add("address", ValidateAddress(d.Address))
	return errs
}

// Advance moves forward one step, gated on the current step's fields.
func (d *Draft) Advance() error {
	if errs := d.StepErrors(d.Step); len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	if d.Step < domain.StepPayment {
		d.Step++
	}
	return nil
}

// Retreat moves back one step; always allowed above step 1.
func (d *Draft) Retreat() {
	if d.Step > domain.StepContact {
		d.Step--
	}
}

// JumpTo moves directly to an earlier step (a "change" action). Forward
// jumps are never allowed; only Advance moves forward.
func (d *Draft) JumpTo(step domain.Step) error {
	if step < domain.StepContact || step > domain.StepPayment {
		return ErrUnknownStep
	}
	if step > d.Step {
		return ErrForwardJump
	}
	d.Step = step
	return nil
}

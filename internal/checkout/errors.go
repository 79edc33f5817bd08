package checkout

import "errors"

var (
	ErrEmptyCart      = errors.New("cart is empty, nothing to checkout")
	ErrNoDraft        = errors.New("no checkout in progress")
	ErrForwardJump    = errors.New("cannot jump forward past the current step")
	ErrUnknownStep    = errors.New("unknown checkout step")
	ErrNotOnFinalStep = errors.New("submission is only allowed from the payment step")
	ErrSubmitInFlight = errors.New("a submission is already in flight")
)

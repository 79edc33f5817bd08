package domain

// Step is one screen of the checkout wizard. Progress is linear: forward
// only through Advance, backward freely.
type Step int

const (
	StepContact  Step = 1
	StepDelivery Step = 2
	StepPayment  Step = 3
)

func (s Step) String() string {
	switch s {
	case StepContact:
		return "CONTACT"
	case StepDelivery:
		return "DELIVERY"
	case StepPayment:
		return "PAYMENT"
	}
	return "UNKNOWN"
}

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "CASH"
	PaymentCard PaymentMethod = "CARD"
)

// CouponState tracks the single optional coupon of a checkout session.
// Applied implies DiscountAmount >= 0 and Err == ""; not applied implies
// DiscountAmount == 0.
type CouponState struct {
	Code           string  `json:"code"`
	DiscountAmount float64 `json:"discountAmount"`
	Applied        bool    `json:"applied"`
	Err            string  `json:"error,omitempty"`
}

// OrderResult is one per-seller order returned by the core API after a
// combined order-creation request is split.
type OrderResult struct {
	Success     bool   `json:"success"`
	OrderNumber string `json:"orderNumber"`
}

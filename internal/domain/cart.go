package domain

// GuestCartItem is one line of the pre-login cart. Identity is the
// (ProductID, VariantID) pair; at most one line exists per pair.
type GuestCartItem struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId,omitempty"`
	Quantity  int    `json:"quantity"`
}

// Key returns the identity key of the line.
func (i GuestCartItem) Key() string {
	return i.ProductID + "|" + i.VariantID
}

// ProductSnapshot is the slice of product data the checkout flow needs.
// The catalog itself is owned by the core API.
type ProductSnapshot struct {
	ID       string  `json:"id"`
	SellerID string  `json:"sellerId"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
}

// CartLine is one line of the authenticated account cart, read-only here.
type CartLine struct {
	Product  ProductSnapshot `json:"product"`
	Quantity int             `json:"quantity"`
}

// Subtotal sums price*quantity over all lines.
func Subtotal(lines []CartLine) float64 {
	var total float64
	for _, l := range lines {
		total += l.Product.Price * float64(l.Quantity)
	}
	return total
}

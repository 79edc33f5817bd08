package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// ErrCouponRejected marks a code the core refused (unknown, expired, below
// minimum order). The wrapped message is user-facing.
var ErrCouponRejected = errors.New("coupon rejected")

type CouponClient interface {
	ValidateCoupon(ctx context.Context, token, code string, amount float64) (float64, error)
}

// ValidateCoupon checks a code against the pre-discount total and returns
// the granted discount amount.
func (c *Client) ValidateCoupon(ctx context.Context, token, code string, amount float64) (float64, error) {
	query := url.Values{}
	query.Set("code", code)
	query.Set("amount", strconv.FormatFloat(amount, 'f', -1, 64))

	data, err := c.do(ctx, http.MethodGet, "/coupons/validate", token, query, nil)
	if err != nil {
		var coreErr *CoreError
		if errors.As(err, &coreErr) {
			return 0, fmt.Errorf("%w: %s", ErrCouponRejected, coreErr.Message)
		}
		return 0, err
	}

	var payload struct {
		Discount float64 `json:"discount"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return 0, fmt.Errorf("decode coupon response failed: %w", err)
	}
	return payload.Discount, nil
}

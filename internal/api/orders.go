package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/domain"
)

type OrderClient interface {
	CreateFromCart(ctx context.Context, token string, req OrderRequest) ([]domain.OrderResult, error)
}

type OrderItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// OrderRequest is the combined submission; the core splits it into one
// order per seller represented in the items.
type OrderRequest struct {
	Items         []OrderItem          `json:"items"`
	Address       string               `json:"address"`
	City          string               `json:"city"`
	Phone         string               `json:"phone"`
	PaymentMethod domain.PaymentMethod `json:"paymentMethod"`
	CouponCode    string               `json:"couponCode,omitempty"`
}

func (c *Client) CreateFromCart(ctx context.Context, token string, req OrderRequest) ([]domain.OrderResult, error) {
	data, err := c.do(ctx, http.MethodPost, "/orders/from-cart", token, nil, req)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Orders []struct {
			Success bool `json:"success"`
			Data    struct {
				OrderNumber string `json:"orderNumber"`
			} `json:"data"`
		} `json:"orders"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode order response failed: %w", err)
	}
	if len(payload.Orders) == 0 {
		return nil, fmt.Errorf("core api returned no orders")
	}

	results := make([]domain.OrderResult, 0, len(payload.Orders))
	for _, o := range payload.Orders {
		results = append(results, domain.OrderResult{
			Success:     o.Success,
			OrderNumber: o.Data.OrderNumber,
		})
	}
	return results, nil
}

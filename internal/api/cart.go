package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/domain"
)

// CartClient covers the account cart owned by the core API: the merge
// target for guest carts and the read-only contents feeding checkout.
type CartClient interface {
	Merge(ctx context.Context, token string, items []domain.GuestCartItem) error
	Contents(ctx context.Context, token string) ([]domain.CartLine, error)
	Clear(ctx context.Context, token string) error
}

type mergeRequest struct {
	Items []domain.GuestCartItem `json:"items"`
}

// Merge submits the guest lines for server-side reconciliation. The core is
// expected to merge additively, so a retried submission stays safe.
func (c *Client) Merge(ctx context.Context, token string, items []domain.GuestCartItem) error {
	_, err := c.do(ctx, http.MethodPost, "/cart/merge", token, nil, mergeRequest{Items: items})
	return err
}

func (c *Client) Contents(ctx context.Context, token string) ([]domain.CartLine, error) {
	data, err := c.do(ctx, http.MethodGet, "/cart", token, nil, nil)
	if err != nil {
		return nil, err
	}
	var payload struct {
		Items []domain.CartLine `json:"items"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode cart contents failed: %w", err)
	}
	return payload.Items, nil
}

func (c *Client) Clear(ctx context.Context, token string) error {
	_, err := c.do(ctx, http.MethodDelete, "/cart", token, nil, nil)
	return err
}

// Package merge folds a just-authenticated user's guest cart into their
// account cart, at most once per login event.
package merge

import (
	"context"
	"fmt"

	"github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/api"
	"github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/guestcart"
)

type Protocol struct {
	guest *guestcart.Store
	carts api.CartClient
}

func NewProtocol(guest *guestcart.Store, carts api.CartClient) *Protocol {
	return &Protocol{guest: guest, carts: carts}
}

// Run submits the guest cart to the core and clears it only on confirmed
// success. On failure the guest cart is left intact so the next login
// retries the merge (the core merges additively, so a retry is safe).
//
// The caller owns the returned error and is expected to log and discard
// it: a merge failure must never abort a login or registration.
func (p *Protocol) Run(ctx context.Context, guestID, token string) error {
	if !p.guest.HasItems(ctx, guestID) {
		return nil
	}

	items := p.guest.ItemsForMerge(ctx, guestID)
	if len(items) == 0 {
		return nil
	}

	if err := p.carts.Merge(ctx, token, items); err != nil {
		return fmt.Errorf("cart merge failed: %w", err)
	}

	p.guest.Clear(ctx, guestID)
	return nil
}

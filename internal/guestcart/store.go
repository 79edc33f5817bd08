package guestcart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/domain"
	"github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/kv"
)

// Store keeps the pre-login cart alive across reloads without server
// involvement. One KV record per guest, whole-record read-modify-write,
// last writer wins (concurrent tabs can race; accepted).
//
// Reads degrade to an empty cart on missing or corrupt payloads. Writes are
// best-effort: a persist failure is logged and the in-memory result is
// still returned, so a later read may lag behind what the caller saw.
type Store struct {
	kv  kv.Store
	log *logrus.Logger
}

func NewStore(store kv.Store, log *logrus.Logger) *Store {
	return &Store{kv: store, log: log}
}

func cartKey(guestID string) string {
	return fmt.Sprintf("guest_cart:%s", guestID)
}

// Items returns the persisted lines in insertion order.
func (s *Store) Items(ctx context.Context, guestID string) []domain.GuestCartItem {
	data, err := s.kv.Get(ctx, cartKey(guestID))
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			s.log.WithError(err).Warn("guest cart read failed, treating as empty")
		}
		return nil
	}

	var items []domain.GuestCartItem
	if err := json.Unmarshal(data, &items); err != nil {
		s.log.WithError(err).Warn("guest cart payload corrupt, treating as empty")
		return nil
	}
	return items
}

// SetItems replaces the whole collection. The record is written in one Set,
// so a reader never observes a partial state.
func (s *Store) SetItems(ctx context.Context, guestID string, items []domain.GuestCartItem) {
	data, err := json.Marshal(items)
	if err != nil {
		s.log.WithError(err).Warn("guest cart marshal failed, dropping write")
		return
	}
	if err := s.kv.Set(ctx, cartKey(guestID), data); err != nil {
		s.log.WithError(err).Warn("guest cart persist failed, continuing")
	}
}

// AddItem accumulates quantity into an existing (product, variant) line or
// appends a new one, preserving insertion order among distinct keys.
func (s *Store) AddItem(ctx context.Context, guestID string, item domain.GuestCartItem) []domain.GuestCartItem {
	items := s.Items(ctx, guestID)
	found := false
	for i := range items {
		if items[i].Key() == item.Key() {
			items[i].Quantity += item.Quantity
			found = true
			break
		}
	}
	if !found {
		items = append(items, item)
	}
	s.SetItems(ctx, guestID, items)
	return items
}

// UpdateQuantity sets (not increments) the quantity of the matching line;
// quantity <= 0 removes it. No-op when the key is absent.
func (s *Store) UpdateQuantity(ctx context.Context, guestID, productID string, quantity int, variantID string) []domain.GuestCartItem {
	key := domain.GuestCartItem{ProductID: productID, VariantID: variantID}.Key()
	items := s.Items(ctx, guestID)
	for i := range items {
		if items[i].Key() != key {
			continue
		}
		if quantity <= 0 {
			items = append(items[:i], items[i+1:]...)
		} else {
			items[i].Quantity = quantity
		}
		s.SetItems(ctx, guestID, items)
		return items
	}
	return items
}

// RemoveItem removes the matching line; no-op otherwise.
func (s *Store) RemoveItem(ctx context.Context, guestID, productID, variantID string) []domain.GuestCartItem {
	key := domain.GuestCartItem{ProductID: productID, VariantID: variantID}.Key()
	items := s.Items(ctx, guestID)
	for i := range items {
		if items[i].Key() == key {
			items = append(items[:i], items[i+1:]...)
			s.SetItems(ctx, guestID, items)
			return items
		}
	}
	return items
}

// Clear deletes the whole record.
func (s *Store) Clear(ctx context.Context, guestID string) {
	if err := s.kv.Delete(ctx, cartKey(guestID)); err != nil {
		s.log.WithError(err).Warn("guest cart clear failed, continuing")
	}
}

// Count sums quantities over all lines.
func (s *Store) Count(ctx context.Context, guestID string) int {
	var n int
	for _, item := range s.Items(ctx, guestID) {
		n += item.Quantity
	}
	return n
}

func (s *Store) HasItems(ctx context.Context, guestID string) bool {
	return len(s.Items(ctx, guestID)) > 0
}

// ItemsForMerge is the normalized projection the merge protocol submits:
// only lines with a positive quantity survive.
func (s *Store) ItemsForMerge(ctx context.Context, guestID string) []domain.GuestCartItem {
	items := s.Items(ctx, guestID)
	out := make([]domain.GuestCartItem, 0, len(items))
	for _, item := range items {
		if item.Quantity > 0 {
			out = append(out, item)
		}
	}
	return out
}

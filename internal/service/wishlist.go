package service

import (
	"context"
	"log/slog"

	"github.com/vxsahu/urban-threadz/internal/domain"
	"github.com/vxsahu/urban-threadz/internal/wishlist"
)

// WishlistView lists the saved ids and the saved products still in the catalog.
type WishlistView struct {
	ProductIDs []string         `json:"product_ids"`
	Products   []domain.Product `json:"products"`
}

func (s *Storefront) wishlist(sessionID string) (*wishlist.Store, error) {
	if err := checkSession(sessionID); err != nil {
		return nil, err
	}
	return wishlist.New(s.session(sessionID), s.logger), nil
}

// Wishlist returns the wishlist of sessionID.
func (s *Storefront) Wishlist(ctx context.Context, sessionID string) (WishlistView, error) {
	store, err := s.wishlist(sessionID)
	if err != nil {
		return WishlistView{}, err
	}

	ids := store.List(ctx)
	view := WishlistView{ProductIDs: ids, Products: make([]domain.Product, 0, len(ids))}
	for _, id := range ids {
		if p, ok := s.catalog.ByID(id); ok {
			view.Products = append(view.Products, p)
		}
	}
	return view, nil
}

// ToggleWishlist saves productID when absent and drops it when present.
// Only catalog products can be saved; a saved id can always be dropped.
func (s *Storefront) ToggleWishlist(ctx context.Context, sessionID, productID string) (added bool, err error) {
	store, err := s.wishlist(sessionID)
	if err != nil {
		return false, err
	}

	defer s.lock(sessionID)()

	if !store.Contains(ctx, productID) {
		if _, err := s.product(productID); err != nil {
			return false, err
		}
	}
	added = store.Toggle(ctx, productID)

	s.log(ctx).InfoContext(ctx, "wishlist toggled",
		slog.String("product_id", productID),
		slog.Bool("added", added),
	)
	return added, nil
}

// RemoveFromWishlist drops productID if saved.
func (s *Storefront) RemoveFromWishlist(ctx context.Context, sessionID, productID string) error {
	store, err := s.wishlist(sessionID)
	if err != nil {
		return err
	}

	defer s.lock(sessionID)()

	store.Remove(ctx, productID)
	return nil
}

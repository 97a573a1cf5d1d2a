package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vxsahu/urban-threadz/internal/domain"
	apperrors "github.com/vxsahu/urban-threadz/pkg/errors"
)

// AddItemInput is the input for adding a product to the cart.
type AddItemInput struct {
	ProductID string
	Quantity  int
	Size      string
}

// UpdateItemInput is the input for changing a cart line's quantity.
type UpdateItemInput struct {
	Quantity int
	Size     string
}

// CartView is a cart with its derived totals.
type CartView struct {
	Lines          []domain.CartLine `json:"lines"`
	ItemCount      int               `json:"item_count"`
	Total          int64             `json:"total"`
	FormattedTotal string            `json:"formatted_total"`
	FreeShipping   bool              `json:"free_shipping"`
}

// View derives the totals of lines.
func (s *Storefront) View(lines []domain.CartLine) CartView {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	total := domain.CartTotal(lines)
	return CartView{
		Lines:          lines,
		ItemCount:      domain.CartItemCount(lines),
		Total:          total,
		FormattedTotal: s.composer.FormatPrice(total),
		FreeShipping:   s.composer.FreeShipping(total),
	}
}

// Cart returns the cart of sessionID.
func (s *Storefront) Cart(ctx context.Context, sessionID string) (CartView, error) {
	store, err := s.CartStore(sessionID)
	if err != nil {
		return CartView{}, err
	}
	return s.View(store.GetCart(ctx)), nil
}

// AddToCart adds quantity units of a product in the given size. The product
// must exist and be available. When the product has sizes, size is required
// and must be one of them. The resulting line quantity must not exceed
// MaxQuantity.
func (s *Storefront) AddToCart(ctx context.Context, sessionID string, input AddItemInput) (CartView, error) {
	store, err := s.CartStore(sessionID)
	if err != nil {
		return CartView{}, err
	}
	if input.Quantity < 1 {
		return CartView{}, apperrors.InvalidInput("quantity must be greater than 0")
	}
	if input.Quantity > s.maxQuantity {
		return CartView{}, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", s.maxQuantity))
	}

	p, err := s.product(input.ProductID)
	if err != nil {
		return CartView{}, err
	}
	if !p.IsAvailable {
		return CartView{}, apperrors.Conflict(fmt.Sprintf("%s is currently unavailable", p.Name))
	}
	size, err := purchasableSize(p, input.Size)
	if err != nil {
		return CartView{}, err
	}

	defer s.lock(sessionID)()

	for _, l := range store.GetCart(ctx) {
		if l.Matches(p.ID, size) && l.Quantity+input.Quantity > s.maxQuantity {
			return CartView{}, apperrors.InvalidInput(fmt.Sprintf("combined quantity must not exceed %d", s.maxQuantity))
		}
	}

	lines := store.AddToCart(ctx, p, input.Quantity, size)
	s.cartUpdated(ctx, sessionID, lines)

	s.log(ctx).InfoContext(ctx, "item added to cart",
		slog.String("product_id", p.ID),
		slog.String("size", size),
		slog.Int("quantity", input.Quantity),
	)
	return s.View(lines), nil
}

// UpdateCartItem sets the quantity of the line keyed by (productID, size).
// Quantity 0 removes the line. A missing line is not found.
func (s *Storefront) UpdateCartItem(ctx context.Context, sessionID, productID string, input UpdateItemInput) (CartView, error) {
	store, err := s.CartStore(sessionID)
	if err != nil {
		return CartView{}, err
	}
	if input.Quantity < 0 {
		return CartView{}, apperrors.InvalidInput("quantity must not be negative")
	}
	if input.Quantity > s.maxQuantity {
		return CartView{}, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", s.maxQuantity))
	}
	size := s.lineSize(productID, input.Size)

	defer s.lock(sessionID)()

	if !store.IsItemInCart(ctx, productID, size) {
		return CartView{}, apperrors.NotFound("cart item", lineKey(productID, size))
	}

	lines := store.UpdateCartItemQuantity(ctx, productID, input.Quantity, size)
	s.cartUpdated(ctx, sessionID, lines)

	s.log(ctx).InfoContext(ctx, "cart item quantity updated",
		slog.String("product_id", productID),
		slog.String("size", size),
		slog.Int("quantity", input.Quantity),
	)
	return s.View(lines), nil
}

// RemoveCartItem drops the line keyed by (productID, size). Removing a line
// that is not in the cart leaves the cart unchanged.
func (s *Storefront) RemoveCartItem(ctx context.Context, sessionID, productID, size string) (CartView, error) {
	store, err := s.CartStore(sessionID)
	if err != nil {
		return CartView{}, err
	}
	size = s.lineSize(productID, size)

	defer s.lock(sessionID)()

	lines := store.RemoveFromCart(ctx, productID, size)
	s.cartUpdated(ctx, sessionID, lines)

	s.log(ctx).InfoContext(ctx, "item removed from cart",
		slog.String("product_id", productID),
		slog.String("size", size),
	)
	return s.View(lines), nil
}

// ClearCart empties the cart of sessionID.
func (s *Storefront) ClearCart(ctx context.Context, sessionID string) error {
	store, err := s.CartStore(sessionID)
	if err != nil {
		return err
	}

	defer s.lock(sessionID)()

	store.ClearCart(ctx)
	if err := s.publisher.CartCleared(ctx, sessionID); err != nil {
		s.log(ctx).ErrorContext(ctx, "failed to publish cart.cleared event", slog.String("error", err.Error()))
	}

	s.log(ctx).InfoContext(ctx, "cart cleared")
	return nil
}

// InCart reports whether the line keyed by (productID, size) is in the cart.
func (s *Storefront) InCart(ctx context.Context, sessionID, productID, size string) (bool, error) {
	store, err := s.CartStore(sessionID)
	if err != nil {
		return false, err
	}
	return store.IsItemInCart(ctx, productID, s.lineSize(productID, size)), nil
}

func (s *Storefront) cartUpdated(ctx context.Context, sessionID string, lines []domain.CartLine) {
	if err := s.publisher.CartUpdated(ctx, sessionID, lines); err != nil {
		s.log(ctx).ErrorContext(ctx, "failed to publish cart.updated event", slog.String("error", err.Error()))
	}
}

// lineSize canonicalises size against the product's sizes when the product is
// still in the catalog. Lines of withdrawn products keep the size as given.
func (s *Storefront) lineSize(productID, size string) string {
	if p, ok := s.catalog.ByID(productID); ok {
		if name := p.SizeName(size); name != "" {
			return name
		}
	}
	return size
}

// purchasableSize validates size for p and returns its canonical spelling.
func purchasableSize(p domain.Product, size string) (string, error) {
	if len(p.Sizes) == 0 {
		if size != "" {
			return "", apperrors.InvalidInput(fmt.Sprintf("%s is not sold in sizes", p.Name))
		}
		return "", nil
	}
	if size == "" {
		return "", apperrors.InvalidInput("size is required")
	}
	for _, sz := range p.Sizes {
		if sz.Name == p.SizeName(size) {
			if sz.Stock <= 0 {
				return "", apperrors.Conflict(fmt.Sprintf("size %s of %s is out of stock", sz.Name, p.Name))
			}
			return sz.Name, nil
		}
	}
	return "", apperrors.InvalidInput(fmt.Sprintf("size %s is not available for %s", size, p.Name))
}

func lineKey(productID, size string) string {
	if size == "" {
		return productID
	}
	return productID + "/" + size
}

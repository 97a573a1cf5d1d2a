package service

import (
	"context"
	"fmt"
	"log/slog"

	apperrors "github.com/vxsahu/urban-threadz/pkg/errors"
)

// Contact topics with a prepared message.
const (
	TopicQuickOrder = "quick-order"
	TopicSupport    = "support"
	TopicSizeGuide  = "size-guide"
)

// OrderLink is a composed message and the deep link that opens it in the
// messaging app.
type OrderLink struct {
	Message string `json:"message"`
	URL     string `json:"url"`
}

func (s *Storefront) link(message string) OrderLink {
	return OrderLink{Message: message, URL: s.composer.DeepLink(message)}
}

// Checkout composes the order message for the whole cart.
func (s *Storefront) Checkout(ctx context.Context, sessionID string) (OrderLink, error) {
	store, err := s.CartStore(sessionID)
	if err != nil {
		return OrderLink{}, err
	}

	lines := store.GetCart(ctx)
	if len(lines) == 0 {
		return OrderLink{}, apperrors.InvalidInput("your cart is empty")
	}

	s.log(ctx).InfoContext(ctx, "checkout link composed",
		slog.Int("lines", len(lines)),
		slog.Int64("total", s.View(lines).Total),
	)
	return s.link(s.composer.CartMessage(lines)), nil
}

// ProductOrderLink composes an enquiry for quantity units of one product.
// Quantity 0 means 1. A size, when given, must be one of the product's sizes.
func (s *Storefront) ProductOrderLink(productID string, quantity int, size string) (OrderLink, error) {
	p, err := s.product(productID)
	if err != nil {
		return OrderLink{}, err
	}
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 || quantity > s.maxQuantity {
		return OrderLink{}, apperrors.InvalidInput(fmt.Sprintf("quantity must be between 1 and %d", s.maxQuantity))
	}
	if size != "" {
		if size = p.SizeName(size); size == "" {
			return OrderLink{}, apperrors.InvalidInput(fmt.Sprintf("size is not available for %s", p.Name))
		}
	}
	return s.link(s.composer.ProductMessage(p, quantity, size)), nil
}

// ContactLink returns the prepared message for topic.
func (s *Storefront) ContactLink(topic string) (OrderLink, error) {
	switch topic {
	case TopicQuickOrder:
		return s.link(s.composer.QuickOrderMessage()), nil
	case TopicSupport:
		return s.link(s.composer.SupportMessage()), nil
	case TopicSizeGuide:
		return s.link(s.composer.SizeGuideMessage()), nil
	default:
		return OrderLink{}, apperrors.NotFound("contact topic", topic)
	}
}

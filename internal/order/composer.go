// Package order renders cart and product state into the text messages handed
// off to the external messaging app, and builds the deep links that open it.
package order

import (
	"fmt"
	"strings"

	"github.com/vxsahu/urban-threadz/internal/domain"
)

// Config holds store details printed into messages.
type Config struct {
	StoreName             string
	SiteURL               string
	CurrencySymbol        string
	FreeShippingThreshold int64
	MessagingDomain       string
	RecipientID           string
}

// DefaultConfig returns the Urban Threadz defaults.
func DefaultConfig() Config {
	return Config{
		StoreName:             "Urban Threadz",
		SiteURL:               "https://urban-threadz.vercel.app",
		CurrencySymbol:        "₹",
		FreeShippingThreshold: 999,
		MessagingDomain:       "wa.me",
		RecipientID:           "918502913816",
	}
}

// Composer builds messages. Output depends only on its inputs.
type Composer struct {
	cfg Config
}

// NewComposer creates a Composer. Empty fields take DefaultConfig values.
func NewComposer(cfg Config) *Composer {
	def := DefaultConfig()
	if cfg.StoreName == "" {
		cfg.StoreName = def.StoreName
	}
	if cfg.SiteURL == "" {
		cfg.SiteURL = def.SiteURL
	}
	if cfg.CurrencySymbol == "" {
		cfg.CurrencySymbol = def.CurrencySymbol
	}
	if cfg.MessagingDomain == "" {
		cfg.MessagingDomain = def.MessagingDomain
	}
	if cfg.RecipientID == "" {
		cfg.RecipientID = def.RecipientID
	}
	cfg.SiteURL = strings.TrimRight(cfg.SiteURL, "/")
	return &Composer{cfg: cfg}
}

// FormatPrice renders an amount with the currency symbol: ₹1,00,000.
func (c *Composer) FormatPrice(amount int64) string {
	if amount < 0 {
		return "-" + c.cfg.CurrencySymbol + GroupIndian(-amount)
	}
	return c.cfg.CurrencySymbol + GroupIndian(amount)
}

// ProductLink is the product detail page URL.
func (c *Composer) ProductLink(id string) string {
	return c.cfg.SiteURL + "/productDetails/" + id
}

// ProductMessage is a single-item order enquiry.
func (c *Composer) ProductMessage(p domain.Product, quantity int, size string) string {
	if quantity < 1 {
		quantity = 1
	}
	unit := p.SellingPrice()

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s! I'd like to order this item:\n\n", c.cfg.StoreName)
	fmt.Fprintf(&b, "*%s*\n", p.Name)
	if size != "" {
		fmt.Fprintf(&b, "Size: %s\n", size)
	}
	if pct := DiscountPercent(p.RealPrice, p.DiscountedPrice); pct > 0 {
		fmt.Fprintf(&b, "Price: %s (MRP %s, %d%% off)\n", c.FormatPrice(unit), c.FormatPrice(p.RealPrice), pct)
	} else {
		fmt.Fprintf(&b, "Price: %s\n", c.FormatPrice(unit))
	}
	fmt.Fprintf(&b, "Quantity: %d\n", quantity)
	fmt.Fprintf(&b, "Subtotal: %s\n\n", c.FormatPrice(unit*int64(quantity)))
	fmt.Fprintf(&b, "Product link: %s\n\n", c.ProductLink(p.ID))
	b.WriteString("Please confirm availability and delivery details.")
	return b.String()
}

// CartMessage lists every line with its subtotal, then the item count, the
// grand total and the shipping terms.
func (c *Composer) CartMessage(lines []domain.CartLine) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s! I'd like to place an order:\n\n", c.cfg.StoreName)

	for i, l := range lines {
		fmt.Fprintf(&b, "%d. *%s*", i+1, l.Name)
		if l.Size != "" {
			fmt.Fprintf(&b, " (Size: %s)", l.Size)
		}
		b.WriteByte('\n')
		fmt.Fprintf(&b, "   %s x %d = %s\n", c.FormatPrice(l.UnitPrice()), l.Quantity, c.FormatPrice(l.Subtotal()))
	}

	total := domain.CartTotal(lines)
	fmt.Fprintf(&b, "\nTotal items: %d\n", domain.CartItemCount(lines))
	fmt.Fprintf(&b, "Order total: %s\n", c.FormatPrice(total))
	if c.FreeShipping(total) {
		b.WriteString("Shipping: FREE\n\n")
	} else {
		fmt.Fprintf(&b, "Shipping: charged at confirmation (free on orders of %s or more)\n\n",
			c.FormatPrice(c.cfg.FreeShippingThreshold))
	}
	b.WriteString("Please confirm my order and share the payment details.")
	return b.String()
}

// FreeShipping reports whether total qualifies for free shipping.
func (c *Composer) FreeShipping(total int64) bool {
	return total >= c.cfg.FreeShippingThreshold
}

// QuickOrderMessage opens a conversation for an order without a cart.
func (c *Composer) QuickOrderMessage() string {
	return fmt.Sprintf("Hi %s! I'd like to place a quick order. Could you help me pick a style and size?", c.cfg.StoreName)
}

// SupportMessage opens a general support conversation.
func (c *Composer) SupportMessage() string {
	return fmt.Sprintf("Hi %s! I have a question about your products.", c.cfg.StoreName)
}

// SizeGuideMessage asks for the size chart.
func (c *Composer) SizeGuideMessage() string {
	return fmt.Sprintf("Hi %s! Could you share your size guide? I'd like to find my perfect fit.", c.cfg.StoreName)
}

// DeepLink returns https://<domain>/<recipient>?text=<message>, with the
// message percent-encoded as a URI component.
func (c *Composer) DeepLink(message string) string {
	return "https://" + c.cfg.MessagingDomain + "/" + c.cfg.RecipientID + "?text=" + EncodeURIComponent(message)
}

// EncodeURIComponent escapes every byte except ASCII letters, digits and
// -_.!~*'() so the result matches the browser's encodeURIComponent.
func EncodeURIComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if unreservedComponent(ch) {
			b.WriteByte(ch)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[ch>>4])
		b.WriteByte(hex[ch&0x0F])
	}
	return b.String()
}

func unreservedComponent(ch byte) bool {
	switch {
	case 'a' <= ch && ch <= 'z', 'A' <= ch && ch <= 'Z', '0' <= ch && ch <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", ch) >= 0
}

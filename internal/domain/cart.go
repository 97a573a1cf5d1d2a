package domain

// CartImage is the image snapshot stored on a cart line.
type CartImage struct {
	URL    string `json:"url"`
	Alt    string `json:"alt,omitempty"`
	IsMain bool   `json:"isMain,omitempty"`
}

// CartLine is one row of a cart, keyed by product id and optional size.
// Name, prices and images are a snapshot taken when the line was created.
type CartLine struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Price           int64       `json:"price"`
	DiscountedPrice *int64      `json:"discountedPrice,omitempty"`
	Images          []CartImage `json:"images"`
	Quantity        int         `json:"quantity"`
	Size            string      `json:"size,omitempty"`
}

// NewCartLine snapshots product into a line with the given quantity and size.
func NewCartLine(p Product, quantity int, size string) CartLine {
	images := make([]CartImage, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, CartImage(img))
	}

	line := CartLine{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.RealPrice,
		Images:   images,
		Quantity: quantity,
		Size:     size,
	}
	if p.DiscountedPrice > 0 {
		d := p.DiscountedPrice
		line.DiscountedPrice = &d
	}
	return line
}

// Matches reports whether the line is keyed by (id, size).
func (l CartLine) Matches(id, size string) bool {
	return l.ID == id && l.Size == size
}

// UnitPrice is the discounted price when one is set and positive, else the
// original price.
func (l CartLine) UnitPrice() int64 {
	if l.DiscountedPrice != nil && *l.DiscountedPrice > 0 {
		return *l.DiscountedPrice
	}
	return l.Price
}

// Subtotal is UnitPrice times quantity.
func (l CartLine) Subtotal() int64 {
	return l.UnitPrice() * int64(l.Quantity)
}

// Thumbnail returns the main image URL of the snapshot, or the placeholder.
func (l CartLine) Thumbnail() string {
	for _, img := range l.Images {
		if img.IsMain {
			return img.URL
		}
	}
	if len(l.Images) > 0 {
		return l.Images[0].URL
	}
	return PlaceholderImageURL
}

// CartTotal sums line subtotals.
func CartTotal(lines []CartLine) int64 {
	var total int64
	for _, l := range lines {
		total += l.Subtotal()
	}
	return total
}

// CartItemCount sums line quantities.
func CartItemCount(lines []CartLine) int {
	var count int
	for _, l := range lines {
		count += l.Quantity
	}
	return count
}

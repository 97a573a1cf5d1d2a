package domain

import (
	"strings"
	"time"
)

// PlaceholderImageURL is served for products that have no images.
const PlaceholderImageURL = "/placeholder.svg"

// Image is a product picture. Exactly one image of a loaded product is main.
type Image struct {
	URL    string `json:"url"`
	Alt    string `json:"alt,omitempty"`
	IsMain bool   `json:"isMain,omitempty"`
}

// Size is a purchasable size with its stock count.
type Size struct {
	Name  string `json:"name"`
	Stock int    `json:"stock"`
}

// Product is a catalog record. Prices are whole currency units.
type Product struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	ShortDescription string    `json:"shortDescription"`
	Images           []Image   `json:"images"`
	RealPrice        int64     `json:"realPrice"`
	DiscountedPrice  int64     `json:"discountedPrice"`
	Sizes            []Size    `json:"sizes"`
	Category         string    `json:"category"`
	Tags             []string  `json:"tags"`
	IsAvailable      bool      `json:"isAvailable"`
	TotalStock       int       `json:"totalStock"`
	AvgRating        float64   `json:"avgRating"`
	NumReviews       int       `json:"numReviews"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`

	// Merchandising flags read by the listing pages. All optional.
	Gender           string `json:"gender,omitempty"`
	IsLimitedEdition bool   `json:"isLimitedEdition,omitempty"`
	IsBundleDeal     bool   `json:"isBundleDeal,omitempty"`
	HasSpecialOffer  bool   `json:"hasSpecialOffer,omitempty"`
	IsTrending       bool   `json:"isTrending,omitempty"`
}

// OnSale reports whether the product sells below its real price.
func (p Product) OnSale() bool {
	return p.DiscountedPrice > 0 && p.DiscountedPrice < p.RealPrice
}

// SellingPrice is the price a customer pays for one unit.
func (p Product) SellingPrice() int64 {
	if p.OnSale() {
		return p.DiscountedPrice
	}
	return p.RealPrice
}

// DiscountRatio is the unrounded fraction of the real price taken off, in [0, 1).
func (p Product) DiscountRatio() float64 {
	if !p.OnSale() {
		return 0
	}
	return float64(p.RealPrice-p.DiscountedPrice) / float64(p.RealPrice)
}

// MainImage returns the main image, the first image if none is flagged, or a
// placeholder when the product has no images.
func (p Product) MainImage() Image {
	for _, img := range p.Images {
		if img.IsMain {
			return img
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return Image{URL: PlaceholderImageURL, Alt: p.Name, IsMain: true}
}

// HasSize reports whether name is one of the product's sizes (case-insensitive).
func (p Product) HasSize(name string) bool {
	for _, s := range p.Sizes {
		if strings.EqualFold(s.Name, name) {
			return true
		}
	}
	return false
}

// SizeName returns the canonical spelling of a size, or "" when unknown.
func (p Product) SizeName(name string) string {
	for _, s := range p.Sizes {
		if strings.EqualFold(s.Name, name) {
			return s.Name
		}
	}
	return ""
}

package service

import (
	"github.com/vxsahu/urban-threadz/internal/domain"
	apperrors "github.com/vxsahu/urban-threadz/pkg/errors"
	"github.com/vxsahu/urban-threadz/pkg/pagination"
	"github.com/vxsahu/urban-threadz/pkg/slug"
)

// ProductQuery narrows the product listing.
type ProductQuery struct {
	Query    string
	Category string
	Page     pagination.Params
}

// ListProducts searches the catalog and returns one page of matches.
// Category compares by slug, so "graphic-tees" selects "Graphic Tees".
func (s *Storefront) ListProducts(q ProductQuery) pagination.Result[domain.Product] {
	products := s.catalog.Search(q.Query)
	if q.Category != "" {
		kept := products[:0]
		for _, p := range products {
			if slug.Equal(p.Category, q.Category) {
				kept = append(kept, p)
			}
		}
		products = kept
	}
	return pagination.Paginate(products, q.Page)
}

// Product returns one product by id.
func (s *Storefront) Product(id string) (domain.Product, error) {
	return s.product(id)
}

// Featured returns the best rated products.
func (s *Storefront) Featured(limit int) []domain.Product {
	return s.catalog.Featured(limit)
}

// NewArrivals returns the newest products.
func (s *Storefront) NewArrivals(limit int) []domain.Product {
	return s.catalog.NewArrivals(limit)
}

// Discounted returns the products with the deepest discounts.
func (s *Storefront) Discounted(limit int) []domain.Product {
	return s.catalog.Discounted(limit)
}

// Categories returns the catalog's product categories.
func (s *Storefront) Categories() []string {
	return s.catalog.Categories()
}

// Subcategory describes one selectable view of a listing page.
type Subcategory struct {
	Selector    string `json:"selector"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Collection is a rendered listing page.
type Collection struct {
	Category      string           `json:"category"`
	Subcategory   string           `json:"subcategory,omitempty"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	Subcategories []Subcategory    `json:"subcategories"`
	Products      []domain.Product `json:"products"`
}

// Collection renders the listing page category narrowed to subcategory. An
// unknown or empty subcategory renders the page's base view; an unknown
// category is not found.
func (s *Storefront) Collection(category, subcategory string) (Collection, error) {
	c, ok := s.filter.Category(category)
	if !ok {
		return Collection{}, apperrors.NotFound("collection", category)
	}

	view := Collection{
		Category:      slug.Generate(category),
		Title:         c.Title,
		Description:   c.Description,
		Subcategories: make([]Subcategory, 0, len(c.Order)),
		Products:      s.filter.Apply(s.catalog.All(), category, subcategory),
	}
	if rule, ok := c.Rule(subcategory); ok {
		view.Subcategory = slug.Generate(subcategory)
		view.Title = rule.Title
		view.Description = rule.Description
	}
	for _, sel := range c.Order {
		rule := c.Subcategories[sel]
		view.Subcategories = append(view.Subcategories, Subcategory{
			Selector:    sel,
			Title:       rule.Title,
			Description: rule.Description,
		})
	}
	return view, nil
}

// Collections returns the selectors of every listing page.
func (s *Storefront) Collections() []string {
	return s.filter.Categories()
}

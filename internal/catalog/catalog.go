// Package catalog holds the read-only product collection and the queries the
// storefront runs against it.
package catalog

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/vxsahu/urban-threadz/internal/domain"
)

// DefaultLimit is used by the subset queries when limit <= 0.
const DefaultLimit = 4

// Catalog is immutable after New. Every query returns a fresh slice; the
// products inside share their image, size and tag slices with the catalog
// and must not be modified.
type Catalog struct {
	products []domain.Product
	byID     map[string]int
}

// New normalises products and indexes them by id. A product without an id or
// name, or a repeated id, is an error.
func New(products []domain.Product) (*Catalog, error) {
	return newCatalog(products, time.Now())
}

func newCatalog(products []domain.Product, loadedAt time.Time) (*Catalog, error) {
	c := &Catalog{
		products: make([]domain.Product, 0, len(products)),
		byID:     make(map[string]int, len(products)),
	}

	for i, p := range products {
		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" {
			return nil, fmt.Errorf("product %d: missing id", i)
		}
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("product %s: missing name", p.ID)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("product %s: duplicate id", p.ID)
		}

		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, normalize(p, loadedAt))
	}
	return c, nil
}

func normalize(p domain.Product, loadedAt time.Time) domain.Product {
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Sizes == nil {
		p.Sizes = []domain.Size{}
	}

	images := make([]domain.Image, len(p.Images))
	copy(images, p.Images)
	mainSeen := false
	for i := range images {
		if images[i].IsMain && !mainSeen {
			mainSeen = true
			continue
		}
		images[i].IsMain = false
	}
	if !mainSeen && len(images) > 0 {
		images[0].IsMain = true
	}
	p.Images = images

	if p.DiscountedPrice <= 0 || p.DiscountedPrice > p.RealPrice {
		p.DiscountedPrice = p.RealPrice
	}
	if p.ShortDescription == "" {
		p.ShortDescription = p.Description
	}
	// A product without createdAt counts as new.
	if p.CreatedAt.IsZero() {
		p.CreatedAt = p.UpdatedAt
		if p.CreatedAt.IsZero() {
			p.CreatedAt = loadedAt
		}
	}
	return p
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	return len(c.products)
}

// All returns every product in catalog order.
func (c *Catalog) All() []domain.Product {
	return slices.Clone(c.products)
}

// ByID looks a product up by id.
func (c *Catalog) ByID(id string) (domain.Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Product{}, false
	}
	return c.products[i], true
}

// ByCategory returns products whose category equals category, ignoring case.
func (c *Catalog) ByCategory(category string) []domain.Product {
	out := []domain.Product{}
	for _, p := range c.products {
		if strings.EqualFold(p.Category, category) {
			out = append(out, p)
		}
	}
	return out
}

// Search matches query as a case-insensitive substring of the name,
// description or any tag. An empty query matches everything.
func (c *Catalog) Search(query string) []domain.Product {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return c.All()
	}

	out := []domain.Product{}
	for _, p := range c.products {
		if matchesQuery(p, q) {
			out = append(out, p)
		}
	}
	return out
}

func matchesQuery(p domain.Product, q string) bool {
	if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Description), q) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// Featured returns the best rated products first.
func (c *Catalog) Featured(limit int) []domain.Product {
	out := c.All()
	slices.SortStableFunc(out, func(a, b domain.Product) int {
		return compareDesc(a.AvgRating, b.AvgRating)
	})
	return head(out, limit)
}

// NewArrivals returns the most recently created products first.
func (c *Catalog) NewArrivals(limit int) []domain.Product {
	out := c.All()
	slices.SortStableFunc(out, func(a, b domain.Product) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return head(out, limit)
}

// Discounted returns products on sale, largest discount first.
func (c *Catalog) Discounted(limit int) []domain.Product {
	out := []domain.Product{}
	for _, p := range c.products {
		if p.OnSale() {
			out = append(out, p)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.Product) int {
		return compareDesc(a.DiscountRatio(), b.DiscountRatio())
	})
	return head(out, limit)
}

// Categories returns the distinct category names in first-seen order.
func (c *Catalog) Categories() []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, p := range c.products {
		if p.Category == "" {
			continue
		}
		key := strings.ToLower(p.Category)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}

func compareDesc(a, b float64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}

func head(products []domain.Product, limit int) []domain.Product {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(products) > limit {
		return products[:limit]
	}
	return products
}

// Package filter narrows the catalog for the collection listing pages using a
// fixed table of named predicates keyed by category and subcategory.
package filter

import (
	"time"

	"github.com/vxsahu/urban-threadz/internal/domain"
	"github.com/vxsahu/urban-threadz/pkg/slug"
)

// Predicate decides whether a product belongs to a view. now is the
// reference time for date-windowed rules.
type Predicate func(p domain.Product, now time.Time) bool

// Rule is one subcategory of a listing page.
type Rule struct {
	Title       string
	Description string
	Match       Predicate
}

// Category is a listing page. Base selects the products shown when no known
// subcategory is chosen; nil means every product.
type Category struct {
	Title         string
	Description   string
	Base          Predicate
	Subcategories map[string]Rule
	// Order lists subcategory selectors for display.
	Order []string
}

// Filter applies the rule table with an injectable clock.
type Filter struct {
	rules map[string]Category
	now   func() time.Time
}

// New returns a Filter over the built-in rule table. A nil clock means time.Now.
func New(now func() time.Time) *Filter {
	if now == nil {
		now = time.Now
	}
	return &Filter{rules: Rules(), now: now}
}

// Category looks a listing page up by selector.
func (f *Filter) Category(category string) (Category, bool) {
	c, ok := f.rules[slug.Generate(category)]
	return c, ok
}

// Categories returns the selectors of every listing page.
func (f *Filter) Categories() []string {
	return []string{Collections, ShopBy, Sale, NewArrivals}
}

// Apply returns the products matching (category, subcategory). An unknown or
// empty subcategory yields the category's base view and an unknown category
// yields every product. Selectors are normalised, so "Graphic Tees" selects
// "graphic-tees". The input slice is not modified.
func (f *Filter) Apply(products []domain.Product, category, subcategory string) []domain.Product {
	c, ok := f.Category(category)
	if !ok {
		return keep(products, nil, time.Time{})
	}

	now := f.now()
	if rule, ok := c.Rule(subcategory); ok {
		return keep(products, rule.Match, now)
	}
	return keep(products, c.Base, now)
}

// Rule looks a subcategory up by selector.
func (c Category) Rule(subcategory string) (Rule, bool) {
	r, ok := c.Subcategories[slug.Generate(subcategory)]
	return r, ok
}

func keep(products []domain.Product, match Predicate, now time.Time) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if match == nil || match(p, now) {
			out = append(out, p)
		}
	}
	return out
}

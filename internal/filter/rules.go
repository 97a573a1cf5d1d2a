package filter

import (
	"regexp"
	"strings"
	"time"

	"github.com/vxsahu/urban-threadz/internal/domain"
)

// Listing page selectors.
const (
	Collections = "collections"
	ShopBy      = "shop-by"
	Sale        = "sale"
	NewArrivals = "new-arrivals"
)

// ClearanceRatio is the minimum unrounded discount for the clearance view.
const ClearanceRatio = 0.5

// TrendingRating is the rating at which a product counts as trending.
const TrendingRating = 4.5

// menWord matches words starting with "men" ("men", "mens", "menswear")
// but not "women".
var menWord = regexp.MustCompile(`\bmen`)

// Rules returns a fresh copy of the listing page table.
func Rules() map[string]Category {
	return map[string]Category{
		Collections: {
			Title:       "Collections",
			Description: "Curated styles for every mood",
			Order:       []string{"graphic-tees", "minimalist", "vintage", "limited-edition"},
			Subcategories: map[string]Rule{
				"graphic-tees": {
					Title:       "Graphic Tees",
					Description: "Bold prints and artwork",
					Match: func(p domain.Product, _ time.Time) bool {
						return contains(p.Category, "graphic") || contains(p.Name, "graphic")
					},
				},
				"minimalist": {
					Title:       "Minimalist",
					Description: "Clean lines, no noise",
					Match:       wordAnywhere("minimalist"),
				},
				"vintage": {
					Title:       "Vintage",
					Description: "Washed, faded and retro",
					Match:       wordAnywhere("vintage"),
				},
				"limited-edition": {
					Title:       "Limited Edition",
					Description: "Small runs that will not be restocked",
					Match: func(p domain.Product, _ time.Time) bool {
						return p.IsLimitedEdition || contains(p.Name, "limited") || anyTag(p, "limited")
					},
				},
			},
		},
		ShopBy: {
			Title:       "Shop By",
			Description: "Find your fit",
			Order:       []string{"men", "women", "unisex"},
			Subcategories: map[string]Rule{
				"men": {
					Title:       "Men",
					Description: "Cuts for men",
					Match: func(p domain.Product, _ time.Time) bool {
						if strings.EqualFold(p.Gender, "men") {
							return true
						}
						if menWord.MatchString(strings.ToLower(p.Category)) {
							return true
						}
						for _, tag := range p.Tags {
							if menWord.MatchString(strings.ToLower(tag)) {
								return true
							}
						}
						return false
					},
				},
				"women": {
					Title:       "Women",
					Description: "Cuts for women",
					Match:       audience("women"),
				},
				"unisex": {
					Title:       "Unisex",
					Description: "Made for everyone",
					Match:       audience("unisex"),
				},
			},
		},
		Sale: {
			Title:       "Sale",
			Description: "Markdowns across the store",
			Base:        onSale,
			Order:       []string{"clearance", "bundle-deals"},
			Subcategories: map[string]Rule{
				"clearance": {
					Title:       "Clearance",
					Description: "Half price or better",
					Match: func(p domain.Product, _ time.Time) bool {
						return p.DiscountRatio() >= ClearanceRatio
					},
				},
				"bundle-deals": {
					Title:       "Bundle Deals",
					Description: "Packs and special offers",
					Match: func(p domain.Product, _ time.Time) bool {
						return p.IsBundleDeal || p.HasSpecialOffer ||
							anyTag(p, "bundle") || anyTag(p, "deal") || anyTag(p, "offer")
					},
				},
			},
		},
		NewArrivals: {
			Title:       "New Arrivals",
			Description: "Fresh off the press",
			Order:       []string{"this-week", "this-month", "trending"},
			Subcategories: map[string]Rule{
				"this-week": {
					Title:       "This Week",
					Description: "Added in the last 7 days",
					Match: func(p domain.Product, now time.Time) bool {
						return !p.CreatedAt.Before(now.AddDate(0, 0, -7))
					},
				},
				"this-month": {
					Title:       "This Month",
					Description: "Added in the last month",
					Match: func(p domain.Product, now time.Time) bool {
						return !p.CreatedAt.Before(now.AddDate(0, -1, 0))
					},
				},
				"trending": {
					Title:       "Trending",
					Description: "What everyone is wearing",
					Match: func(p domain.Product, _ time.Time) bool {
						return p.AvgRating >= TrendingRating || p.IsTrending
					},
				},
			},
		},
	}
}

func onSale(p domain.Product, _ time.Time) bool {
	return p.OnSale()
}

func contains(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), sub)
}

func anyTag(p domain.Product, sub string) bool {
	for _, tag := range p.Tags {
		if contains(tag, sub) {
			return true
		}
	}
	return false
}

func wordAnywhere(word string) Predicate {
	return func(p domain.Product, _ time.Time) bool {
		return contains(p.Category, word) || contains(p.Name, word) || anyTag(p, word)
	}
}

func audience(word string) Predicate {
	return func(p domain.Product, _ time.Time) bool {
		return strings.EqualFold(p.Gender, word) || contains(p.Category, word) || anyTag(p, word)
	}
}

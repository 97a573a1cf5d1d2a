package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vxsahu/urban-threadz/internal/domain"
	apperrors "github.com/vxsahu/urban-threadz/pkg/errors"
	"github.com/vxsahu/urban-threadz/pkg/httpclient"
	"github.com/vxsahu/urban-threadz/pkg/logger"
)

func day(d int) time.Time {
	return time.Date(2026, 10, d, 9, 0, 0, 0, time.UTC)
}

func fixtures() []domain.Product {
	return []domain.Product{
		{ID: "a", Name: "Graphic Tee", Description: "Bold print", Category: "Graphic Tees",
			Tags: []string{"graphic"}, RealPrice: 1000, DiscountedPrice: 600, AvgRating: 4.2, CreatedAt: day(1)},
		{ID: "b", Name: "Plain Crew", Description: "Quiet basics", Category: "minimalist",
			Tags: []string{"basics"}, RealPrice: 800, DiscountedPrice: 800, AvgRating: 4.8, CreatedAt: day(5)},
		{ID: "c", Name: "Faded Tee", Description: "Retro wash", Category: "Vintage",
			Tags: []string{"Retro"}, RealPrice: 1000, DiscountedPrice: 400, AvgRating: 3.9, CreatedAt: day(3)},
		{ID: "d", Name: "Hoodie", Description: "Warm fleece", Category: "graphic tees",
			RealPrice: 2000, DiscountedPrice: 1800, AvgRating: 4.5, CreatedAt: day(7)},
		{ID: "e", Name: "Cap", Description: "Twill", Category: "Accessories",
			RealPrice: 500, AvgRating: 4.0, CreatedAt: day(2)},
	}
}

func mustCatalog(t *testing.T, products []domain.Product) *Catalog {
	t.Helper()
	c, err := New(products)
	require.NoError(t, err)
	return c
}

func ids(products []domain.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

// ============================================================================
// Normalisation
// ============================================================================

func TestNew_NormalisesOptionalFields(t *testing.T) {
	c := mustCatalog(t, []domain.Product{{ID: "x", Name: "X", Description: "long text", RealPrice: 100}})

	p, ok := c.ByID("x")
	require.True(t, ok)
	assert.NotNil(t, p.Tags)
	assert.NotNil(t, p.Sizes)
	assert.NotNil(t, p.Images)
	assert.Equal(t, "long text", p.ShortDescription)
	assert.Equal(t, domain.PlaceholderImageURL, p.MainImage().URL)
}

func TestNew_CreatedAtFallback(t *testing.T) {
	loaded := time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC)
	updated := loaded.AddDate(0, 0, -3)
	created := loaded.AddDate(0, -2, 0)

	c, err := newCatalog([]domain.Product{
		{ID: "dated", Name: "A", CreatedAt: created, UpdatedAt: updated},
		{ID: "updated-only", Name: "B", UpdatedAt: updated},
		{ID: "undated", Name: "C"},
	}, loaded)
	require.NoError(t, err)

	tests := []struct {
		id   string
		want time.Time
	}{
		{"dated", created},
		{"updated-only", updated},
		{"undated", loaded},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			p, ok := c.ByID(tt.id)
			require.True(t, ok)
			assert.True(t, tt.want.Equal(p.CreatedAt))
		})
	}
}

func TestNew_ExactlyOneMainImage(t *testing.T) {
	c := mustCatalog(t, []domain.Product{
		{ID: "none", Name: "N", Images: []domain.Image{{URL: "1"}, {URL: "2"}}},
		{ID: "many", Name: "M", Images: []domain.Image{{URL: "1"}, {URL: "2", IsMain: true}, {URL: "3", IsMain: true}}},
	})

	none, _ := c.ByID("none")
	assert.True(t, none.Images[0].IsMain)
	assert.False(t, none.Images[1].IsMain)

	many, _ := c.ByID("many")
	assert.False(t, many.Images[0].IsMain)
	assert.True(t, many.Images[1].IsMain)
	assert.False(t, many.Images[2].IsMain)
}

func TestNew_DoesNotMutateInput(t *testing.T) {
	in := []domain.Product{{ID: "x", Name: "X", Images: []domain.Image{{URL: "1"}}}}
	mustCatalog(t, in)
	assert.False(t, in[0].Images[0].IsMain)
}

func TestNew_DiscountedPriceReset(t *testing.T) {
	c := mustCatalog(t, []domain.Product{
		{ID: "zero", Name: "Z", RealPrice: 500},
		{ID: "above", Name: "A", RealPrice: 500, DiscountedPrice: 900},
		{ID: "sale", Name: "S", RealPrice: 500, DiscountedPrice: 300},
	})

	zero, _ := c.ByID("zero")
	assert.Equal(t, int64(500), zero.DiscountedPrice)
	above, _ := c.ByID("above")
	assert.Equal(t, int64(500), above.DiscountedPrice)
	sale, _ := c.ByID("sale")
	assert.Equal(t, int64(300), sale.DiscountedPrice)
}

func TestNew_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		products []domain.Product
		errPart  string
	}{
		{"missing id", []domain.Product{{Name: "X"}}, "missing id"},
		{"missing name", []domain.Product{{ID: "x"}}, "missing name"},
		{"duplicate", []domain.Product{{ID: "x", Name: "A"}, {ID: "x", Name: "B"}}, "duplicate id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.products)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}
}

// ============================================================================
// Queries
// ============================================================================

func TestAllAndByID(t *testing.T) {
	c := mustCatalog(t, fixtures())
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ids(c.All()))
	assert.Equal(t, 5, c.Len())

	p, ok := c.ByID("c")
	require.True(t, ok)
	assert.Equal(t, "Faded Tee", p.Name)

	_, ok = c.ByID("zzz")
	assert.False(t, ok)
}

func TestByCategory(t *testing.T) {
	c := mustCatalog(t, fixtures())
	assert.Equal(t, []string{"a", "d"}, ids(c.ByCategory("GRAPHIC TEES")))
	assert.Empty(t, c.ByCategory("graphic"))
}

func TestSearch(t *testing.T) {
	c := mustCatalog(t, fixtures())
	assert.Equal(t, []string{"a", "c"}, ids(c.Search("TEE")))
	assert.Equal(t, []string{"c"}, ids(c.Search("retro")))
	assert.Equal(t, []string{"d"}, ids(c.Search("fleece")))
	assert.Len(t, c.Search("  "), 5)
	assert.Empty(t, c.Search("nothing"))
}

func TestFeatured(t *testing.T) {
	c := mustCatalog(t, fixtures())
	assert.Equal(t, []string{"b", "d", "a", "e"}, ids(c.Featured(0)))
	assert.Equal(t, []string{"b", "d"}, ids(c.Featured(2)))
}

func TestNewArrivals(t *testing.T) {
	c := mustCatalog(t, fixtures())
	assert.Equal(t, []string{"d", "b", "c", "e"}, ids(c.NewArrivals(4)))
}

func TestDiscounted(t *testing.T) {
	c := mustCatalog(t, fixtures())
	assert.Equal(t, []string{"c", "a", "d"}, ids(c.Discounted(10)))
}

func TestQueriesDoNotReorderCatalog(t *testing.T) {
	c := mustCatalog(t, fixtures())
	c.Featured(10)
	c.NewArrivals(10)
	all := c.All()
	all[0] = domain.Product{ID: "mutated"}

	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ids(c.All()))
}

func TestCategories(t *testing.T) {
	c := mustCatalog(t, fixtures())
	assert.Equal(t, []string{"Graphic Tees", "minimalist", "Vintage", "Accessories"}, c.Categories())
}

// ============================================================================
// Sources
// ============================================================================

func TestLoad_Embedded(t *testing.T) {
	c, err := Load(context.Background(), Embedded{})
	require.NoError(t, err)
	assert.Equal(t, 8, c.Len())

	accessory, ok := c.ByID("ut-007")
	require.True(t, ok)
	assert.Equal(t, accessory.RealPrice, accessory.DiscountedPrice)
	assert.Equal(t, domain.PlaceholderImageURL, accessory.MainImage().URL)

	crew, ok := c.ByID("ut-002")
	require.True(t, ok)
	assert.True(t, crew.Images[0].IsMain)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"f1","name":"File Tee","realPrice":500,"createdAt":"2026-01-02T00:00:00Z"}]`), 0o600))

	c, err := Load(context.Background(), File{Path: path})
	require.NoError(t, err)
	p, ok := c.ByID("f1")
	require.True(t, ok)
	assert.Equal(t, 2026, p.CreatedAt.Year())
}

func TestLoad_FileErrors(t *testing.T) {
	_, err := Load(context.Background(), File{Path: filepath.Join(t.TempDir(), "missing.json")})
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"id":"x"}`), 0o600))
	_, err = Load(context.Background(), File{Path: path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file:")
}

func TestLoad_Remote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"r1","name":"Remote Tee","realPrice":700}]`))
	}))
	defer srv.Close()

	f := httpclient.NewFetcher(httpclient.New(httpclient.DefaultConfig()), httpclient.DefaultBreakerConfig("catalog-test"), logger.Discard())
	c, err := Load(context.Background(), Remote{URL: srv.URL, Fetcher: f})
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
}

func TestLoad_RemoteNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	f := httpclient.NewFetcher(httpclient.New(httpclient.DefaultConfig()), httpclient.DefaultBreakerConfig("catalog-test-404"), logger.Discard())
	_, err := Load(context.Background(), Remote{URL: srv.URL, Fetcher: f})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDecode_Empty(t *testing.T) {
	_, err := Decode([]byte("  "))
	assert.Error(t, err)
}

package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vxsahu/urban-threadz/internal/domain"
	"github.com/vxsahu/urban-threadz/internal/service"
	apperrors "github.com/vxsahu/urban-threadz/pkg/errors"
	"github.com/vxsahu/urban-threadz/pkg/httputil"
	"github.com/vxsahu/urban-threadz/pkg/pagination"
)

// ProductHandler serves the catalog, listing pages and contact links.
type ProductHandler struct {
	service *service.Storefront
	logger  *slog.Logger
}

// NewProductHandler creates a new catalog HTTP handler.
func NewProductHandler(svc *service.Storefront, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{service: svc, logger: logger}
}

// List handles GET /api/v1/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result := h.service.ListProducts(service.ProductQuery{
		Query:    q.Get("q"),
		Category: q.Get("category"),
		Page:     pagination.FromRequest(r),
	})
	httputil.WriteData(w, result)
}

// Featured handles GET /api/v1/products/featured
func (h *ProductHandler) Featured(w http.ResponseWriter, r *http.Request) {
	h.subset(w, r, h.service.Featured)
}

// NewArrivals handles GET /api/v1/products/new-arrivals
func (h *ProductHandler) NewArrivals(w http.ResponseWriter, r *http.Request) {
	h.subset(w, r, h.service.NewArrivals)
}

// Discounted handles GET /api/v1/products/discounted
func (h *ProductHandler) Discounted(w http.ResponseWriter, r *http.Request) {
	h.subset(w, r, h.service.Discounted)
}

func (h *ProductHandler) subset(w http.ResponseWriter, r *http.Request, query func(limit int) []domain.Product) {
	limit, ok := httputil.QueryInt(r, "limit", 0)
	if !ok || limit < 0 || limit > pagination.MaxPerPage {
		httputil.WriteError(w, r, apperrors.InvalidInput("limit must be an integer between 1 and 100"), h.logger)
		return
	}
	httputil.WriteData(w, query(limit))
}

// Get handles GET /api/v1/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Product(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, p)
}

// OrderLink handles GET /api/v1/products/{id}/order-link
func (h *ProductHandler) OrderLink(w http.ResponseWriter, r *http.Request) {
	quantity, ok := httputil.QueryInt(r, "quantity", 1)
	if !ok {
		httputil.WriteError(w, r, apperrors.InvalidInput("quantity must be an integer"), h.logger)
		return
	}

	link, err := h.service.ProductOrderLink(chi.URLParam(r, "id"), quantity, r.URL.Query().Get("size"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, link)
}

// Categories handles GET /api/v1/categories
func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, h.service.Categories())
}

// Collections handles GET /api/v1/collections
func (h *ProductHandler) Collections(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, h.service.Collections())
}

// Collection handles GET /api/v1/collections/{category}
func (h *ProductHandler) Collection(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Collection(chi.URLParam(r, "category"), r.URL.Query().Get("subcategory"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, view)
}

// Contact handles GET /api/v1/contact/{topic}
func (h *ProductHandler) Contact(w http.ResponseWriter, r *http.Request) {
	link, err := h.service.ContactLink(chi.URLParam(r, "topic"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, link)
}

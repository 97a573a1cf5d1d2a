package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vxsahu/urban-threadz/internal/service"
	"github.com/vxsahu/urban-threadz/pkg/httputil"
)

// WishlistHandler handles HTTP requests for wishlist endpoints.
type WishlistHandler struct {
	service *service.Storefront
	logger  *slog.Logger
}

// NewWishlistHandler creates a new wishlist HTTP handler.
func NewWishlistHandler(svc *service.Storefront, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{service: svc, logger: logger}
}

// ToggleResponse reports the membership after a toggle.
type ToggleResponse struct {
	ProductID string `json:"product_id"`
	Saved     bool   `json:"saved"`
}

// Get handles GET /api/v1/wishlist
func (h *WishlistHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Wishlist(r.Context(), sessionIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, view)
}

// Toggle handles POST /api/v1/wishlist/{productId}
func (h *WishlistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	saved, err := h.service.ToggleWishlist(r.Context(), sessionIDFromContext(r.Context()), productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, ToggleResponse{ProductID: productID, Saved: saved})
}

// Remove handles DELETE /api/v1/wishlist/{productId}
func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RemoveFromWishlist(r.Context(), sessionIDFromContext(r.Context()), chi.URLParam(r, "productId")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

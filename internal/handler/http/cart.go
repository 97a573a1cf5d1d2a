package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vxsahu/urban-threadz/internal/domain"
	"github.com/vxsahu/urban-threadz/internal/service"
	apperrors "github.com/vxsahu/urban-threadz/pkg/errors"
	"github.com/vxsahu/urban-threadz/pkg/httputil"
	"github.com/vxsahu/urban-threadz/pkg/logger"
	"github.com/vxsahu/urban-threadz/pkg/validator"
)

const (
	maxBodyBytes             = 1 << 20
	defaultHeartbeatInterval = 25 * time.Second
)

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	service   *service.Storefront
	logger    *slog.Logger
	heartbeat time.Duration
	streams   context.Context
}

// NewCartHandler creates a new cart HTTP handler. heartbeat spaces keep-alive
// comments on event streams; zero uses 25s. Cancelling streams closes every
// open event stream; nil streams never does.
func NewCartHandler(svc *service.Storefront, logger *slog.Logger, heartbeat time.Duration, streams context.Context) *CartHandler {
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeatInterval
	}
	if streams == nil {
		streams = context.Background()
	}
	return &CartHandler{service: svc, logger: logger, heartbeat: heartbeat, streams: streams}
}

// --- Request DTOs ---

// AddItemRequest is the JSON request body for adding an item to the cart.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required,max=64"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
	Size      string `json:"size" validate:"max=16"`
}

// UpdateItemRequest is the JSON request body for changing a line's quantity.
type UpdateItemRequest struct {
	Quantity *int   `json:"quantity" validate:"required,gte=0"`
	Size     string `json:"size" validate:"max=16"`
}

// ContainsResponse reports cart membership of one line.
type ContainsResponse struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size,omitempty"`
	InCart    bool   `json:"in_cart"`
}

// --- Handlers ---

// Get handles GET /api/v1/cart
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Cart(r.Context(), sessionIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, view)
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	view, err := h.service.AddToCart(r.Context(), sessionIDFromContext(r.Context()), service.AddItemInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Size:      req.Size,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, view)
}

// UpdateItem handles PUT /api/v1/cart/items/{productId}
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req UpdateItemRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	view, err := h.service.UpdateCartItem(r.Context(), sessionIDFromContext(r.Context()), chi.URLParam(r, "productId"), service.UpdateItemInput{
		Quantity: *req.Quantity,
		Size:     req.Size,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, view)
}

// RemoveItem handles DELETE /api/v1/cart/items/{productId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.RemoveCartItem(r.Context(), sessionIDFromContext(r.Context()),
		chi.URLParam(r, "productId"), r.URL.Query().Get("size"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, view)
}

// Contains handles GET /api/v1/cart/items/{productId}
func (h *CartHandler) Contains(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	size := r.URL.Query().Get("size")

	in, err := h.service.InCart(r.Context(), sessionIDFromContext(r.Context()), productID, size)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, ContainsResponse{ProductID: productID, Size: size, InCart: in})
}

// Clear handles DELETE /api/v1/cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearCart(r.Context(), sessionIDFromContext(r.Context())); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Checkout handles POST /api/v1/cart/checkout
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	link, err := h.service.Checkout(r.Context(), sessionIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, link)
}

// Events handles GET /api/v1/cart/events. It streams the cart as server-sent
// events: the current state first, then one "cart" event per change made by
// any request or replica sharing the session.
func (h *CartHandler) Events(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	store, err := h.service.CartStore(sessionIDFromContext(ctx))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.WriteError(w, r, apperrors.Internal(fmt.Errorf("streaming unsupported by %T", w)), h.logger)
		return
	}

	// Latest state wins; a slow client skips intermediate versions.
	updates := make(chan []domain.CartLine, 1)
	unsubscribe := store.Subscribe(func(lines []domain.CartLine) {
		for {
			select {
			case updates <- lines:
				return
			default:
			}
			select {
			case <-updates:
			default:
			}
		}
	})
	defer unsubscribe()
	stop := store.Follow(ctx)
	defer stop()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	l := logger.WithContext(ctx, h.logger)
	seq := 0
	send := func(lines []domain.CartLine) bool {
		seq++
		data, err := json.Marshal(h.service.View(lines))
		if err != nil {
			l.ErrorContext(ctx, "encode cart event", slog.String("error", err.Error()))
			return false
		}
		if _, err := fmt.Fprintf(w, "id: %d\nevent: cart\ndata: %s\n\n", seq, data); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	if !send(store.GetCart(ctx)) {
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-h.streams.Done():
			return
		case lines := <-updates:
			if !send(lines) {
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

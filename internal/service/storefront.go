// Package service implements the storefront use cases on top of the catalog
// and the session-scoped cart and wishlist stores.
package service

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"strings"
	"sync"

	"github.com/vxsahu/urban-threadz/internal/cart"
	"github.com/vxsahu/urban-threadz/internal/catalog"
	"github.com/vxsahu/urban-threadz/internal/domain"
	"github.com/vxsahu/urban-threadz/internal/event"
	"github.com/vxsahu/urban-threadz/internal/filter"
	"github.com/vxsahu/urban-threadz/internal/order"
	"github.com/vxsahu/urban-threadz/internal/storage"
	apperrors "github.com/vxsahu/urban-threadz/pkg/errors"
	"github.com/vxsahu/urban-threadz/pkg/logger"
)

// DefaultMaxQuantity bounds the quantity of a single cart line.
const DefaultMaxQuantity = 10

// MaxSessionIDLength bounds the X-Session-ID value.
const MaxSessionIDLength = 128

const lockStripes = 64

// Storefront binds the catalog, the per-session stores and the order composer.
type Storefront struct {
	catalog     *catalog.Catalog
	backend     storage.Storage
	filter      *filter.Filter
	composer    *order.Composer
	publisher   event.Publisher
	logger      *slog.Logger
	maxQuantity int

	// locks serialise cart read-modify-write cycles per session on this replica.
	locks [lockStripes]sync.Mutex
}

// Option customises a Storefront.
type Option func(*Storefront)

// WithMaxQuantity overrides DefaultMaxQuantity.
func WithMaxQuantity(n int) Option {
	return func(s *Storefront) {
		if n > 0 {
			s.maxQuantity = n
		}
	}
}

// WithPublisher sets the event publisher. The default discards events.
func WithPublisher(p event.Publisher) Option {
	return func(s *Storefront) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithFilter replaces the default listing filter, typically to inject a clock.
func WithFilter(f *filter.Filter) Option {
	return func(s *Storefront) {
		if f != nil {
			s.filter = f
		}
	}
}

// New creates a Storefront. backend holds every session's state; each session
// sees it through its own namespace.
func New(c *catalog.Catalog, backend storage.Storage, composer *order.Composer, l *slog.Logger, opts ...Option) *Storefront {
	s := &Storefront{
		catalog:     c,
		backend:     backend,
		filter:      filter.New(nil),
		composer:    composer,
		publisher:   event.Noop{},
		logger:      l,
		maxQuantity: DefaultMaxQuantity,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxQuantity is the largest quantity a cart line may hold.
func (s *Storefront) MaxQuantity() int {
	return s.maxQuantity
}

// Composer returns the order message composer.
func (s *Storefront) Composer() *order.Composer {
	return s.composer
}

// CartStore returns the cart store of sessionID.
func (s *Storefront) CartStore(sessionID string) (*cart.Store, error) {
	if err := checkSession(sessionID); err != nil {
		return nil, err
	}
	return cart.New(s.session(sessionID), s.logger), nil
}

func (s *Storefront) session(sessionID string) *storage.Scoped {
	return storage.Scope(s.backend, storage.SessionNamespace(sessionID))
}

func (s *Storefront) lock(sessionID string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	mu := &s.locks[h.Sum32()%lockStripes]
	mu.Lock()
	return mu.Unlock
}

func (s *Storefront) log(ctx context.Context) *slog.Logger {
	return logger.WithContext(ctx, s.logger)
}

func checkSession(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return apperrors.Unauthorized("session id is required")
	}
	if len(sessionID) > MaxSessionIDLength {
		return apperrors.InvalidInput(fmt.Sprintf("session id must not exceed %d characters", MaxSessionIDLength))
	}
	return nil
}

func (s *Storefront) product(id string) (domain.Product, error) {
	p, ok := s.catalog.ByID(id)
	if !ok {
		return domain.Product{}, apperrors.NotFound("product", id)
	}
	return p, nil
}

// Package cart owns a session's cart: the list of cart lines persisted under
// a single storage key, and the notifications sent when it changes.
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vxsahu/urban-threadz/internal/domain"
	"github.com/vxsahu/urban-threadz/internal/storage"
	"github.com/vxsahu/urban-threadz/pkg/logger"
)

// StorageKey is the key holding the JSON-encoded cart.
const StorageKey = "cart"

var (
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cart_operations_total",
			Help: "Total number of cart mutations",
		},
		[]string{"op"},
	)

	failuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cart_failures_total",
			Help: "Cart reads or writes that degraded to the fail-open default",
		},
		[]string{"op"},
	)
)

// Listener receives the cart contents after every change.
type Listener func(lines []domain.CartLine)

// Store reads and mutates one cart. No method returns an error: unreadable
// state is an empty cart and failed writes are logged and skipped.
//
// Quantities are not bounded here; callers validate them first.
type Store struct {
	storage storage.Storage
	logger  *slog.Logger

	// mu serialises read-modify-write cycles issued through this Store only.
	// Separate Stores over the same storage, such as the per-request ones the
	// service builds, are not covered and need their own locking.
	mu sync.Mutex

	lmu       sync.Mutex
	listeners map[int]Listener
	nextID    int
}

// New creates a Store over s, typically a session-scoped storage.
func New(s storage.Storage, l *slog.Logger) *Store {
	return &Store{
		storage:   s,
		logger:    l,
		listeners: make(map[int]Listener),
	}
}

// GetCart returns the persisted lines in stored order. Missing, unreadable or
// malformed state yields an empty, non-nil slice.
func (s *Store) GetCart(ctx context.Context) []domain.CartLine {
	raw, ok, err := s.storage.Get(ctx, StorageKey)
	if err != nil {
		s.warn(ctx, "read", "cart storage unavailable, treating as empty", err)
		return []domain.CartLine{}
	}
	if !ok {
		return []domain.CartLine{}
	}

	lines, err := decode(raw)
	if err != nil {
		s.warn(ctx, "decode", "stored cart is corrupt, treating as empty", err)
		return []domain.CartLine{}
	}
	return lines
}

// SaveCart persists lines and, when the write succeeds, notifies listeners.
func (s *Store) SaveCart(ctx context.Context, lines []domain.CartLine) {
	if lines == nil {
		lines = []domain.CartLine{}
	}

	raw, err := encode(lines)
	if err != nil {
		s.warn(ctx, "encode", "cart could not be encoded, write skipped", err)
		return
	}
	if err := s.storage.Set(ctx, StorageKey, raw); err != nil {
		s.warn(ctx, "write", "cart write failed, skipped", err)
		return
	}
	s.notify(lines)
}

// AddToCart increments the line keyed by (product.ID, size) by quantity, or
// appends a new line snapshotting the product. Returns the updated cart.
func (s *Store) AddToCart(ctx context.Context, product domain.Product, quantity int, size string) []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	operationsTotal.WithLabelValues("add").Inc()

	lines := s.GetCart(ctx)
	if i := indexOf(lines, product.ID, size); i >= 0 {
		lines[i].Quantity += quantity
	} else {
		lines = append(lines, domain.NewCartLine(product, quantity, size))
	}

	s.SaveCart(ctx, lines)
	return lines
}

// UpdateCartItemQuantity sets the quantity of the (id, size) line, removing it
// when quantity <= 0. An absent line leaves the cart untouched.
func (s *Store) UpdateCartItemQuantity(ctx context.Context, id string, quantity int, size string) []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	operationsTotal.WithLabelValues("update").Inc()

	lines := s.GetCart(ctx)
	i := indexOf(lines, id, size)
	if i < 0 {
		return lines
	}

	if quantity <= 0 {
		lines = append(lines[:i], lines[i+1:]...)
	} else {
		lines[i].Quantity = quantity
	}

	s.SaveCart(ctx, lines)
	return lines
}

// RemoveFromCart drops the (id, size) line and persists the remainder.
func (s *Store) RemoveFromCart(ctx context.Context, id, size string) []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	operationsTotal.WithLabelValues("remove").Inc()

	lines := s.GetCart(ctx)
	kept := make([]domain.CartLine, 0, len(lines))
	for _, l := range lines {
		if !l.Matches(id, size) {
			kept = append(kept, l)
		}
	}

	s.SaveCart(ctx, kept)
	return kept
}

// ClearCart erases the persisted cart and notifies listeners with an empty list.
func (s *Store) ClearCart(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	operationsTotal.WithLabelValues("clear").Inc()

	if err := s.storage.Remove(ctx, StorageKey); err != nil {
		s.warn(ctx, "clear", "cart clear failed, skipped", err)
		return
	}
	s.notify([]domain.CartLine{})
}

// GetCartTotal is the sum of unit price times quantity over all lines.
func (s *Store) GetCartTotal(ctx context.Context) int64 {
	return domain.CartTotal(s.GetCart(ctx))
}

// GetCartItemCount is the sum of quantities over all lines.
func (s *Store) GetCartItemCount(ctx context.Context) int {
	return domain.CartItemCount(s.GetCart(ctx))
}

// IsItemInCart reports whether a line keyed by (id, size) exists.
func (s *Store) IsItemInCart(ctx context.Context, id, size string) bool {
	return indexOf(s.GetCart(ctx), id, size) >= 0
}

// Subscribe registers fn for change notifications. Listeners run
// synchronously on the mutating goroutine and must not block.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.lmu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.lmu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.lmu.Lock()
			delete(s.listeners, id)
			s.lmu.Unlock()
		})
	}
}

// Follow re-reads the cart and notifies listeners whenever the backing
// storage reports an external write to the cart key. It is a no-op when the
// storage cannot watch.
func (s *Store) Follow(ctx context.Context) (stop func()) {
	w, ok := s.storage.(storage.Watcher)
	if !ok {
		return func() {}
	}
	return w.Watch(func(key string) {
		if key != StorageKey {
			return
		}
		s.notify(s.GetCart(ctx))
	})
}

func (s *Store) notify(lines []domain.CartLine) {
	s.lmu.Lock()
	fns := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.lmu.Unlock()

	for _, fn := range fns {
		snapshot := make([]domain.CartLine, len(lines))
		copy(snapshot, lines)
		fn(snapshot)
	}
}

func (s *Store) warn(ctx context.Context, op, msg string, err error) {
	failuresTotal.WithLabelValues(op).Inc()
	logger.WithContext(ctx, s.logger).WarnContext(ctx, msg,
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
}

func indexOf(lines []domain.CartLine, id, size string) int {
	for i := range lines {
		if lines[i].Matches(id, size) {
			return i
		}
	}
	return -1
}

func encode(lines []domain.CartLine) (raw string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("encode cart: panic: %v", r)
		}
	}()

	b, err := json.Marshal(lines)
	if err != nil {
		return "", fmt.Errorf("encode cart: %w", err)
	}
	return string(b), nil
}

func decode(raw string) (lines []domain.CartLine, err error) {
	defer func() {
		if r := recover(); r != nil {
			lines, err = nil, fmt.Errorf("decode cart: panic: %v", r)
		}
	}()

	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return lines, nil
}

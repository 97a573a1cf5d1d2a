// Package wishlist persists a session's set of saved product ids.
package wishlist

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"sync"

	"github.com/vxsahu/urban-threadz/internal/storage"
	"github.com/vxsahu/urban-threadz/pkg/logger"
)

// StorageKey is the key holding the JSON array of product ids.
const StorageKey = "wishlist"

// Store toggles wishlist membership. Like the cart it fails open: unreadable
// state is an empty wishlist and failed writes are logged.
type Store struct {
	storage storage.Storage
	logger  *slog.Logger
	mu      sync.Mutex
}

// New creates a Store over s.
func New(s storage.Storage, l *slog.Logger) *Store {
	return &Store{storage: s, logger: l}
}

// List returns the saved ids in insertion order.
func (s *Store) List(ctx context.Context) []string {
	raw, ok, err := s.storage.Get(ctx, StorageKey)
	if err != nil {
		s.warn(ctx, "wishlist storage unavailable, treating as empty", err)
		return []string{}
	}
	if !ok {
		return []string{}
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		s.warn(ctx, "stored wishlist is corrupt, treating as empty", err)
		return []string{}
	}
	if ids == nil {
		return []string{}
	}
	return ids
}

// Contains reports whether id is saved.
func (s *Store) Contains(ctx context.Context, id string) bool {
	return slices.Contains(s.List(ctx), id)
}

// Toggle adds id when absent and removes it when present. added reports the
// resulting membership.
func (s *Store) Toggle(ctx context.Context, id string) (added bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.List(ctx)
	if i := slices.Index(ids, id); i >= 0 {
		s.save(ctx, slices.Delete(ids, i, i+1))
		return false
	}
	s.save(ctx, append(ids, id))
	return true
}

// Remove drops id if present.
func (s *Store) Remove(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.List(ctx)
	if i := slices.Index(ids, id); i >= 0 {
		s.save(ctx, slices.Delete(ids, i, i+1))
	}
}

// Clear erases the wishlist.
func (s *Store) Clear(ctx context.Context) {
	if err := s.storage.Remove(ctx, StorageKey); err != nil {
		s.warn(ctx, "wishlist clear failed, skipped", err)
	}
}

func (s *Store) save(ctx context.Context, ids []string) {
	raw, err := json.Marshal(ids)
	if err != nil {
		s.warn(ctx, "wishlist could not be encoded, write skipped", err)
		return
	}
	if err := s.storage.Set(ctx, StorageKey, string(raw)); err != nil {
		s.warn(ctx, "wishlist write failed, skipped", err)
	}
}

func (s *Store) warn(ctx context.Context, msg string, err error) {
	logger.WithContext(ctx, s.logger).WarnContext(ctx, msg, slog.String("error", err.Error()))
}

// Package storage defines the key-value port behind the cart and wishlist
// stores, standing in for browser local storage.
package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ErrUnavailable is returned by backends that cannot currently be reached.
var ErrUnavailable = errors.New("storage unavailable")

// Storage is a string key-value store. Get reports ok=false for a missing key.
type Storage interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Watcher is implemented by backends that can signal writes made through any
// handle, including other replicas. fn receives the changed key.
type Watcher interface {
	Watch(fn func(key string)) (stop func())
}

var errorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storefront_storage_errors_total",
		Help: "Total number of failed storage operations",
	},
	[]string{"op"},
)

// Scoped confines a backend to one namespace. Keys are stored as
// "<namespace>:<key>" and watch events outside the namespace are dropped.
type Scoped struct {
	backend   Storage
	namespace string
}

// Scope returns backend confined to namespace.
func Scope(backend Storage, namespace string) *Scoped {
	return &Scoped{backend: backend, namespace: namespace}
}

// SessionNamespace is the namespace holding one browser session's state.
func SessionNamespace(sessionID string) string {
	return "session:" + sessionID
}

func (s *Scoped) key(k string) string {
	return s.namespace + ":" + k
}

// Namespace returns the scope prefix.
func (s *Scoped) Namespace() string {
	return s.namespace
}

func (s *Scoped) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok, err := s.backend.Get(ctx, s.key(key))
	if err != nil {
		errorsTotal.WithLabelValues("get").Inc()
	}
	return v, ok, err
}

func (s *Scoped) Set(ctx context.Context, key, value string) error {
	err := s.backend.Set(ctx, s.key(key), value)
	if err != nil {
		errorsTotal.WithLabelValues("set").Inc()
	}
	return err
}

func (s *Scoped) Remove(ctx context.Context, key string) error {
	err := s.backend.Remove(ctx, s.key(key))
	if err != nil {
		errorsTotal.WithLabelValues("remove").Inc()
	}
	return err
}

// Watch forwards backend events for keys in this namespace, with the prefix
// stripped. Without a watching backend it never fires.
func (s *Scoped) Watch(fn func(key string)) (stop func()) {
	w, ok := s.backend.(Watcher)
	if !ok {
		return func() {}
	}
	prefix := s.namespace + ":"
	return w.Watch(func(key string) {
		if rest, found := strings.CutPrefix(key, prefix); found {
			fn(rest)
		}
	})
}

// Package memory is an in-process storage backend.
package memory

import (
	"context"
	"sync"
)

// Store keeps values in a map. The zero value is not usable; use New.
type Store struct {
	mu       sync.RWMutex
	data     map[string]string
	watchers map[int]func(string)
	nextID   int
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		data:     make(map[string]string),
		watchers: make(map[int]func(string)),
	}
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	s.data[key] = value
	s.mu.Unlock()

	s.notify(key)
	return nil
}

func (s *Store) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()

	s.notify(key)
	return nil
}

// Watch registers fn to run after every Set or Remove. Callbacks run
// synchronously on the writer's goroutine, outside the store lock.
func (s *Store) Watch(fn func(key string)) (stop func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.watchers, id)
			s.mu.Unlock()
		})
	}
}

// Len reports the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *Store) notify(key string) {
	s.mu.RLock()
	fns := make([]func(string), 0, len(s.watchers))
	for _, fn := range s.watchers {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(key)
	}
}

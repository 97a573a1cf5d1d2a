// Package redis is a storage backend on Redis. Writes are announced on a
// Pub/Sub channel so every replica can follow changes made by the others.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel carries the keys of changed values.
const DefaultChannel = "storefront:storage:changes"

// Config holds Redis connection configuration.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// NewClient creates a client and verifies the connection.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Store implements storage.Storage and storage.Watcher.
type Store struct {
	client  *redis.Client
	ttl     time.Duration
	channel string
	logger  *slog.Logger
}

// Option customises a Store.
type Option func(*Store)

// WithChannel overrides DefaultChannel.
func WithChannel(name string) Option {
	return func(s *Store) { s.channel = name }
}

// New wraps client. Values expire ttl after their last write; ttl <= 0 keeps
// them forever.
func New(client *redis.Client, ttl time.Duration, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{client: client, ttl: ttl, channel: DefaultChannel, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	ttl := s.ttl
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	s.publish(ctx, key)
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	s.publish(ctx, key)
	return nil
}

// A lost change announcement only delays other replicas' resync, so it is
// logged and the write still succeeds.
func (s *Store) publish(ctx context.Context, key string) {
	if err := s.client.Publish(ctx, s.channel, key).Err(); err != nil {
		s.logger.WarnContext(ctx, "publish storage change failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

// Watch subscribes to the change channel and calls fn for every announced
// key until stop is called. fn runs on a dedicated goroutine.
func (s *Store) Watch(fn func(key string)) (stop func()) {
	ctx, cancel := context.WithCancel(context.Background())
	ps := s.client.Subscribe(ctx, s.channel)

	confirmCtx, confirmCancel := context.WithTimeout(ctx, 5*time.Second)
	if _, err := ps.Receive(confirmCtx); err != nil {
		s.logger.Warn("subscribe to storage changes failed",
			slog.String("channel", s.channel),
			slog.String("error", err.Error()),
		)
	}
	confirmCancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for msg := range ps.Channel() {
			fn(msg.Payload)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			_ = ps.Close()
			wg.Wait()
		})
	}
}

// Ping checks connectivity for readiness probes.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

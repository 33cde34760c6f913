package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/storefront/pkg/repository"
)

// Store persists carts per user.
type Store interface {
	Load(ctx context.Context, userID string) (*Cart, error)
	Save(ctx context.Context, userID string, c *Cart) error
	Delete(ctx context.Context, userID string) error
}

// JSONStore is the key/value surface RedisStore needs.
type JSONStore interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

type RedisStore struct {
	kv  JSONStore
	ttl time.Duration
}

func NewRedisStore(kv JSONStore, ttl time.Duration) *RedisStore {
	return &RedisStore{kv: kv, ttl: ttl}
}

func cartKey(userID string) string {
	return fmt.Sprintf("cart:%s", userID)
}

// Load returns the saved cart, or an empty one if none is stored.
func (s *RedisStore) Load(ctx context.Context, userID string) (*Cart, error) {
	var c Cart
	if err := s.kv.GetJSON(ctx, cartKey(userID), &c); err != nil {
		if errors.Is(err, repository.ErrCacheMiss) {
			return New(), nil
		}
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if c.Items == nil {
		c.Items = []Item{}
	}
	if c.PaymentMethod == "" {
		c.PaymentMethod = DefaultPaymentMethod
	}
	return &c, nil
}

func (s *RedisStore) Save(ctx context.Context, userID string, c *Cart) error {
	if err := s.kv.SetJSON(ctx, cartKey(userID), c, s.ttl); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	return s.kv.Del(ctx, cartKey(userID))
}

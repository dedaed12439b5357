package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"snack-cart/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// cartRedisRepository stores guest carts as JSON documents with a TTL, the
// server-side counterpart of session-scoped local storage. Guest sessions
// have a single caller in practice, but mutations are still serialized with
// a per-owner mutex so concurrent tabs cannot interleave read-modify-write
// cycles.
type cartRedisRepository struct {
	client *redis.Client
	ttl    time.Duration
	locks  sync.Map // owner key -> *sync.Mutex
	logger zerolog.Logger
}

// NewRedisCartRepository creates a Redis-backed cart repository for guest
// owners.
func NewRedisCartRepository(client *redis.Client, ttl time.Duration, logger zerolog.Logger) CartRepository {
	return &cartRedisRepository{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("repository", "cart-redis").Logger(),
	}
}

func cartKey(owner model.Owner) string {
	return fmt.Sprintf("cart:%s:%s", owner.Kind, owner.ID)
}

func (r *cartRedisRepository) lockOwner(owner model.Owner) *sync.Mutex {
	mu, _ := r.locks.LoadOrStore(cartKey(owner), &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Get retrieves the owner's cart, or an empty cart when none is stored.
func (r *cartRedisRepository) Get(ctx context.Context, owner model.Owner) (*model.Cart, error) {
	data, err := r.client.Get(ctx, cartKey(owner)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.NewCart(owner), nil
	}
	if err != nil {
		r.logger.Error().Err(err).Str("owner_id", owner.ID).Msg("failed to get guest cart")
		return nil, fmt.Errorf("failed to get guest cart: %w", err)
	}

	var cart model.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		r.logger.Error().Err(err).Str("owner_id", owner.ID).Msg("failed to decode guest cart")
		return nil, fmt.Errorf("failed to decode guest cart: %w", err)
	}
	cart.Owner = owner

	return &cart, nil
}

// Mutate applies fn to the owner's cart and writes the whole document back,
// refreshing the TTL.
func (r *cartRedisRepository) Mutate(ctx context.Context, owner model.Owner, fn func(cart *model.Cart) error) (*model.Cart, error) {
	mu := r.lockOwner(owner)
	mu.Lock()
	defer mu.Unlock()

	cart, err := r.Get(ctx, owner)
	if err != nil {
		return nil, err
	}

	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = time.Now()
	}

	if err := fn(cart); err != nil {
		return nil, err
	}

	cart.UpdatedAt = time.Now()
	data, err := json.Marshal(cart)
	if err != nil {
		return nil, fmt.Errorf("failed to encode guest cart: %w", err)
	}

	if err := r.client.Set(ctx, cartKey(owner), data, r.ttl).Err(); err != nil {
		r.logger.Error().Err(err).Str("owner_id", owner.ID).Msg("failed to save guest cart")
		return nil, fmt.Errorf("failed to save guest cart: %w", err)
	}

	r.logger.Debug().
		Str("owner_id", owner.ID).
		Int("line_count", len(cart.Lines)).
		Msg("guest cart persisted")

	return cart, nil
}

// Clear removes the owner's cart document.
func (r *cartRedisRepository) Clear(ctx context.Context, owner model.Owner) error {
	if err := r.client.Del(ctx, cartKey(owner)).Err(); err != nil {
		r.logger.Error().Err(err).Str("owner_id", owner.ID).Msg("failed to clear guest cart")
		return fmt.Errorf("failed to clear guest cart: %w", err)
	}
	return nil
}

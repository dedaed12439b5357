package repository

import (
	"context"

	"snack-cart/internal/model"

	"github.com/google/uuid"
)

// CartRepository is the durable mapping from owner to cart. Mutations are
// applied as whole-cart read-modify-write cycles serialized per owner; two
// concurrent mutations to the same cart never overwrite each other's result.
type CartRepository interface {
	// Get retrieves the owner's cart, or an empty cart when none is stored.
	Get(ctx context.Context, owner model.Owner) (*model.Cart, error)

	// Mutate loads the owner's cart, applies fn to it and persists the
	// result, all under per-owner serialization. Returns the updated cart.
	Mutate(ctx context.Context, owner model.Owner, fn func(cart *model.Cart) error) (*model.Cart, error)

	// Clear removes the owner's cart entirely.
	Clear(ctx context.Context, owner model.Owner) error
}

// OrderRepository is the durable order store.
type OrderRepository interface {
	// CreateOrder writes the order keyed by its pre-generated identifier.
	// The write is conditional on the identifier not already existing, so a
	// retried confirmation for the same checkout attempt is a no-op.
	// Returns false when a record with that identifier was already present.
	CreateOrder(ctx context.Context, order *model.Order) (bool, error)

	// GetByID retrieves an order, or nil when no such order exists.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
}

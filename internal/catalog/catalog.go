package catalog

import (
	"context"

	"snack-cart/internal/model"
)

// Reader is the read-only product catalogue consumed by the cart service
// (price snapshot at add time) and the stock verifier (availability at
// checkout time). A missing product is reported as (nil, nil).
type Reader interface {
	// GetProduct retrieves a single product with its variants.
	GetProduct(ctx context.Context, id string) (*model.Product, error)

	// Snapshot runs fn against a single consistent point-in-time view of
	// the catalogue. All reads made through the ReadTx observe the same
	// snapshot even if products are concurrently edited.
	Snapshot(ctx context.Context, fn func(tx ReadTx) error) error
}

// ReadTx reads products inside one catalogue snapshot.
type ReadTx interface {
	GetProduct(ctx context.Context, id string) (*model.Product, error)
}

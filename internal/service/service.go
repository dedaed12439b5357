package service

import (
	"context"

	"snack-cart/internal/model"

	"github.com/google/uuid"
)

// CartService defines operations on owner-scoped carts.
type CartService interface {
	// Get retrieves the owner's cart, empty when nothing is stored.
	Get(ctx context.Context, owner model.Owner) (*model.Cart, error)

	// AddItem adds quantity of a product+variant to the cart. An existing
	// line for the same identity key has its quantity incremented; a new
	// line captures the unit price at add time.
	AddItem(ctx context.Context, owner model.Owner, productID, variantKey string, quantity int) (*model.Cart, error)

	// UpdateQuantity replaces a line's quantity; a quantity below 1 removes
	// the line instead. Idempotent.
	UpdateQuantity(ctx context.Context, owner model.Owner, key string, quantity int) (*model.Cart, error)

	// RemoveItem removes the line with the given identity key, no-op when
	// absent.
	RemoveItem(ctx context.Context, owner model.Owner, key string) (*model.Cart, error)

	// Clear empties the owner's cart.
	Clear(ctx context.Context, owner model.Owner) error

	// MergeGuestIntoAccount migrates a guest cart into an account cart,
	// summing quantities per identity key, and discards the guest cart.
	// Called once, at the authentication boundary.
	MergeGuestIntoAccount(ctx context.Context, guest, account model.Owner) (*model.Cart, error)
}

// StockVerifier answers whether every product referenced by a cart snapshot
// is purchasable as of a single consistent read. Read-only; it neither
// reserves nor decrements stock.
type StockVerifier interface {
	Verify(ctx context.Context, lines []model.CartLine) (model.StockResult, error)
}

// CheckoutService is the order commit engine: it turns a verified cart plus
// a payment confirmation into exactly one durable order per checkout
// attempt.
type CheckoutService interface {
	// PlaceOrder validates the request, verifies stock and initiates the
	// payment. The returned pending order is suspended until exactly one of
	// ConfirmPayment or CancelPayment arrives.
	PlaceOrder(ctx context.Context, owner model.Owner, req *model.CheckoutRequest) (*model.PendingOrder, error)

	// ConfirmPayment writes the order for a checkout attempt. Repeated
	// confirmations for the same attempt return the same single record.
	ConfirmPayment(ctx context.Context, orderID uuid.UUID, paymentRef string) (*model.Order, error)

	// CancelPayment abandons a checkout attempt, leaving the cart and the
	// order store exactly as they were before PlaceOrder.
	CancelPayment(ctx context.Context, orderID uuid.UUID) error

	// GetOrder retrieves a placed order, or nil when none exists.
	GetOrder(ctx context.Context, orderID uuid.UUID) (*model.Order, error)
}

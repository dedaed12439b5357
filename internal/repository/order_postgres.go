package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"snack-cart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// orderPostgresRepository implements OrderRepository using PostgreSQL.
type orderPostgresRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPostgresOrderRepository creates a PostgreSQL-backed order repository.
func NewPostgresOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderPostgresRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// CreateOrder inserts the order keyed by its pre-generated identifier. The
// insert is conditional on the identifier not already existing; a duplicate
// confirmation therefore leaves the original record untouched and returns
// false.
func (r *orderPostgresRepository) CreateOrder(ctx context.Context, order *model.Order) (bool, error) {
	linesJSON, err := json.Marshal(order.Lines)
	if err != nil {
		return false, fmt.Errorf("failed to encode order lines: %w", err)
	}
	shippingJSON, err := json.Marshal(order.Shipping)
	if err != nil {
		return false, fmt.Errorf("failed to encode shipping details: %w", err)
	}

	query := `
		INSERT INTO orders (
			id, code, owner_kind, owner_id, email, lines,
			subtotal, shipping_cost, total, shipping_method, shipping,
			status, payment_ref, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO NOTHING
	`

	tag, err := r.pool.Exec(ctx, query,
		order.ID, order.Code, order.Owner.Kind, order.Owner.ID, order.Email, linesJSON,
		order.Subtotal, order.ShippingCost, order.Total, order.ShippingMethod, shippingJSON,
		order.Status, order.PaymentRef, order.CreatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return false, fmt.Errorf("failed to create order: %w", err)
	}

	inserted := tag.RowsAffected() > 0
	if !inserted {
		r.logger.Debug().
			Str("order_id", order.ID.String()).
			Msg("order already exists, insert skipped")
		return false, nil
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Str("code", order.Code).
		Msg("order created successfully")

	return true, nil
}

// GetByID retrieves an order, or nil when no such order exists.
func (r *orderPostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `
		SELECT id, code, owner_kind, owner_id, email, lines,
		       subtotal, shipping_cost, total, shipping_method, shipping,
		       status, payment_ref, created_at
		FROM orders
		WHERE id = $1
	`

	var (
		order        model.Order
		linesJSON    []byte
		shippingJSON []byte
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&order.ID, &order.Code, &order.Owner.Kind, &order.Owner.ID, &order.Email, &linesJSON,
		&order.Subtotal, &order.ShippingCost, &order.Total, &order.ShippingMethod, &shippingJSON,
		&order.Status, &order.PaymentRef, &order.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	if err := json.Unmarshal(linesJSON, &order.Lines); err != nil {
		return nil, fmt.Errorf("failed to decode order lines: %w", err)
	}
	if err := json.Unmarshal(shippingJSON, &order.Shipping); err != nil {
		return nil, fmt.Errorf("failed to decode shipping details: %w", err)
	}

	return &order, nil
}

package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"snack-cart/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// cartPostgresRepository stores account carts as whole-cart documents, one
// row per owner. Mutations lock the row for the duration of the
// read-modify-write cycle.
type cartPostgresRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPostgresCartRepository creates a PostgreSQL-backed cart repository for
// account owners.
func NewPostgresCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartPostgresRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart-postgres").Logger(),
	}
}

// Get retrieves the owner's cart, or an empty cart when none is stored.
func (r *cartPostgresRepository) Get(ctx context.Context, owner model.Owner) (*model.Cart, error) {
	query := `
		SELECT lines, created_at, updated_at
		FROM carts
		WHERE owner_kind = $1 AND owner_id = $2
	`

	var (
		linesJSON []byte
		cart      = model.NewCart(owner)
	)
	err := r.pool.QueryRow(ctx, query, owner.Kind, owner.ID).Scan(&linesJSON, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return cart, nil
		}
		r.logger.Error().Err(err).Str("owner_id", owner.ID).Msg("failed to query cart")
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}

	if err := json.Unmarshal(linesJSON, &cart.Lines); err != nil {
		r.logger.Error().Err(err).Str("owner_id", owner.ID).Msg("failed to decode cart lines")
		return nil, fmt.Errorf("failed to decode cart lines: %w", err)
	}

	return cart, nil
}

// Mutate applies fn to the owner's cart under a row lock, writing the whole
// cart back before the transaction commits.
func (r *cartPostgresRepository) Mutate(ctx context.Context, owner model.Owner, fn func(cart *model.Cart) error) (*model.Cart, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin cart transaction")
		return nil, fmt.Errorf("failed to begin cart transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	// Ensure the row exists so FOR UPDATE has something to lock.
	now := time.Now()
	_, err = tx.Exec(ctx, `
		INSERT INTO carts (owner_kind, owner_id, lines, created_at, updated_at)
		VALUES ($1, $2, '[]', $3, $3)
		ON CONFLICT (owner_kind, owner_id) DO NOTHING
	`, owner.Kind, owner.ID, now)
	if err != nil {
		r.logger.Error().Err(err).Str("owner_id", owner.ID).Msg("failed to ensure cart row")
		return nil, fmt.Errorf("failed to ensure cart row: %w", err)
	}

	var (
		linesJSON []byte
		cart      = model.NewCart(owner)
	)
	err = tx.QueryRow(ctx, `
		SELECT lines, created_at
		FROM carts
		WHERE owner_kind = $1 AND owner_id = $2
		FOR UPDATE
	`, owner.Kind, owner.ID).Scan(&linesJSON, &cart.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("owner_id", owner.ID).Msg("failed to lock cart row")
		return nil, fmt.Errorf("failed to lock cart row: %w", err)
	}

	if err := json.Unmarshal(linesJSON, &cart.Lines); err != nil {
		r.logger.Error().Err(err).Str("owner_id", owner.ID).Msg("failed to decode cart lines")
		return nil, fmt.Errorf("failed to decode cart lines: %w", err)
	}

	if err := fn(cart); err != nil {
		return nil, err
	}

	updated, err := json.Marshal(cart.Lines)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cart lines: %w", err)
	}

	cart.UpdatedAt = time.Now()
	_, err = tx.Exec(ctx, `
		UPDATE carts
		SET lines = $3, updated_at = $4
		WHERE owner_kind = $1 AND owner_id = $2
	`, owner.Kind, owner.ID, updated, cart.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("owner_id", owner.ID).Msg("failed to update cart")
		return nil, fmt.Errorf("failed to update cart: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Str("owner_id", owner.ID).Msg("failed to commit cart transaction")
		return nil, fmt.Errorf("failed to commit cart transaction: %w", err)
	}

	r.logger.Debug().
		Str("owner_id", owner.ID).
		Int("line_count", len(cart.Lines)).
		Msg("cart persisted")

	return cart, nil
}

// Clear removes the owner's cart row.
func (r *cartPostgresRepository) Clear(ctx context.Context, owner model.Owner) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM carts
		WHERE owner_kind = $1 AND owner_id = $2
	`, owner.Kind, owner.ID)
	if err != nil {
		r.logger.Error().Err(err).Str("owner_id", owner.ID).Msg("failed to clear cart")
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

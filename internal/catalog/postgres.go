package catalog

import (
	"context"
	"fmt"

	"snack-cart/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// postgresReader implements Reader against the products and
// product_variants tables.
type postgresReader struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPostgresReader creates a new PostgreSQL-backed catalogue reader.
func NewPostgresReader(pool *pgxpool.Pool, logger zerolog.Logger) Reader {
	return &postgresReader{
		pool:   pool,
		logger: logger.With().Str("component", "catalog").Logger(),
	}
}

// GetProduct retrieves a single product with its variants.
func (r *postgresReader) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	return getProduct(ctx, r.pool, r.logger, id)
}

// Snapshot runs fn inside a repeatable-read, read-only transaction so every
// product read observes the same point in time.
func (r *postgresReader) Snapshot(ctx context.Context, fn func(tx ReadTx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin catalogue snapshot")
		return fmt.Errorf("failed to begin catalogue snapshot: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(&snapshotTx{tx: tx, logger: r.logger}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Msg("failed to close catalogue snapshot")
		return fmt.Errorf("failed to close catalogue snapshot: %w", err)
	}

	return nil
}

// snapshotTx reads products inside one open transaction.
type snapshotTx struct {
	tx     pgx.Tx
	logger zerolog.Logger
}

func (s *snapshotTx) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	return getProduct(ctx, s.tx, s.logger, id)
}

// getProduct loads one product row plus its variants from the given querier.
func getProduct(ctx context.Context, q querier, logger zerolog.Logger, id string) (*model.Product, error) {
	query := `
		SELECT id, name, price, image_ref, in_stock, created_at
		FROM products
		WHERE id = $1
	`

	var p model.Product
	err := q.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.Price, &p.ImageRef, &p.InStock, &p.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			logger.Debug().Str("product_id", id).Msg("product not found")
			return nil, nil
		}
		logger.Error().Err(err).Str("product_id", id).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	variantQuery := `
		SELECT variant_key, price, discount_price, in_stock
		FROM product_variants
		WHERE product_id = $1
		ORDER BY variant_key
	`

	rows, err := q.Query(ctx, variantQuery, id)
	if err != nil {
		logger.Error().Err(err).Str("product_id", id).Msg("failed to query product variants")
		return nil, fmt.Errorf("failed to query product variants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var v model.Variant
		if err := rows.Scan(&v.Key, &v.Price, &v.DiscountPrice, &v.InStock); err != nil {
			logger.Error().Err(err).Msg("failed to scan variant row")
			return nil, fmt.Errorf("failed to scan variant: %w", err)
		}
		p.Variants = append(p.Variants, v)
	}

	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("error iterating variant rows")
		return nil, fmt.Errorf("error iterating variants: %w", err)
	}

	return &p, nil
}

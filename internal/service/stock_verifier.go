package service

import (
	"context"
	"fmt"

	"snack-cart/internal/catalog"
	"snack-cart/internal/model"

	"github.com/rs/zerolog"
)

// stockVerifier implements StockVerifier over a catalogue snapshot.
type stockVerifier struct {
	catalog catalog.Reader
	logger  zerolog.Logger
}

// NewStockVerifier creates a new stock verifier.
func NewStockVerifier(catalogReader catalog.Reader, logger zerolog.Logger) StockVerifier {
	return &stockVerifier{
		catalog: catalogReader,
		logger:  logger.With().Str("service", "stock-verifier").Logger(),
	}
}

// Verify checks every line against one consistent catalogue snapshot,
// in insertion order, stopping at the first line whose product is missing
// or out of stock. The first failing line determines the reported failure.
// The returned error only reports infrastructure failure; business outcomes
// are carried in the StockResult.
func (v *stockVerifier) Verify(ctx context.Context, lines []model.CartLine) (model.StockResult, error) {
	result := model.Available()

	err := v.catalog.Snapshot(ctx, func(tx catalog.ReadTx) error {
		for _, line := range lines {
			name := line.DisplayName
			if name == "" {
				name = line.ProductID
			}

			if line.ProductID == "" {
				result = model.ProductMissingResult("", name)
				return nil
			}

			product, err := tx.GetProduct(ctx, line.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				result = model.ProductMissingResult(line.ProductID, name)
				return nil
			}
			if !product.AvailableFor(line.VariantKey) {
				result = model.OutOfStockResult(line.ProductID, name)
				return nil
			}
		}
		return nil
	})
	if err != nil {
		v.logger.Error().Err(err).Msg("stock verification failed")
		return model.StockResult{}, fmt.Errorf("stock verification failed: %w", err)
	}

	if !result.OK() {
		v.logger.Warn().
			Str("status", string(result.Status)).
			Str("product_id", result.ProductID).
			Str("display_name", result.DisplayName).
			Msg("stock verification rejected cart")
	}

	return result, nil
}

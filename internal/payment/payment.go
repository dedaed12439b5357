// Package payment defines the boundary contract with the external payment
// gateway. The core only consumes two outcomes per initiated payment:
// confirmed (with an opaque payment reference) or cancelled.
package payment

import "context"

// Metadata is the correlation data attached to an initiated payment.
type Metadata struct {
	OrderCode string
	Name      string
	Email     string
	Contact   string
}

// Request describes a payment to initiate. AmountMinor is in the currency's
// minor unit (paise for INR).
type Request struct {
	AmountMinor int64
	Currency    string
	Metadata    Metadata
}

// Handle identifies an initiated payment at the gateway. Resolution arrives
// later through the gateway's confirmation or cancellation callback.
type Handle struct {
	GatewayRef string
}

// Outcome is the explicit two-outcome result of a payment: exactly one of
// confirmed-with-reference or cancelled.
type Outcome struct {
	Confirmed  bool
	PaymentRef string
}

// Confirmed builds the confirmation outcome carrying the gateway's opaque
// payment reference.
func Confirmed(paymentRef string) Outcome {
	return Outcome{Confirmed: true, PaymentRef: paymentRef}
}

// Cancelled builds the cancellation outcome.
func Cancelled() Outcome {
	return Outcome{}
}

// Gateway initiates payments against the external provider. The adapter
// does not implement payment-method UI, retries or signature verification.
type Gateway interface {
	Initiate(ctx context.Context, req Request) (Handle, error)
}

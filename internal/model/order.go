package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	// OrderPending marks an identifier that has been reserved for a checkout
	// attempt but not yet written as a real order.
	OrderPending OrderStatus = "Pending"
	// OrderConfirmed marks a durably written, paid order. Terminal.
	OrderConfirmed OrderStatus = "Confirmed"
)

// ShippingDetails is the address and contact block collected at checkout.
type ShippingDetails struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	Country   string `json:"country"`
	Pincode   string `json:"pincode"`
}

// Validate reports the first missing shipping field, if any.
func (s *ShippingDetails) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"firstName", s.FirstName},
		{"lastName", s.LastName},
		{"email", s.Email},
		{"phone", s.Phone},
		{"street", s.Street},
		{"city", s.City},
		{"state", s.State},
		{"country", s.Country},
		{"pincode", s.Pincode},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return NewDomainError(ErrCodeMissingField, "missing shipping field: "+f.name)
		}
	}
	return nil
}

// FullName returns the recipient name passed to the payment gateway.
func (s *ShippingDetails) FullName() string {
	return s.FirstName + " " + s.LastName
}

// Order is the durable record created after payment confirmation. The line
// snapshot is copied by value from the cart at verification time; later cart
// or catalogue changes never alter a placed order.
type Order struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	Code           string          `json:"orderCode" db:"code"`
	Owner          Owner           `json:"owner"`
	Email          string          `json:"email" db:"email"`
	Lines          []CartLine      `json:"items"`
	Subtotal       float64         `json:"subtotal" db:"subtotal"`
	ShippingCost   float64         `json:"shippingCost" db:"shipping_cost"`
	Total          float64         `json:"totalAmount" db:"total"`
	ShippingMethod string          `json:"shippingMethod" db:"shipping_method"`
	Shipping       ShippingDetails `json:"shippingDetails"`
	Status         OrderStatus     `json:"status" db:"status"`
	PaymentRef     string          `json:"paymentRef" db:"payment_ref"`
	CreatedAt      time.Time       `json:"createdAt" db:"created_at"`
}

// OrderCode derives the short human-facing order code from a pre-generated
// order identifier.
func OrderCode(id uuid.UUID) string {
	return strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
}

// CheckoutRequest is the payload that starts a checkout attempt.
type CheckoutRequest struct {
	Shipping       ShippingDetails `json:"shippingDetails"`
	ShippingMethod string          `json:"shippingMethod"`
}

// PendingOrder describes a checkout attempt that passed verification and is
// suspended at the payment step. Not a real order yet.
type PendingOrder struct {
	OrderID     uuid.UUID `json:"orderId"`
	Code        string    `json:"orderCode"`
	AmountMinor int64     `json:"amount"`
	Currency    string    `json:"currency"`
	GatewayRef  string    `json:"gatewayRef"`
}

package model

// Standard error codes for API responses
const (
	ErrCodeMissingField         = "MISSING_FIELD"
	ErrCodeEmptyCart            = "EMPTY_CART"
	ErrCodeProductNotFound      = "PRODUCT_NOT_FOUND"
	ErrCodeOutOfStock           = "OUT_OF_STOCK"
	ErrCodeUnknownShipping      = "UNKNOWN_SHIPPING_METHOD"
	ErrCodePaymentCancelled     = "PAYMENT_CANCELLED"
	ErrCodeUnknownCheckout      = "UNKNOWN_CHECKOUT"
	ErrCodeOrderRecordingFailed = "ORDER_RECORDING_FAILED"
)

// DomainError is a typed business error that handlers can map to a status
// code without string matching.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrEmptyCart        = NewDomainError(ErrCodeEmptyCart, "Cart is empty, nothing to checkout")
	ErrProductMissing   = NewDomainError(ErrCodeProductNotFound, "Product not found. Cannot place order")
	ErrUnknownShipping  = NewDomainError(ErrCodeUnknownShipping, "Unknown shipping method")
	ErrPaymentCancelled = NewDomainError(ErrCodePaymentCancelled, "Payment cancelled. Please try again")
	ErrUnknownCheckout  = NewDomainError(ErrCodeUnknownCheckout, "No checkout attempt found for this order")

	// ErrOrderRecordingFailed is the one non-recoverable-by-retry condition:
	// payment was captured but the order row could not be written. Retrying
	// the checkout would risk a duplicate charge; the user must be told to
	// contact support.
	ErrOrderRecordingFailed = NewDomainError(ErrCodeOrderRecordingFailed, "Payment succeeded but order recording failed. Please contact support")
)

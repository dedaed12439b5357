package model

// StockStatus tags the outcome of a stock verification.
type StockStatus string

const (
	StockAvailable      StockStatus = "AVAILABLE"
	StockProductMissing StockStatus = "PRODUCT_MISSING"
	StockOutOfStock     StockStatus = "OUT_OF_STOCK"
)

// StockResult is the outcome of verifying a cart snapshot against the
// catalogue. Produced fresh for every checkout attempt, never persisted.
// ProductID and DisplayName identify the first failing line, if any.
type StockResult struct {
	Status      StockStatus
	ProductID   string
	DisplayName string
}

// Available returns the all-clear verification result.
func Available() StockResult {
	return StockResult{Status: StockAvailable}
}

// ProductMissingResult reports a line whose product no longer exists.
func ProductMissingResult(productID, displayName string) StockResult {
	return StockResult{Status: StockProductMissing, ProductID: productID, DisplayName: displayName}
}

// OutOfStockResult reports a line whose product is not purchasable.
func OutOfStockResult(productID, displayName string) StockResult {
	return StockResult{Status: StockOutOfStock, ProductID: productID, DisplayName: displayName}
}

// OK reports whether the verification passed.
func (r StockResult) OK() bool {
	return r.Status == StockAvailable
}

// Err converts a failed verification into the matching domain error, with
// the offending product's display name in the message.
func (r StockResult) Err() error {
	switch r.Status {
	case StockProductMissing:
		return NewDomainError(ErrCodeProductNotFound, "Product \""+r.DisplayName+"\" not found. Cannot place order")
	case StockOutOfStock:
		return NewDomainError(ErrCodeOutOfStock, "We're sorry, \""+r.DisplayName+"\" is currently out of stock")
	default:
		return nil
	}
}

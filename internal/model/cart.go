package model

import "time"

// OwnerKind distinguishes anonymous sessions from authenticated accounts.
type OwnerKind string

const (
	OwnerGuest   OwnerKind = "guest"
	OwnerAccount OwnerKind = "account"
)

// Owner identifies who a cart belongs to.
type Owner struct {
	Kind OwnerKind `json:"kind"`
	ID   string    `json:"id"`
}

// GuestOwner returns a guest owner for the given session ID.
func GuestOwner(sessionID string) Owner {
	return Owner{Kind: OwnerGuest, ID: sessionID}
}

// AccountOwner returns an account owner for the given user ID.
func AccountOwner(userID string) Owner {
	return Owner{Kind: OwnerAccount, ID: userID}
}

// CartLine is one product+variant entry in a cart. UnitPrice is captured at
// add time and never re-fetched from the catalogue afterwards.
type CartLine struct {
	ProductID   string  `json:"productId"`
	VariantKey  string  `json:"variantKey,omitempty"`
	DisplayName string  `json:"displayName"`
	ImageRef    string  `json:"imageRef,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
}

// LineKey builds the identity key for a product+variant pair. At most one
// cart line exists per key.
func LineKey(productID, variantKey string) string {
	if variantKey == NoVariant {
		return productID
	}
	return productID + "-" + variantKey
}

// Key returns the line's identity key.
func (l CartLine) Key() string {
	return LineKey(l.ProductID, l.VariantKey)
}

// Cart is the mutable, owner-scoped collection of cart lines. Line order is
// insertion order.
type Cart struct {
	Owner     Owner      `json:"owner"`
	Lines     []CartLine `json:"lines"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// NewCart returns an empty cart for the given owner.
func NewCart(owner Owner) *Cart {
	return &Cart{Owner: owner}
}

// FindLine returns the index of the line with the given identity key, or -1.
func (c *Cart) FindLine(key string) int {
	for i, l := range c.Lines {
		if l.Key() == key {
			return i
		}
	}
	return -1
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// ItemCount returns the total quantity across all lines.
func (c *Cart) ItemCount() int {
	total := 0
	for _, l := range c.Lines {
		total += l.Quantity
	}
	return total
}

// Subtotal returns the sum of unit price times quantity across all lines.
func (c *Cart) Subtotal() float64 {
	total := 0.0
	for _, l := range c.Lines {
		total += l.UnitPrice * float64(l.Quantity)
	}
	return total
}

// CopyLines returns a by-value snapshot of the cart's lines, detached from
// the live cart.
func (c *Cart) CopyLines() []CartLine {
	if len(c.Lines) == 0 {
		return nil
	}
	snapshot := make([]CartLine, len(c.Lines))
	copy(snapshot, c.Lines)
	return snapshot
}

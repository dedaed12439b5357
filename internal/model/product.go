package model

import "time"

// NoVariant is the variant key for products sold without variants.
const NoVariant = ""

// Variant is a purchasable sub-option of a product, e.g. a pack size.
type Variant struct {
	Key           string   `json:"key" db:"variant_key"`
	Price         float64  `json:"price" db:"price"`
	DiscountPrice *float64 `json:"discountPrice,omitempty" db:"discount_price"`
	InStock       bool     `json:"inStock" db:"in_stock"`
}

// Product is a read-only projection from the catalogue.
type Product struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Price     float64   `json:"price" db:"price"`
	ImageRef  string    `json:"imageRef,omitempty" db:"image_ref"`
	InStock   bool      `json:"inStock" db:"in_stock"`
	Variants  []Variant `json:"variants,omitempty"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// variant returns the variant with the given key, or nil.
func (p *Product) variant(key string) *Variant {
	for i := range p.Variants {
		if p.Variants[i].Key == key {
			return &p.Variants[i]
		}
	}
	return nil
}

// UnitPriceFor returns the price captured when the product is added to a
// cart: the chosen variant's discount price, then the variant price, then
// the base product price.
func (p *Product) UnitPriceFor(variantKey string) float64 {
	if v := p.variant(variantKey); v != nil {
		if v.DiscountPrice != nil {
			return *v.DiscountPrice
		}
		return v.Price
	}
	return p.Price
}

// AvailableFor reports whether the product is purchasable for the given
// variant key. Variant stock applies when the key names a variant; the
// top-level flag applies otherwise.
func (p *Product) AvailableFor(variantKey string) bool {
	if v := p.variant(variantKey); v != nil {
		return v.InStock
	}
	return p.InStock
}

// DisplayNameFor returns the user-facing name for a product+variant choice.
func (p *Product) DisplayNameFor(variantKey string) string {
	if variantKey == NoVariant {
		return p.Name
	}
	return p.Name + " (" + variantKey + ")"
}

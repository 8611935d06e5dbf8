// Package sku resolves user-selected specification values into purchasable
// variants and derives what a product chooser should display at every step.
//
// Everything in this package is pure: a Catalog is an immutable snapshot of a
// product's dimensions and variants, and every operation recomputes its
// answer from that snapshot and the current Selection.
package sku

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// keySep joins value-ids inside a canonical variant key.
const keySep = ","

var (
	// ErrUnknownDimension is returned when a toggle names a dimension the
	// product does not have.
	ErrUnknownDimension = errors.New("unknown dimension")
	// ErrUnknownValue is returned when a toggle names a value that does not
	// belong to the dimension.
	ErrUnknownValue = errors.New("unknown value")
	// ErrSessionClosed is returned by operations on a session that has been
	// confirmed or closed.
	ErrSessionClosed = errors.New("session closed")
)

// Dimension is one axis of variation, e.g. "Color".
type Dimension struct {
	ID     string
	Name   string
	Values []Value
}

// value returns the value with the given id.
func (d Dimension) value(id string) (Value, bool) {
	for _, v := range d.Values {
		if v.ID == id {
			return v, true
		}
	}
	return Value{}, false
}

// Value is one selectable option within a dimension. ID is unique inside its
// dimension only.
type Value struct {
	ID    string
	Label string
	Image string
}

// Variant is one concrete purchasable combination of values.
type Variant struct {
	ID  string
	Key Key
	// Price is the primary currency amount.
	Price decimal.Decimal
	// ScorePrice is the secondary currency amount. Zero means absent.
	ScorePrice decimal.Decimal
	Stock      int
	Image      string
	// Label is a precomputed human-readable name such as "Red / L".
	Label string
}

// InStock reports whether the variant can be bought at all.
func (v Variant) InStock() bool {
	return v.Stock > 0
}

// Selection maps dimension-id to the chosen value-id.
type Selection map[string]string

// Clone returns an independent copy of s.
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// PriceRange holds catalog-wide price bounds for a product.
type PriceRange struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// Item is everything the engine consumes for a single product.
type Item struct {
	Price      decimal.Decimal
	ScorePrice decimal.Decimal
	Stock      int
	Image      string

	// HasStructuredVariants is advisory: structured mode is chosen by the
	// presence of dimensions and variants, not by this flag.
	HasStructuredVariants bool
	PriceRange            *PriceRange

	Dimensions []Dimension
	Variants   []Variant
	Specs      []LegacyDimension
}

// Structured reports whether the item resolves through dimensions and
// variants rather than flat legacy specs.
func (it Item) Structured() bool {
	return len(it.Dimensions) > 0 && len(it.Variants) > 0
}

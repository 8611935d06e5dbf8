package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-sku/internal/domain/sku"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item together with its specification data.
type Product struct {
	ID       string
	Name     string
	Category string

	// Flat fields, used in legacy mode and as display fallbacks.
	Price      decimal.Decimal
	ScorePrice decimal.Decimal
	Stock      int
	Image      string

	// HasVariants mirrors the backend flag. It is advisory only.
	HasVariants bool
	PriceRange  *sku.PriceRange
	Dimensions  []sku.Dimension
	Variants    []sku.Variant
	Specs       []sku.LegacyDimension
}

// Item returns the engine input for the product.
func (p *Product) Item() sku.Item {
	return sku.Item{
		Price:                 p.Price,
		ScorePrice:            p.ScorePrice,
		Stock:                 p.Stock,
		Image:                 p.Image,
		HasStructuredVariants: p.HasVariants,
		PriceRange:            p.PriceRange,
		Dimensions:            p.Dimensions,
		Variants:              p.Variants,
		Specs:                 p.Specs,
	}
}

// Repository defines read operations for the product catalog. List returns
// flat fields only; GetByID loads dimensions, variants and specs as well.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
}

package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Order represents a placed order for one chooser confirmation.
type Order struct {
	ID        string
	Items     []OrderItem
	Total     decimal.Decimal
	CreatedAt time.Time
}

// OrderItem is one line: a product, optionally a concrete variant, and the
// human-readable spec the customer chose.
type OrderItem struct {
	ProductID string
	VariantID string
	Quantity  int
	UnitPrice decimal.Decimal
	Spec      map[string]string
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, order *Order) error
}

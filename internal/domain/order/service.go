package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-sku/internal/domain/product"
	"github.com/xenking/kart-sku/internal/domain/sku"
)

// Sentinel errors for order validation.
var (
	ErrVariantRequired = errors.New("variant required")
	ErrOutOfStock      = errors.New("insufficient stock")
	ErrIncompleteSpec  = errors.New("every spec must be chosen")
)

// ProductNotFoundError indicates a requested product does not exist.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// VariantNotFoundError indicates the confirmed variant is not part of the
// product.
type VariantNotFoundError struct {
	ProductID string
	VariantID string
}

func (e *VariantNotFoundError) Error() string {
	return fmt.Sprintf("variant %s not found in product %s", e.VariantID, e.ProductID)
}

// InvalidQuantityError indicates a non-positive quantity.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s", e.ProductID)
}

// PlaceOrderRequest carries a chooser confirmation for one product.
type PlaceOrderRequest struct {
	ProductID    string
	Confirmation sku.Confirmation
}

// PlaceOrderResult holds the output of a successfully placed order.
type PlaceOrderResult struct {
	Order   *Order
	Product *product.Product
}

// Service turns chooser confirmations into persisted orders.
type Service struct {
	products product.Repository
	orders   Repository
	now      func() time.Time
}

// NewService creates an order Service with the required domain dependencies.
func NewService(products product.Repository, orders Repository) *Service {
	return &Service{
		products: products,
		orders:   orders,
		now:      time.Now,
	}
}

// PlaceOrder re-checks the confirmation against current catalog data, prices
// the line and persists the order. Stock is checked, not reserved.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*PlaceOrderResult, error) {
	c := req.Confirmation
	if c.Quantity <= 0 {
		return nil, &InvalidQuantityError{ProductID: req.ProductID}
	}

	p, err := s.products.GetByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, &ProductNotFoundError{ProductID: req.ProductID}
		}
		return nil, errors.Wrap(err, "get product")
	}

	item := OrderItem{
		ProductID: p.ID,
		Quantity:  c.Quantity,
	}

	if p.Item().Structured() {
		v, err := pickVariant(p, c)
		if err != nil {
			return nil, err
		}
		item.VariantID = v.ID
		item.UnitPrice = v.Price
		item.Spec = specOf(p, v)
	} else {
		if err := checkLegacy(p, c); err != nil {
			return nil, err
		}
		item.UnitPrice = p.Price
		item.Spec = sku.LegacySummaryMap(p.Specs, c.Spec)
	}

	total := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)

	o := &Order{
		ID:        uuid.New().String(),
		Items:     []OrderItem{item},
		Total:     total,
		CreatedAt: s.now(),
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	return &PlaceOrderResult{Order: o, Product: p}, nil
}

func pickVariant(p *product.Product, c sku.Confirmation) (sku.Variant, error) {
	if c.VariantID == "" {
		return sku.Variant{}, ErrVariantRequired
	}
	v, ok := sku.NewCatalog(p.Dimensions, p.Variants).Variant(c.VariantID)
	if !ok {
		return sku.Variant{}, &VariantNotFoundError{ProductID: p.ID, VariantID: c.VariantID}
	}
	if v.Stock < c.Quantity {
		return sku.Variant{}, ErrOutOfStock
	}
	return v, nil
}

// specOf builds the name to label map from the variant key. The client's spec
// is never stored for structured products.
func specOf(p *product.Product, v sku.Variant) map[string]string {
	c := sku.NewCatalog(p.Dimensions, nil)
	return c.SummaryMap(c.SelectionOf(v))
}

func checkLegacy(p *product.Product, c sku.Confirmation) error {
	if !sku.CanPurchaseLegacy(p.Specs, c.Spec, max(p.Stock, 1)) {
		return ErrIncompleteSpec
	}
	if p.Stock < c.Quantity {
		return ErrOutOfStock
	}
	return nil
}

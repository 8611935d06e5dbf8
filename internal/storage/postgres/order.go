package postgres

import (
	"context"
	"slices"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/kart-sku/internal/domain/order"
)

const createOrderSQL = `INSERT INTO orders (id, items, total, created_at) VALUES ($1, $2, $3, $4)`

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order. Line items, including the chosen spec, go into
// a JSONB column.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	if _, err := r.pool.Exec(ctx, createOrderSQL, o.ID, encodeItems(o.Items), o.Total, o.CreatedAt); err != nil {
		return errors.Wrapf(err, "create order %q", o.ID)
	}
	return nil
}

// encodeItems renders line items as the JSONB document stored in
// orders.items. Amounts are strings so NUMERIC precision survives.
func encodeItems(items []order.OrderItem) []byte {
	var e jx.Encoder
	e.ArrStart()
	for _, it := range items {
		e.ObjStart()
		e.FieldStart("product_id")
		e.Str(it.ProductID)
		if it.VariantID != "" {
			e.FieldStart("variant_id")
			e.Str(it.VariantID)
		}
		e.FieldStart("quantity")
		e.Int(it.Quantity)
		e.FieldStart("unit_price")
		e.Str(it.UnitPrice.String())
		if len(it.Spec) > 0 {
			e.FieldStart("spec")
			e.ObjStart()
			names := make([]string, 0, len(it.Spec))
			for name := range it.Spec {
				names = append(names, name)
			}
			slices.Sort(names)
			for _, name := range names {
				e.FieldStart(name)
				e.Str(it.Spec[name])
			}
			e.ObjEnd()
		}
		e.ObjEnd()
	}
	e.ArrEnd()
	return e.Bytes()
}

package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/kart-sku/internal/domain/product"
	"github.com/xenking/kart-sku/internal/domain/sku"
)

const (
	productColumns = `id, name, category, price, score_price, stock, image, has_variants, price_min, price_max`

	listProductsSQL = `SELECT ` + productColumns + ` FROM products ORDER BY id`
	getProductSQL   = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	listDimensionsSQL = `SELECT id, name FROM spec_dimensions
		WHERE product_id = $1 ORDER BY position, id`
	listValuesSQL = `SELECT dimension_id, id, label, image FROM spec_values
		WHERE product_id = $1 ORDER BY position, id`
	listVariantsSQL = `SELECT id, key, price, score_price, stock, image, label FROM variants
		WHERE product_id = $1 ORDER BY position, id`
	listSpecsSQL = `SELECT name, spec_values FROM legacy_specs
		WHERE product_id = $1 ORDER BY position`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns every product's flat fields ordered by ID.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID loads a product with its dimensions, values, variants and legacy
// specs in a single round trip.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	b := &pgx.Batch{}
	b.Queue(getProductSQL, id)
	b.Queue(listDimensionsSQL, id)
	b.Queue(listValuesSQL, id)
	b.Queue(listVariantsSQL, id)
	b.Queue(listSpecsSQL, id)

	br := r.pool.SendBatch(ctx, b)
	defer func() { _ = br.Close() }()

	rows, err := br.Query()
	if err != nil {
		return nil, errors.Wrapf(err, "get product %q", id)
	}
	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get product %q", id)
	}

	if p.Dimensions, err = collectDimensions(br); err != nil {
		return nil, errors.Wrapf(err, "get dimensions of %q", id)
	}
	if p.Variants, err = collectBatch(br, scanVariant(ctx, id)); err != nil {
		return nil, errors.Wrapf(err, "get variants of %q", id)
	}
	if p.Specs, err = collectBatch(br, scanSpec); err != nil {
		return nil, errors.Wrapf(err, "get specs of %q", id)
	}
	return &p, nil
}

func collectBatch[T any](br pgx.BatchResults, fn pgx.RowToFunc[T]) ([]T, error) {
	rows, err := br.Query()
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, fn)
}

// collectDimensions reads the dimension and value result sets and attaches
// values to their dimension, keeping both orders.
func collectDimensions(br pgx.BatchResults) ([]sku.Dimension, error) {
	dims, err := collectBatch(br, func(row pgx.CollectableRow) (sku.Dimension, error) {
		var d sku.Dimension
		err := row.Scan(&d.ID, &d.Name)
		return d, err
	})
	if err != nil {
		return nil, err
	}

	type dimValue struct {
		dimensionID string
		value       sku.Value
	}
	values, err := collectBatch(br, func(row pgx.CollectableRow) (dimValue, error) {
		var v dimValue
		err := row.Scan(&v.dimensionID, &v.value.ID, &v.value.Label, &v.value.Image)
		return v, err
	})
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(dims))
	for i, d := range dims {
		index[d.ID] = i
	}
	for _, v := range values {
		if i, ok := index[v.dimensionID]; ok {
			dims[i].Values = append(dims[i].Values, v.value)
		}
	}
	return dims, nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var (
		p      product.Product
		lo, hi decimal.NullDecimal
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Category, &p.Price, &p.ScorePrice,
		&p.Stock, &p.Image, &p.HasVariants, &lo, &hi,
	)
	if lo.Valid && hi.Valid {
		p.PriceRange = &sku.PriceRange{Min: lo.Decimal, Max: hi.Decimal}
	}
	return p, err
}

// scanVariant returns a row scanner for variants of productID. A key that
// fails to decode stays empty and never matches; the failure is logged.
func scanVariant(ctx context.Context, productID string) pgx.RowToFunc[sku.Variant] {
	return func(row pgx.CollectableRow) (sku.Variant, error) {
		var (
			v   sku.Variant
			key []byte
		)
		if err := row.Scan(&v.ID, &key, &v.Price, &v.ScorePrice, &v.Stock, &v.Image, &v.Label); err != nil {
			return v, err
		}
		if err := v.Key.UnmarshalJSON(key); err != nil {
			v.Key = sku.Key{}
			zctx.From(ctx).Debug("Undecodable variant key",
				zap.String("product_id", productID),
				zap.String("variant_id", v.ID),
				zap.ByteString("key", key),
				zap.Error(err),
			)
		}
		return v, nil
	}
}

func scanSpec(row pgx.CollectableRow) (sku.LegacyDimension, error) {
	var s sku.LegacyDimension
	err := row.Scan(&s.Name, &s.Values)
	return s, err
}

package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-sku/internal/domain/product"
)

const (
	upsertProductSQL = `INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, category = EXCLUDED.category,
			price = EXCLUDED.price, score_price = EXCLUDED.score_price,
			stock = EXCLUDED.stock, image = EXCLUDED.image,
			has_variants = EXCLUDED.has_variants,
			price_min = EXCLUDED.price_min, price_max = EXCLUDED.price_max`

	deleteDimensionsSQL = `DELETE FROM spec_dimensions WHERE product_id = $1`
	deleteVariantsSQL   = `DELETE FROM variants WHERE product_id = $1`
	deleteSpecsSQL      = `DELETE FROM legacy_specs WHERE product_id = $1`

	insertDimensionSQL = `INSERT INTO spec_dimensions (product_id, id, name, position) VALUES ($1, $2, $3, $4)`
	insertValueSQL     = `INSERT INTO spec_values (product_id, dimension_id, id, label, image, position)
		VALUES ($1, $2, $3, $4, $5, $6)`
	insertVariantSQL = `INSERT INTO variants (product_id, id, key, price, score_price, stock, image, label, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	insertSpecSQL = `INSERT INTO legacy_specs (product_id, name, spec_values, position) VALUES ($1, $2, $3, $4)`
)

// CatalogWriter replaces whole products, children included.
type CatalogWriter struct {
	pool *pgxpool.Pool
}

// NewCatalogWriter returns a CatalogWriter that uses the given pool.
func NewCatalogWriter(pool *pgxpool.Pool) *CatalogWriter {
	return &CatalogWriter{pool: pool}
}

// Upsert writes p and replaces its dimensions, values, variants and specs in
// one transaction.
func (w *CatalogWriter) Upsert(ctx context.Context, p *product.Product) error {
	var lo, hi decimal.NullDecimal
	if p.PriceRange != nil {
		lo = decimal.NewNullDecimal(p.PriceRange.Min)
		hi = decimal.NewNullDecimal(p.PriceRange.Max)
	}

	b := &pgx.Batch{}
	b.Queue(upsertProductSQL,
		p.ID, p.Name, p.Category, p.Price, p.ScorePrice,
		p.Stock, p.Image, p.HasVariants, lo, hi,
	)
	b.Queue(deleteDimensionsSQL, p.ID)
	b.Queue(deleteVariantsSQL, p.ID)
	b.Queue(deleteSpecsSQL, p.ID)

	for i, d := range p.Dimensions {
		b.Queue(insertDimensionSQL, p.ID, d.ID, d.Name, i)
		for j, v := range d.Values {
			b.Queue(insertValueSQL, p.ID, d.ID, v.ID, v.Label, v.Image, j)
		}
	}
	for i, v := range p.Variants {
		key, err := v.Key.MarshalJSON()
		if err != nil {
			return errors.Wrapf(err, "encode key of variant %q", v.ID)
		}
		b.Queue(insertVariantSQL, p.ID, v.ID, key, v.Price, v.ScorePrice, v.Stock, v.Image, v.Label, i)
	}
	for i, s := range p.Specs {
		b.Queue(insertSpecSQL, p.ID, s.Name, s.Values, i)
	}

	err := pgx.BeginFunc(ctx, w.pool, func(tx pgx.Tx) error {
		return tx.SendBatch(ctx, b).Close()
	})
	if err != nil {
		return errors.Wrapf(err, "upsert product %q", p.ID)
	}
	return nil
}

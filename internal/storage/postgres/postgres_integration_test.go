//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/xenking/kart-sku/internal/domain/order"
	"github.com/xenking/kart-sku/internal/domain/product"
	"github.com/xenking/kart-sku/internal/domain/sku"
)

func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:17-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "store",
				"POSTGRES_PASSWORD": "store",
				"POSTGRES_DB":       "store",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	url := fmt.Sprintf("postgres://store:store@%s:%s/store?sslmode=disable", host, port.Port())
	pool, err := NewPool(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, RunMigrations(ctx, pool))
	return pool
}

func seedShirt() *product.Product {
	return &product.Product{
		ID:          "tee",
		Name:        "T-Shirt",
		Category:    "apparel",
		Price:       decimal.RequireFromString("9.00"),
		Stock:       8,
		Image:       "tee.jpg",
		HasVariants: true,
		PriceRange:  &sku.PriceRange{Min: decimal.RequireFromString("10"), Max: decimal.RequireFromString("12")},
		Dimensions: []sku.Dimension{
			{ID: "color", Name: "Color", Values: []sku.Value{
				{ID: "red", Label: "Red", Image: "red.jpg"},
				{ID: "blue", Label: "Blue"},
			}},
			{ID: "size", Name: "Size", Values: []sku.Value{{ID: "s", Label: "S"}, {ID: "l", Label: "L"}}},
		},
		Variants: []sku.Variant{
			{ID: "tee-red-s", Key: sku.ListKey("red", "s"), Price: decimal.RequireFromString("10"), Stock: 5, Label: "Red / S"},
			{ID: "tee-red-l", Key: sku.TextKey("red,l"), Price: decimal.RequireFromString("12"), Stock: 0},
			{ID: "tee-blue-s", Key: sku.ListKey("blue", "s"), Price: decimal.RequireFromString("11"), ScorePrice: decimal.RequireFromString("80"), Stock: 3},
		},
	}
}

func TestProductRepository_RoundTrip(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()

	writer := NewCatalogWriter(pool)
	require.NoError(t, writer.Upsert(ctx, seedShirt()))
	require.NoError(t, writer.Upsert(ctx, &product.Product{
		ID:    "tea",
		Name:  "Tea",
		Price: decimal.RequireFromString("4.50"),
		Stock: 2,
		Specs: []sku.LegacyDimension{{Name: "Flavor", Values: []string{"Mint", "Lemon"}}},
	}))

	repo := NewProductRepository(pool)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "tea", list[0].ID)

	p, err := repo.GetByID(ctx, "tee")
	require.NoError(t, err)
	require.Len(t, p.Dimensions, 2)
	assert.Equal(t, []string{"red", "blue"}, []string{p.Dimensions[0].Values[0].ID, p.Dimensions[0].Values[1].ID})
	require.Len(t, p.Variants, 3)
	require.NotNil(t, p.PriceRange)
	assert.True(t, decimal.RequireFromString("12").Equal(p.PriceRange.Max))

	c := sku.NewCatalog(p.Dimensions, p.Variants)
	v, ok := c.Match(sku.Selection{"color": "blue", "size": "s"})
	require.True(t, ok)
	assert.True(t, decimal.RequireFromString("80").Equal(v.ScorePrice))
	_, ok = c.Match(sku.Selection{"color": "red", "size": "l"})
	assert.False(t, ok)

	tea, err := repo.GetByID(ctx, "tea")
	require.NoError(t, err)
	assert.Empty(t, tea.Variants)
	assert.Equal(t, []sku.LegacyDimension{{Name: "Flavor", Values: []string{"Mint", "Lemon"}}}, tea.Specs)

	_, err = repo.GetByID(ctx, "missing")
	require.ErrorIs(t, err, product.ErrNotFound)
}

func TestProductRepository_UpsertReplacesChildren(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()
	writer := NewCatalogWriter(pool)

	p := seedShirt()
	require.NoError(t, writer.Upsert(ctx, p))

	p.Variants = p.Variants[:1]
	p.PriceRange = nil
	require.NoError(t, writer.Upsert(ctx, p))

	got, err := NewProductRepository(pool).GetByID(ctx, "tee")
	require.NoError(t, err)
	assert.Len(t, got.Variants, 1)
	assert.Nil(t, got.PriceRange)
}

func TestOrderRepository_Create(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()

	o := &order.Order{
		ID: "order-1",
		Items: []order.OrderItem{{
			ProductID: "tee",
			VariantID: "tee-red-s",
			Quantity:  2,
			UnitPrice: decimal.RequireFromString("10"),
			Spec:      map[string]string{"Color": "Red", "Size": "S"},
		}},
		Total:     decimal.RequireFromString("20"),
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, NewOrderRepository(pool).Create(ctx, o))

	var spec string
	err := pool.QueryRow(ctx, `SELECT items->0->'spec'->>'Size' FROM orders WHERE id = $1`, o.ID).Scan(&spec)
	require.NoError(t, err)
	assert.Equal(t, "S", spec)
}

package postgres

import (
	"context"
	"testing"

	"github.com/go-faster/sdk/zctx"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// variantRow is a single variants row as returned by listVariantsSQL.
type variantRow struct {
	id    string
	key   []byte
	price decimal.Decimal
	stock int
}

func (r variantRow) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r variantRow) Values() ([]any, error)                       { return nil, nil }
func (r variantRow) RawValues() [][]byte                          { return nil }

func (r variantRow) Scan(dest ...any) error {
	*dest[0].(*string) = r.id
	*dest[1].(*[]byte) = r.key
	*dest[2].(*decimal.Decimal) = r.price
	*dest[3].(*decimal.Decimal) = decimal.Zero
	*dest[4].(*int) = r.stock
	*dest[5].(*string) = ""
	*dest[6].(*string) = ""
	return nil
}

func TestScanVariant(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		wantKey    string
		wantLogged bool
	}{
		{name: "list key", key: `["red","s"]`, wantKey: "red,s"},
		{name: "text key", key: `"red,s"`, wantKey: "red,s"},
		{name: "broken key", key: `["red",`, wantKey: "", wantLogged: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			ctx := zctx.Base(context.Background(), zap.New(core))

			v, err := scanVariant(ctx, "tee")(variantRow{
				id:    "tee-red-s",
				key:   []byte(tt.key),
				price: decimal.RequireFromString("10"),
				stock: 5,
			})

			require.NoError(t, err)
			assert.Equal(t, "tee-red-s", v.ID)
			assert.Equal(t, tt.wantKey, v.Key.Canonical())
			if !tt.wantLogged {
				assert.Zero(t, logs.Len())
				return
			}
			entries := logs.FilterMessage("Undecodable variant key").All()
			require.Len(t, entries, 1)
			fields := entries[0].ContextMap()
			assert.Equal(t, "tee", fields["product_id"])
			assert.Equal(t, "tee-red-s", fields["variant_id"])
		})
	}
}

package catalogfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/kart-sku/internal/domain/product"
	"github.com/xenking/kart-sku/internal/domain/sku"
)

const shirtJSON = `[{
	"id": "tee",
	"name": "T-Shirt",
	"price": "9.00",
	"stock": 8,
	"hasStructuredVariants": true,
	"priceRange": {"min": 10, "max": 12.5},
	"specDimensions": [
		{"id": "color", "name": "Color", "values": [{"id": "red", "value": "Red", "image": "red.jpg"}]},
		{"id": "size", "name": "Size", "values": [{"id": 1, "value": "S"}, {"id": 2, "value": "L"}]}
	],
	"variants": [
		{"id": "tee-red-s", "variantKey": ["red", 1], "price": 10, "stock": 5, "variantLabel": "Red / S"},
		{"id": "tee-red-l", "variantKey": "red,2", "price": 12.5, "scorePrice": null, "stock": 0, "image": null},
		{"id": "tee-bad", "variantKey": {"oops": true}, "price": 1, "stock": 1}
	],
	"unknown": {"nested": [1, 2, 3]}
}]`

func TestDecode(t *testing.T) {
	products, err := Decode(strings.NewReader(shirtJSON))
	require.NoError(t, err)
	require.Len(t, products, 1)

	p := products[0]
	assert.Equal(t, "tee", p.ID)
	assert.True(t, decimal.RequireFromString("9").Equal(p.Price))
	assert.True(t, p.HasVariants)
	require.NotNil(t, p.PriceRange)
	assert.True(t, decimal.RequireFromString("12.5").Equal(p.PriceRange.Max))

	require.Len(t, p.Dimensions, 2)
	assert.Equal(t, sku.Value{ID: "red", Label: "Red", Image: "red.jpg"}, p.Dimensions[0].Values[0])
	assert.Equal(t, "1", p.Dimensions[1].Values[0].ID)

	require.Len(t, p.Variants, 3)
	assert.Equal(t, "red,1", p.Variants[0].Key.Canonical())
	assert.Equal(t, "Red / S", p.Variants[0].Label)
	assert.Equal(t, "red,2", p.Variants[1].Key.Canonical())
	assert.True(t, p.Variants[1].ScorePrice.IsZero())
	assert.True(t, p.Variants[2].Key.IsZero())

	c := sku.NewCatalog(p.Dimensions, p.Variants)
	v, ok := c.Match(sku.Selection{"color": "red", "size": "1"})
	require.True(t, ok)
	assert.Equal(t, "tee-red-s", v.ID)
}

func TestDecode_Legacy(t *testing.T) {
	products, err := Decode(strings.NewReader(`[{"id":"tea","price":4.5,"stock":2,
		"specs":[{"name":"Flavor","values":["Mint","Lemon"]}]}]`))
	require.NoError(t, err)

	assert.Equal(t, []sku.LegacyDimension{{Name: "Flavor", Values: []string{"Mint", "Lemon"}}}, products[0].Specs)
	assert.False(t, products[0].Item().Structured())
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		is    error
	}{
		{name: "not an array", input: `{"id":"x"}`},
		{name: "missing id", input: `[{"name":"x"}]`, is: ErrMissingID},
		{name: "bad price", input: `[{"id":"x","price":"ten"}]`},
		{name: "truncated", input: `[{"id":"x"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input))
			require.Error(t, err)
			if tt.is != nil {
				require.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()

	if !strings.HasSuffix(name, ".gz") {
		_, err = f.WriteString(content)
		require.NoError(t, err)
		return path
	}
	gz := pgzip.NewWriter(f)
	_, err = gz.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "a.json.gz", `[{"id":"tee","name":"first"},{"id":"mug"}]`)
	second := writeFile(t, dir, "b.json", `[{"id":"tee","name":"second"},{"id":"cap"},{"id":"tee"}]`)

	c, err := Load(context.Background(), []string{first, second})
	require.NoError(t, err)

	ids := make([]string, len(c.Products))
	for i, p := range c.Products {
		ids[i] = p.ID
	}
	assert.Equal(t, []string{"tee", "mug", "cap"}, ids)
	assert.Equal(t, "first", c.Products[0].Name)
	assert.Equal(t, map[string]int{"tee": 3}, c.Duplicates)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.json", `[]`)
	bad := writeFile(t, dir, "bad.json", `nope`)

	_, err := Load(context.Background(), []string{good, bad})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.json")

	_, err = Load(context.Background(), []string{filepath.Join(dir, "missing.json")})
	require.Error(t, err)

	notGzip := writeFile(t, dir, "plain.json", `[]`)
	require.NoError(t, os.Rename(notGzip, notGzip+".gz"))
	_, err = Load(context.Background(), []string{notGzip + ".gz"})
	require.Error(t, err)
}

func TestDuplicates_NoneFound(t *testing.T) {
	assert.Nil(t, duplicates([]product.Product{{ID: "a"}, {ID: "b"}}))
	assert.Nil(t, duplicates(nil))
}

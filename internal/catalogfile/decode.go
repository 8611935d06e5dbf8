// Package catalogfile reads product catalogs exported by the upstream
// catalog service. A file holds a JSON array of products; variant keys may be
// lists or comma-delimited strings.
package catalogfile

import (
	"io"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-sku/internal/domain/product"
	"github.com/xenking/kart-sku/internal/domain/sku"
)

const readBufSize = 64 << 10

// ErrMissingID is returned for a product without an id.
var ErrMissingID = errors.New("product id is required")

// Decode reads a JSON array of products from r.
func Decode(r io.Reader) ([]product.Product, error) {
	d := jx.Decode(r, readBufSize)
	var out []product.Product
	err := d.Arr(func(d *jx.Decoder) error {
		p, err := decodeProduct(d)
		if err != nil {
			return errors.Wrapf(err, "product #%d", len(out))
		}
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func decodeProduct(d *jx.Decoder) (product.Product, error) {
	var p product.Product
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "id":
			p.ID, err = d.Str()
		case "name":
			p.Name, err = d.Str()
		case "category":
			p.Category, err = d.Str()
		case "price":
			p.Price, err = decodeDecimal(d)
		case "scorePrice":
			p.ScorePrice, err = decodeDecimal(d)
		case "stock":
			p.Stock, err = d.Int()
		case "image":
			p.Image, err = d.Str()
		case "hasStructuredVariants", "hasVariants":
			p.HasVariants, err = d.Bool()
		case "priceRange":
			p.PriceRange, err = decodePriceRange(d)
		case "specDimensions", "dimensions":
			err = d.Arr(func(d *jx.Decoder) error {
				dim, err := decodeDimension(d)
				p.Dimensions = append(p.Dimensions, dim)
				return err
			})
		case "variants", "skus":
			err = d.Arr(func(d *jx.Decoder) error {
				v, err := decodeVariant(d)
				p.Variants = append(p.Variants, v)
				return err
			})
		case "specs":
			err = d.Arr(func(d *jx.Decoder) error {
				s, err := decodeSpec(d)
				p.Specs = append(p.Specs, s)
				return err
			})
		default:
			err = d.Skip()
		}
		return wrapField(err, string(key))
	})
	if err == nil && p.ID == "" {
		err = ErrMissingID
	}
	return p, err
}

func decodeDimension(d *jx.Decoder) (sku.Dimension, error) {
	var dim sku.Dimension
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "id":
			dim.ID, err = decodeID(d)
		case "name":
			dim.Name, err = d.Str()
		case "values":
			err = d.Arr(func(d *jx.Decoder) error {
				v, err := decodeValue(d)
				dim.Values = append(dim.Values, v)
				return err
			})
		default:
			err = d.Skip()
		}
		return wrapField(err, string(key))
	})
	return dim, wrapField(err, "dimension")
}

func decodeValue(d *jx.Decoder) (sku.Value, error) {
	var v sku.Value
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "id":
			v.ID, err = decodeID(d)
		case "value", "label":
			v.Label, err = d.Str()
		case "image":
			v.Image, err = decodeOptionalStr(d)
		default:
			err = d.Skip()
		}
		return wrapField(err, string(key))
	})
	return v, wrapField(err, "value")
}

func decodeVariant(d *jx.Decoder) (sku.Variant, error) {
	var v sku.Variant
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "id":
			v.ID, err = decodeID(d)
		case "variantKey", "key":
			err = v.Key.Decode(d)
		case "price":
			v.Price, err = decodeDecimal(d)
		case "scorePrice":
			v.ScorePrice, err = decodeDecimal(d)
		case "stock":
			v.Stock, err = d.Int()
		case "image":
			v.Image, err = decodeOptionalStr(d)
		case "variantLabel", "label":
			v.Label, err = decodeOptionalStr(d)
		default:
			err = d.Skip()
		}
		return wrapField(err, string(key))
	})
	return v, wrapField(err, "variant")
}

func decodeSpec(d *jx.Decoder) (sku.LegacyDimension, error) {
	var s sku.LegacyDimension
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "name":
			s.Name, err = d.Str()
		case "values":
			err = d.Arr(func(d *jx.Decoder) error {
				v, err := d.Str()
				s.Values = append(s.Values, v)
				return err
			})
		default:
			err = d.Skip()
		}
		return wrapField(err, string(key))
	})
	return s, wrapField(err, "spec")
}

func decodePriceRange(d *jx.Decoder) (*sku.PriceRange, error) {
	if d.Next() == jx.Null {
		return nil, d.Null()
	}
	var r sku.PriceRange
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "min":
			r.Min, err = decodeDecimal(d)
		case "max":
			r.Max, err = decodeDecimal(d)
		default:
			err = d.Skip()
		}
		return err
	})
	return &r, err
}

// decodeDecimal accepts numbers, numeric strings and null (zero).
func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	if d.Next() == jx.Null {
		return decimal.Zero, d.Null()
	}
	n, err := d.Num()
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(strings.Trim(n.String(), `"`))
}

// decodeID accepts string or numeric ids.
func decodeID(d *jx.Decoder) (string, error) {
	if d.Next() == jx.Number {
		n, err := d.Num()
		return n.String(), err
	}
	return d.Str()
}

func decodeOptionalStr(d *jx.Decoder) (string, error) {
	if d.Next() == jx.Null {
		return "", d.Null()
	}
	return d.Str()
}

// wrapField prefixes a non-nil err with the field it came from.
func wrapField(err error, name string) error {
	if err != nil {
		return errors.Wrap(err, name)
	}
	return nil
}

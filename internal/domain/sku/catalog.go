package sku

import "strings"

// Catalog is an immutable, normalized snapshot of one product's dimensions and
// variants. It is safe for concurrent use.
type Catalog struct {
	dims     []Dimension
	position map[string]int
	variants []Variant
	// keys holds each variant's canonical key split into value-ids.
	keys [][]string
}

// NewCatalog normalizes every variant once so later stages only ever compare
// canonical keys.
func NewCatalog(dims []Dimension, variants []Variant) *Catalog {
	c := &Catalog{
		dims:     dims,
		position: make(map[string]int, len(dims)),
		variants: make([]Variant, len(variants)),
		keys:     make([][]string, len(variants)),
	}
	for i, d := range dims {
		c.position[d.ID] = i
	}
	for i, v := range variants {
		v = Normalize(v)
		c.variants[i] = v
		c.keys[i] = strings.Split(v.Key.Canonical(), keySep)
	}
	return c
}

// Dimensions returns the product's dimensions in display order.
func (c *Catalog) Dimensions() []Dimension {
	return c.dims
}

// Variants returns the normalized variants.
func (c *Catalog) Variants() []Variant {
	return c.variants
}

// Dimension returns the dimension with the given id.
func (c *Catalog) Dimension(id string) (Dimension, bool) {
	i, ok := c.position[id]
	if !ok {
		return Dimension{}, false
	}
	return c.dims[i], true
}

// Variant returns the variant with the given id regardless of stock.
func (c *Catalog) Variant(id string) (Variant, bool) {
	for _, v := range c.variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

// Sanitize drops entries that do not name a known dimension and one of its
// values.
func (c *Catalog) Sanitize(sel Selection) Selection {
	out := make(Selection, len(sel))
	for dimID, valueID := range sel {
		d, ok := c.Dimension(dimID)
		if !ok {
			continue
		}
		if _, ok := d.value(valueID); ok {
			out[dimID] = valueID
		}
	}
	return out
}

// SelectionOf returns the selection a variant's key implies. Positions that
// are missing or name no known value stay unselected.
func (c *Catalog) SelectionOf(v Variant) Selection {
	key := strings.Split(v.Key.Canonical(), keySep)
	sel := make(Selection, len(c.dims))
	for i, d := range c.dims {
		if i >= len(key) {
			break
		}
		if _, ok := d.value(key[i]); ok {
			sel[d.ID] = key[i]
		}
	}
	return sel
}

// Match returns the in-stock variant whose key equals the selection tuple.
// Partial selections never match, and a zero-stock variant is treated as
// absent even when its key matches. Duplicate keys are a data error; the first
// in-stock variant wins.
func (c *Catalog) Match(sel Selection) (Variant, bool) {
	if len(c.dims) == 0 {
		return Variant{}, false
	}
	ids := make([]string, len(c.dims))
	for i, d := range c.dims {
		id, ok := sel[d.ID]
		if !ok {
			return Variant{}, false
		}
		ids[i] = id
	}
	target := strings.Join(ids, keySep)

	for _, v := range c.variants {
		if v.Key.Canonical() == target && v.InStock() {
			return v, true
		}
	}
	return Variant{}, false
}

// Selectable reports whether choosing valueID for dimensionID, while keeping
// every other current choice, still leaves an in-stock variant reachable.
// Dimensions without a choice impose no constraint. Unknown dimensions are
// never selectable.
func (c *Catalog) Selectable(sel Selection, dimensionID, valueID string) bool {
	if _, ok := c.position[dimensionID]; !ok {
		return false
	}
	for i, v := range c.variants {
		if !v.InStock() {
			continue
		}
		if c.supports(c.keys[i], sel, dimensionID, valueID) {
			return true
		}
	}
	return false
}

// supports reports whether key agrees with sel after forcing dimensionID to
// valueID.
func (c *Catalog) supports(key []string, sel Selection, dimensionID, valueID string) bool {
	for i, d := range c.dims {
		want, ok := sel[d.ID]
		if d.ID == dimensionID {
			want, ok = valueID, true
		}
		if !ok {
			continue
		}
		if i >= len(key) || key[i] != want {
			return false
		}
	}
	return true
}

// carries reports whether the variant at index i has valueID at the position
// of the dimension.
func (c *Catalog) carries(i, pos int, valueID string) bool {
	key := c.keys[i]
	return pos < len(key) && key[pos] == valueID
}

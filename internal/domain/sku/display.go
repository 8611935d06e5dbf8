package sku

import "github.com/shopspring/decimal"

// PriceDisplay is either a single amount (Min equals Max) or a min–max range.
// The zero value is "nothing to show".
type PriceDisplay struct {
	Min   decimal.Decimal
	Max   decimal.Decimal
	Valid bool
}

// Exact returns a single-amount display.
func Exact(d decimal.Decimal) PriceDisplay {
	return PriceDisplay{Min: d, Max: d, Valid: true}
}

// Span returns a display covering [lo, hi], collapsing to a single amount when
// both bounds are equal.
func Span(lo, hi decimal.Decimal) PriceDisplay {
	if hi.LessThan(lo) {
		lo, hi = hi, lo
	}
	return PriceDisplay{Min: lo, Max: hi, Valid: true}
}

// IsRange reports whether the display covers more than one amount.
func (p PriceDisplay) IsRange() bool {
	return p.Valid && !p.Min.Equal(p.Max)
}

// String renders "10" or "10-20". Currency formatting is left to the caller.
func (p PriceDisplay) String() string {
	if !p.Valid {
		return ""
	}
	if p.IsRange() {
		return p.Min.String() + "-" + p.Max.String()
	}
	return p.Min.String()
}

// Flat holds product-level fields used when no variant decides the answer.
type Flat struct {
	Price      decimal.Decimal
	ScorePrice decimal.Decimal
	Stock      int
	Image      string
	// PriceRange is consulted only while nothing is selected.
	PriceRange *PriceRange
}

// Display is what a chooser shows for the current selection.
type Display struct {
	Price      PriceDisplay
	ScorePrice PriceDisplay
	Stock      int
	Image      string
}

// Hint summarizes the variants carrying one value, for unselected chips.
type Hint struct {
	Min decimal.Decimal
	Max decimal.Decimal
	// Found is false when no carrying variant has a positive amount.
	Found bool
	// Score is true when any carrying variant is priced in the secondary
	// currency.
	Score bool
}

// Price returns the hint as a display value.
func (h Hint) Price() PriceDisplay {
	if !h.Found {
		return PriceDisplay{}
	}
	return Span(h.Min, h.Max)
}

// Display derives price, score-price, stock and image for sel. matched is the
// result of Match and may be nil.
func (c *Catalog) Display(sel Selection, matched *Variant, flat Flat) Display {
	return Display{
		Price:      c.displayPrice(sel, matched, flat),
		ScorePrice: c.displayScorePrice(matched, flat),
		Stock:      displayStock(matched, flat),
		Image:      c.displayImage(sel, matched, flat),
	}
}

func (c *Catalog) displayPrice(sel Selection, matched *Variant, flat Flat) PriceDisplay {
	if matched != nil {
		return Exact(matched.Price)
	}
	if d, valueID, ok := c.firstSelected(sel); ok {
		if r, ok := c.priceSpan(c.position[d.ID], valueID); ok {
			return r
		}
		return Exact(flat.Price)
	}
	if flat.PriceRange != nil {
		return Span(flat.PriceRange.Min, flat.PriceRange.Max)
	}
	return Exact(flat.Price)
}

// priceSpan returns the min–max of positive primary prices among variants
// carrying valueID at pos.
func (c *Catalog) priceSpan(pos int, valueID string) (PriceDisplay, bool) {
	var lo, hi decimal.Decimal
	found := false
	for i, v := range c.variants {
		if !c.carries(i, pos, valueID) || !v.Price.IsPositive() {
			continue
		}
		if !found {
			lo, hi, found = v.Price, v.Price, true
			continue
		}
		lo = decimal.Min(lo, v.Price)
		hi = decimal.Max(hi, v.Price)
	}
	if !found {
		return PriceDisplay{}, false
	}
	return Span(lo, hi), true
}

// displayScorePrice ignores the selection when nothing matched; every variant
// with a positive score-price contributes.
func (c *Catalog) displayScorePrice(matched *Variant, flat Flat) PriceDisplay {
	if matched != nil {
		if matched.ScorePrice.IsPositive() {
			return Exact(matched.ScorePrice)
		}
		return PriceDisplay{}
	}

	var lo, hi decimal.Decimal
	found := false
	for _, v := range c.variants {
		if !v.ScorePrice.IsPositive() {
			continue
		}
		if !found {
			lo, hi, found = v.ScorePrice, v.ScorePrice, true
			continue
		}
		lo = decimal.Min(lo, v.ScorePrice)
		hi = decimal.Max(hi, v.ScorePrice)
	}
	if found {
		return Span(lo, hi)
	}
	if flat.ScorePrice.IsPositive() {
		return Exact(flat.ScorePrice)
	}
	return PriceDisplay{}
}

func displayStock(matched *Variant, flat Flat) int {
	if matched != nil {
		return matched.Stock
	}
	return flat.Stock
}

func (c *Catalog) displayImage(sel Selection, matched *Variant, flat Flat) string {
	if matched != nil && matched.Image != "" {
		return matched.Image
	}
	for _, d := range c.dims {
		id, ok := sel[d.ID]
		if !ok {
			continue
		}
		if v, ok := d.value(id); ok && v.Image != "" {
			return v.Image
		}
	}
	return flat.Image
}

// firstSelected returns the first dimension, in dimension order, that has a
// choice in sel.
func (c *Catalog) firstSelected(sel Selection) (Dimension, string, bool) {
	for _, d := range c.dims {
		if id, ok := sel[d.ID]; ok {
			return d, id, true
		}
	}
	return Dimension{}, "", false
}

// Hint reports the amount range of variants carrying valueID in dimensionID,
// regardless of other dimensions. Each variant contributes its score-price
// when positive, its price otherwise.
func (c *Catalog) Hint(dimensionID, valueID string) Hint {
	pos, ok := c.position[dimensionID]
	if !ok {
		return Hint{}
	}
	var h Hint
	for i, v := range c.variants {
		if !c.carries(i, pos, valueID) {
			continue
		}
		amount := v.Price
		if v.ScorePrice.IsPositive() {
			h.Score = true
			amount = v.ScorePrice
		}
		if !amount.IsPositive() {
			continue
		}
		if !h.Found {
			h.Min, h.Max, h.Found = amount, amount, true
			continue
		}
		h.Min = decimal.Min(h.Min, amount)
		h.Max = decimal.Max(h.Max, amount)
	}
	return h
}

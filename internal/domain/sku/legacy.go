package sku

import "strings"

// LegacyDimension is a flat spec for products without structured variants:
// plain string values, no per-combination price or stock.
type LegacyDimension struct {
	Name   string
	Values []string
}

func (d LegacyDimension) has(value string) bool {
	for _, v := range d.Values {
		if v == value {
			return true
		}
	}
	return false
}

// LegacySelection maps dimension name to the chosen value string.
type LegacySelection map[string]string

// Clone returns an independent copy of s.
func (s LegacySelection) Clone() LegacySelection {
	out := make(LegacySelection, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// CanPurchaseLegacy reports whether every dimension has a listed value chosen
// and the product's flat stock is positive.
func CanPurchaseLegacy(specs []LegacyDimension, sel LegacySelection, stock int) bool {
	if stock <= 0 {
		return false
	}
	for _, d := range specs {
		v, ok := sel[d.Name]
		if !ok || !d.has(v) {
			return false
		}
	}
	return true
}

// SanitizeLegacy keeps only entries naming a known dimension and one of its
// values.
func SanitizeLegacy(specs []LegacyDimension, sel LegacySelection) LegacySelection {
	out := make(LegacySelection, len(sel))
	for _, d := range specs {
		if v, ok := sel[d.Name]; ok && d.has(v) {
			out[d.Name] = v
		}
	}
	return out
}

// LegacySummaryText joins chosen values in spec order.
func LegacySummaryText(specs []LegacyDimension, sel LegacySelection) string {
	values := make([]string, 0, len(sel))
	for _, d := range specs {
		if v, ok := sel[d.Name]; ok {
			values = append(values, v)
		}
	}
	return strings.Join(values, SummarySep)
}

// LegacySummaryMap returns the chosen values keyed by dimension name.
func LegacySummaryMap(specs []LegacyDimension, sel LegacySelection) map[string]string {
	out := make(map[string]string, len(sel))
	for _, d := range specs {
		if v, ok := sel[d.Name]; ok {
			out[d.Name] = v
		}
	}
	return out
}

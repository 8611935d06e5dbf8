package sku

import "strings"

// SummarySep separates value labels in a summary line.
const SummarySep = " / "

// SummaryText names the current choice. A matched variant's own label wins;
// otherwise the labels of selected values are joined in dimension order and
// unselected dimensions are left out.
func (c *Catalog) SummaryText(matched *Variant, sel Selection) string {
	if matched != nil && matched.Label != "" {
		return matched.Label
	}
	labels := make([]string, 0, len(sel))
	for _, d := range c.dims {
		id, ok := sel[d.ID]
		if !ok {
			continue
		}
		if v, ok := d.value(id); ok {
			labels = append(labels, v.Label)
		}
	}
	return strings.Join(labels, SummarySep)
}

// SummaryMap maps dimension name to value label for every selected dimension,
// for attaching to an order line.
func (c *Catalog) SummaryMap(sel Selection) map[string]string {
	out := make(map[string]string, len(sel))
	for _, d := range c.dims {
		id, ok := sel[d.ID]
		if !ok {
			continue
		}
		if v, ok := d.value(id); ok {
			out[d.Name] = v.Label
		}
	}
	return out
}

package sku

import "github.com/go-faster/errors"

// Mode tells which resolution strategy a session uses. It is decided once,
// when the session opens.
type Mode string

const (
	// ModeStructured resolves through dimensions and variants.
	ModeStructured Mode = "structured"
	// ModeLegacy resolves flat name/value specs against product stock.
	ModeLegacy Mode = "legacy"
)

type state uint8

const (
	stateOpen state = iota
	stateConfirmed
	stateClosed
)

// Session is one opening of the chooser for a product. It holds the only
// mutable state in this package: the selection and the quantity.
type Session interface {
	Mode() Mode
	// Toggle selects value in dimension, or clears the dimension when value is
	// already selected there.
	Toggle(dimension, value string) error
	// SetQuantity clamps n to [1, max(stock, 1)] and returns what was applied.
	SetQuantity(n int) int
	View() View
	// Confirm ends the session and returns what the order collaborator needs.
	// It does not reject incomplete choices; check View().CanBuy first.
	Confirm() (Confirmation, error)
	Close()
}

// Confirmation is emitted when the user confirms the chooser.
type Confirmation struct {
	Quantity int
	// Spec maps dimension name to chosen label. Nil when nothing applies.
	Spec map[string]string
	// VariantID is set only on a full structured match.
	VariantID string
}

// View is the derived state a chooser renders.
type View struct {
	Mode     Mode
	Variant  *Variant
	Display  Display
	Summary  string
	Spec     map[string]string
	Groups   []Group
	Quantity int
	CanBuy   bool
}

// Group is one dimension as rendered.
type Group struct {
	ID      string
	Name    string
	Options []Option
}

// Option is one value chip.
type Option struct {
	ID         string
	Label      string
	Image      string
	Selected   bool
	Selectable bool
	Hint       Hint
}

// Open starts a session for item. Structured mode is used when the item has
// both dimensions and variants. pre seeds the selection; in legacy mode its
// keys are dimension names and its values are value strings. Entries that do
// not name a known dimension and value are dropped.
func Open(item Item, pre Selection) Session {
	flat := Flat{
		Price:      item.Price,
		ScorePrice: item.ScorePrice,
		Stock:      item.Stock,
		Image:      item.Image,
		PriceRange: item.PriceRange,
	}
	if item.Structured() {
		c := NewCatalog(item.Dimensions, item.Variants)
		return &StructuredSession{
			catalog:  c,
			flat:     flat,
			sel:      c.Sanitize(pre),
			quantity: 1,
		}
	}
	legacy := make(LegacySelection, len(pre))
	for k, v := range pre {
		legacy[k] = v
	}
	return &LegacySession{
		specs:    item.Specs,
		flat:     flat,
		sel:      SanitizeLegacy(item.Specs, legacy),
		quantity: 1,
	}
}

// StructuredSession resolves selections against a Catalog.
type StructuredSession struct {
	catalog  *Catalog
	flat     Flat
	sel      Selection
	quantity int
	state    state
}

var _ Session = (*StructuredSession)(nil)

// Mode implements Session.
func (s *StructuredSession) Mode() Mode { return ModeStructured }

// Catalog returns the normalized catalog the session resolves against.
func (s *StructuredSession) Catalog() *Catalog { return s.catalog }

// Selection returns a copy of the current selection.
func (s *StructuredSession) Selection() Selection { return s.sel.Clone() }

// Toggle implements Session.
func (s *StructuredSession) Toggle(dimension, value string) error {
	if s.state != stateOpen {
		return ErrSessionClosed
	}
	d, ok := s.catalog.Dimension(dimension)
	if !ok {
		return errors.Wrapf(ErrUnknownDimension, "%q", dimension)
	}
	if _, ok := d.value(value); !ok {
		return errors.Wrapf(ErrUnknownValue, "%q in %q", value, dimension)
	}
	if s.sel[dimension] == value {
		delete(s.sel, dimension)
	} else {
		s.sel[dimension] = value
	}
	s.quantity = clampQuantity(s.quantity, s.stock())
	return nil
}

// SetQuantity implements Session.
func (s *StructuredSession) SetQuantity(n int) int {
	if s.state == stateOpen {
		s.quantity = clampQuantity(n, s.stock())
	}
	return s.quantity
}

func (s *StructuredSession) matched() *Variant {
	v, ok := s.catalog.Match(s.sel)
	if !ok {
		return nil
	}
	return &v
}

func (s *StructuredSession) stock() int {
	return displayStock(s.matched(), s.flat)
}

// View implements Session.
func (s *StructuredSession) View() View {
	c := s.catalog
	m := s.matched()

	groups := make([]Group, len(c.dims))
	for i, d := range c.dims {
		g := Group{ID: d.ID, Name: d.Name, Options: make([]Option, len(d.Values))}
		for j, v := range d.Values {
			g.Options[j] = Option{
				ID:         v.ID,
				Label:      v.Label,
				Image:      v.Image,
				Selected:   s.sel[d.ID] == v.ID,
				Selectable: c.Selectable(s.sel, d.ID, v.ID),
				Hint:       c.Hint(d.ID, v.ID),
			}
		}
		groups[i] = g
	}

	return View{
		Mode:     ModeStructured,
		Variant:  m,
		Display:  c.Display(s.sel, m, s.flat),
		Summary:  c.SummaryText(m, s.sel),
		Spec:     c.SummaryMap(s.sel),
		Groups:   groups,
		Quantity: s.quantity,
		CanBuy:   m != nil,
	}
}

// Confirm implements Session.
func (s *StructuredSession) Confirm() (Confirmation, error) {
	if s.state != stateOpen {
		return Confirmation{}, ErrSessionClosed
	}
	s.state = stateConfirmed

	out := Confirmation{Quantity: s.quantity}
	if spec := s.catalog.SummaryMap(s.sel); len(spec) > 0 {
		out.Spec = spec
	}
	if m := s.matched(); m != nil {
		out.VariantID = m.ID
	}
	return out, nil
}

// Close implements Session.
func (s *StructuredSession) Close() { s.state = stateClosed }

// LegacySession resolves flat specs. Every listed value is always selectable.
type LegacySession struct {
	specs    []LegacyDimension
	flat     Flat
	sel      LegacySelection
	quantity int
	state    state
}

var _ Session = (*LegacySession)(nil)

// Mode implements Session.
func (s *LegacySession) Mode() Mode { return ModeLegacy }

// Selection returns a copy of the current selection.
func (s *LegacySession) Selection() LegacySelection { return s.sel.Clone() }

// Toggle implements Session. dimension is the spec name.
func (s *LegacySession) Toggle(dimension, value string) error {
	if s.state != stateOpen {
		return ErrSessionClosed
	}
	var spec *LegacyDimension
	for i := range s.specs {
		if s.specs[i].Name == dimension {
			spec = &s.specs[i]
			break
		}
	}
	if spec == nil {
		return errors.Wrapf(ErrUnknownDimension, "%q", dimension)
	}
	if !spec.has(value) {
		return errors.Wrapf(ErrUnknownValue, "%q in %q", value, dimension)
	}
	if s.sel[dimension] == value {
		delete(s.sel, dimension)
	} else {
		s.sel[dimension] = value
	}
	return nil
}

// SetQuantity implements Session.
func (s *LegacySession) SetQuantity(n int) int {
	if s.state == stateOpen {
		s.quantity = clampQuantity(n, s.flat.Stock)
	}
	return s.quantity
}

// View implements Session.
func (s *LegacySession) View() View {
	groups := make([]Group, len(s.specs))
	for i, d := range s.specs {
		g := Group{ID: d.Name, Name: d.Name, Options: make([]Option, len(d.Values))}
		for j, v := range d.Values {
			g.Options[j] = Option{
				ID:         v,
				Label:      v,
				Selected:   s.sel[d.Name] == v,
				Selectable: true,
			}
		}
		groups[i] = g
	}

	display := Display{
		Price: Exact(s.flat.Price),
		Stock: s.flat.Stock,
		Image: s.flat.Image,
	}
	if s.flat.ScorePrice.IsPositive() {
		display.ScorePrice = Exact(s.flat.ScorePrice)
	}

	return View{
		Mode:     ModeLegacy,
		Display:  display,
		Summary:  LegacySummaryText(s.specs, s.sel),
		Spec:     LegacySummaryMap(s.specs, s.sel),
		Groups:   groups,
		Quantity: s.quantity,
		CanBuy:   CanPurchaseLegacy(s.specs, s.sel, s.flat.Stock),
	}
}

// Confirm implements Session.
func (s *LegacySession) Confirm() (Confirmation, error) {
	if s.state != stateOpen {
		return Confirmation{}, ErrSessionClosed
	}
	s.state = stateConfirmed

	out := Confirmation{Quantity: s.quantity}
	if len(s.specs) > 0 {
		out.Spec = LegacySummaryMap(s.specs, s.sel)
	}
	return out, nil
}

// Close implements Session.
func (s *LegacySession) Close() { s.state = stateClosed }

func clampQuantity(n, stock int) int {
	limit := max(stock, 1)
	return min(max(n, 1), limit)
}

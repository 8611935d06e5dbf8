package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/kart-sku/internal/domain/product"
	"github.com/xenking/kart-sku/internal/domain/sku"
)

// ListProducts serves GET /api/product with flat product fields.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		writeInternal(w, r, errors.Wrap(err, "list products"))
		return
	}

	var e jx.Encoder
	e.ArrStart()
	for i := range products {
		e.ObjStart()
		h.encodeProductFields(&e, &products[i])
		e.ObjEnd()
	}
	e.ArrEnd()
	writeJSON(w, http.StatusOK, &e)
}

// GetProduct serves GET /api/product/{productId} including dimensions,
// variants and legacy specs.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), chi.URLParam(r, "productId"))
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeInternal(w, r, errors.Wrap(err, "get product"))
		return
	}

	var e jx.Encoder
	h.encodeProduct(&e, p)
	writeJSON(w, http.StatusOK, &e)
}

func (h *Handler) encodeProductFields(e *jx.Encoder, p *product.Product) {
	e.FieldStart("id")
	e.Str(p.ID)
	e.FieldStart("name")
	e.Str(p.Name)
	e.FieldStart("category")
	e.Str(p.Category)
	e.FieldStart("price")
	encodeDecimal(e, p.Price)
	if p.ScorePrice.IsPositive() {
		e.FieldStart("scorePrice")
		encodeDecimal(e, p.ScorePrice)
	}
	e.FieldStart("stock")
	e.Int(p.Stock)
	e.FieldStart("image")
	e.Str(h.imageURL(p.Image))
	e.FieldStart("hasVariants")
	e.Bool(p.HasVariants)
	if p.PriceRange != nil {
		e.FieldStart("priceRange")
		e.ObjStart()
		e.FieldStart("min")
		encodeDecimal(e, p.PriceRange.Min)
		e.FieldStart("max")
		encodeDecimal(e, p.PriceRange.Max)
		e.ObjEnd()
	}
}

func (h *Handler) encodeProduct(e *jx.Encoder, p *product.Product) {
	e.ObjStart()
	h.encodeProductFields(e, p)

	e.FieldStart("dimensions")
	e.ArrStart()
	for _, d := range p.Dimensions {
		e.ObjStart()
		e.FieldStart("id")
		e.Str(d.ID)
		e.FieldStart("name")
		e.Str(d.Name)
		e.FieldStart("values")
		e.ArrStart()
		for _, v := range d.Values {
			e.ObjStart()
			e.FieldStart("id")
			e.Str(v.ID)
			e.FieldStart("label")
			e.Str(v.Label)
			if v.Image != "" {
				e.FieldStart("image")
				e.Str(h.imageURL(v.Image))
			}
			e.ObjEnd()
		}
		e.ArrEnd()
		e.ObjEnd()
	}
	e.ArrEnd()

	e.FieldStart("variants")
	e.ArrStart()
	for i := range p.Variants {
		h.encodeVariant(e, &p.Variants[i])
	}
	e.ArrEnd()

	e.FieldStart("specs")
	e.ArrStart()
	for _, s := range p.Specs {
		e.ObjStart()
		e.FieldStart("name")
		e.Str(s.Name)
		e.FieldStart("values")
		e.ArrStart()
		for _, v := range s.Values {
			e.Str(v)
		}
		e.ArrEnd()
		e.ObjEnd()
	}
	e.ArrEnd()

	e.ObjEnd()
}

func (h *Handler) encodeVariant(e *jx.Encoder, v *sku.Variant) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(v.ID)
	e.FieldStart("key")
	v.Key.Encode(e)
	e.FieldStart("price")
	encodeDecimal(e, v.Price)
	if v.ScorePrice.IsPositive() {
		e.FieldStart("scorePrice")
		encodeDecimal(e, v.ScorePrice)
	}
	e.FieldStart("stock")
	e.Int(v.Stock)
	if v.Image != "" {
		e.FieldStart("image")
		e.Str(h.imageURL(v.Image))
	}
	if v.Label != "" {
		e.FieldStart("label")
		e.Str(v.Label)
	}
	e.ObjEnd()
}

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/kart-sku/internal/domain/product"
	"github.com/xenking/kart-sku/internal/domain/resolve"
	"github.com/xenking/kart-sku/internal/domain/sku"
)

// Resolve serves POST /api/product/{productId}/resolve. The body replays the
// client's chooser state:
//
//	{"selection":{"color":"red"},"legacy":{"Flavor":"Mint"},
//	 "toggles":[{"dimension":"size","value":"s"}],"quantity":2}
//
// Every field is optional; an empty body renders the initial state.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req, err := decodeResolveRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.ProductID = chi.URLParam(r, "productId")

	res, err := h.resolver.Resolve(r.Context(), req)
	if err != nil {
		var tErr *resolve.ToggleError
		switch {
		case errors.Is(err, product.ErrNotFound):
			writeError(w, http.StatusNotFound, "product not found")
		case errors.As(err, &tErr):
			writeError(w, http.StatusUnprocessableEntity, tErr.Error())
		default:
			writeInternal(w, r, errors.Wrap(err, "resolve"))
		}
		return
	}

	var e jx.Encoder
	h.encodeResult(&e, res)
	writeJSON(w, http.StatusOK, &e)
}

func decodeResolveRequest(body []byte) (resolve.Request, error) {
	var req resolve.Request
	if len(body) == 0 {
		return req, nil
	}
	d := jx.DecodeBytes(body)
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "selection":
			m, err := decodeStringMap(d)
			if err != nil {
				return errors.Wrap(err, "selection")
			}
			req.Selection = m
		case "legacy":
			m, err := decodeStringMap(d)
			if err != nil {
				return errors.Wrap(err, "legacy")
			}
			req.Legacy = m
		case "toggles":
			if d.Next() == jx.Null {
				return d.Null()
			}
			return d.Arr(func(d *jx.Decoder) error {
				t, err := decodeToggle(d)
				if err != nil {
					return errors.Wrap(err, "toggles")
				}
				req.Toggles = append(req.Toggles, t)
				return nil
			})
		case "quantity":
			n, err := d.Int()
			if err != nil {
				return errors.Wrap(err, "quantity")
			}
			req.Quantity = n
		default:
			return d.Skip()
		}
		return nil
	})
	if err != nil {
		return req, errors.Wrap(errBadRequest, err.Error())
	}
	return req, nil
}

func decodeToggle(d *jx.Decoder) (resolve.Toggle, error) {
	var t resolve.Toggle
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "dimension":
			t.Dimension, err = d.Str()
		case "value":
			t.Value, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	})
	if err == nil && (t.Dimension == "" || t.Value == "") {
		err = errors.New("dimension and value are required")
	}
	return t, err
}

func (h *Handler) encodeResult(e *jx.Encoder, res *resolve.Result) {
	v := res.View

	e.ObjStart()
	e.FieldStart("productId")
	e.Str(res.Product.ID)
	e.FieldStart("mode")
	e.Str(string(v.Mode))

	e.FieldStart("variant")
	if v.Variant != nil {
		h.encodeVariant(e, v.Variant)
	} else {
		e.Null()
	}

	e.FieldStart("display")
	e.ObjStart()
	e.FieldStart("price")
	encodePriceDisplay(e, v.Display.Price)
	e.FieldStart("scorePrice")
	encodePriceDisplay(e, v.Display.ScorePrice)
	e.FieldStart("stock")
	e.Int(v.Display.Stock)
	e.FieldStart("image")
	e.Str(h.imageURL(v.Display.Image))
	e.ObjEnd()

	e.FieldStart("summary")
	e.Str(v.Summary)
	e.FieldStart("spec")
	encodeStringMap(e, v.Spec)

	e.FieldStart("groups")
	e.ArrStart()
	for _, g := range v.Groups {
		h.encodeGroup(e, g)
	}
	e.ArrEnd()

	e.FieldStart("quantity")
	e.Int(v.Quantity)
	e.FieldStart("canBuy")
	e.Bool(v.CanBuy)

	e.FieldStart("confirmation")
	encodeConfirmation(e, res.Confirmation)
	e.ObjEnd()
}

func (h *Handler) encodeGroup(e *jx.Encoder, g sku.Group) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(g.ID)
	e.FieldStart("name")
	e.Str(g.Name)
	e.FieldStart("options")
	e.ArrStart()
	for _, o := range g.Options {
		e.ObjStart()
		e.FieldStart("id")
		e.Str(o.ID)
		e.FieldStart("label")
		e.Str(o.Label)
		if o.Image != "" {
			e.FieldStart("image")
			e.Str(h.imageURL(o.Image))
		}
		e.FieldStart("selected")
		e.Bool(o.Selected)
		e.FieldStart("selectable")
		e.Bool(o.Selectable)
		if o.Hint.Found {
			e.FieldStart("hint")
			e.ObjStart()
			e.FieldStart("price")
			encodePriceDisplay(e, o.Hint.Price())
			e.FieldStart("score")
			e.Bool(o.Hint.Score)
			e.ObjEnd()
		}
		e.ObjEnd()
	}
	e.ArrEnd()
	e.ObjEnd()
}

// encodePriceDisplay writes {"min","max","text"} or null.
func encodePriceDisplay(e *jx.Encoder, p sku.PriceDisplay) {
	if !p.Valid {
		e.Null()
		return
	}
	e.ObjStart()
	e.FieldStart("min")
	encodeDecimal(e, p.Min)
	e.FieldStart("max")
	encodeDecimal(e, p.Max)
	e.FieldStart("text")
	e.Str(p.String())
	e.ObjEnd()
}

func encodeConfirmation(e *jx.Encoder, c sku.Confirmation) {
	e.ObjStart()
	e.FieldStart("quantity")
	e.Int(c.Quantity)
	if c.VariantID != "" {
		e.FieldStart("variantId")
		e.Str(c.VariantID)
	}
	if len(c.Spec) > 0 {
		e.FieldStart("spec")
		encodeStringMap(e, c.Spec)
	}
	e.ObjEnd()
}

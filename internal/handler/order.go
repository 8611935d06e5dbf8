package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/kart-sku/internal/domain/order"
)

// PlaceOrder serves POST /api/order. The body is a chooser confirmation:
//
//	{"productId":"tee","quantity":2,"variantId":"tee-red-s","spec":{"Color":"Red"}}
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req, err := decodeOrderRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.orderService.PlaceOrder(r.Context(), req)
	if err != nil {
		if status, ok := orderErrorStatus(err); ok {
			writeError(w, status, err.Error())
			return
		}
		writeInternal(w, r, errors.Wrap(err, "place order"))
		return
	}

	var e jx.Encoder
	encodeOrder(&e, result.Order)
	writeJSON(w, http.StatusOK, &e)
}

func decodeOrderRequest(body []byte) (order.PlaceOrderRequest, error) {
	var req order.PlaceOrderRequest
	err := jx.DecodeBytes(body).ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "productId":
			req.ProductID, err = d.Str()
		case "quantity":
			req.Confirmation.Quantity, err = d.Int()
		case "variantId":
			if d.Next() == jx.Null {
				return d.Null()
			}
			req.Confirmation.VariantID, err = d.Str()
		case "spec":
			req.Confirmation.Spec, err = decodeStringMap(d)
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, string(key))
		}
		return nil
	})
	if err == nil && req.ProductID == "" {
		err = errors.New("productId is required")
	}
	if err != nil {
		return req, errors.Wrap(errBadRequest, err.Error())
	}
	return req, nil
}

// orderErrorStatus maps order validation failures to client error statuses.
func orderErrorStatus(err error) (int, bool) {
	var (
		iqErr  *order.InvalidQuantityError
		pnfErr *order.ProductNotFoundError
		vnfErr *order.VariantNotFoundError
	)
	switch {
	case errors.As(err, &pnfErr):
		return http.StatusNotFound, true
	case errors.As(err, &iqErr),
		errors.As(err, &vnfErr),
		errors.Is(err, order.ErrVariantRequired),
		errors.Is(err, order.ErrOutOfStock),
		errors.Is(err, order.ErrIncompleteSpec):
		return http.StatusUnprocessableEntity, true
	}
	return 0, false
}

func encodeOrder(e *jx.Encoder, o *order.Order) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(o.ID)
	e.FieldStart("items")
	e.ArrStart()
	for _, it := range o.Items {
		e.ObjStart()
		e.FieldStart("productId")
		e.Str(it.ProductID)
		if it.VariantID != "" {
			e.FieldStart("variantId")
			e.Str(it.VariantID)
		}
		e.FieldStart("quantity")
		e.Int(it.Quantity)
		e.FieldStart("unitPrice")
		encodeDecimal(e, it.UnitPrice)
		if len(it.Spec) > 0 {
			e.FieldStart("spec")
			encodeStringMap(e, it.Spec)
		}
		e.ObjEnd()
	}
	e.ArrEnd()
	e.FieldStart("total")
	encodeDecimal(e, o.Total)
	e.FieldStart("createdAt")
	e.Str(o.CreatedAt.UTC().Format(time.RFC3339))
	e.ObjEnd()
}

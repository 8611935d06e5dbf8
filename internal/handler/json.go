package handler

import (
	"io"
	"maps"
	"net/http"
	"slices"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/kart-sku/pkg/httpmiddleware"
)

// errBadRequest marks malformed request bodies.
var errBadRequest = errors.New("bad request")

func writeJSON(w http.ResponseWriter, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

func writeError(w http.ResponseWriter, status int, message string) {
	httpmiddleware.WriteError(w, status, message)
}

// writeInternal logs err and answers with an opaque 500.
func writeInternal(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Error("Request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// readBody reads at most maxBodyBytes of the request body.
func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, errors.Wrap(errBadRequest, err.Error())
	}
	if len(body) > maxBodyBytes {
		return nil, errors.Wrap(errBadRequest, "body too large")
	}
	return body, nil
}

func encodeDecimal(e *jx.Encoder, d decimal.Decimal) {
	e.RawStr(d.String())
}

func encodeStringMap(e *jx.Encoder, m map[string]string) {
	e.ObjStart()
	for _, k := range slices.Sorted(maps.Keys(m)) {
		e.FieldStart(k)
		e.Str(m[k])
	}
	e.ObjEnd()
}

func decodeStringMap(d *jx.Decoder) (map[string]string, error) {
	if d.Next() == jx.Null {
		return nil, d.Null()
	}
	m := make(map[string]string)
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		v, err := d.Str()
		if err != nil {
			return errors.Wrapf(err, "value of %q", key)
		}
		m[string(key)] = v
		return nil
	})
	return m, err
}

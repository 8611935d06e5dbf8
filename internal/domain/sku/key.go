package sku

import (
	"slices"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// Key is a variant identifier tuple: one value-id per dimension, in dimension
// order. Upstream payloads carry it either as a list or as a comma-delimited
// string; both forms canonicalize to the same string.
type Key struct {
	parts []string
	text  string
	list  bool
}

// ListKey builds a key from value-ids in dimension order. ids is copied.
func ListKey(ids ...string) Key {
	return Key{parts: slices.Clone(ids), list: true}
}

// TextKey builds a key from an already delimited string.
func TextKey(s string) Key {
	return Key{text: s}
}

// Canonical returns the comma-joined form of the key.
func (k Key) Canonical() string {
	if k.list {
		return strings.Join(k.parts, keySep)
	}
	return k.text
}

// String implements fmt.Stringer.
func (k Key) String() string {
	return k.Canonical()
}

// IsZero reports whether the key carries no value-ids at all.
func (k Key) IsZero() bool {
	return k.Canonical() == ""
}

// Decode reads a key from JSON. Arrays may hold strings or numbers; null and
// anything else decode to an empty key, which never matches.
func (k *Key) Decode(d *jx.Decoder) error {
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return errors.Wrap(err, "key string")
		}
		*k = TextKey(s)
		return nil
	case jx.Array:
		var ids []string
		if err := d.Arr(func(d *jx.Decoder) error {
			switch d.Next() {
			case jx.Number:
				n, err := d.Num()
				if err != nil {
					return err
				}
				ids = append(ids, n.String())
			default:
				s, err := d.Str()
				if err != nil {
					return err
				}
				ids = append(ids, s)
			}
			return nil
		}); err != nil {
			return errors.Wrap(err, "key array")
		}
		*k = ListKey(ids...)
		return nil
	default:
		*k = Key{}
		return d.Skip()
	}
}

// Encode writes the canonical form as a JSON string.
func (k Key) Encode(e *jx.Encoder) {
	e.Str(k.Canonical())
}

// UnmarshalJSON implements json.Unmarshaler.
func (k *Key) UnmarshalJSON(data []byte) error {
	return k.Decode(jx.DecodeBytes(data))
}

// MarshalJSON implements json.Marshaler.
func (k Key) MarshalJSON() ([]byte, error) {
	var e jx.Encoder
	k.Encode(&e)
	return e.Bytes(), nil
}

// Normalize returns v with its key in canonical string form.
func Normalize(v Variant) Variant {
	v.Key = TextKey(v.Key.Canonical())
	return v
}

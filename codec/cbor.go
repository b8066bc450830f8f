package codec

import (
	"github.com/fxamacker/cbor/v2"
)

// CBOR encodes records with fxamacker/cbor. Build it with NewCBOR; the zero
// value has no modes and panics.
//
// Instants are written as untagged RFC 3339 strings, which keeps event maps
// readable by other CBOR tools; typed time.Time fields such as
// CacheRecord.CreatedAt parse them back.
type CBOR[V any] struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

var _ Codec[struct{}] = CBOR[struct{}]{}

// NewCBOR returns a CBOR codec. canonical selects RFC 8949 core deterministic
// encoding (sorted map keys, shortest forms); otherwise map order is unsorted.
func NewCBOR[V any](canonical bool) (CBOR[V], error) {
	opts := cbor.PreferredUnsortedEncOptions()
	if canonical {
		opts = cbor.CoreDetEncOptions()
	}
	opts.Time = cbor.TimeRFC3339Nano
	opts.TimeTag = cbor.EncTagNone

	em, err := opts.EncMode()
	if err != nil {
		return CBOR[V]{}, err
	}
	dm, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		return CBOR[V]{}, err
	}
	return CBOR[V]{enc: em, dec: dm}, nil
}

// MustCBOR is NewCBOR for fixed options known to be valid.
func MustCBOR[V any](canonical bool) CBOR[V] {
	c, err := NewCBOR[V](canonical)
	if err != nil {
		panic(err)
	}
	return c
}

func (c CBOR[V]) Encode(v V) ([]byte, error) { return c.enc.Marshal(v) }

func (c CBOR[V]) Decode(b []byte) (V, error) {
	var v V
	err := c.dec.Unmarshal(b, &v)
	return v, err
}

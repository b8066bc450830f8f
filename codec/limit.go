package codec

import (
	"errors"
	"fmt"
)

// ErrTooLarge is returned when an encoded record exceeds Limit.Max.
var ErrTooLarge = errors.New("codec: record too large")

// Limit caps the encoded size of a record in both directions: a record that
// could not be read back is never written, and oversized values planted in a
// shared store are refused before Inner parses them. Max <= 0 disables the cap.
type Limit[V any] struct {
	Inner Codec[V]
	Max   int
}

func (c Limit[V]) Encode(v V) ([]byte, error) {
	b, err := c.Inner.Encode(v)
	if err != nil {
		return nil, err
	}
	if err := c.check(len(b)); err != nil {
		return nil, err
	}
	return b, nil
}

func (c Limit[V]) Decode(b []byte) (V, error) {
	if err := c.check(len(b)); err != nil {
		var zero V
		return zero, err
	}
	return c.Inner.Decode(b)
}

func (c Limit[V]) check(n int) error {
	if c.Max > 0 && n > c.Max {
		return fmt.Errorf("%w: %d > %d bytes", ErrTooLarge, n, c.Max)
	}
	return nil
}

package record

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformed is returned by Decode when a stored record lacks a required
	// field or holds a value of the wrong type.
	ErrMalformed = errors.New("record: malformed record")
	// ErrEncoding is returned by Encode when an event cannot be stored.
	ErrEncoding = errors.New("record: cannot encode event")
)

// FieldError describes which field made Encode or Decode fail.
// Kind is ErrEncoding or ErrMalformed.
type FieldError struct {
	Field  string
	Reason string
	Kind   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%v: field %q: %s", e.Kind, e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return e.Kind }

// IndexError locates a failing element when encoding or decoding a slice.
type IndexError struct {
	Index int
	Err   error
}

func (e *IndexError) Error() string { return fmt.Sprintf("event %d: %v", e.Index, e.Err) }

func (e *IndexError) Unwrap() error { return e.Err }

func malformed(field, reason string) error {
	return &FieldError{Field: field, Reason: reason, Kind: ErrMalformed}
}

func badEvent(field, reason string) error {
	return &FieldError{Field: field, Reason: reason, Kind: ErrEncoding}
}

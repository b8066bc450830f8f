package calcache

import (
	"errors"
	"fmt"

	"github.com/unkn0wn-root/calcache/record"
)

var (
	// ErrNotFound is returned by Get when no record exists for the key.
	ErrNotFound = errors.New("calcache: not found")
	// ErrMalformedRecord matches errors from stored records that cannot be decoded.
	ErrMalformedRecord = record.ErrMalformed
	// ErrEncoding matches errors from events that cannot be stored.
	ErrEncoding = record.ErrEncoding
)

// RecordError is returned by Get when the stored record for Key cannot be
// decoded. Index is the failing event, or -1 when the record as a whole is
// unreadable.
type RecordError struct {
	Key   string
	Index int
	Err   error
}

func (e *RecordError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("calcache: record %q: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("calcache: record %q: event %d: %v", e.Key, e.Index, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// StoreError wraps a failure reported by the backing store.
type StoreError struct {
	Op  string // "has", "get", "save"
	Key string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("calcache: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

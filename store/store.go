// Package store defines the document-store abstraction used by calcache.
//
// A Store holds CacheRecord documents in named collections, at most one per
// key. Every interaction happens inside Execute, which acquires a session
// (a connection, a client handle, or nothing for in-process stores) for the
// duration of one logical operation and releases it on every exit path.
//
// Implementations MUST treat the documents they return as owned by the
// caller: mutating a returned CacheRecord must not change stored state.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/unkn0wn-root/calcache/record"
)

var (
	// ErrNotFound is returned by Replace when no document has the key.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicateKey is returned by Insert when a document already has the key.
	ErrDuplicateKey = errors.New("store: duplicate key")
	// ErrClosed is returned by Execute after Close.
	ErrClosed = errors.New("store: closed")
	// ErrRejected is returned when a backend refuses a write under memory pressure.
	ErrRejected = errors.New("store: write rejected")
	// ErrInvalidCollection is returned by Execute for names that are not plain
	// identifiers.
	ErrInvalidCollection = errors.New("store: collection must be a plain identifier")
)

var collectionRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateCollection rejects collection names that could collide once joined
// with a key ("a:b"+"c" vs "a"+"b:c") or break out of an SQL identifier.
func ValidateCollection(name string) error {
	if !collectionRe.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidCollection, name)
	}
	return nil
}

// Query selects the document with Key. When Since is non-zero the document
// must also satisfy created_at >= Since.
type Query struct {
	Key   string
	Since time.Time
}

// Matches reports whether r satisfies q.
func (q Query) Matches(r record.CacheRecord) bool {
	if r.Key != q.Key {
		return false
	}
	return q.Since.IsZero() || !r.CreatedAt.Before(q.Since)
}

// Session is the set of operations available inside Execute.
type Session interface {
	// Exists reports whether a document matches q.
	Exists(ctx context.Context, q Query) (bool, error)

	// Find returns (doc, true, nil) on hit and (zero, false, nil) on miss.
	Find(ctx context.Context, q Query) (record.CacheRecord, bool, error)

	// Insert adds doc; ErrDuplicateKey if doc.Key is taken.
	Insert(ctx context.Context, doc record.CacheRecord) error

	// Replace overwrites the document with doc.Key; ErrNotFound if absent.
	Replace(ctx context.Context, doc record.CacheRecord) error
}

// Upserter is implemented by sessions that can insert-or-replace a document
// in one atomic operation. calcache prefers it over Find + Insert/Replace.
type Upserter interface {
	Upsert(ctx context.Context, doc record.CacheRecord) error
}

// Store runs fn against a session bound to collection.
type Store interface {
	Execute(ctx context.Context, collection string, fn func(Session) error) error

	// Close releases resources. Safe to call multiple times.
	Close(ctx context.Context) error
}

// Package kv adapts flat byte caches (BigCache, Ristretto, ...) into a
// store.Store. Each document is one framed value under "<collection>:<key>".
//
// Backends MUST be byte-for-byte transparent: Get must return exactly the
// bytes previously passed to Set for a key (no prepended/appended metadata,
// no re-encoding). Insert and Replace are made atomic with a store-wide
// mutex, so a kv.Store must be the only writer of its backend.
package kv

import (
	"context"
	"sync"

	"github.com/unkn0wn-root/calcache/codec"
	"github.com/unkn0wn-root/calcache/internal/util"
	"github.com/unkn0wn-root/calcache/record"
	"github.com/unkn0wn-root/calcache/store"
)

// Backend is a minimal byte store.
type Backend interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value. Returns ok=false when the store rejected the write
	// under pressure.
	Set(ctx context.Context, key string, value []byte) (ok bool, err error)

	// Close releases resources.
	Close(ctx context.Context) error
}

type Store struct {
	b     Backend
	codec codec.Codec[record.CacheRecord]

	mu     sync.Mutex // serializes writes
	closed bool
}

var _ store.Store = (*Store)(nil)

// New wraps b. A nil codec selects msgpack.
func New(b Backend, c codec.Codec[record.CacheRecord]) *Store {
	if c == nil {
		c = codec.Msgpack[record.CacheRecord]{}
	}
	return &Store{b: b, codec: c}
}

func (s *Store) Execute(_ context.Context, collection string, fn func(store.Session) error) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return store.ErrClosed
	}
	if err := store.ValidateCollection(collection); err != nil {
		return err
	}
	return fn(&session{s: s, coll: collection})
}

// Close closes the backend once.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.b.Close(ctx)
}

type session struct {
	s    *Store
	coll string
}

var (
	_ store.Session  = (*session)(nil)
	_ store.Upserter = (*session)(nil)
)

func (x *session) key(k string) string { return util.StorageKey(x.coll, k) }

func (x *session) Exists(ctx context.Context, q store.Query) (bool, error) {
	raw, ok, err := x.s.b.Get(ctx, x.key(q.Key))
	if err != nil || !ok {
		return false, err
	}
	if q.Since.IsZero() {
		return true, nil
	}
	createdAt, err := store.FrameCreatedAt(raw)
	if err != nil {
		return false, err
	}
	return !createdAt.Before(q.Since), nil
}

func (x *session) Find(ctx context.Context, q store.Query) (record.CacheRecord, bool, error) {
	raw, ok, err := x.s.b.Get(ctx, x.key(q.Key))
	if err != nil || !ok {
		return record.CacheRecord{}, false, err
	}
	doc, err := store.DecodeFrame(x.s.codec, raw)
	if err != nil {
		return record.CacheRecord{}, false, err
	}
	doc.Key = q.Key
	if !q.Matches(doc) {
		return record.CacheRecord{}, false, nil
	}
	return doc, true, nil
}

func (x *session) Insert(ctx context.Context, doc record.CacheRecord) error {
	x.s.mu.Lock()
	defer x.s.mu.Unlock()
	_, ok, err := x.s.b.Get(ctx, x.key(doc.Key))
	if err != nil {
		return err
	}
	if ok {
		return store.ErrDuplicateKey
	}
	return x.set(ctx, doc)
}

func (x *session) Replace(ctx context.Context, doc record.CacheRecord) error {
	x.s.mu.Lock()
	defer x.s.mu.Unlock()
	_, ok, err := x.s.b.Get(ctx, x.key(doc.Key))
	if err != nil {
		return err
	}
	if !ok {
		return store.ErrNotFound
	}
	return x.set(ctx, doc)
}

func (x *session) Upsert(ctx context.Context, doc record.CacheRecord) error {
	x.s.mu.Lock()
	defer x.s.mu.Unlock()
	return x.set(ctx, doc)
}

// set must be called with mu held.
func (x *session) set(ctx context.Context, doc record.CacheRecord) error {
	if x.s.closed {
		return store.ErrClosed
	}
	b, err := store.EncodeFrame(x.s.codec, doc)
	if err != nil {
		return err
	}
	ok, err := x.s.b.Set(ctx, x.key(doc.Key), b)
	if err != nil {
		return err
	}
	if !ok {
		return store.ErrRejected
	}
	return nil
}

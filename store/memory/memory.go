// Package memory is an in-process store. Documents are kept as decoded
// records, so nothing is serialized; it backs tests and single-process runs.
package memory

import (
	"context"
	"sync"

	"github.com/unkn0wn-root/calcache/record"
	"github.com/unkn0wn-root/calcache/store"
)

type Store struct {
	mu     sync.RWMutex
	colls  map[string]map[string]record.CacheRecord
	closed bool
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{colls: make(map[string]map[string]record.CacheRecord)}
}

func (s *Store) Execute(_ context.Context, collection string, fn func(store.Session) error) error {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return store.ErrClosed
	}
	if err := store.ValidateCollection(collection); err != nil {
		return err
	}
	return fn(&session{s: s, coll: collection})
}

func (s *Store) Close(context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.colls = nil
	s.mu.Unlock()
	return nil
}

// Len returns the number of documents in collection.
func (s *Store) Len(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.colls[collection])
}

type session struct {
	s    *Store
	coll string
}

var (
	_ store.Session  = (*session)(nil)
	_ store.Upserter = (*session)(nil)
)

func (x *session) Exists(_ context.Context, q store.Query) (bool, error) {
	x.s.mu.RLock()
	doc, ok := x.s.colls[x.coll][q.Key]
	x.s.mu.RUnlock()
	return ok && q.Matches(doc), nil
}

func (x *session) Find(_ context.Context, q store.Query) (record.CacheRecord, bool, error) {
	x.s.mu.RLock()
	doc, ok := x.s.colls[x.coll][q.Key]
	x.s.mu.RUnlock()
	if !ok || !q.Matches(doc) {
		return record.CacheRecord{}, false, nil
	}
	return doc.Clone(), true, nil
}

func (x *session) Insert(_ context.Context, doc record.CacheRecord) error {
	x.s.mu.Lock()
	defer x.s.mu.Unlock()
	if x.s.closed {
		return store.ErrClosed
	}
	if _, ok := x.s.colls[x.coll][doc.Key]; ok {
		return store.ErrDuplicateKey
	}
	x.put(doc)
	return nil
}

func (x *session) Replace(_ context.Context, doc record.CacheRecord) error {
	x.s.mu.Lock()
	defer x.s.mu.Unlock()
	if x.s.closed {
		return store.ErrClosed
	}
	if _, ok := x.s.colls[x.coll][doc.Key]; !ok {
		return store.ErrNotFound
	}
	x.put(doc)
	return nil
}

func (x *session) Upsert(_ context.Context, doc record.CacheRecord) error {
	x.s.mu.Lock()
	defer x.s.mu.Unlock()
	if x.s.closed {
		return store.ErrClosed
	}
	x.put(doc)
	return nil
}

// put must be called with mu held.
func (x *session) put(doc record.CacheRecord) {
	c := x.s.colls[x.coll]
	if c == nil {
		c = make(map[string]record.CacheRecord)
		x.s.colls[x.coll] = c
	}
	c[doc.Key] = doc.Clone()
}

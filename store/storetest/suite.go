// Package storetest holds the behavior every store.Store backend must share.
// Backends call Run from their own tests.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/calcache/calendar"
	"github.com/unkn0wn-root/calcache/record"
	"github.com/unkn0wn-root/calcache/store"
)

const collection = "cache"

// Factory returns a fresh, empty store. Run closes it when the subtest ends.
type Factory func(t *testing.T) store.Store

// Run executes the contract suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"FindMissing", testFindMissing},
		{"InsertThenFind", testInsertThenFind},
		{"InsertDuplicate", testInsertDuplicate},
		{"ReplaceMissing", testReplaceMissing},
		{"ReplaceOverwrites", testReplaceOverwrites},
		{"ExistsRange", testExistsRange},
		{"Upsert", testUpsert},
		{"CollectionsIsolated", testCollectionsIsolated},
		{"OrderPreserved", testOrderPreserved},
		{"ExecuteReturnsCallbackError", testExecuteReturnsCallbackError},
		{"InvalidCollection", testInvalidCollection},
		{"ConcurrentUpsert", testConcurrentUpsert},
		{"ClosedStore", testClosedStore},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newStore(t)
			t.Cleanup(func() { _ = s.Close(context.Background()) })
			tc.fn(t, s)
		})
	}
}

// Doc builds a CacheRecord with n encoded events.
func Doc(t *testing.T, key string, createdAt time.Time, n int) record.CacheRecord {
	t.Helper()
	base := time.Date(2024, 10, 7, 9, 0, 0, 0, time.UTC)
	events := make([]calendar.Event, n)
	for i := range events {
		events[i] = calendar.Event{
			UID:      fmt.Sprintf("%s-ev-%d", key, i),
			Start:    base.Add(time.Duration(i) * time.Hour),
			End:      base.Add(time.Duration(i)*time.Hour + 50*time.Minute),
			Summary:  fmt.Sprintf("Lecture %d", i),
			Location: "Huxley 311",
		}
	}
	rs, err := record.EncodeAll(events)
	require.NoError(t, err)
	return record.CacheRecord{Key: key, CreatedAt: createdAt.UTC(), Events: rs}
}

func exec(t *testing.T, s store.Store, fn func(store.Session) error) {
	t.Helper()
	require.NoError(t, s.Execute(context.Background(), collection, fn))
}

func find(t *testing.T, s store.Store, q store.Query) (record.CacheRecord, bool) {
	t.Helper()
	var (
		doc record.CacheRecord
		ok  bool
	)
	exec(t, s, func(x store.Session) error {
		var err error
		doc, ok, err = x.Find(context.Background(), q)
		return err
	})
	return doc, ok
}

func exists(t *testing.T, s store.Store, q store.Query) bool {
	t.Helper()
	var ok bool
	exec(t, s, func(x store.Session) error {
		var err error
		ok, err = x.Exists(context.Background(), q)
		return err
	})
	return ok
}

func assertSameDoc(t *testing.T, want, got record.CacheRecord) {
	t.Helper()
	assert.Equal(t, want.Key, got.Key)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "created_at: want %v got %v", want.CreatedAt, got.CreatedAt)
	we, err := record.DecodeAll(want.Events)
	require.NoError(t, err)
	ge, err := record.DecodeAll(got.Events)
	require.NoError(t, err)
	require.Len(t, ge, len(we))
	for i := range we {
		assert.True(t, we[i].Equal(ge[i]), "event %d: want %+v got %+v", i, we[i], ge[i])
	}
}

func testFindMissing(t *testing.T, s store.Store) {
	_, ok := find(t, s, store.Query{Key: "nope"})
	assert.False(t, ok)
	assert.False(t, exists(t, s, store.Query{Key: "nope"}))
}

func testInsertThenFind(t *testing.T, s store.Store) {
	doc := Doc(t, "c220", time.Date(2024, 10, 1, 12, 0, 0, 42, time.UTC), 2)
	exec(t, s, func(x store.Session) error { return x.Insert(context.Background(), doc) })

	got, ok := find(t, s, store.Query{Key: "c220"})
	require.True(t, ok)
	assertSameDoc(t, doc, got)

	// returned documents are copies
	got.Events[0][record.FieldUID] = "mutated"
	again, ok := find(t, s, store.Query{Key: "c220"})
	require.True(t, ok)
	assert.Equal(t, "c220-ev-0", again.Events[0][record.FieldUID])
}

func testInsertDuplicate(t *testing.T, s store.Store) {
	doc := Doc(t, "dup", time.Now(), 1)
	exec(t, s, func(x store.Session) error { return x.Insert(context.Background(), doc) })
	err := s.Execute(context.Background(), collection, func(x store.Session) error {
		return x.Insert(context.Background(), doc)
	})
	require.ErrorIs(t, err, store.ErrDuplicateKey)
}

func testReplaceMissing(t *testing.T, s store.Store) {
	err := s.Execute(context.Background(), collection, func(x store.Session) error {
		return x.Replace(context.Background(), Doc(t, "ghost", time.Now(), 1))
	})
	require.ErrorIs(t, err, store.ErrNotFound)
	_, ok := find(t, s, store.Query{Key: "ghost"})
	assert.False(t, ok)
}

func testReplaceOverwrites(t *testing.T, s store.Store) {
	t0 := time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)
	first := Doc(t, "k", t0, 3)
	second := Doc(t, "k", t0.Add(time.Hour), 1)
	second.Events[0][record.FieldSummary] = "rescheduled"

	exec(t, s, func(x store.Session) error { return x.Insert(context.Background(), first) })
	exec(t, s, func(x store.Session) error { return x.Replace(context.Background(), second) })

	got, ok := find(t, s, store.Query{Key: "k"})
	require.True(t, ok)
	assertSameDoc(t, second, got)
}

func testExistsRange(t *testing.T, s store.Store) {
	createdAt := time.Date(2024, 10, 1, 12, 0, 0, 500, time.UTC)
	exec(t, s, func(x store.Session) error {
		return x.Insert(context.Background(), Doc(t, "k", createdAt, 1))
	})

	assert.True(t, exists(t, s, store.Query{Key: "k"}))
	assert.True(t, exists(t, s, store.Query{Key: "k", Since: createdAt.Add(-time.Nanosecond)}))
	assert.True(t, exists(t, s, store.Query{Key: "k", Since: createdAt}), "boundary is inclusive")
	assert.False(t, exists(t, s, store.Query{Key: "k", Since: createdAt.Add(time.Nanosecond)}))
	assert.False(t, exists(t, s, store.Query{Key: "other", Since: createdAt.Add(-time.Hour)}))

	_, ok := find(t, s, store.Query{Key: "k", Since: createdAt.Add(time.Second)})
	assert.False(t, ok)
	_, ok = find(t, s, store.Query{Key: "k", Since: createdAt})
	assert.True(t, ok)
}

func testUpsert(t *testing.T, s store.Store) {
	t0 := time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)
	first := Doc(t, "u", t0, 2)
	second := Doc(t, "u", t0.Add(time.Minute), 1)

	var canUpsert bool
	exec(t, s, func(x store.Session) error {
		_, canUpsert = x.(store.Upserter)
		return nil
	})
	if !canUpsert {
		t.Skip("session does not implement store.Upserter")
	}

	upsert := func(doc record.CacheRecord) {
		exec(t, s, func(x store.Session) error {
			return x.(store.Upserter).Upsert(context.Background(), doc)
		})
	}
	upsert(first)
	got, ok := find(t, s, store.Query{Key: "u"})
	require.True(t, ok)
	assertSameDoc(t, first, got)

	upsert(second)
	got, ok = find(t, s, store.Query{Key: "u"})
	require.True(t, ok)
	assertSameDoc(t, second, got)
}

func testCollectionsIsolated(t *testing.T, s store.Store) {
	doc := Doc(t, "k", time.Now(), 1)
	exec(t, s, func(x store.Session) error { return x.Insert(context.Background(), doc) })

	var ok bool
	require.NoError(t, s.Execute(context.Background(), "other", func(x store.Session) error {
		var err error
		_, ok, err = x.Find(context.Background(), store.Query{Key: "k"})
		return err
	}))
	assert.False(t, ok)
}

func testOrderPreserved(t *testing.T, s store.Store) {
	doc := Doc(t, "ordered", time.Now(), 7)
	// shuffle to a non-chronological order; the store must keep it as given
	doc.Events[0], doc.Events[6] = doc.Events[6], doc.Events[0]
	doc.Events[2], doc.Events[4] = doc.Events[4], doc.Events[2]
	exec(t, s, func(x store.Session) error { return x.Insert(context.Background(), doc) })

	got, ok := find(t, s, store.Query{Key: "ordered"})
	require.True(t, ok)
	require.Len(t, got.Events, 7)
	for i := range doc.Events {
		assert.Equal(t, doc.Events[i][record.FieldUID], got.Events[i][record.FieldUID])
	}
}

func testExecuteReturnsCallbackError(t *testing.T, s store.Store) {
	boom := errors.New("boom")
	err := s.Execute(context.Background(), collection, func(store.Session) error { return boom })
	require.ErrorIs(t, err, boom)

	// the store stays usable after a failed operation
	assert.False(t, exists(t, s, store.Query{Key: "x"}))
}

func testInvalidCollection(t *testing.T, s store.Store) {
	for _, name := range []string{"", "a:b", "cache;drop", `cache"`, "1cache"} {
		called := false
		err := s.Execute(context.Background(), name, func(store.Session) error {
			called = true
			return nil
		})
		require.ErrorIs(t, err, store.ErrInvalidCollection, "collection %q", name)
		assert.False(t, called, "collection %q", name)
	}
}

// testConcurrentUpsert races writers on one key. The survivor must be one
// writer's complete document, never a mix.
func testConcurrentUpsert(t *testing.T, s store.Store) {
	var canUpsert bool
	exec(t, s, func(x store.Session) error {
		_, canUpsert = x.(store.Upserter)
		return nil
	})
	if !canUpsert {
		t.Skip("session does not implement store.Upserter")
	}

	const writers = 16
	t0 := time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)
	docs := make([]record.CacheRecord, writers)
	for i := range docs {
		// writer i stores i+1 events, so the event count identifies the writer
		docs[i] = Doc(t, "race", t0.Add(time.Duration(i)*time.Second), i+1)
	}

	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := range docs {
		wg.Add(1)
		go func(doc record.CacheRecord) {
			defer wg.Done()
			errs <- s.Execute(context.Background(), collection, func(x store.Session) error {
				return x.(store.Upserter).Upsert(context.Background(), doc)
			})
		}(docs[i])
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, ok := find(t, s, store.Query{Key: "race"})
	require.True(t, ok)
	n := len(got.Events)
	require.True(t, n >= 1 && n <= writers, "unexpected event count %d", n)
	assertSameDoc(t, docs[n-1], got)

	err := s.Execute(context.Background(), collection, func(x store.Session) error {
		return x.Insert(context.Background(), docs[0])
	})
	require.ErrorIs(t, err, store.ErrDuplicateKey, "key must still hold exactly one document")
}

func testClosedStore(t *testing.T, s store.Store) {
	require.NoError(t, s.Close(context.Background()))
	require.NoError(t, s.Close(context.Background()), "Close must be idempotent")

	err := s.Execute(context.Background(), collection, func(store.Session) error { return nil })
	require.ErrorIs(t, err, store.ErrClosed)
}

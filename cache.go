package calcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/unkn0wn-root/calcache/calendar"
	"github.com/unkn0wn-root/calcache/internal/util"
	"github.com/unkn0wn-root/calcache/record"
	"github.com/unkn0wn-root/calcache/store"
)

type cache struct {
	store      store.Store
	collection string
	ttl        time.Duration
	enabled    bool
	now        func() time.Time
	log        Logger
	hooks      Hooks
}

var _ Cache = (*cache)(nil)

func newCache(opts Options) (*cache, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("calcache: store is required")
	}
	if opts.TTL < 0 {
		return nil, fmt.Errorf("calcache: negative ttl %v", opts.TTL)
	}

	c := &cache{
		store:   opts.Store,
		enabled: !opts.Disabled,
	}

	// defaults
	c.collection = coalesce(opts.Collection, DefaultCollection)
	c.ttl = coalesce(opts.TTL, DefaultTTL)
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	if opts.Now != nil {
		c.now = opts.Now
	} else {
		c.now = time.Now
	}
	return c, nil
}

func (c *cache) Enabled() bool { return c.enabled }

func (c *cache) Close(ctx context.Context) error {
	return c.store.Close(ctx)
}

func (c *cache) Has(ctx context.Context, key string) (bool, error) {
	if !c.enabled {
		return false, nil
	}
	q := store.Query{Key: key, Since: c.now().Add(-c.ttl)}
	var fresh bool
	err := c.store.Execute(ctx, c.collection, func(s store.Session) error {
		var err error
		fresh, err = s.Exists(ctx, q)
		return err
	})
	if errors.Is(err, record.ErrMalformed) {
		// unreadable record: report it and let the caller recompute over it
		_ = c.malformed(key, -1, err)
		return false, nil
	}
	if err != nil {
		return false, c.storeErr("has", key, err)
	}
	return fresh, nil
}

func (c *cache) Get(ctx context.Context, key string) ([]calendar.Event, error) {
	var (
		doc   record.CacheRecord
		found bool
	)
	err := c.store.Execute(ctx, c.collection, func(s store.Session) error {
		var err error
		doc, found, err = s.Find(ctx, store.Query{Key: key})
		return err
	})
	if err != nil {
		if errors.Is(err, record.ErrMalformed) {
			return nil, c.malformed(key, -1, err)
		}
		return nil, c.storeErr("get", key, err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, key)
	}

	events, err := record.DecodeAll(doc.Events)
	if err != nil {
		idx := -1
		var ie *record.IndexError
		if errors.As(err, &ie) {
			idx = ie.Index
		}
		return nil, c.malformed(key, idx, err)
	}
	return events, nil
}

func (c *cache) Save(ctx context.Context, key string, events []calendar.Event) error {
	if !c.enabled {
		return nil
	}
	recs, err := record.EncodeAll(events)
	if err != nil {
		return fmt.Errorf("calcache: save %q: %w", key, err)
	}
	doc := record.CacheRecord{Key: key, CreatedAt: c.now().UTC(), Events: recs}

	err = c.store.Execute(ctx, c.collection, func(s store.Session) error {
		if u, ok := s.(store.Upserter); ok {
			return u.Upsert(ctx, doc)
		}
		return c.findAndWrite(ctx, s, doc)
	})
	if err != nil {
		return c.storeErr("save", key, err)
	}
	c.log.Debug("saved events", Fields{"key": util.Redact(key), "events": len(recs), "collection": c.collection})
	return nil
}

// findAndWrite replaces doc if a record with its key exists, otherwise inserts
// it. A concurrent insert between the two steps is retried once as a replace.
func (c *cache) findAndWrite(ctx context.Context, s store.Session, doc record.CacheRecord) error {
	c.hooks.NonAtomicUpsert(c.collection)

	_, found, err := s.Find(ctx, store.Query{Key: doc.Key})
	switch {
	case errors.Is(err, record.ErrMalformed):
		found = true // unreadable record still occupies the key
	case err != nil:
		return err
	}
	if found {
		return s.Replace(ctx, doc)
	}
	err = s.Insert(ctx, doc)
	if errors.Is(err, store.ErrDuplicateKey) {
		c.log.Warn("insert raced with another writer; replacing", Fields{"key": util.Redact(doc.Key)})
		return s.Replace(ctx, doc)
	}
	return err
}

func (c *cache) storeErr(op, key string, err error) error {
	c.hooks.StoreError(op, key, err)
	c.log.Warn("store error", Fields{"op": op, "key": util.Redact(key), "err": err})
	return &StoreError{Op: op, Key: key, Err: err}
}

func (c *cache) malformed(key string, index int, err error) error {
	c.hooks.MalformedRecord(key, index, err)
	c.log.Warn("malformed record", Fields{"key": util.Redact(key), "index": index, "err": err})
	return &RecordError{Key: key, Index: index, Err: err}
}

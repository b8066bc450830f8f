// Package redis keeps cache records in Redis, one framed string value per key.
//
// Writes use single Redis commands (SET, SET NX, SET XX), so upserts are
// atomic across processes sharing the same Redis.
package redis

import (
	"context"
	"errors"
	"sync/atomic"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/calcache/codec"
	"github.com/unkn0wn-root/calcache/internal/util"
	"github.com/unkn0wn-root/calcache/record"
	"github.com/unkn0wn-root/calcache/store"
)

var ErrNilClient = errors.New("redis store: nil client")

type Redis struct {
	rdb         goredis.UniversalClient
	closeClient bool
	codec       codec.Codec[record.CacheRecord]
	prefix      string
	closed      atomic.Bool
}

var _ store.Store = (*Redis)(nil)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool                            // set true only if this store exclusively owns the client
	Codec       codec.Codec[record.CacheRecord] // nil => msgpack
	KeyPrefix   string                          // prepended to "<collection>:<key>", e.g. "timetable:"
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	c := cfg.Codec
	if c == nil {
		c = codec.Msgpack[record.CacheRecord]{}
	}
	return &Redis{rdb: cfg.Client, closeClient: cfg.CloseClient, codec: c, prefix: cfg.KeyPrefix}, nil
}

// Execute hands fn a session over the shared client; go-redis checks a
// connection out of its pool per command.
func (r *Redis) Execute(_ context.Context, collection string, fn func(store.Session) error) error {
	if r.closed.Load() {
		return store.ErrClosed
	}
	if err := store.ValidateCollection(collection); err != nil {
		return err
	}
	return fn(&session{r: r, coll: collection})
}

// Close releases the underlying redis client only when this store owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (r *Redis) Close(context.Context) error {
	if r.closed.Swap(true) {
		return nil
	}
	if r.closeClient {
		if err := r.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}

type session struct {
	r    *Redis
	coll string
}

var (
	_ store.Session  = (*session)(nil)
	_ store.Upserter = (*session)(nil)
)

func (x *session) key(k string) string { return x.r.prefix + util.StorageKey(x.coll, k) }

// Exists reads only the frame header when a range predicate is present.
func (x *session) Exists(ctx context.Context, q store.Query) (bool, error) {
	k := x.key(q.Key)
	if q.Since.IsZero() {
		n, err := x.r.rdb.Exists(ctx, k).Result()
		return n > 0, err
	}
	hdr, err := x.r.rdb.GetRange(ctx, k, 0, store.FrameHeaderLen-1).Bytes()
	if err != nil {
		return false, err
	}
	if len(hdr) == 0 {
		return false, nil // miss
	}
	createdAt, err := store.FrameCreatedAt(hdr)
	if err != nil {
		return false, err
	}
	return !createdAt.Before(q.Since), nil
}

func (x *session) Find(ctx context.Context, q store.Query) (record.CacheRecord, bool, error) {
	b, err := x.r.rdb.Get(ctx, x.key(q.Key)).Bytes()
	if err == goredis.Nil {
		return record.CacheRecord{}, false, nil // miss
	}
	if err != nil {
		return record.CacheRecord{}, false, err // transport/server error
	}
	doc, err := store.DecodeFrame(x.r.codec, b)
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
	b, err := store.EncodeFrame(x.r.codec, doc)
	if err != nil {
		return err
	}
	ok, err := x.r.rdb.SetNX(ctx, x.key(doc.Key), b, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return store.ErrDuplicateKey
	}
	return nil
}

func (x *session) Replace(ctx context.Context, doc record.CacheRecord) error {
	b, err := store.EncodeFrame(x.r.codec, doc)
	if err != nil {
		return err
	}
	ok, err := x.r.rdb.SetXX(ctx, x.key(doc.Key), b, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return store.ErrNotFound
	}
	return nil
}

func (x *session) Upsert(ctx context.Context, doc record.CacheRecord) error {
	b, err := store.EncodeFrame(x.r.codec, doc)
	if err != nil {
		return err
	}
	return x.r.rdb.Set(ctx, x.key(doc.Key), b, 0).Err()
}

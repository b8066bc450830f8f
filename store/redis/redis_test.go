package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/calcache/codec"
	"github.com/unkn0wn-root/calcache/record"
	"github.com/unkn0wn-root/calcache/store"
	"github.com/unkn0wn-root/calcache/store/storetest"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		_, rdb := newClient(t)
		s, err := New(Config{Client: rdb, KeyPrefix: "test:"})
		require.NoError(t, err)
		return s
	})
}

func TestContractCBOR(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		_, rdb := newClient(t)
		s, err := New(Config{Client: rdb, Codec: codec.MustCBOR[record.CacheRecord](true)})
		require.NoError(t, err)
		return s
	})
}

func TestNilClient(t *testing.T) {
	_, err := New(Config{})
	require.ErrorIs(t, err, ErrNilClient)
}

func TestKeyLayout(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newClient(t)
	s, err := New(Config{Client: rdb, KeyPrefix: "timetable:"})
	require.NoError(t, err)

	require.NoError(t, s.Execute(ctx, "cache", func(x store.Session) error {
		return x.Insert(ctx, storetest.Doc(t, "c220", time.Now(), 1))
	}))
	assert.True(t, mr.Exists("timetable:cache:c220"))
}

func TestForeignValueIsMalformed(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newClient(t)
	s, err := New(Config{Client: rdb})
	require.NoError(t, err)

	require.NoError(t, mr.Set("cache:bad", "a value written by someone else"))

	err = s.Execute(ctx, "cache", func(x store.Session) error {
		_, err := x.Exists(ctx, store.Query{Key: "bad", Since: time.Now().Add(-time.Hour)})
		return err
	})
	require.ErrorIs(t, err, record.ErrMalformed)

	err = s.Execute(ctx, "cache", func(x store.Session) error {
		_, _, err := x.Find(ctx, store.Query{Key: "bad"})
		return err
	})
	require.ErrorIs(t, err, record.ErrMalformed)
}

func TestCloseOwnsClientOnlyWhenAsked(t *testing.T) {
	ctx := context.Background()
	_, rdb := newClient(t)

	shared, err := New(Config{Client: rdb})
	require.NoError(t, err)
	require.NoError(t, shared.Close(ctx))
	require.NoError(t, rdb.Ping(ctx).Err(), "client must stay open")

	owned, err := New(Config{Client: rdb, CloseClient: true})
	require.NoError(t, err)
	require.NoError(t, owned.Close(ctx))
	require.NoError(t, owned.Close(ctx))
	require.Error(t, rdb.Ping(ctx).Err())
}

// Package backend builds the store.Store selected by configuration.
package backend

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/calcache/codec"
	"github.com/unkn0wn-root/calcache/internal/config"
	"github.com/unkn0wn-root/calcache/record"
	"github.com/unkn0wn-root/calcache/store"
	"github.com/unkn0wn-root/calcache/store/bigcache"
	"github.com/unkn0wn-root/calcache/store/memory"
	"github.com/unkn0wn-root/calcache/store/redis"
	"github.com/unkn0wn-root/calcache/store/ristretto"
	"github.com/unkn0wn-root/calcache/store/sqlite"
)

// Codec returns the record codec called name. maxBytes > 0 caps encoded records.
func Codec(name string, maxBytes int) (codec.Codec[record.CacheRecord], error) {
	var c codec.Codec[record.CacheRecord]
	switch name {
	case "msgpack":
		c = codec.Msgpack[record.CacheRecord]{}
	case "json":
		c = codec.JSON[record.CacheRecord]{}
	case "cbor":
		cb, err := codec.NewCBOR[record.CacheRecord](true)
		if err != nil {
			return nil, err
		}
		c = cb
	case "protobuf":
		c = codec.Protobuf{}
	default:
		return nil, fmt.Errorf("backend: unknown codec %q", name)
	}
	if maxBytes > 0 {
		c = codec.Limit[record.CacheRecord]{Inner: c, Max: maxBytes}
	}
	return c, nil
}

// Open builds the store named by cfg.Backend. The caller owns the result and
// must Close it.
func Open(ctx context.Context, cfg config.Config) (store.Store, error) {
	c, err := Codec(cfg.Codec, cfg.MaxRecordBytes)
	if err != nil {
		return nil, err
	}

	switch cfg.Backend {
	case config.BackendMemory:
		return memory.New(), nil

	case config.BackendSQLite:
		s, err := sqlite.Open(ctx, sqlite.Config{Path: cfg.SQLitePath, Codec: c})
		if err != nil {
			return nil, err
		}
		return s, nil

	case config.BackendRedis:
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("backend: redis %s: %w", cfg.RedisAddr, err)
		}
		s, err := redis.New(redis.Config{
			Client:      rdb,
			CloseClient: true,
			Codec:       c,
			KeyPrefix:   cfg.RedisPrefix,
		})
		if err != nil {
			_ = rdb.Close()
			return nil, err
		}
		return s, nil

	case config.BackendBigCache:
		s, err := bigcache.NewStore(ctx, bigcache.Config{LifeWindow: cfg.BigCacheLifeWindow}, c)
		if err != nil {
			return nil, err
		}
		return s, nil

	case config.BackendRistretto:
		s, err := ristretto.NewStore(ristretto.Config{MaxCost: cfg.RistrettoMaxCost}, c)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("backend: unknown backend %q", cfg.Backend)
}

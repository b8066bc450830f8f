// Package bigcache keeps cache records in an allegro/bigcache instance.
package bigcache

import (
	"context"
	"errors"
	"time"

	bc "github.com/allegro/bigcache/v3"

	"github.com/unkn0wn-root/calcache/codec"
	"github.com/unkn0wn-root/calcache/record"
	"github.com/unkn0wn-root/calcache/store/kv"
)

type Backend struct {
	c *bc.BigCache
}

var _ kv.Backend = (*Backend)(nil)

// Config tunes BigCache. LifeWindow bounds how long a record survives at all;
// freshness is still decided by created_at, so it should be well above the
// cache TTL.
type Config struct {
	LifeWindow         time.Duration // 0 => 24h
	CleanWindow        time.Duration
	MaxEntriesInWindow int // 0 => 1024, sized for a course catalogue
	MaxEntrySize       int // 0 => 4096 bytes
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited
}

func New(ctx context.Context, cfg Config) (*Backend, error) {
	if cfg.LifeWindow <= 0 {
		cfg.LifeWindow = 24 * time.Hour
	}
	conf := bc.DefaultConfig(cfg.LifeWindow)
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	conf.MaxEntriesInWindow = 1024
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	conf.MaxEntrySize = 4096
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	conf.Verbose = false
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.New(ctx, conf)
	if err != nil {
		return nil, err
	}
	return &Backend{c: c}, nil
}

// NewStore builds a kv.Store over a new BigCache.
func NewStore(ctx context.Context, cfg Config, c codec.Codec[record.CacheRecord]) (*kv.Store, error) {
	b, err := New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return kv.New(b, c), nil
}

func (p *Backend) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, err := p.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (p *Backend) Set(_ context.Context, key string, value []byte) (bool, error) {
	// BigCache copies value into its shards; no per-entry TTL.
	return true, p.c.Set(key, value)
}

func (p *Backend) Close(_ context.Context) error {
	return p.c.Close()
}

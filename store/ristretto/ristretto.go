// Package ristretto keeps cache records in a dgraph-io/ristretto cache.
package ristretto

import (
	"context"
	"errors"

	rc "github.com/dgraph-io/ristretto"

	"github.com/unkn0wn-root/calcache/codec"
	"github.com/unkn0wn-root/calcache/record"
	"github.com/unkn0wn-root/calcache/store/kv"
)

type Backend struct {
	c *rc.Cache
}

var _ kv.Backend = (*Backend)(nil)

type Config struct {
	NumCounters int64 // 0 => 10 * expected records
	MaxCost     int64 // bytes; 0 => 64 MiB
	BufferItems int64 // 0 => 64
	Metrics     bool
	// Cost of an entry is its encoded size in bytes.
}

func New(cfg Config) (*Backend, error) {
	if cfg.MaxCost == 0 {
		cfg.MaxCost = 64 << 20
	}
	if cfg.NumCounters == 0 {
		cfg.NumCounters = 100_000
	}
	if cfg.BufferItems == 0 {
		cfg.BufferItems = 64
	}
	if cfg.NumCounters < 0 || cfg.MaxCost < 0 || cfg.BufferItems < 0 {
		return nil, errors.New("ristretto: invalid config")
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Backend{c: c}, nil
}

// NewStore builds a kv.Store over a new Ristretto cache.
func NewStore(cfg Config, c codec.Codec[record.CacheRecord]) (*kv.Store, error) {
	b, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return kv.New(b, c), nil
}

func (p *Backend) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := p.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, _ := v.([]byte)
	if b == nil {
		// self-heal: drop unexpected entry shape
		p.c.Del(key)
		return nil, false, nil
	}
	return b, true, nil
}

// Set waits for Ristretto's write buffers to drain so the record is visible
// to the next Get.
func (p *Backend) Set(_ context.Context, key string, value []byte) (bool, error) {
	if !p.c.Set(key, value, int64(len(value))) {
		return false, nil
	}
	p.c.Wait()
	return true, nil
}

func (p *Backend) Close(_ context.Context) error {
	p.c.Wait()
	p.c.Close()
	return nil
}

// Helper to expose metrics if desired by the application (not part of kv.Backend).
func (p *Backend) Metrics() *rc.Metrics { return p.c.Metrics }

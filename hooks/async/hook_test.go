package asynchook

import (
	"errors"
	"sync"
	"testing"

	"github.com/unkn0wn-root/calcache"
)

type countHooks struct {
	calcache.NopHooks
	mu    sync.Mutex
	ops   []string
	block chan struct{}
}

func (c *countHooks) StoreError(op, _ string, _ error) {
	if c.block != nil {
		<-c.block
	}
	c.mu.Lock()
	c.ops = append(c.ops, op)
	c.mu.Unlock()
}

func TestDeliversThenDrainsOnClose(t *testing.T) {
	inner := &countHooks{}
	h := New(inner, 2, 16)
	for i := 0; i < 10; i++ {
		h.StoreError("get", "k", errors.New("x"))
	}
	h.Close()
	if len(inner.ops) != 10 {
		t.Fatalf("expected 10 delivered events, got %d", len(inner.ops))
	}
	h.Close() // idempotent
	h.StoreError("get", "k", errors.New("after close"))
	if h.Dropped() != 1 {
		t.Fatalf("expected event after Close to be dropped, dropped=%d", h.Dropped())
	}
}

func TestDropsWhenFull(t *testing.T) {
	inner := &countHooks{block: make(chan struct{})}
	h := New(inner, 1, 1)

	// the worker takes at most one event and blocks; the queue holds one more
	for i := 0; i < 5; i++ {
		h.StoreError("save", "k", errors.New("x"))
	}
	if h.Dropped() < 3 {
		t.Fatalf("expected at least 3 drops, got %d", h.Dropped())
	}
	close(inner.block)
	h.Close()
}

// Package sloghooks implements calcache.Hooks on top of log/slog, with
// sampling for the noisy events and redacted keys.
package sloghooks

import (
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/calcache"
	"github.com/unkn0wn-root/calcache/internal/util"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	StoreErrorEvery uint64
	MalformedEvery  uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	storeErrCtr  atomic.Uint64
	malformedCtr atomic.Uint64
	nonAtomic    atomic.Bool
}

var _ calcache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	return util.Redact(k)
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) StoreError(op, key string, err error) {
	if h.l == nil || !sample(h.opts.StoreErrorEvery, &h.storeErrCtr) {
		return
	}
	h.l.Warn("calcache.store_error",
		"op", op,
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) MalformedRecord(key string, index int, err error) {
	if h.l == nil || !sample(h.opts.MalformedEvery, &h.malformedCtr) {
		return
	}
	h.l.Error("calcache.malformed_record",
		"key", h.redact(key),
		"index", index,
		"err", err)
}

// NonAtomicUpsert is logged once per Hooks value.
func (h *Hooks) NonAtomicUpsert(collection string) {
	if h.l == nil || h.nonAtomic.Swap(true) {
		return
	}
	h.l.Warn("calcache.non_atomic_upsert",
		"collection", collection,
		"msg", "store session lacks Upsert; concurrent saves may lose an update")
}

package calcache

import (
	"context"
	"time"

	"github.com/unkn0wn-root/calcache/calendar"
	"github.com/unkn0wn-root/calcache/store"
)

// Cache is a time-boxed store of event lists keyed by course/offering id.
type Cache interface {
	Enabled() bool
	Close(context.Context) error

	// Has reports whether a record for key was written within the TTL.
	// Always false when the cache is disabled or the record is unreadable.
	Has(ctx context.Context, key string) (bool, error)

	// Get returns the stored events for key in stored order, fresh or not.
	Get(ctx context.Context, key string) ([]calendar.Event, error)

	// Save replaces the record for key with events, stamped with the current time.
	Save(ctx context.Context, key string, events []calendar.Event) error
}

// Options configure a Cache. Only Store is required.
type Options struct {
	// Required
	Store store.Store

	Collection string           // "" => DefaultCollection
	TTL        time.Duration    // 0 => DefaultTTL
	Disabled   bool             // Has answers false and Save does nothing; Get still reads
	Logger     Logger           // if nil, NopLogger is used
	Hooks      Hooks            // if nil, NopHooks is used
	Now        func() time.Time // nil => time.Now
}

func New(opts Options) (Cache, error) {
	return newCache(opts)
}

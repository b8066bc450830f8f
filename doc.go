// Package calcache caches the event lists of course timetables so a calendar
// is not rebuilt on every request.
//
// One record per key holds the events of the last computation and the time it
// was written. A record is fresh while created_at >= now - TTL; staleness is
// decided at read time and nothing is ever expired or deleted.
//
// Components:
//   - store.Store: document store with scoped sessions (memory, SQLite,
//     Redis, BigCache, Ristretto under store/).
//   - record: explicit mapping between calendar.Event and stored records.
//   - codec.Codec: byte encoding for byte-oriented stores.
//
// Request pattern:
//
//	if fresh, _ := cache.Has(ctx, key); !fresh {
//	    events := buildCalendar(key)
//	    _ = cache.Save(ctx, key, events)
//	}
//	events, err := cache.Get(ctx, key)
//
// or simply calcache.Fetch(ctx, cache, key, buildCalendar).
package calcache

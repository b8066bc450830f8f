package calcache

import "time"

const (
	// DefaultTTL is how long a saved record counts as fresh.
	DefaultTTL = 30 * time.Minute
	// DefaultCollection names the collection (table, key prefix) records live in.
	DefaultCollection = "cache"
)

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

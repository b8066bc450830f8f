package calcache

import (
	"context"
	"errors"

	"github.com/unkn0wn-root/calcache/calendar"
)

// ComputeFunc produces the events for a key when the cache cannot serve them.
type ComputeFunc func(ctx context.Context) ([]calendar.Event, error)

// Fetch serves key from c while fresh and otherwise recomputes and saves it.
// A fresh record that vanished or cannot be decoded is recomputed as well.
// Errors from compute and Save are returned unchanged.
func Fetch(ctx context.Context, c Cache, key string, compute ComputeFunc) ([]calendar.Event, error) {
	fresh, err := c.Has(ctx, key)
	if err != nil {
		return nil, err
	}
	if fresh {
		events, err := c.Get(ctx, key)
		switch {
		case err == nil:
			return events, nil
		case !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrMalformedRecord):
			return nil, err
		}
	}

	events, err := compute(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.Save(ctx, key, events); err != nil {
		return nil, err
	}
	return events, nil
}

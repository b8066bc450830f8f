package ristretto

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/calcache/store"
	"github.com/unkn0wn-root/calcache/store/storetest"
)

func TestContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := NewStore(Config{}, nil)
		require.NoError(t, err)
		return s
	})
}

func TestInvalidConfig(t *testing.T) {
	_, err := New(Config{MaxCost: -1})
	require.Error(t, err)
}

func TestForeignValueSelfHeals(t *testing.T) {
	b, err := New(Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close(context.Background()) })

	b.c.Set("cache:x", "not bytes", 1)
	b.c.Wait()

	_, ok, err := b.Get(context.Background(), "cache:x")
	require.NoError(t, err)
	assert.False(t, ok)
	_, found := b.c.Get("cache:x")
	assert.False(t, found)
}

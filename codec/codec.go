// Package codec serializes cache records for stores that keep raw bytes
// (Redis, BigCache, Ristretto, SQLite event blobs).
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

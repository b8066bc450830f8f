package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// StorageKey namespaces a cache key by collection for flat key-value stores.
// collection must already satisfy store.ValidateCollection (no ":").
func StorageKey(collection, key string) string {
	return collection + ":" + key
}

// Redact returns a short, stable digest of key for logs.
func Redact(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}

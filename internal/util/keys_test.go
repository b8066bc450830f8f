package util

import "testing"

func TestStorageKey(t *testing.T) {
	if got := StorageKey("cache", "c220:2024"); got != "cache:c220:2024" {
		t.Fatalf("StorageKey = %q", got)
	}
}

func TestRedactStableAndShort(t *testing.T) {
	a, b := Redact("c220"), Redact("c220")
	if a != b {
		t.Fatalf("Redact not stable: %q vs %q", a, b)
	}
	if len(a) != 16 {
		t.Fatalf("Redact length = %d, want 16", len(a))
	}
	if Redact("c221") == a {
		t.Fatalf("Redact collides for different keys")
	}
}

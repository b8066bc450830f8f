package calcache

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
type Hooks interface {
	// The store failed during op ∈ {"has", "get", "save"}.
	StoreError(op, key string, err error)

	// A stored record could not be decoded on Get.
	// index is the failing event, -1 when the whole record is unreadable.
	MalformedRecord(key string, index int, err error)

	// Save fell back to find + replace/insert because the store session does
	// not implement store.Upserter (concurrent saves may lose an update).
	NonAtomicUpsert(collection string)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) StoreError(string, string, error)   {}
func (NopHooks) MalformedRecord(string, int, error) {}
func (NopHooks) NonAtomicUpsert(string)             {}

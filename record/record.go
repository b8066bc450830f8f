// Package record converts calendar events to and from the flat, storage-safe
// documents kept by a store.
//
// An EventRecord holds only primitive values (strings and instants), so any
// document backend can persist it. Instants are normalized to UTC; the zone an
// event was created in is not kept, only the instant it denotes.
package record

import "time"

// Field names used inside an EventRecord.
const (
	FieldUID         = "uid"
	FieldStart       = "start"
	FieldEnd         = "end"
	FieldSummary     = "summary"
	FieldDescription = "description"
	FieldLocation    = "location"
)

// requiredFields must be present and well typed for Decode to succeed.
var requiredFields = [...]string{FieldUID, FieldStart}

// EventRecord is the stored form of one calendar.Event.
type EventRecord map[string]any

// CacheRecord is the document stored per key: the encoded events of one course
// and the time they were written.
type CacheRecord struct {
	Key       string        `json:"key" msgpack:"key" cbor:"key"`
	CreatedAt time.Time     `json:"created_at" msgpack:"created_at" cbor:"created_at"`
	Events    []EventRecord `json:"events" msgpack:"events" cbor:"events"`
}

// Clone returns a deep copy of r. Records hold only immutable primitives, so
// copying the maps is enough.
func (r CacheRecord) Clone() CacheRecord {
	out := CacheRecord{Key: r.Key, CreatedAt: r.CreatedAt}
	if r.Events != nil {
		out.Events = make([]EventRecord, len(r.Events))
		for i, ev := range r.Events {
			out.Events[i] = ev.Clone()
		}
	}
	return out
}

// Clone returns a shallow copy of the map.
func (r EventRecord) Clone() EventRecord {
	if r == nil {
		return nil
	}
	out := make(EventRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

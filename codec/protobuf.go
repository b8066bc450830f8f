package codec

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/unkn0wn-root/calcache/record"
)

// Protobuf stores a CacheRecord as a google.protobuf.Struct, so any protobuf
// consumer can read cached documents without a generated schema.
// Instants are written as RFC3339Nano strings.
type Protobuf struct{}

var _ Codec[record.CacheRecord] = Protobuf{}

func (Protobuf) Encode(r record.CacheRecord) ([]byte, error) {
	events := make([]any, len(r.Events))
	for i, ev := range r.Events {
		m := make(map[string]any, len(ev))
		for k, v := range ev {
			if t, ok := v.(time.Time); ok {
				v = t.UTC().Format(time.RFC3339Nano)
			}
			m[k] = v
		}
		events[i] = m
	}
	s, err := structpb.NewStruct(map[string]any{
		"key":        r.Key,
		"created_at": r.CreatedAt.UTC().Format(time.RFC3339Nano),
		"events":     events,
	})
	if err != nil {
		return nil, fmt.Errorf("protobuf: %w", err)
	}
	return proto.Marshal(s)
}

func (Protobuf) Decode(b []byte) (record.CacheRecord, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(b, &s); err != nil {
		return record.CacheRecord{}, err
	}
	fields := s.GetFields()

	out := record.CacheRecord{Key: fields["key"].GetStringValue()}
	if ts := fields["created_at"].GetStringValue(); ts != "" {
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return record.CacheRecord{}, fmt.Errorf("protobuf: created_at: %w", err)
		}
		out.CreatedAt = t.UTC()
	}
	list := fields["events"].GetListValue().GetValues()
	out.Events = make([]record.EventRecord, 0, len(list))
	for i, v := range list {
		ev := v.GetStructValue()
		if ev == nil {
			return record.CacheRecord{}, fmt.Errorf("protobuf: event %d is not a struct", i)
		}
		out.Events = append(out.Events, record.EventRecord(ev.AsMap()))
	}
	return out, nil
}

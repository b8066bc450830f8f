package record

import (
	"time"
	"unicode/utf8"

	"github.com/unkn0wn-root/calcache/calendar"
)

// Encode maps e to its stored form. Start and End are converted to UTC; a zero
// End is left out of the record.
func Encode(e calendar.Event) (EventRecord, error) {
	if e.UID == "" {
		return nil, badEvent(FieldUID, "empty")
	}
	if e.Start.IsZero() {
		return nil, badEvent(FieldStart, "zero time")
	}
	if !e.End.IsZero() && e.End.Before(e.Start) {
		return nil, badEvent(FieldEnd, "before start")
	}
	text := [...]struct{ field, v string }{
		{FieldUID, e.UID},
		{FieldSummary, e.Summary},
		{FieldDescription, e.Description},
		{FieldLocation, e.Location},
	}
	for _, t := range text {
		if !utf8.ValidString(t.v) {
			return nil, badEvent(t.field, "invalid UTF-8")
		}
	}

	r := EventRecord{
		FieldUID:   e.UID,
		FieldStart: e.Start.UTC(),
	}
	if !e.End.IsZero() {
		r[FieldEnd] = e.End.UTC()
	}
	if e.Summary != "" {
		r[FieldSummary] = e.Summary
	}
	if e.Description != "" {
		r[FieldDescription] = e.Description
	}
	if e.Location != "" {
		r[FieldLocation] = e.Location
	}
	return r, nil
}

// Decode rebuilds an event from r. Unknown keys are ignored and missing
// optional fields stay zero.
func Decode(r EventRecord) (calendar.Event, error) {
	var e calendar.Event
	for _, f := range requiredFields {
		if v, ok := r[f]; !ok || v == nil {
			return e, malformed(f, "missing")
		}
	}

	var err error
	if e.UID, err = stringField(r, FieldUID); err != nil {
		return calendar.Event{}, err
	}
	if e.UID == "" {
		return calendar.Event{}, malformed(FieldUID, "empty")
	}
	if e.Start, err = timeField(r, FieldStart); err != nil {
		return calendar.Event{}, err
	}
	if e.End, err = timeField(r, FieldEnd); err != nil {
		return calendar.Event{}, err
	}
	if e.Summary, err = stringField(r, FieldSummary); err != nil {
		return calendar.Event{}, err
	}
	if e.Description, err = stringField(r, FieldDescription); err != nil {
		return calendar.Event{}, err
	}
	if e.Location, err = stringField(r, FieldLocation); err != nil {
		return calendar.Event{}, err
	}
	return e, nil
}

// EncodeAll encodes events in order. The returned error is an *IndexError.
func EncodeAll(events []calendar.Event) ([]EventRecord, error) {
	out := make([]EventRecord, len(events))
	for i, e := range events {
		r, err := Encode(e)
		if err != nil {
			return nil, &IndexError{Index: i, Err: err}
		}
		out[i] = r
	}
	return out, nil
}

// DecodeAll decodes records in order. The returned error is an *IndexError.
func DecodeAll(records []EventRecord) ([]calendar.Event, error) {
	out := make([]calendar.Event, len(records))
	for i, r := range records {
		e, err := Decode(r)
		if err != nil {
			return nil, &IndexError{Index: i, Err: err}
		}
		out[i] = e
	}
	return out, nil
}

func stringField(r EventRecord, field string) (string, error) {
	switch v := r[field].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", malformed(field, "not a string")
	}
}

// timeField accepts the shapes backends hand back for an instant: a time.Time,
// an RFC 3339 string (JSON, CBOR, structpb) or unix nanoseconds.
func timeField(r EventRecord, field string) (time.Time, error) {
	switch v := r[field].(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return v.UTC(), nil
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}, malformed(field, "not an RFC 3339 time")
		}
		return t.UTC(), nil
	case int64:
		return time.Unix(0, v).UTC(), nil
	default:
		return time.Time{}, malformed(field, "not a time")
	}
}

package codec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/calcache/calendar"
	"github.com/unkn0wn-root/calcache/record"
)

func sampleRecord(t *testing.T) (record.CacheRecord, []calendar.Event) {
	t.Helper()
	start := time.Date(2024, 10, 7, 9, 0, 0, 123456789, time.FixedZone("BST", 3600))
	events := []calendar.Event{
		{UID: "lec-1", Start: start, End: start.Add(time.Hour), Summary: "Lecture", Location: "311"},
		{UID: "tut-1", Start: start.Add(2 * time.Hour), Description: "Tutorial"},
	}
	rs, err := record.EncodeAll(events)
	require.NoError(t, err)
	return record.CacheRecord{
		Key:       "c220:2024",
		CreatedAt: time.Date(2024, 10, 1, 12, 0, 0, 5, time.UTC),
		Events:    rs,
	}, events
}

func TestCodecsRoundTripCacheRecord(t *testing.T) {
	codecs := map[string]Codec[record.CacheRecord]{
		"json":     JSON[record.CacheRecord]{},
		"msgpack":  Msgpack[record.CacheRecord]{},
		"cbor":     MustCBOR[record.CacheRecord](false),
		"cbor-det": MustCBOR[record.CacheRecord](true),
		"protobuf": Protobuf{},
	}
	for name, c := range codecs {
		t.Run(name, func(t *testing.T) {
			in, events := sampleRecord(t)

			b, err := c.Encode(in)
			require.NoError(t, err)
			out, err := c.Decode(b)
			require.NoError(t, err)

			assert.Equal(t, in.Key, out.Key)
			assert.True(t, in.CreatedAt.Equal(out.CreatedAt), "created_at %v != %v", in.CreatedAt, out.CreatedAt)

			got, err := record.DecodeAll(out.Events)
			require.NoError(t, err)
			require.Len(t, got, len(events))
			for i := range events {
				assert.True(t, events[i].Equal(got[i]), "event %d: %+v != %+v", i, events[i], got[i])
			}
		})
	}
}

func TestCBORDeterministicIsStable(t *testing.T) {
	c := MustCBOR[map[string]int](true)
	a, err := c.Encode(map[string]int{"b": 2, "a": 1, "c": 3})
	require.NoError(t, err)
	b, err := c.Encode(map[string]int{"c": 3, "a": 1, "b": 2})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestLimitRejectsOversized(t *testing.T) {
	in, _ := sampleRecord(t)
	raw, err := JSON[record.CacheRecord]{}.Encode(in)
	require.NoError(t, err)

	c := Limit[record.CacheRecord]{Inner: JSON[record.CacheRecord]{}, Max: 16}
	_, err = c.Encode(in)
	require.ErrorIs(t, err, ErrTooLarge, "records that could not be read back are not written")
	_, err = c.Decode(raw)
	require.ErrorIs(t, err, ErrTooLarge)

	c.Max = len(raw)
	b, err := c.Encode(in)
	require.NoError(t, err)
	_, err = c.Decode(b)
	require.NoError(t, err)

	c.Max = 0
	_, err = c.Decode(raw)
	require.NoError(t, err)
}

func TestMsgpackIsDeterministic(t *testing.T) {
	in, _ := sampleRecord(t)
	a, err := Msgpack[record.CacheRecord]{}.Encode(in)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		b, err := Msgpack[record.CacheRecord]{}.Encode(in)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
}

func TestProtobufRejectsGarbage(t *testing.T) {
	_, err := Protobuf{}.Decode([]byte{0xff, 0xff, 0xff})
	require.Error(t, err)
}

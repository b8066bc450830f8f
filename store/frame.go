package store

import (
	"fmt"
	"time"

	"github.com/unkn0wn-root/calcache/codec"
	"github.com/unkn0wn-root/calcache/internal/wire"
	"github.com/unkn0wn-root/calcache/record"
)

// EncodeFrame serializes doc for byte-oriented backends. created_at is carried
// in a fixed header so freshness can be read without decoding the events.
func EncodeFrame(c codec.Codec[record.CacheRecord], doc record.CacheRecord) ([]byte, error) {
	payload, err := c.Encode(doc)
	if err != nil {
		return nil, fmt.Errorf("encode %q: %w", doc.Key, err)
	}
	return wire.EncodeRecord(doc.CreatedAt, payload), nil
}

// DecodeFrame is the inverse of EncodeFrame. Corrupt frames and payloads are
// reported as record.ErrMalformed.
func DecodeFrame(c codec.Codec[record.CacheRecord], b []byte) (record.CacheRecord, error) {
	createdAt, payload, err := wire.DecodeRecord(b)
	if err != nil {
		return record.CacheRecord{}, fmt.Errorf("%w: %w", record.ErrMalformed, err)
	}
	doc, err := c.Decode(payload)
	if err != nil {
		return record.CacheRecord{}, fmt.Errorf("%w: %w", record.ErrMalformed, err)
	}
	doc.CreatedAt = createdAt
	return doc, nil
}

// FrameCreatedAt reads created_at from a frame or a prefix of at least
// wire.HeaderLen bytes.
func FrameCreatedAt(b []byte) (time.Time, error) {
	createdAt, _, err := wire.DecodeHeader(b)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", record.ErrMalformed, err)
	}
	return createdAt, nil
}

// FrameHeaderLen is the prefix length FrameCreatedAt needs.
const FrameHeaderLen = wire.HeaderLen

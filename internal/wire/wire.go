package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"time"
)

const (
	version    byte = 1
	kindRecord byte = 1

	// HeaderLen is the size of the fixed prefix that carries created_at.
	// Stores can read only this many bytes to answer a freshness query.
	HeaderLen = 4 + 1 + 1 + 8 + 4
)

var (
	ErrCorrupt = errors.New("calcache: corrupt entry")
	magic4     = [...]byte{'C', 'A', 'L', 'C'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Record: magic(4) | ver(1) | kind(1=record) | createdAt(i64 be, unix nanos) | vlen(u32 be) | payload(vlen)
func EncodeRecord(createdAt time.Time, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(HeaderLen + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kindRecord)

	var u8 [8]byte
	var u4 [4]byte

	binary.BigEndian.PutUint64(u8[:], uint64(createdAt.UnixNano()))
	buf.Write(u8[:])

	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

// DecodeHeader reads created_at and the payload length from the first
// HeaderLen bytes of b. b may be truncated after the header.
func DecodeHeader(b []byte) (createdAt time.Time, vlen int, err error) {
	if len(b) < HeaderLen || !hasMagic(b) || b[4] != version || b[5] != kindRecord {
		return time.Time{}, 0, ErrCorrupt
	}
	off := 6
	nanos := int64(binary.BigEndian.Uint64(b[off : off+8]))
	off += 8
	vlen = int(binary.BigEndian.Uint32(b[off : off+4]))
	return time.Unix(0, nanos).UTC(), vlen, nil
}

// DecodeRecord validates the full frame. Trailing bytes are rejected.
func DecodeRecord(b []byte) (createdAt time.Time, payload []byte, err error) {
	createdAt, vlen, err := DecodeHeader(b)
	if err != nil {
		return time.Time{}, nil, err
	}
	if vlen != len(b)-HeaderLen {
		return time.Time{}, nil, ErrCorrupt
	}
	return createdAt, b[HeaderLen:], nil
}

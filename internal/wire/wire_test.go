package wire

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"
)

func mustDecodeRecord(t *testing.T, b []byte) (time.Time, []byte) {
	t.Helper()
	ts, p, err := DecodeRecord(b)
	if err != nil {
		t.Fatalf("DecodeRecord error: %v", err)
	}
	return ts, p
}

func TestRecordRTEmptyAndNonEmpty(t *testing.T) {
	cases := []struct {
		createdAt time.Time
		payload   []byte
	}{
		{time.Unix(0, 0), nil},
		{time.Date(2024, 10, 7, 9, 30, 0, 123456789, time.FixedZone("BST", 3600)), []byte("hello")},
		{time.Date(2262, 1, 1, 0, 0, 0, 0, time.UTC), []byte{0, 1, 2, 3, 4}},
	}
	for _, tc := range cases {
		enc := EncodeRecord(tc.createdAt, tc.payload)
		ts, p := mustDecodeRecord(t, enc)
		if !ts.Equal(tc.createdAt) {
			t.Fatalf("createdAt mismatch: got %v want %v", ts, tc.createdAt)
		}
		if ts.Location() != time.UTC {
			t.Fatalf("createdAt should be UTC, got %v", ts.Location())
		}
		if !bytes.Equal(p, tc.payload) {
			t.Fatalf("payload mismatch: got %x want %x", p, tc.payload)
		}
	}
}

func TestHeaderOnlyPrefix(t *testing.T) {
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	enc := EncodeRecord(want, []byte("a payload we do not need"))

	ts, vlen, err := DecodeHeader(enc[:HeaderLen])
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if !ts.Equal(want) || vlen != len("a payload we do not need") {
		t.Fatalf("header mismatch: ts=%v vlen=%d", ts, vlen)
	}
}

func TestRecordRejectsTrailingBytes(t *testing.T) {
	enc := EncodeRecord(time.Now(), []byte("x"))
	enc = append(enc, 0xDE, 0xAD) // add junk
	if _, _, err := DecodeRecord(enc); err == nil {
		t.Fatalf("expected error on trailing bytes")
	}
}

func TestRecordCorruptHeadersAndLengths(t *testing.T) {
	enc := EncodeRecord(time.Now(), []byte("abc"))

	// bad magic
	badMagic := append([]byte(nil), enc...)
	badMagic[0] = 'X'
	if _, _, err := DecodeRecord(badMagic); err == nil {
		t.Fatalf("expected error on bad magic")
	}

	// wrong version
	badVer := append([]byte(nil), enc...)
	badVer[4] = version + 1
	if _, _, err := DecodeRecord(badVer); err == nil {
		t.Fatalf("expected error on bad version")
	}

	// wrong kind
	badKind := append([]byte(nil), enc...)
	badKind[5] = kindRecord + 1
	if _, _, err := DecodeRecord(badKind); err == nil {
		t.Fatalf("expected error on bad kind")
	}

	// vlen larger than the payload
	badLen := append([]byte(nil), enc...)
	binary.BigEndian.PutUint32(badLen[14:18], 1<<20)
	if _, _, err := DecodeRecord(badLen); err == nil {
		t.Fatalf("expected error on oversized vlen")
	}

	// truncated header
	if _, _, err := DecodeHeader(enc[:HeaderLen-1]); err == nil {
		t.Fatalf("expected error on short header")
	}

	// foreign value written under our key
	if _, _, err := DecodeRecord([]byte("not-wire-format")); err == nil {
		t.Fatalf("expected error on foreign bytes")
	}
}

package logrus

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/unkn0wn-root/calcache"
)

func TestLogrusLoggerFields(t *testing.T) {
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)
	l := LogrusLogger{E: logrus.NewEntry(base)}

	l.Warn("store error", calcache.Fields{"op": "has", "err": errors.New("boom")})

	e := hook.LastEntry()
	if e == nil {
		t.Fatalf("expected an entry")
	}
	if e.Level != logrus.WarnLevel || e.Message != "store error" {
		t.Fatalf("unexpected entry: %v %q", e.Level, e.Message)
	}
	if e.Data["op"] != "has" {
		t.Fatalf("missing op field: %v", e.Data)
	}
	if err, ok := e.Data[logrus.ErrorKey].(error); !ok || err.Error() != "boom" {
		t.Fatalf("expected error under %q: %v", logrus.ErrorKey, e.Data)
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New(nil, "loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

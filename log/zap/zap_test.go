package zap

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/unkn0wn-root/calcache"
)

func TestZapLoggerFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := ZapLogger{L: zap.New(core)}

	l.Warn("store error", calcache.Fields{"op": "save", "err": errors.New("boom")})
	l.Debug("saved events", nil)

	entries := logs.AllUntimed()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	e := entries[0]
	if e.Level != zapcore.WarnLevel || e.Message != "store error" {
		t.Fatalf("unexpected entry: %+v", e.Entry)
	}
	ctx := e.ContextMap()
	if ctx["op"] != "save" || ctx["err"] != "boom" {
		t.Fatalf("unexpected fields: %v", ctx)
	}
	if len(entries[1].Context) != 0 {
		t.Fatalf("expected no fields, got %v", entries[1].Context)
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	l, err := New("info")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if l.L.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("debug should be disabled at info level")
	}
}

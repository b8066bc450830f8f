// Package slog adapts a *slog.Logger to calcache.Logger.
package slog

import (
	"context"
	"io"
	stdslog "log/slog"
	"sort"

	"github.com/unkn0wn-root/calcache"
)

var _ calcache.Logger = Logger{}

type Logger struct{ L *stdslog.Logger }

// New builds a JSON logger writing to w at level ("debug", "info", "warn", "error").
func New(w io.Writer, level string) (Logger, error) {
	var lvl stdslog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return Logger{}, err
	}
	h := stdslog.NewJSONHandler(w, &stdslog.HandlerOptions{Level: lvl})
	return Logger{L: stdslog.New(h).With("component", "calcache")}, nil
}

func (s Logger) Debug(msg string, f calcache.Fields) { s.log(stdslog.LevelDebug, msg, f) }
func (s Logger) Info(msg string, f calcache.Fields)  { s.log(stdslog.LevelInfo, msg, f) }
func (s Logger) Warn(msg string, f calcache.Fields)  { s.log(stdslog.LevelWarn, msg, f) }
func (s Logger) Error(msg string, f calcache.Fields) { s.log(stdslog.LevelError, msg, f) }

func (s Logger) log(lvl stdslog.Level, msg string, f calcache.Fields) {
	s.L.LogAttrs(context.Background(), lvl, msg, attrs(f)...)
}

func attrs(f calcache.Fields) []stdslog.Attr {
	if len(f) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]stdslog.Attr, 0, len(f))
	for _, k := range keys {
		out = append(out, stdslog.Any(k, f[k]))
	}
	return out
}

// Package logrus adapts a *logrus.Entry to calcache.Logger.
package logrus

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/unkn0wn-root/calcache"
)

var _ calcache.Logger = LogrusLogger{}

type LogrusLogger struct{ E *logrus.Entry }

// New builds a JSON logger writing to w at level.
func New(w io.Writer, level string) (LogrusLogger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return LogrusLogger{}, err
	}
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(lvl)
	l.SetFormatter(&logrus.JSONFormatter{})
	return LogrusLogger{E: logrus.NewEntry(l).WithField("component", "calcache")}, nil
}

func (l LogrusLogger) Debug(msg string, f calcache.Fields) { l.with(f).Debug(msg) }
func (l LogrusLogger) Info(msg string, f calcache.Fields)  { l.with(f).Info(msg) }
func (l LogrusLogger) Warn(msg string, f calcache.Fields)  { l.with(f).Warn(msg) }
func (l LogrusLogger) Error(msg string, f calcache.Fields) { l.with(f).Error(msg) }

// with maps an "err" field onto logrus' error key.
func (l LogrusLogger) with(f calcache.Fields) *logrus.Entry {
	if len(f) == 0 {
		return l.E
	}
	fields := make(logrus.Fields, len(f))
	for k, v := range f {
		if err, ok := v.(error); ok && k == "err" {
			fields[logrus.ErrorKey] = err
			continue
		}
		fields[k] = v
	}
	return l.E.WithFields(fields)
}

package calcache

// Fields carries structured context for one log line.
type Fields map[string]any

// Logger is the leveled logging surface the cache writes to. Keys in Fields
// are redacted by the cache before they reach it. Adapters for zap, logrus
// and slog live under log/; a nil Options.Logger means NopLogger.
type Logger interface {
	Debug(msg string, f Fields)
	Info(msg string, f Fields)
	Warn(msg string, f Fields)
	Error(msg string, f Fields)
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, Fields) {}
func (NopLogger) Info(string, Fields)  {}
func (NopLogger) Warn(string, Fields)  {}
func (NopLogger) Error(string, Fields) {}

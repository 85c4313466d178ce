package rabbitmq_common

// Logger is the minimal logging surface this package needs. Callers
// bridge their own logger to it so the package stays framework-free.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(err error, msg string, keysAndValues ...interface{})
}

type noopLogger struct{}

func (l *noopLogger) Debug(msg string, keysAndValues ...interface{})             {}
func (l *noopLogger) Info(msg string, keysAndValues ...interface{})              {}
func (l *noopLogger) Warn(msg string, keysAndValues ...interface{})              {}
func (l *noopLogger) Error(err error, msg string, keysAndValues ...interface{}) {}

// NewNoopLogger returns a logger that discards everything.
func NewNoopLogger() Logger {
	return &noopLogger{}
}

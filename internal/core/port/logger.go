package port

type Fields map[string]interface{}

// LoggerPort is the logging contract used across the application.
type LoggerPort interface {
	Info(msg string, fields Fields)
	Warn(msg string, fields Fields)
	Error(msg string, err error, fields Fields)
	Debug(msg string, fields Fields)

	WithFields(fields Fields) LoggerPort
}

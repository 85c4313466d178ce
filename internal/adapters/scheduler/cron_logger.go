package scheduler

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/jian131/agent-bds/internal/core/port"
)

// cronLogger adapts the application logger to cron's logging interface.
// Cron's Info is chatty scheduling noise, so it lands on Debug.
type cronLogger struct {
	logger port.LoggerPort
}

func newCronLogger(logger port.LoggerPort) cron.Logger {
	return &cronLogger{logger: logger.WithFields(port.Fields{"component": "cron"})}
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, kvToFields(keysAndValues))
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, err, kvToFields(keysAndValues))
}

// kvToFields pairs up a variadic key-value list. A trailing key without
// a value is kept with a nil value rather than dropped.
func kvToFields(keysAndValues []interface{}) port.Fields {
	if len(keysAndValues) == 0 {
		return nil
	}

	fields := make(port.Fields, len(keysAndValues)/2+1)
	for i := 0; i < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", keysAndValues[i])
		}
		if i+1 < len(keysAndValues) {
			fields[key] = keysAndValues[i+1]
		} else {
			fields[key] = nil
		}
	}
	return fields
}

package rabbitmq

import (
	"fmt"

	"github.com/jian131/agent-bds/internal/core/port"
	"github.com/jian131/agent-bds/pkg/rabbitmq/rabbitmq_common"
)

// loggerBridge adapts the application logger to the key-value logger
// the rabbitmq package expects.
type loggerBridge struct {
	logger port.LoggerPort
}

// NewPkgLoggerBridge wraps the application logger for the rabbitmq
// package. The composition root hands this to the connection manager.
func NewPkgLoggerBridge(logger port.LoggerPort) rabbitmq_common.Logger {
	return &loggerBridge{logger: logger.WithFields(port.Fields{"component": "rabbitmq"})}
}

func (b *loggerBridge) Debug(msg string, keysAndValues ...interface{}) {
	b.logger.Debug(msg, kvToFields(keysAndValues))
}

func (b *loggerBridge) Info(msg string, keysAndValues ...interface{}) {
	b.logger.Info(msg, kvToFields(keysAndValues))
}

func (b *loggerBridge) Warn(msg string, keysAndValues ...interface{}) {
	b.logger.Warn(msg, kvToFields(keysAndValues))
}

func (b *loggerBridge) Error(err error, msg string, keysAndValues ...interface{}) {
	b.logger.Error(msg, err, kvToFields(keysAndValues))
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

package fluentlogger

import (
	"fmt"

	"github.com/fluent/fluent-logger-golang/fluent"
)

// Config holds the Fluent Bit forwarder endpoint.
type Config struct {
	Host      string // "127.0.0.1", or the service name inside Docker
	Port      int    // usually 24224
	TagPrefix string // common prefix for every tag this service emits
}

// NewClient builds a Fluent Bit client. Creating the client does not
// dial the forwarder; connection errors surface on the first send.
func NewClient(cfg Config) (*fluent.Fluent, error) {
	if cfg.TagPrefix == "" {
		return nil, fmt.Errorf("fluentd tag prefix is required")
	}

	logger, err := fluent.New(fluent.Config{
		FluentHost: cfg.Host,
		FluentPort: cfg.Port,
		TagPrefix:  cfg.TagPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create fluentd logger: %w", err)
	}

	return logger, nil
}

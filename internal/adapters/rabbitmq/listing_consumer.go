package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jian131/agent-bds/internal/constants"
	"github.com/jian131/agent-bds/internal/contextkeys"
	"github.com/jian131/agent-bds/internal/contracts"
	"github.com/jian131/agent-bds/internal/core/domain"
	"github.com/jian131/agent-bds/internal/core/port"
	"github.com/jian131/agent-bds/internal/core/usecase"
	"github.com/jian131/agent-bds/pkg/rabbitmq/rabbitmq_common"
	"github.com/jian131/agent-bds/pkg/rabbitmq/rabbitmq_consumer"
)

// retryDelayMS is how long a rejected batch waits before re-delivery.
const retryDelayMS = 15_000

// ConsumerOptions carries the tunables of the ingest consumer; queue
// and exchange names are fixed in constants.
type ConsumerOptions struct {
	URL          string
	BatchSize    int
	BatchTimeout time.Duration
	MaxRetries   int
}

// ListingConsumerAdapter drains the validated-listings queue in
// batches and hands them to the ingest use case. Schema-invalid
// messages are dropped inside the batch: they would fail every retry
// the same way, so requeueing them only clogs the loop. Storage errors
// fail the whole batch and take the retry path.
type ListingConsumerAdapter struct {
	consumer *rabbitmq_consumer.BatchConsumer
	ingest   *usecase.IngestListingsUseCase
	logger   port.LoggerPort
}

// NewListingConsumerAdapter declares the ingest topology (main queue,
// retry loop, final DLQ) and wires the batch handler.
func NewListingConsumerAdapter(
	connManager *rabbitmq_common.ConnectionManager,
	opts ConsumerOptions,
	ingest *usecase.IngestListingsUseCase,
	logger port.LoggerPort,
) (*ListingConsumerAdapter, error) {
	if connManager == nil {
		return nil, fmt.Errorf("connection manager cannot be nil")
	}
	if ingest == nil {
		return nil, fmt.Errorf("ingest use case cannot be nil")
	}

	adapter := &ListingConsumerAdapter{
		ingest: ingest,
		logger: logger.WithFields(port.Fields{"component": "listing_consumer"}),
	}

	consumerCfg := rabbitmq_consumer.ConsumerConfig{
		Config: rabbitmq_common.Config{URL: opts.URL},

		QueueName:    constants.QueueValidatedListings,
		DeclareQueue: true,
		DurableQueue: true,

		ExchangeNameForBind:    constants.ExchangeListings,
		DeclareExchangeForBind: true,
		ExchangeTypeForBind:    "direct",
		DurableExchangeForBind: true,
		RoutingKeyForBind:      constants.RoutingKeyListingsSave,

		PrefetchCount: opts.BatchSize,
		ConsumerTag:   "agent-bds-ingest",

		EnableRetryMechanism: true,
		RetryExchange:        constants.ListingsRetryExchange,
		RetryQueue:           constants.ListingsRetryQueue,
		RetryTTL:             retryDelayMS,
		FinalDLXExchange:     constants.ListingsFinalDLX,
		FinalDLQ:             constants.ListingsFinalDLQ,
		FinalDLQRoutingKey:   constants.ListingsFinalDLQRoutingKey,
		MaxRetries:           opts.MaxRetries,

		Logger: NewPkgLoggerBridge(logger),
	}

	consumer, err := rabbitmq_consumer.NewBatchConsumer(
		consumerCfg,
		adapter.handleBatch,
		opts.BatchSize,
		opts.BatchTimeout,
		connManager,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create listings consumer: %w", err)
	}
	adapter.consumer = consumer

	return adapter, nil
}

// handleBatch decodes every delivery, drops the undecodable ones and
// saves the rest in one storage round trip.
func (a *ListingConsumerAdapter) handleBatch(deliveries []amqp.Delivery) error {
	listings := make([]domain.Listing, 0, len(deliveries))
	dropped := 0

	for _, d := range deliveries {
		listing, err := a.decodeDelivery(d)
		if err != nil {
			dropped++
			a.logger.Warn("Dropping invalid message", port.Fields{
				"delivery_tag": d.DeliveryTag,
				"error":        err.Error(),
			})
			continue
		}
		listings = append(listings, listing)
	}

	if dropped > 0 {
		a.logger.Warn("Batch contained invalid messages", port.Fields{
			"batch_size": len(deliveries),
			"dropped":    dropped,
		})
	}
	if len(listings) == 0 {
		return nil
	}

	ctx := contextkeys.ContextWithLogger(context.Background(), a.logger)
	if _, err := a.ingest.Execute(ctx, listings); err != nil {
		return fmt.Errorf("ingest failed for batch of %d: %w", len(listings), err)
	}
	return nil
}

// decodeDelivery checks the contract headers and schema before the
// payload reaches any typed code.
func (a *ListingConsumerAdapter) decodeDelivery(d amqp.Delivery) (domain.Listing, error) {
	eventType, _ := d.Headers[constants.HeaderEventType].(string)
	eventVersion, _ := d.Headers[constants.HeaderEventVersion].(string)

	if err := contracts.ValidateEvent(eventType, eventVersion, d.Body); err != nil {
		return domain.Listing{}, err
	}

	var dto ListingEventDTO
	if err := json.Unmarshal(d.Body, &dto); err != nil {
		return domain.Listing{}, fmt.Errorf("failed to unmarshal listing event: %w", err)
	}

	return dto.toDomain(), nil
}

// Start blocks until the context is cancelled or the connection drops.
func (a *ListingConsumerAdapter) Start(ctx context.Context) error {
	return a.consumer.StartConsuming(ctx)
}

func (a *ListingConsumerAdapter) Close() error {
	return a.consumer.Close()
}

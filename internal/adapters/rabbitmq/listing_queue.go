package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jian131/agent-bds/internal/constants"
	"github.com/jian131/agent-bds/internal/core/domain"
	"github.com/jian131/agent-bds/internal/core/port"
	"github.com/jian131/agent-bds/pkg/rabbitmq/rabbitmq_common"
	"github.com/jian131/agent-bds/pkg/rabbitmq/rabbitmq_producer"
)

const publishTimeout = 10 * time.Second

// ListingQueueAdapter publishes validated listings onto the ingest
// exchange, one event per listing so consumers can batch and retry at
// message granularity.
type ListingQueueAdapter struct {
	producer   *rabbitmq_producer.Publisher
	routingKey string
	logger     port.LoggerPort
}

// NewListingQueueAdapter opens a publisher channel on the shared
// connection and declares the listings exchange.
func NewListingQueueAdapter(connManager *rabbitmq_common.ConnectionManager, amqpURL string, logger port.LoggerPort) (*ListingQueueAdapter, error) {
	if connManager == nil {
		return nil, fmt.Errorf("connection manager cannot be nil")
	}

	producer, err := rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
		Config:                   rabbitmq_common.Config{URL: amqpURL},
		ExchangeName:             constants.ExchangeListings,
		ExchangeType:             "direct",
		DurableExchange:          true,
		DeclareExchangeIfMissing: true,
		Logger:                   NewPkgLoggerBridge(logger),
	}, connManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create listings publisher: %w", err)
	}

	return &ListingQueueAdapter{
		producer:   producer,
		routingKey: constants.RoutingKeyListingsSave,
		logger:     logger.WithFields(port.Fields{"component": "listing_queue"}),
	}, nil
}

// PublishBatch sends each listing as its own persistent message. The
// first publish failure aborts the batch; the caller decides whether a
// partially published batch matters (the consumer side dedupes by ID).
func (a *ListingQueueAdapter) PublishBatch(ctx context.Context, listings []domain.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	for _, listing := range listings {
		body, err := json.Marshal(toEventDTO(listing))
		if err != nil {
			return fmt.Errorf("failed to marshal listing %s: %w", listing.ID, err)
		}

		msg := amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Headers: amqp.Table{
				constants.HeaderEventType:    constants.EventListingCollected,
				constants.HeaderEventVersion: constants.EventListingCollectedVersion,
			},
		}

		publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
		err = a.producer.Publish(publishCtx, a.routingKey, msg)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to publish listing %s: %w", listing.ID, err)
		}
	}

	a.logger.Info("Published listing batch", port.Fields{
		"count":       len(listings),
		"routing_key": a.routingKey,
	})
	return nil
}

func (a *ListingQueueAdapter) Close() error {
	return a.producer.Close()
}

package rabbitmq_consumer

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jian131/agent-bds/pkg/rabbitmq/rabbitmq_common"
)

// BatchMessageHandler processes a slice of deliveries. A non-nil error
// sends the whole batch down the retry path.
type BatchMessageHandler func(deliveries []amqp.Delivery) error

// BatchConsumer accumulates deliveries and hands them to the handler in
// batches, whichever fills first: the size cap or the timeout.
type BatchConsumer struct {
	baseConsumer *baseConsumer
	handler      BatchMessageHandler
	batchSize    int
	batchTimeout time.Duration
}

// NewBatchConsumer builds the consumer and its queue topology. The
// prefetch window is raised to the batch size when it is smaller,
// otherwise the batch could never fill.
func NewBatchConsumer(cfg ConsumerConfig, handler BatchMessageHandler, batchSize int, batchTimeout time.Duration, connManager *rabbitmq_common.ConnectionManager) (*BatchConsumer, error) {
	if handler == nil {
		return nil, fmt.Errorf("batch consumer: message handler is required")
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch consumer: batch size must be positive")
	}

	if cfg.PrefetchCount < batchSize {
		cfg.PrefetchCount = batchSize
	}

	bc, err := newBaseConsumer(cfg, connManager)
	if err != nil {
		return nil, fmt.Errorf("batch consumer: %w", err)
	}

	return &BatchConsumer{
		baseConsumer: bc,
		handler:      handler,
		batchSize:    batchSize,
		batchTimeout: batchTimeout,
	}, nil
}

// StartConsuming blocks until the context is cancelled or the
// connection drops.
func (c *BatchConsumer) StartConsuming(ctx context.Context) error {
	if c.baseConsumer.channel == nil || c.baseConsumer.connection.IsClosed() {
		return fmt.Errorf("batch consumer: not connected")
	}

	msgs, err := c.baseConsumer.channel.Consume(
		c.baseConsumer.actualQueueName,
		c.baseConsumer.config.ConsumerTag,
		false, // auto-ack
		c.baseConsumer.config.ExclusiveConsumer,
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("batch consumer: failed to register a consumer: %w", err)
	}

	c.baseConsumer.Logger.Info("Waiting for messages",
		"queue_name", c.baseConsumer.actualQueueName,
		"batch_size", c.batchSize,
		"batch_timeout", c.batchTimeout)

	c.baseConsumer.wg.Add(1)
	go func() {
		defer c.baseConsumer.wg.Done()

		batch := make([]amqp.Delivery, 0, c.batchSize)
		// The timer only runs while a batch is filling. Stop and drain
		// it right away so a stale tick cannot flush an empty batch.
		timer := time.NewTimer(c.batchTimeout)
		if !timer.Stop() {
			<-timer.C
		}

		for {
			select {
			case <-ctx.Done():
				c.baseConsumer.Logger.Info("Context cancelled, processing final batch")
				c.processBatch(batch)
				return

			case msg, ok := <-msgs:
				if !ok {
					c.baseConsumer.Logger.Info("Deliveries channel closed, processing final batch")
					c.processBatch(batch)
					return
				}

				if len(batch) == 0 {
					timer.Reset(c.batchTimeout)
				}
				batch = append(batch, msg)

				if len(batch) >= c.batchSize {
					c.baseConsumer.Logger.Debug("Batch size reached",
						"batch_size", len(batch))
					if !timer.Stop() {
						<-timer.C
					}
					c.processBatch(batch)
					batch = make([]amqp.Delivery, 0, c.batchSize)
				}

			case <-timer.C:
				if len(batch) > 0 {
					c.baseConsumer.Logger.Debug("Batch timeout reached",
						"batch_size", len(batch))
					c.processBatch(batch)
					batch = make([]amqp.Delivery, 0, c.batchSize)
				}
			}
		}
	}()

	notifyClose := make(chan *amqp.Error)
	c.baseConsumer.connection.NotifyClose(notifyClose)

	select {
	case <-ctx.Done():
		c.baseConsumer.Logger.Info("Context cancelled, shutting down consumer",
			"consumer_tag", c.baseConsumer.config.ConsumerTag)
		return nil

	case err := <-notifyClose:
		c.baseConsumer.Logger.Error(err, "Connection closed for consumer",
			"consumer_tag", c.baseConsumer.config.ConsumerTag)
		return err
	}
}

// processBatch runs the handler, then acks the whole batch or routes
// each message through the retry loop.
func (c *BatchConsumer) processBatch(batch []amqp.Delivery) {
	if len(batch) == 0 {
		return
	}

	if err := c.handler(batch); err == nil {
		lastTag := batch[len(batch)-1].DeliveryTag
		_ = c.baseConsumer.channel.Ack(lastTag, true)
		c.baseConsumer.Logger.Debug("Acked batch", "batch_size", len(batch))
		return
	} else {
		c.baseConsumer.Logger.Error(err, "Handler returned error for batch")
	}

	if !c.baseConsumer.config.EnableRetryMechanism {
		lastTag := batch[len(batch)-1].DeliveryTag
		_ = c.baseConsumer.channel.Nack(lastTag, true, false) // multiple, no requeue
		c.baseConsumer.Logger.Info("Retry disabled, nacked batch without requeue")
		return
	}

	// Retries are per message: some deliveries in the batch may already
	// have exhausted their attempts.
	for _, d := range batch {
		deathCount := c.baseConsumer.getDeathCount(d, c.baseConsumer.actualQueueName)
		if deathCount < int64(c.baseConsumer.config.MaxRetries) {
			c.baseConsumer.Logger.Info("Nacking message for retry",
				"delivery_tag", d.DeliveryTag,
				"death_count", deathCount)
			_ = c.baseConsumer.channel.Nack(d.DeliveryTag, false, false) // to retry loop via DLX
			continue
		}

		c.baseConsumer.Logger.Info("Max retries reached, publishing to final DLX",
			"delivery_tag", d.DeliveryTag)
		err := c.baseConsumer.finalDlxPublisher.Publish(
			context.Background(),
			c.baseConsumer.config.FinalDLQRoutingKey,
			amqp.Publishing{
				ContentType:  d.ContentType,
				Body:         d.Body,
				Headers:      d.Headers,
				Timestamp:    time.Now(),
				DeliveryMode: amqp.Persistent,
			},
		)
		if err != nil {
			c.baseConsumer.Logger.Error(err, "Failed to publish to final DLX, nacking back into retry loop",
				"delivery_tag", d.DeliveryTag)
			_ = d.Nack(false, false)
		} else {
			_ = d.Ack(false)
		}
	}
}

// Close waits for the in-flight batch and releases the channel.
func (c *BatchConsumer) Close() error {
	c.baseConsumer.Logger.Info("Closing consumer")
	return c.baseConsumer.Close()
}

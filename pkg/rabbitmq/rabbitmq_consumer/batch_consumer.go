package rabbitmq_consumer

import (
	"context"
	"fmt"
	"listings-service/pkg/rabbitmq/rabbitmq_common"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// BatchMessageHandler обрабатывает пачку сообщений целиком.
// Ошибка означает, что ни одно сообщение пачки не обработано.
type BatchMessageHandler func(ctx context.Context, deliveries []amqp.Delivery) error

// BatchConsumer копит сообщения до batchSize штук или до истечения batchTimeout
// с момента первого сообщения пачки и отдаёт их обработчику одним вызовом.
type BatchConsumer struct {
	base         *baseConsumer
	handler      BatchMessageHandler
	batchSize    int
	batchTimeout time.Duration
}

func NewBatchConsumer(cfg ConsumerConfig, handler BatchMessageHandler, batchSize int, batchTimeout time.Duration, connManager *rabbitmq_common.ConnectionManager) (*BatchConsumer, error) {
	if handler == nil {
		return nil, fmt.Errorf("batch Consumer: message handler is required")
	}
	if batchSize < 1 {
		batchSize = 1
	}
	if batchTimeout <= 0 {
		batchTimeout = time.Second
	}
	// иначе брокер не отдаст полную пачку
	cfg.PrefetchCount = max(cfg.PrefetchCount, batchSize)

	bc, err := newBaseConsumer(cfg, connManager)
	if err != nil {
		return nil, fmt.Errorf("batch Consumer: %w", err)
	}

	return &BatchConsumer{
		base:         bc,
		handler:      handler,
		batchSize:    batchSize,
		batchTimeout: batchTimeout,
	}, nil
}

// StartConsuming блокируется до отмены контекста или потери соединения
func (c *BatchConsumer) StartConsuming(ctx context.Context) error {
	msgs, err := c.base.deliveries()
	if err != nil {
		return fmt.Errorf("batch Consumer: %w", err)
	}

	c.base.Logger.Info("[*] Waiting for messages on queue",
		"queue_name", c.base.queueName,
		"batch_size", c.batchSize,
		"batch_timeout", c.batchTimeout.String())

	c.base.wg.Add(1)
	go func() {
		defer c.base.wg.Done()
		c.collect(ctx, msgs)
	}()

	notifyClose := c.base.connection.NotifyClose(make(chan *amqp.Error, 1))

	select {
	case <-ctx.Done():
		c.base.Logger.Info("Context cancelled for consumer. Shutting down.", "consumer_tag", c.base.config.ConsumerTag)
		return nil
	case amqpErr, ok := <-notifyClose:
		if !ok || amqpErr == nil {
			return nil
		}
		c.base.Logger.Error(amqpErr, "Connection closed for consumer", "consumer_tag", c.base.config.ConsumerTag)
		return amqpErr
	}
}

func (c *BatchConsumer) collect(ctx context.Context, msgs <-chan amqp.Delivery) {
	batch := make([]amqp.Delivery, 0, c.batchSize)
	timer := time.NewTimer(c.batchTimeout)
	timer.Stop()
	defer timer.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		c.process(ctx, batch)
		batch = make([]amqp.Delivery, 0, c.batchSize)
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return

		case d, ok := <-msgs:
			if !ok {
				c.base.Logger.Info("Deliveries channel closed. Processing final batch.")
				flush()
				return
			}
			if len(batch) == 0 {
				timer.Reset(c.batchTimeout)
			}
			batch = append(batch, d)
			if len(batch) >= c.batchSize {
				timer.Stop()
				flush()
			}

		case <-timer.C:
			flush()
		}
	}
}

func (c *BatchConsumer) process(ctx context.Context, batch []amqp.Delivery) {
	// обработка последней пачки не должна прерываться остановкой сервиса
	err := c.handler(context.WithoutCancel(ctx), batch)
	if err == nil {
		last := batch[len(batch)-1].DeliveryTag
		if ackErr := c.base.channel.Ack(last, true); ackErr != nil {
			c.base.Logger.Error(ackErr, "Failed to ack batch", "batch_size", len(batch))
			return
		}
		c.base.Logger.Debug("Batch acknowledged", "batch_size", len(batch))
		return
	}

	c.base.Logger.Error(err, "Handler returned error for batch", "batch_size", len(batch))
	for _, d := range batch {
		c.base.reject(d)
	}
}

func (c *BatchConsumer) Close() error {
	c.base.Logger.Info("Closing consumer")
	return c.base.Close()
}

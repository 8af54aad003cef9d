package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"listings-service/internal/constants"
	"listings-service/internal/contextkeys"
	"listings-service/internal/contracts"
	"listings-service/internal/core/port"
	"listings-service/internal/core/port/usecases_port"
	"listings-service/pkg/rabbitmq/rabbitmq_common"
	"listings-service/pkg/rabbitmq/rabbitmq_consumer"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// ListingsChangedDTO - событие об изменении данных в источнике объявлений
type ListingsChangedDTO struct {
	Source     string     `json:"source,omitempty"`
	IDs        []string   `json:"ids,omitempty"`
	OccurredAt *time.Time `json:"occurred_at,omitempty"`
}

// ListingsChangedConsumerAdapter слушает события об изменении источника и обновляет каталог.
// Всплеск событий схлопывается в пачку, и на пачку приходится одно обновление.
type ListingsChangedConsumerAdapter struct {
	consumer rabbitmq_consumer.Consumer
	useCase  usecases_port.RefreshCatalogUseCase
	logger   port.LoggerPort
}

func NewListingsChangedConsumerAdapter(
	consumerCfg rabbitmq_consumer.ConsumerConfig,
	batchWindow time.Duration,
	useCase usecases_port.RefreshCatalogUseCase,
	logger port.LoggerPort,
	connManager *rabbitmq_common.ConnectionManager,
) (*ListingsChangedConsumerAdapter, error) {
	if useCase == nil {
		return nil, fmt.Errorf("rabbitmq adapter: refresh use case cannot be nil")
	}

	adapter := &ListingsChangedConsumerAdapter{
		useCase: useCase,
		logger:  logger.WithFields(port.Fields{"adapter_name": "ListingsChangedConsumerAdapter"}),
	}

	pkgLogger := logger.WithFields(port.Fields{"component": "rabbitmq_batch_consumer", "consumer_tag": consumerCfg.ConsumerTag})
	consumerCfg.Logger = NewPkgLoggerBridge(pkgLogger)

	consumer, err := rabbitmq_consumer.NewBatchConsumer(consumerCfg, adapter.handleBatch, constants.ListingsChangedBatchSize, batchWindow, connManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create RabbitMQ consumer for listings changes: %w", err)
	}
	adapter.consumer = consumer
	return adapter, nil
}

func (a *ListingsChangedConsumerAdapter) Start(ctx context.Context) error {
	return a.consumer.StartConsuming(ctx)
}

func (a *ListingsChangedConsumerAdapter) Close() error {
	return a.consumer.Close()
}

// handleBatch: невалидные сообщения только логируются, они не должны блокировать обновление.
// Ошибка обновления возвращается, и пачка отклоняется.
func (a *ListingsChangedConsumerAdapter) handleBatch(ctx context.Context, deliveries []amqp.Delivery) error {
	traceID := ""
	if len(deliveries) > 0 {
		traceID, _ = deliveries[0].Headers[constants.HeaderTraceID].(string)
	}
	if traceID == "" {
		traceID = uuid.New().String()
	}

	batchLogger := a.logger.WithFields(port.Fields{
		"trace_id":   traceID,
		"batch_id":   uuid.New().String(),
		"batch_size": len(deliveries),
	})
	ctx = contextkeys.ContextWithLogger(ctx, batchLogger)
	ctx = contextkeys.ContextWithTraceID(ctx, traceID)

	valid := 0
	sources := make(map[string]struct{})
	for _, d := range deliveries {
		event, err := decodeListingsChanged(d.Body)
		if err != nil {
			batchLogger.Warn("Skipping invalid listings changed event", port.Fields{
				"delivery_tag": d.DeliveryTag,
				"error":        err.Error(),
			})
			continue
		}
		valid++
		if event.Source != "" {
			sources[event.Source] = struct{}{}
		}
	}

	if valid == 0 {
		batchLogger.Info("No valid events in batch, refresh skipped", nil)
		return nil
	}

	batchLogger.Info("Refreshing catalog after listings changed", port.Fields{
		"valid_events": valid,
		"sources":      len(sources),
	})
	if _, err := a.useCase.Execute(ctx); err != nil {
		return fmt.Errorf("catalog refresh failed: %w", err)
	}
	return nil
}

func decodeListingsChanged(body []byte) (*ListingsChangedDTO, error) {
	if err := contracts.ValidateEvent(contracts.ListingsChangedV1, body); err != nil {
		return nil, err
	}
	var dto ListingsChangedDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, err
	}
	return &dto, nil
}

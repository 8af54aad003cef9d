package rabbitmq

import (
	"context"
	"fmt"
	"listings-service/internal/constants"
	"listings-service/internal/contextkeys"
	"listings-service/internal/core/domain"
	"listings-service/internal/core/port"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// CatalogRefreshedDTO - событие о новом снимке каталога
type CatalogRefreshedDTO struct {
	Status   string    `json:"status"`
	Count    int       `json:"count"`
	Source   string    `json:"source"`
	LoadedAt time.Time `json:"loaded_at"`
}

// JSONPublisher - то, что нужно адаптеру от издателя
type JSONPublisher interface {
	PublishJSON(ctx context.Context, routingKey string, payload interface{}, headers amqp.Table) error
}

// CatalogEventsPublisher реализует port.CatalogEventsPort через RabbitMQ
type CatalogEventsPublisher struct {
	producer   JSONPublisher
	routingKey string
	timeout    time.Duration
}

func NewCatalogEventsPublisher(producer JSONPublisher, routingKey string) (*CatalogEventsPublisher, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	if routingKey == "" {
		return nil, fmt.Errorf("rabbitmq adapter: routingKey cannot be empty")
	}
	return &CatalogEventsPublisher{
		producer:   producer,
		routingKey: routingKey,
		timeout:    10 * time.Second,
	}, nil
}

func (a *CatalogEventsPublisher) PublishCatalogRefreshed(ctx context.Context, state domain.CatalogState) error {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "CatalogEventsPublisher",
		"routing_key": a.routingKey,
	})

	dto := CatalogRefreshedDTO{
		Status:   string(state.Status),
		Count:    state.Count,
		Source:   state.Source,
		LoadedAt: state.LoadedAt.UTC(),
	}

	headers := amqp.Table{
		constants.HeaderEventType:    "CatalogRefreshedEvent",
		constants.HeaderEventVersion: "1.0.0",
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		headers[constants.HeaderTraceID] = traceID
	}

	publishCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if err := a.producer.PublishJSON(publishCtx, a.routingKey, dto, headers); err != nil {
		logger.Error("Failed to publish catalog refreshed event", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to publish catalog refreshed event: %w", err)
	}

	logger.Debug("Catalog refreshed event published", port.Fields{"count": dto.Count})
	return nil
}
